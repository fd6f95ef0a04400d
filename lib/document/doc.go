// Package document defines the core data model and client-facing contracts of the
// SquirrelDB SDK. It contains the document representation, the change notification
// model used by live queries, the unified error system, and the IDocumentStore
// interface that all client implementations satisfy.
//
// The package focuses on:
//   - A unified interface (IDocumentStore) for document operations across transports
//   - A structured change notification model for subscriptions (live queries)
//   - Typed error reporting that allows callers to branch on failure classes
//
// Key Components:
//
//   - Document: The wire-level representation of a stored document, consisting of a
//     server-assigned id, the owning collection, the user payload and server-managed
//     timestamps. Payloads are schemaless maps, mirroring what the server stores.
//
//   - ChangeEvent / ChangeFunc: Subscriptions deliver ChangeEvent values describing
//     initial snapshots, inserts, updates and deletes. Callbacks are invoked from the
//     connection's dispatch goroutine (or a per-subscription delivery goroutine when
//     buffered delivery is enabled), so they must not block for extended periods.
//
//   - Error System: A structured error reporting mechanism using typed error codes
//     (ErrCode) and descriptive messages. This allows applications to distinguish a
//     request timeout from an authentication failure or a server-side error without
//     string matching. The CodeOf and IsCode helpers inspect wrapped errors.
//
//   - IDocumentStore: The core abstraction defining all operations a connected
//     client supports: ping, ad hoc queries, document mutations, collection listing
//     and change subscriptions. The RPC implementation lives in the
//     "github.com/squirreldb/squirreldb-go/rpc/client" package.
//
// Thread Safety:
//
//	All types in this package are either immutable after creation or plain data
//	carriers. Implementations of IDocumentStore are required to be safe for
//	concurrent use by multiple goroutines.
package document
