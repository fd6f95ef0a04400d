package document

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// IDocumentStore is the generic interface for interacting with a SquirrelDB
// server. All operations return a *Error (possibly wrapped) on failure so
// callers can branch on the error code.
//
// Implementations must be safe for concurrent use by multiple goroutines.
type IDocumentStore interface {
	// Ping performs a server round trip and verifies the response.
	Ping() error
	// Query executes an ad hoc query and returns the matching documents.
	Query(query string) ([]Document, error)
	// Insert creates a new document with the given payload in a collection.
	// The returned document carries the server-assigned id and timestamps.
	Insert(collection string, data map[string]any) (*Document, error)
	// Update replaces the payload of an existing document.
	// It returns the updated document as stored on the server.
	Update(collection, documentID string, data map[string]any) (*Document, error)
	// Delete removes a document. The returned document is the last stored
	// state and may be nil if the server omits it.
	Delete(collection, documentID string) (*Document, error)
	// ListCollections returns the names of all collections on the server.
	ListCollections() ([]string, error)
	// Subscribe registers a change feed for the given query. The callback is
	// invoked for every matching change until the subscription is cancelled.
	// The returned Subscription handle is needed to unsubscribe again.
	Subscribe(query string, fn ChangeFunc) (*Subscription, error)
	// Unsubscribe cancels a change feed. After it returns, no further events
	// are delivered for the subscription. The server-side cancellation is
	// sent on a best-effort basis.
	Unsubscribe(sub *Subscription) error
	// SessionID returns the session identifier assigned during the handshake.
	SessionID() string
	// IsConnected reports whether the underlying connection is alive.
	IsConnected() bool
	// Close tears down the connection. It is safe to call multiple times.
	Close() error
}
