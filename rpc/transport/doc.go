// Package transport defines the interfaces and abstractions for the client
// connection layer of the SquirrelDB SDK. It provides a common contract that
// transport implementations fulfill, separating protocol logic from the
// underlying socket type.
//
// The package focuses on:
//   - Defining a clear interface for the client connection transport
//   - Routing of responses by correlation id and notifications by
//     subscription id
//   - Enabling connector implementations for different socket types
//
// Key Components:
//
//   - IConnTransport: Interface for a single client connection covering the
//     full lifecycle: connect and handshake, request/response invocation,
//     fire-and-forget sends, the subscription registry and teardown.
//
//   - NotificationFunc: Function type for change notification callbacks.
//
// The protocol-independent engine behind IConnTransport lives in the base
// subpackage, the TCP connector in the tcp subpackage.
package transport
