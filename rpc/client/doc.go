// Package client implements the document store client for SquirrelDB.
// It provides the implementation of the document.IDocumentStore interface
// that communicates with a remote server over a single multiplexed
// connection.
//
// The package focuses on:
//   - Transparent access to documents and collections on a remote server
//   - Integration with the transport and serialization layers
//   - Subscription management for live change feeds
//   - Error handling and conversion between wire and domain errors
//
// Key Components:
//
//   - NewDocumentStore: Factory function that creates a client implementing
//     the document.IDocumentStore interface. It connects the given transport,
//     which performs the handshake, and forwards all operations over the
//     resulting session.
//
//   - subscriptionState: Per-feed bookkeeping. With buffered subscriptions
//     enabled, every feed gets an unbounded event queue plus a dedicated
//     delivery goroutine so slow callbacks cannot stall the connection.
//
// Usage Example:
//
//	// Configure the client
//	config := common.DefaultClientConfig("localhost")
//	config.AuthToken = "s3cret"
//
//	// Create the store client
//	store, _ := client.NewDocumentStore(config, tcp.NewTCPClientTransport())
//	defer store.Close()
//
//	// Work with documents
//	doc, _ := store.Insert("users", map[string]any{"name": "squirrel"})
//	docs, _ := store.Query(`db.users.find({"name": "squirrel"})`)
//
//	// Follow changes
//	sub, _ := store.Subscribe("db.users.changes()", func(event document.ChangeEvent) {
//	    fmt.Println(event.Type)
//	})
//	defer store.Unsubscribe(sub)
//
// Performance Considerations:
//
//   - All operations share one connection. Concurrent requests are correlated
//     by id, so many goroutines can issue requests in parallel without a
//     connection pool.
//
//   - Msgpack encoding reduces payload sizes and encode times compared to
//     JSON and is negotiated automatically when the server supports it.
//
//   - Unbuffered subscription callbacks run on the connection's dispatch
//     goroutine. Enable BufferedSubscriptions when callbacks may block.
//
// Thread Safety:
//
//	All client implementations are thread-safe and can be used concurrently
//	from multiple goroutines without additional synchronization.
package client
