// Package base provides the foundation for client transports in the SquirrelDB
// client, implementing the connection lifecycle independent of the specific
// network protocol. It serves as a base layer that can be extended with
// protocol-specific connectors.
//
// The package focuses on:
//   - Protocol-agnostic connection management (dial, handshake, teardown)
//   - The versioned handshake that authenticates the session and negotiates
//     the payload encoding
//   - Frame-based message exchange with length-prefixed payloads
//   - Request/response correlation over a single multiplexed connection
//   - Routing of change notifications to subscription callbacks
//
// Key Components:
//
//   - IClientConnector: Interface for protocol-specific operations that allows
//     extending the base transport with different network protocols.
//
//   - connTransport: Core client implementation that owns one connection and
//     one dispatch goroutine. Concurrent requests share the connection and are
//     matched to their responses via correlation ids carried in the payload,
//     so slow requests never block fast ones.
//
// Performance Optimizations:
//
//   - Asynchronous Processing: The client sends requests and correlates
//     responses asynchronously using unique request ids, enabling higher
//     throughput over a single connection.
//
//   - Frame Batching: The transport uses net.Buffers to reduce syscalls when
//     writing frames, combining header and payload into a single write
//     operation.
//
// Thread Safety:
//
//	All public methods are thread-safe. The transport uses atomic operations,
//	a write mutex and concurrent maps to ensure concurrent access safety. All
//	reads happen on the single dispatch goroutine, which also invokes
//	subscription callbacks so events of one subscription keep their wire order.
package base
