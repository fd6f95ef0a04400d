// Package serializer provides message serialization capabilities for the
// SquirrelDB client protocol. It defines a common interface and the two wire
// encodings the protocol negotiates during the handshake.
//
// The package focuses on:
//   - Providing a consistent interface for both negotiated payload formats
//   - Mapping wire encoding tags to their codec via ForEncoding
//   - Keeping the message schema identical across encodings
//
// Key Components:
//
//   - IRPCSerializer: Core interface that all serializer implementations must
//     satisfy. Besides the encode/decode pair it reports the wire encoding
//     tag its payloads must be framed with.
//
//   - jsonSerializerImpl: Implementation using JSON encoding. JSON is the
//     baseline format every server supports and is always advertised during
//     the handshake. Human-readable, useful for debugging with packet
//     captures.
//
//   - msgpackSerializerImpl: Implementation using msgpack encoding via
//     github.com/vmihailenco/msgpack. Advertised when the client prefers it,
//     used only when the server selects it in the handshake response.
//     Produces smaller payloads than JSON for typical document data.
//
// Thread Safety:
//
//	All serializer implementations are stateless and safe for concurrent use
//	across multiple goroutines without additional synchronization.
package serializer
