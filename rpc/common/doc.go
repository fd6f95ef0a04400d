// Package common provides the wire protocol definition and shared data
// structures of the SquirrelDB client. It defines the frame and handshake
// constants, the message schema, the client configuration, and the metrics
// exposed by the connection layer.
//
// The package focuses on:
//   - Message protocol definition for client/server communication
//   - Protocol constants (magic bytes, version, size limits, status codes)
//   - Configuration structures for client connections
//   - Prometheus-style counters for connection observability
//
// Key Components:
//
//   - Message: Core data structure for all protocol communication, with a
//     flexible field set that adapts to the different operation types.
//     Includes factory methods for creating the various request, response
//     and notification messages.
//
//   - MessageType: Enumeration of all supported message types. On the wire
//     a message type is represented by its string form inside the payload,
//     which is also how incoming messages are routed.
//
//   - Encoding: Payload serialization formats (JSON, msgpack). The values
//     double as handshake capability flags and per-frame encoding tags.
//
//   - ClientConfig: Configuration for client connections, controlling the
//     endpoint, authentication, timeouts, encoding preference, subscription
//     delivery mode and TCP socket tuning.
//
//   - Metrics: Counter variables tracking requests, errors, notifications,
//     stray messages and frame counts. They integrate with the
//     VictoriaMetrics metrics set and can be exposed via WritePrometheus.
package common
