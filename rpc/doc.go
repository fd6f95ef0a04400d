// Package rpc contains the wire protocol layer of the SquirrelDB client SDK.
// It implements the binary protocol spoken by SquirrelDB servers and exposes
// the document store client built on top of it.
//
// The package is organized into several subpackages:
//
//   - common: Core data structures shared across the protocol layer, including
//     the Message envelope, message factories, client configuration and the
//     client side metrics counters.
//
//   - transport: The client connection layer with the protocol engine
//     (handshake, framing, correlation of responses, subscription routing)
//     and the TCP connector.
//
//   - serializer: Payload serialization with the negotiated wire encodings
//     (JSON, MessagePack) for converting between Message objects and frame
//     payloads.
//
//   - client: The document store client implementation that maps the
//     IDocumentStore interface onto protocol requests.
//
//   - rpctest: An in-process fake server for exercising the client against
//     scripted responses and notifications in tests.
package rpc
