// Package rpctest provides an in-process SquirrelDB stand-in for tests and
// benchmarks. The server listens on a random loopback port, performs the
// versioned handshake and answers frames through a pluggable handler.
//
// Key Components:
//
//   - Server: scripted protocol endpoint. The handshake outcome, advertised
//     server version, selected encoding, session id and auth check are all
//     configurable, so tests can provoke every connect-time failure mode.
//
//   - HandlerFunc: request hook. Returning nil swallows a request, which is
//     how tests simulate lost responses and timeouts. Combined with Send,
//     Notify and SendRaw this also covers out-of-order responses, unsolicited
//     notifications and malformed frames.
//
// The zero ServerConfig behaves like a healthy JSON-speaking node that echoes
// every request.
package rpctest
