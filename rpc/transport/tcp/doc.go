// Package tcp implements the TCP socket-based transport for the SquirrelDB
// client. It provides a concrete implementation of the base package's
// connector interface optimized for TCP connections.
//
// This package builds on the base package's transport functionality,
// inheriting its handshake, frame protocol and request routing. See the base
// package documentation for detailed information on the underlying transport
// mechanisms.
//
// Key Components:
//
//   - clientConnector: TCP-specific implementation of base.IClientConnector.
//     Dials with the configured connect timeout and applies the socket tuning
//     options (NoDelay, buffer sizes, keep-alive, linger) from the client
//     configuration.
package tcp
