package transport

import (
	"github.com/squirreldb/squirreldb-go/rpc/common"
)

// --------------------------------------------------------------------------
// Client Transport
// --------------------------------------------------------------------------

// NotificationFunc is a function type that handles incoming change
// notifications. It is called by the transport's dispatch goroutine for
// every notification whose id matches a registered subscription.
type NotificationFunc func(msg *common.Message)

// IConnTransport is the interface for a single client connection. It owns
// the socket, the handshake, the dispatch goroutine and the routing of
// incoming messages to pending requests and subscriptions.
type IConnTransport interface {
	// Connect dials the endpoint from the configuration, performs the
	// protocol handshake and starts the dispatch goroutine. It must be
	// called exactly once per transport instance.
	Connect(config common.ClientConfig) error
	// Invoke assigns a fresh correlation id to the request, sends it and
	// blocks until the matching response arrives or the request timeout
	// elapses. The passed message is mutated (its ID field is set).
	Invoke(req *common.Message) (*common.Message, error)
	// Post sends a request without waiting for a response. The message is
	// sent as-is, no correlation id is assigned.
	Post(req *common.Message) error
	// Subscribe registers a notification handler under the given
	// subscription id. It only manipulates the local registry, the
	// server-side subscription must be established separately via Invoke.
	Subscribe(id string, fn NotificationFunc)
	// Unsubscribe removes the notification handler registered under id.
	Unsubscribe(id string)
	// SessionID returns the session identifier assigned by the server
	// during the handshake, formatted as lowercase hex groups.
	SessionID() string
	// Encoding returns the payload encoding negotiated in the handshake.
	Encoding() common.Encoding
	// IsConnected reports whether the connection is alive.
	IsConnected() bool
	// Close tears down the connection and fails all pending requests.
	// It is idempotent.
	Close() error
}
