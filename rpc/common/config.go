package common

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// Transport tuning structs
// --------------------------------------------------------------------------

// SocketConf holds generic socket buffer settings applied to new connections.
// Zero values leave the operating system defaults untouched.
type SocketConf struct {
	WriteBufferSize int
	ReadBufferSize  int
}

// TCPConf holds TCP-specific settings applied to new connections.
type TCPConf struct {
	// NoDelay disables Nagle's algorithm. The protocol exchanges small
	// frames, so this defaults to true.
	NoDelay bool
	// KeepAliveSec enables TCP keep-alive probes with the given period.
	// Zero or negative disables keep-alive.
	KeepAliveSec int
	// LingerSec sets the linger timeout on close. Negative means the
	// operating system default.
	LingerSec int
}

// TransportConfig groups all transport level tuning options.
type TransportConfig struct {
	Socket SocketConf
	TCP    TCPConf
}

// --------------------------------------------------------------------------
// RPC client configuration struct
// --------------------------------------------------------------------------

// ClientConfig holds all configuration parameters for a client connection.
// Use DefaultClientConfig to obtain a config with sensible defaults.
type ClientConfig struct {
	// Host is the server hostname or IP address.
	Host string
	// Port is the server TCP port.
	Port int
	// AuthToken is sent during the handshake. May be empty if the server
	// does not require authentication.
	AuthToken string

	// PreferMsgpack advertises msgpack support during the handshake. The
	// server makes the final encoding decision.
	PreferMsgpack bool

	// ConnectTimeoutMs bounds dialing and the handshake exchange.
	ConnectTimeoutMs int
	// RequestTimeoutMs bounds every request/response round trip.
	RequestTimeoutMs int

	// BufferedSubscriptions decouples subscription callbacks from the
	// dispatch goroutine via a per-subscription queue. Event order within
	// a subscription is preserved.
	BufferedSubscriptions bool

	// OnStray, if set, is invoked for messages that match no pending
	// request and no subscription. Intended for tests and diagnostics.
	OnStray func(msg *Message)

	// Transport holds socket level tuning options.
	Transport TransportConfig
}

// DefaultClientConfig returns a ClientConfig for the given host with the
// protocol defaults filled in.
func DefaultClientConfig(host string) ClientConfig {
	return ClientConfig{
		Host:             host,
		Port:             DefaultPort,
		PreferMsgpack:    true,
		ConnectTimeoutMs: 5000,
		RequestTimeoutMs: 30000,
		Transport: TransportConfig{
			TCP: TCPConf{
				NoDelay:   true,
				LingerSec: -1,
			},
		},
	}
}

// Endpoint returns the host:port address to dial.
func (c *ClientConfig) Endpoint() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// ConnectTimeout returns the connect timeout as a time.Duration.
func (c *ClientConfig) ConnectTimeout() time.Duration {
	return time.Duration(c.ConnectTimeoutMs) * time.Millisecond
}

// RequestTimeout returns the request timeout as a time.Duration.
func (c *ClientConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMs) * time.Millisecond
}

// Validate checks the configuration for values the client cannot work with.
func (c *ClientConfig) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("no host provided")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.ConnectTimeoutMs <= 0 {
		return fmt.Errorf("connect timeout must be positive, got %d ms", c.ConnectTimeoutMs)
	}
	if c.RequestTimeoutMs <= 0 {
		return fmt.Errorf("request timeout must be positive, got %d ms", c.RequestTimeoutMs)
	}
	if len(c.AuthToken) > 65535 {
		return fmt.Errorf("auth token exceeds %d bytes", 65535)
	}
	return nil
}

// String returns a formatted string representation of the client configuration
func (c *ClientConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	// General Client Settings
	addSection("Client Configuration")
	addField("Endpoint", c.Endpoint())
	addField("Auth Token", maskToken(c.AuthToken))
	addField("Prefer Msgpack", fmt.Sprintf("%t", c.PreferMsgpack))
	addField("Connect Timeout", fmt.Sprintf("%d ms", c.ConnectTimeoutMs))
	addField("Request Timeout", fmt.Sprintf("%d ms", c.RequestTimeoutMs))
	addField("Buffered Subscriptions", fmt.Sprintf("%t", c.BufferedSubscriptions))

	// Transport tuning
	addSection("Transport")
	addField("TCP NoDelay", fmt.Sprintf("%t", c.Transport.TCP.NoDelay))
	addField("TCP KeepAlive", fmt.Sprintf("%d sec", c.Transport.TCP.KeepAliveSec))
	addField("TCP Linger", fmt.Sprintf("%d sec", c.Transport.TCP.LingerSec))
	addField("Write Buffer Size", strconv.Itoa(c.Transport.Socket.WriteBufferSize))
	addField("Read Buffer Size", strconv.Itoa(c.Transport.Socket.ReadBufferSize))

	return sb.String()
}

// maskToken hides the token value in log output while still showing
// whether one is configured.
func maskToken(token string) string {
	if token == "" {
		return "(none)"
	}
	return fmt.Sprintf("(%d bytes, hidden)", len(token))
}
