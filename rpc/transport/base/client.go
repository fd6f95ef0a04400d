package base

import (
	"fmt"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang/glog"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/squirreldb/squirreldb-go/lib/document"
	"github.com/squirreldb/squirreldb-go/rpc/common"
	"github.com/squirreldb/squirreldb-go/rpc/serializer"
	"github.com/squirreldb/squirreldb-go/rpc/transport"
)

// -----------------------------------------------------------
// Interface Definitions for dependency injection
// -----------------------------------------------------------

// IClientConnector defines the interface for transport-specific connection operations
type IClientConnector interface {
	// Connect establishes a single connection to the given endpoint,
	// bounded by the connect timeout
	Connect(endpoint string, timeout time.Duration) (net.Conn, error)

	// GetName returns the name of the transport type (e.g., "tcp")
	GetName() string

	// UpgradeConnection applies protocol-specific settings to an established connection
	UpgradeConnection(conn net.Conn, config common.ClientConfig) error
}

// -----------------------------------------------------------
// Helper Types
// -----------------------------------------------------------

// responseResult contains the result of a request
type responseResult struct {
	msg *common.Message
	err error
}

// connTransport implements the core client connection functionality
// independent of the specific transport medium. It owns the socket, the
// handshake and the single dispatch goroutine that routes every incoming
// message either to a pending request or to a subscription callback.
type connTransport struct {
	connector IClientConnector
	config    common.ClientConfig

	conn   net.Conn
	connMu sync.Mutex // Serializes frame writes

	serial    serializer.IRPCSerializer
	sessionID string
	encoding  common.Encoding

	requestChans  *xsync.MapOf[string, chan responseResult]
	subscriptions *xsync.MapOf[string, transport.NotificationFunc]

	nextRequestID uint64 // Atomic counter for correlation ids
	dialed        atomic.Bool
	connected     atomic.Bool
	closing       atomic.Bool
	closeOnce     sync.Once
	readerDone    chan struct{} // Closed when the dispatch goroutine exits
}

// -----------------------------------------------------------
// Transport Factory Method (used for tcp, test doubles, etc.)
// -----------------------------------------------------------

// NewConnTransport creates a new connection transport with the specified connector
func NewConnTransport(connector IClientConnector) transport.IConnTransport {
	return &connTransport{
		connector:     connector,
		requestChans:  xsync.NewMapOf[string, chan responseResult](),
		subscriptions: xsync.NewMapOf[string, transport.NotificationFunc](),
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IConnTransport)
// --------------------------------------------------------------------------

func (t *connTransport) Connect(config common.ClientConfig) error {
	if err := config.Validate(); err != nil {
		return document.NewErrorf(document.ErrCInvalidArgument, "invalid config: %v", err)
	}

	// One transport instance maps to one connection lifecycle, there is no
	// transparent reconnect
	if !t.dialed.CompareAndSwap(false, true) {
		return document.NewError(document.ErrCInvalidArgument, "transport already used, create a new transport to reconnect")
	}

	t.config = config
	endpoint := config.Endpoint()

	conn, err := t.connector.Connect(endpoint, config.ConnectTimeout())
	if err != nil {
		return document.NewErrorf(document.ErrCConnectFailed, "failed to connect to %s: %v", endpoint, err)
	}

	if err := t.connector.UpgradeConnection(conn, config); err != nil {
		conn.Close()
		return document.NewErrorf(document.ErrCConnectFailed, "failed to upgrade connection to %s: %v", endpoint, err)
	}

	hs, err := doHandshake(conn, config)
	if err != nil {
		conn.Close()
		return err
	}

	serial, err := serializer.ForEncoding(hs.encoding)
	if err != nil {
		conn.Close()
		return document.NewErrorf(document.ErrCHandshakeFailed, "cannot use negotiated encoding: %v", err)
	}

	t.conn = conn
	t.sessionID = hs.sessionID
	t.encoding = hs.encoding
	t.serial = serial
	t.readerDone = make(chan struct{})
	t.connected.Store(true)

	glog.Infof("Connected to %s via %s (session %s, encoding %s)",
		endpoint, t.connector.GetName(), hs.sessionID, hs.encoding)

	// Start the dispatch goroutine
	go t.readLoop()

	return nil
}

func (t *connTransport) Invoke(req *common.Message) (*common.Message, error) {
	if !t.connected.Load() {
		return nil, document.NewError(document.ErrCClosed, "connection closed")
	}

	// Correlation ids are decimal strings from a pre-incremented counter
	id := strconv.FormatUint(atomic.AddUint64(&t.nextRequestID, 1), 10)
	req.ID = id

	// Create a channel for the response
	respCh := make(chan responseResult, 1)

	// Register the request
	t.requestChans.Store(id, respCh)

	// Ensure we clean up when done
	defer t.requestChans.Delete(id)

	// Re-check after registering: teardown cancels all registered requests,
	// this closes the window between the first check and the Store
	if !t.connected.Load() {
		return nil, document.NewError(document.ErrCClosed, "connection closed")
	}

	data, err := t.serial.Serialize(*req)
	if err != nil {
		return nil, document.NewErrorf(document.ErrCEncodeFailed, "failed to serialize request: %v", err)
	}

	common.MetricRequestsTotal.Inc()

	if err := t.writeFrame(common.FrameRequest, data); err != nil {
		common.MetricRequestErrorsTotal.Inc()
		return nil, err
	}

	if glog.V(2) {
		glog.Infof("Sent %s request %s (%d bytes)", req.MsgType, id, len(data))
	}

	// Wait for response or timeout
	select {
	case result := <-respCh:
		if result.err != nil {
			common.MetricRequestErrorsTotal.Inc()
			return nil, result.err
		}
		return result.msg, nil
	case <-time.After(t.config.RequestTimeout()):
		common.MetricRequestErrorsTotal.Inc()
		return nil, document.NewErrorf(document.ErrCTimeout, "request %s timed out after %d ms", id, t.config.RequestTimeoutMs)
	}
}

func (t *connTransport) Post(req *common.Message) error {
	if !t.connected.Load() {
		return document.NewError(document.ErrCClosed, "connection closed")
	}

	data, err := t.serial.Serialize(*req)
	if err != nil {
		return document.NewErrorf(document.ErrCEncodeFailed, "failed to serialize request: %v", err)
	}

	if err := t.writeFrame(common.FrameRequest, data); err != nil {
		return err
	}

	if glog.V(2) {
		glog.Infof("Sent %s request %s (%d bytes)", req.MsgType, req.ID, len(data))
	}
	return nil
}

func (t *connTransport) Subscribe(id string, fn transport.NotificationFunc) {
	t.subscriptions.Store(id, fn)
}

func (t *connTransport) Unsubscribe(id string) {
	t.subscriptions.Delete(id)
}

func (t *connTransport) SessionID() string {
	return t.sessionID
}

func (t *connTransport) Encoding() common.Encoding {
	return t.encoding
}

func (t *connTransport) IsConnected() bool {
	return t.connected.Load()
}

func (t *connTransport) Close() error {
	t.closeOnce.Do(func() {
		t.closing.Store(true)

		if t.conn != nil {
			// Closing the socket unblocks the dispatch goroutine's pending
			// read, its teardown then fails all outstanding requests
			t.conn.Close()
			<-t.readerDone
		}

		t.connected.Store(false)
	})
	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// writeFrame serializes access to the connection and tags the frame with the
// negotiated encoding
func (t *connTransport) writeFrame(frameType byte, payload []byte) error {
	t.connMu.Lock()
	err := WriteFrame(t.conn, frameType, t.encoding, payload)
	t.connMu.Unlock()

	if err != nil {
		if document.CodeOf(err) == document.ErrCEncodeFailed {
			return err
		}
		return document.NewErrorf(document.ErrCSendFailed, "failed to write frame: %v", err)
	}

	common.MetricFramesWrittenTotal.Inc()
	return nil
}

// readLoop is the dispatch goroutine. It reads frames in a loop and routes
// decoded messages by the type field of their payload: change notifications
// go to the subscription registry, everything else to the pending request
// table. It exits on the first read or frame error.
func (t *connTransport) readLoop() {
	defer close(t.readerDone)

	for {
		_, enc, payload, err := ReadFrame(t.conn)
		if err != nil {
			t.teardown(err)
			return
		}

		common.MetricFramesReadTotal.Inc()

		// Select the payload codec by the frame's encoding tag
		serial := t.serial
		if enc != t.serial.Encoding() {
			if serial, err = serializer.ForEncoding(enc); err != nil {
				t.dropStray(nil, fmt.Sprintf("unsupported encoding tag 0x%02x", byte(enc)))
				continue
			}
		}

		msg := &common.Message{}
		if err := serial.Deserialize(payload, msg); err != nil {
			t.dropStray(nil, fmt.Sprintf("undecodable payload: %v", err))
			continue
		}

		// Messages without an id cannot be routed
		if msg.ID == "" {
			t.dropStray(msg, "missing message id")
			continue
		}

		if glog.V(2) {
			glog.Infof("Received %s message %s (%d bytes)", msg.MsgType, msg.ID, len(payload))
		}

		if msg.MsgType == common.MsgTChange {
			fn, ok := t.subscriptions.Load(msg.ID)
			if !ok {
				t.dropStray(msg, "no subscription registered")
				continue
			}
			if msg.Change == nil {
				t.dropStray(msg, "notification without change record")
				continue
			}
			common.MetricNotificationsTotal.Inc()

			// Invoked inline so events of one subscription keep wire order
			fn(msg)
		} else {
			ch, ok := t.requestChans.Load(msg.ID)
			if !ok {
				t.dropStray(msg, "no pending request")
				continue
			}

			// Non-blocking send: the buffer holds the single expected
			// response and the waiter may have timed out already
			select {
			case ch <- responseResult{msg: msg}:
			default:
			}
		}
	}
}

// teardown marks the connection dead, fails all pending requests and clears
// the subscription registry. Called exactly once, from the dispatch goroutine.
func (t *connTransport) teardown(cause error) {
	t.connected.Store(false)

	var failErr error
	if t.closing.Load() {
		failErr = document.NewError(document.ErrCClosed, "connection closed")
		glog.Infof("Connection to %s closed", t.config.Endpoint())
	} else {
		failErr = document.NewErrorf(document.ErrCReceiveFailed, "connection lost: %v", cause)
		glog.Errorf("Connection to %s lost: %v", t.config.Endpoint(), cause)
		t.conn.Close()
	}

	// Fail every pending request
	t.requestChans.Range(func(id string, ch chan responseResult) bool {
		select {
		case ch <- responseResult{err: failErr}:
		default:
		}
		t.requestChans.Delete(id)
		return true
	})

	// Drop all subscriptions, no further events can arrive
	t.subscriptions.Range(func(id string, _ transport.NotificationFunc) bool {
		t.subscriptions.Delete(id)
		return true
	})
}

// dropStray counts and reports a message that could not be routed.
// msg is nil when the payload could not be decoded at all.
func (t *connTransport) dropStray(msg *common.Message, reason string) {
	common.MetricStrayMessagesTotal.Inc()

	if msg != nil && t.config.OnStray != nil {
		t.config.OnStray(msg)
	}

	if msg != nil {
		glog.Warningf("Dropping stray %s message %q: %s", msg.MsgType, msg.ID, reason)
	} else {
		glog.Warningf("Dropping stray message: %s", reason)
	}
}
