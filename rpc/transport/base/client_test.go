package base_test

import (
	"fmt"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/squirreldb/squirreldb-go/lib/document"
	"github.com/squirreldb/squirreldb-go/rpc/common"
	"github.com/squirreldb/squirreldb-go/rpc/rpctest"
	"github.com/squirreldb/squirreldb-go/rpc/transport"
	"github.com/squirreldb/squirreldb-go/rpc/transport/base"
)

// testConnector dials plain TCP without any socket tuning
type testConnector struct{}

func (c *testConnector) GetName() string {
	return "test"
}

func (c *testConnector) Connect(endpoint string, timeout time.Duration) (net.Conn, error) {
	return net.DialTimeout("tcp", endpoint, timeout)
}

func (c *testConnector) UpgradeConnection(conn net.Conn, config common.ClientConfig) error {
	return nil
}

// connectTo returns a transport connected to the given test server. The
// mutate hook can adjust the config before connecting.
func connectTo(t *testing.T, server *rpctest.Server, mutate func(*common.ClientConfig)) transport.IConnTransport {
	t.Helper()

	host, port := server.HostPort()
	config := common.DefaultClientConfig(host)
	config.Port = port
	if mutate != nil {
		mutate(&config)
	}

	tr := base.NewConnTransport(&testConnector{})
	if err := tr.Connect(config); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	t.Cleanup(func() { tr.Close() })

	return tr
}

// TestTransportInvoke tests the basic request/response cycle including the
// correlation id sequence and the negotiated session parameters
func TestTransportInvoke(t *testing.T) {
	server, err := rpctest.NewServer(rpctest.ServerConfig{})
	if err != nil {
		t.Fatalf("failed to start server: %v", err)
	}
	defer server.Close()

	tr := connectTo(t, server, nil)

	if !tr.IsConnected() {
		t.Error("transport not connected after Connect")
	}
	if tr.SessionID() != server.SessionID() {
		t.Errorf("session id = %q, want %q", tr.SessionID(), server.SessionID())
	}
	if tr.Encoding() != common.EncodingJSON {
		t.Errorf("encoding = %v, want %v", tr.Encoding(), common.EncodingJSON)
	}

	req := common.NewPingRequest()
	resp, err := tr.Invoke(req)
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if req.ID != "1" {
		t.Errorf("first correlation id = %q, want %q", req.ID, "1")
	}
	if resp.MsgType != common.MsgTPong || resp.ID != "1" {
		t.Errorf("response = %v %q, want pong %q", resp.MsgType, resp.ID, "1")
	}

	req = common.NewPingRequest()
	if _, err := tr.Invoke(req); err != nil {
		t.Fatalf("second Invoke failed: %v", err)
	}
	if req.ID != "2" {
		t.Errorf("second correlation id = %q, want %q", req.ID, "2")
	}
}

// TestTransportMsgpackSession tests a full request cycle over a
// msgpack-negotiated session
func TestTransportMsgpackSession(t *testing.T) {
	server, err := rpctest.NewServer(rpctest.ServerConfig{Encoding: common.EncodingMsgpack})
	if err != nil {
		t.Fatalf("failed to start server: %v", err)
	}
	defer server.Close()

	tr := connectTo(t, server, nil)

	if tr.Encoding() != common.EncodingMsgpack {
		t.Fatalf("encoding = %v, want %v", tr.Encoding(), common.EncodingMsgpack)
	}

	resp, err := tr.Invoke(common.NewQueryRequest("db.users.find()"))
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if resp.MsgType != common.MsgTQuery || resp.ID != "1" {
		t.Errorf("response = %v %q, want query %q", resp.MsgType, resp.ID, "1")
	}
}

// TestTransportRoutesOutOfOrderResponses tests that concurrent requests each
// receive their own response regardless of completion order
func TestTransportRoutesOutOfOrderResponses(t *testing.T) {
	reqs := make(chan *common.Message, 2)
	server, err := rpctest.NewServer(rpctest.ServerConfig{
		Handler: func(req *common.Message) *common.Message {
			reqs <- req
			return nil
		},
	})
	if err != nil {
		t.Fatalf("failed to start server: %v", err)
	}
	defer server.Close()

	tr := connectTo(t, server, nil)

	queries := []string{"db.a.find()", "db.b.find()"}
	results := make([]*common.Message, len(queries))
	errs := make([]error, len(queries))

	var wg sync.WaitGroup
	for i := range queries {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = tr.Invoke(common.NewQueryRequest(queries[i]))
		}(i)
	}

	// Answer in reverse arrival order, echoing the query as data
	first := <-reqs
	second := <-reqs
	for _, req := range []*common.Message{second, first} {
		if err := server.Send(common.NewDataResponse(req.MsgType, req.ID, req.Query)); err != nil {
			t.Fatalf("Send failed: %v", err)
		}
	}
	wg.Wait()

	for i := range queries {
		if errs[i] != nil {
			t.Fatalf("request %d failed: %v", i, errs[i])
		}
		if results[i].Data != queries[i] {
			t.Errorf("request %d got data %v, want %q", i, results[i].Data, queries[i])
		}
	}
}

// TestTransportRequestTimeout tests that a swallowed request fails with a
// timeout and that the late response is handed to the stray hook without
// harming the connection
func TestTransportRequestTimeout(t *testing.T) {
	server, err := rpctest.NewServer(rpctest.ServerConfig{
		Handler: func(req *common.Message) *common.Message { return nil },
	})
	if err != nil {
		t.Fatalf("failed to start server: %v", err)
	}
	defer server.Close()

	strays := make(chan *common.Message, 2)
	tr := connectTo(t, server, func(c *common.ClientConfig) {
		c.RequestTimeoutMs = 50
		c.OnStray = func(msg *common.Message) { strays <- msg }
	})

	_, err = tr.Invoke(common.NewPingRequest())
	if document.CodeOf(err) != document.ErrCTimeout {
		t.Fatalf("err = %v, want code %v", err, document.ErrCTimeout)
	}

	// Deliver the response after the caller gave up
	if err := server.Send(common.NewPongResponse("1")); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	select {
	case msg := <-strays:
		if msg.MsgType != common.MsgTPong || msg.ID != "1" {
			t.Errorf("stray = %v %q, want pong %q", msg.MsgType, msg.ID, "1")
		}
	case <-time.After(time.Second):
		t.Fatal("stray hook not invoked for late response")
	}

	// A message without an id is a stray too
	if err := server.Send(&common.Message{MsgType: common.MsgTPong}); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	select {
	case msg := <-strays:
		if msg.ID != "" {
			t.Errorf("stray id = %q, want empty", msg.ID)
		}
	case <-time.After(time.Second):
		t.Fatal("stray hook not invoked for unroutable message")
	}

	if !tr.IsConnected() {
		t.Error("connection died on stray messages")
	}
}

// TestTransportNotificationOrdering tests that change notifications reach the
// subscription callback in wire order
func TestTransportNotificationOrdering(t *testing.T) {
	server, err := rpctest.NewServer(rpctest.ServerConfig{})
	if err != nil {
		t.Fatalf("failed to start server: %v", err)
	}
	defer server.Close()

	tr := connectTo(t, server, nil)

	const n = 50
	seqCh := make(chan any, n)
	tr.Subscribe("42", func(msg *common.Message) {
		seqCh <- msg.Change.Document["seq"]
	})

	for i := 0; i < n; i++ {
		err := server.Notify("42", &common.Change{
			Type:     "insert",
			Document: map[string]any{"seq": fmt.Sprintf("%03d", i)},
		})
		if err != nil {
			t.Fatalf("Notify failed: %v", err)
		}
	}

	for i := 0; i < n; i++ {
		select {
		case got := <-seqCh:
			if want := fmt.Sprintf("%03d", i); got != want {
				t.Fatalf("event %d = %v, want %q", i, got, want)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for event %d", i)
		}
	}
}

// TestTransportUnsubscribedNotificationIsStray tests that notifications for
// removed or unknown subscriptions go to the stray hook
func TestTransportUnsubscribedNotificationIsStray(t *testing.T) {
	server, err := rpctest.NewServer(rpctest.ServerConfig{})
	if err != nil {
		t.Fatalf("failed to start server: %v", err)
	}
	defer server.Close()

	strays := make(chan *common.Message, 1)
	tr := connectTo(t, server, func(c *common.ClientConfig) {
		c.OnStray = func(msg *common.Message) { strays <- msg }
	})

	events := make(chan struct{}, 1)
	tr.Subscribe("7", func(msg *common.Message) { events <- struct{}{} })

	if err := server.Notify("7", &common.Change{Type: "insert"}); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}
	select {
	case <-events:
	case <-time.After(time.Second):
		t.Fatal("subscription callback not invoked")
	}

	tr.Unsubscribe("7")
	if err := server.Notify("7", &common.Change{Type: "delete"}); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}

	select {
	case msg := <-strays:
		if msg.MsgType != common.MsgTChange || msg.ID != "7" {
			t.Errorf("stray = %v %q, want change %q", msg.MsgType, msg.ID, "7")
		}
	case <-time.After(time.Second):
		t.Fatal("stray hook not invoked after unsubscribe")
	}
}

// TestTransportPost tests the fire-and-forget send path
func TestTransportPost(t *testing.T) {
	reqs := make(chan *common.Message, 1)
	server, err := rpctest.NewServer(rpctest.ServerConfig{
		Handler: func(req *common.Message) *common.Message {
			reqs <- req
			return nil
		},
	})
	if err != nil {
		t.Fatalf("failed to start server: %v", err)
	}
	defer server.Close()

	tr := connectTo(t, server, nil)

	if err := tr.Post(common.NewUnsubscribeRequest("7")); err != nil {
		t.Fatalf("Post failed: %v", err)
	}

	select {
	case req := <-reqs:
		if req.MsgType != common.MsgTUnsubscribe || req.ID != "7" {
			t.Errorf("server got %v %q, want unsubscribe %q", req.MsgType, req.ID, "7")
		}
	case <-time.After(time.Second):
		t.Fatal("posted request never reached the server")
	}
}

// TestTransportCloseFailsPending tests that Close cancels in-flight requests
// and that the transport stays safely unusable afterwards
func TestTransportCloseFailsPending(t *testing.T) {
	arrived := make(chan struct{}, 1)
	server, err := rpctest.NewServer(rpctest.ServerConfig{
		Handler: func(req *common.Message) *common.Message {
			arrived <- struct{}{}
			return nil
		},
	})
	if err != nil {
		t.Fatalf("failed to start server: %v", err)
	}
	defer server.Close()

	tr := connectTo(t, server, nil)

	errCh := make(chan error, 1)
	go func() {
		_, err := tr.Invoke(common.NewPingRequest())
		errCh <- err
	}()

	select {
	case <-arrived:
	case <-time.After(time.Second):
		t.Fatal("request never reached the server")
	}

	if err := tr.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	select {
	case err := <-errCh:
		if document.CodeOf(err) != document.ErrCClosed {
			t.Errorf("pending err = %v, want code %v", err, document.ErrCClosed)
		}
	case <-time.After(time.Second):
		t.Fatal("pending request not cancelled on close")
	}

	if tr.IsConnected() {
		t.Error("transport still reports connected after Close")
	}
	if _, err := tr.Invoke(common.NewPingRequest()); document.CodeOf(err) != document.ErrCClosed {
		t.Errorf("Invoke after close = %v, want code %v", err, document.ErrCClosed)
	}
	if err := tr.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
}

// TestTransportConnectionLossFailsPending tests that a dying server fails
// in-flight requests with a receive error
func TestTransportConnectionLossFailsPending(t *testing.T) {
	arrived := make(chan struct{}, 1)
	server, err := rpctest.NewServer(rpctest.ServerConfig{
		Handler: func(req *common.Message) *common.Message {
			arrived <- struct{}{}
			return nil
		},
	})
	if err != nil {
		t.Fatalf("failed to start server: %v", err)
	}
	defer server.Close()

	tr := connectTo(t, server, nil)

	errCh := make(chan error, 1)
	go func() {
		_, err := tr.Invoke(common.NewPingRequest())
		errCh <- err
	}()

	select {
	case <-arrived:
	case <-time.After(time.Second):
		t.Fatal("request never reached the server")
	}
	server.CloseConns()

	select {
	case err := <-errCh:
		if document.CodeOf(err) != document.ErrCReceiveFailed {
			t.Errorf("pending err = %v, want code %v", err, document.ErrCReceiveFailed)
		}
	case <-time.After(time.Second):
		t.Fatal("pending request not failed on connection loss")
	}

	if tr.IsConnected() {
		t.Error("transport still reports connected after connection loss")
	}
}

// TestTransportMalformedFrameFatal tests that an invalid frame length kills
// the connection
func TestTransportMalformedFrameFatal(t *testing.T) {
	server, err := rpctest.NewServer(rpctest.ServerConfig{})
	if err != nil {
		t.Fatalf("failed to start server: %v", err)
	}
	defer server.Close()

	tr := connectTo(t, server, nil)

	// Frame declaring a length below the two mandatory tag bytes
	if err := server.SendRaw([]byte{0x00, 0x00, 0x00, 0x01, 0x01, 0x02}); err != nil {
		t.Fatalf("SendRaw failed: %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for tr.IsConnected() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if tr.IsConnected() {
		t.Fatal("transport still connected after malformed frame")
	}
}

// TestTransportGarbagePayloadIsStray tests that an undecodable payload in a
// well-formed frame is dropped without killing the connection
func TestTransportGarbagePayloadIsStray(t *testing.T) {
	server, err := rpctest.NewServer(rpctest.ServerConfig{})
	if err != nil {
		t.Fatalf("failed to start server: %v", err)
	}
	defer server.Close()

	tr := connectTo(t, server, nil)

	raw := append([]byte{0x00, 0x00, 0x00, 0x0a, 0x02, 0x02}, []byte("not-json")...)
	if err := server.SendRaw(raw); err != nil {
		t.Fatalf("SendRaw failed: %v", err)
	}

	// The dispatch loop drops the garbage and keeps serving
	resp, err := tr.Invoke(common.NewPingRequest())
	if err != nil {
		t.Fatalf("Invoke after garbage payload failed: %v", err)
	}
	if resp.MsgType != common.MsgTPong {
		t.Errorf("response type = %v, want %v", resp.MsgType, common.MsgTPong)
	}
}

// TestTransportConnectFailures tests the error codes of every connect-time
// failure mode
func TestTransportConnectFailures(t *testing.T) {
	t.Run("Refused", func(t *testing.T) {
		server, err := rpctest.NewServer(rpctest.ServerConfig{})
		if err != nil {
			t.Fatalf("failed to start server: %v", err)
		}
		host, port := server.HostPort()
		server.Close()

		config := common.DefaultClientConfig(host)
		config.Port = port
		config.ConnectTimeoutMs = 500

		tr := base.NewConnTransport(&testConnector{})
		if err := tr.Connect(config); document.CodeOf(err) != document.ErrCConnectFailed {
			t.Errorf("err = %v, want code %v", err, document.ErrCConnectFailed)
		}
	})

	t.Run("VersionMismatch", func(t *testing.T) {
		server, err := rpctest.NewServer(rpctest.ServerConfig{
			HandshakeStatus: common.HandshakeVersionMismatch,
			ServerVersion:   0x02,
		})
		if err != nil {
			t.Fatalf("failed to start server: %v", err)
		}
		defer server.Close()

		host, port := server.HostPort()
		config := common.DefaultClientConfig(host)
		config.Port = port

		tr := base.NewConnTransport(&testConnector{})
		if err := tr.Connect(config); document.CodeOf(err) != document.ErrCVersionMismatch {
			t.Errorf("err = %v, want code %v", err, document.ErrCVersionMismatch)
		}
	})

	t.Run("AuthRejected", func(t *testing.T) {
		server, err := rpctest.NewServer(rpctest.ServerConfig{AuthToken: "right"})
		if err != nil {
			t.Fatalf("failed to start server: %v", err)
		}
		defer server.Close()

		host, port := server.HostPort()
		config := common.DefaultClientConfig(host)
		config.Port = port
		config.AuthToken = "wrong"

		tr := base.NewConnTransport(&testConnector{})
		if err := tr.Connect(config); document.CodeOf(err) != document.ErrCAuthFailed {
			t.Errorf("err = %v, want code %v", err, document.ErrCAuthFailed)
		}
	})

	t.Run("InvalidConfig", func(t *testing.T) {
		tr := base.NewConnTransport(&testConnector{})
		err := tr.Connect(common.DefaultClientConfig(""))
		if document.CodeOf(err) != document.ErrCInvalidArgument {
			t.Errorf("err = %v, want code %v", err, document.ErrCInvalidArgument)
		}
	})

	t.Run("SecondConnect", func(t *testing.T) {
		server, err := rpctest.NewServer(rpctest.ServerConfig{})
		if err != nil {
			t.Fatalf("failed to start server: %v", err)
		}
		defer server.Close()

		tr := connectTo(t, server, nil)

		host, port := server.HostPort()
		config := common.DefaultClientConfig(host)
		config.Port = port
		if err := tr.Connect(config); document.CodeOf(err) != document.ErrCInvalidArgument {
			t.Errorf("err = %v, want code %v", err, document.ErrCInvalidArgument)
		}
	})
}
