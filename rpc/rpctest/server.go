package rpctest

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/google/uuid"
	"github.com/squirreldb/squirreldb-go/rpc/common"
	"github.com/squirreldb/squirreldb-go/rpc/serializer"
	"github.com/squirreldb/squirreldb-go/rpc/transport/base"
)

// -----------------------------------------------------------
// Helper Types
// -----------------------------------------------------------

// HandlerFunc processes one decoded request and returns the response to
// send back. Returning nil swallows the request, which lets tests provoke
// timeouts and out-of-order responses.
type HandlerFunc func(req *common.Message) *common.Message

// ServerConfig configures the scripted behavior of a test server
type ServerConfig struct {
	HandshakeStatus byte            // Handshake status byte (default common.HandshakeOK)
	ServerVersion   byte            // Version byte in the handshake response (default common.ProtocolVersion)
	Encoding        common.Encoding // Payload encoding selected by the server (default JSON)
	SessionID       [16]byte        // Session id bytes, the zero value picks a random one
	AuthToken       string          // Expected auth token, empty accepts any
	Handler         HandlerFunc     // Request handler (default EchoHandler)
}

// Server is an in-process stand-in for a SquirrelDB node. It speaks the
// handshake and frame protocol on a loopback listener and answers requests
// via the configured handler. Tests drive unsolicited traffic through Send,
// Notify and SendRaw.
type Server struct {
	config    ServerConfig
	listener  net.Listener
	serial    serializer.IRPCSerializer
	sessionID uuid.UUID

	mu     sync.Mutex // Protects conns and serializes frame writes
	conns  []net.Conn
	closed bool
}

// EchoHandler answers pings with pongs and echoes the type, id and data of
// every other request
func EchoHandler(req *common.Message) *common.Message {
	if req.MsgType == common.MsgTPing {
		return common.NewPongResponse(req.ID)
	}
	return common.NewDataResponse(req.MsgType, req.ID, req.Data)
}

// -----------------------------------------------------------
// Server Factory Method
// -----------------------------------------------------------

// NewServer starts a test server on a random loopback port
func NewServer(config ServerConfig) (*Server, error) {
	if config.Encoding == 0 {
		config.Encoding = common.EncodingJSON
	}
	if config.ServerVersion == 0 {
		config.ServerVersion = common.ProtocolVersion
	}
	if config.Handler == nil {
		config.Handler = EchoHandler
	}

	serial, err := serializer.ForEncoding(config.Encoding)
	if err != nil {
		return nil, err
	}

	sessionID := uuid.UUID(config.SessionID)
	if sessionID == uuid.Nil {
		sessionID = uuid.New()
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("failed to listen: %v", err)
	}

	s := &Server{
		config:    config,
		listener:  listener,
		serial:    serial,
		sessionID: sessionID,
	}

	// Accept connections
	go s.acceptLoop()

	return s, nil
}

// --------------------------------------------------------------------------
// Public Methods
// --------------------------------------------------------------------------

// Addr returns the host:port the server listens on
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// HostPort returns the listen address split into host and numeric port
func (s *Server) HostPort() (string, int) {
	addr := s.listener.Addr().(*net.TCPAddr)
	return addr.IP.String(), addr.Port
}

// SessionID returns the session id handed out during the handshake
func (s *Server) SessionID() string {
	return s.sessionID.String()
}

// Send serializes msg and writes it as a response frame to every connection
func (s *Server) Send(msg *common.Message) error {
	data, err := s.serial.Serialize(*msg)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, conn := range s.conns {
		if err := base.WriteFrame(conn, common.FrameResponse, s.config.Encoding, data); err != nil {
			return err
		}
	}
	return nil
}

// Notify sends a change notification for the given subscription id
func (s *Server) Notify(subscriptionID string, change *common.Change) error {
	return s.Send(common.NewChangeNotification(subscriptionID, change))
}

// SendRaw writes raw bytes to every connection, bypassing the frame codec.
// Used to exercise the client's handling of malformed frames.
func (s *Server) SendRaw(raw []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, conn := range s.conns {
		if _, err := conn.Write(raw); err != nil {
			return err
		}
	}
	return nil
}

// CloseConns drops all established connections but keeps listening
func (s *Server) CloseConns() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, conn := range s.conns {
		conn.Close()
	}
	s.conns = nil
}

// Close shuts the server down and drops all connections
func (s *Server) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	err := s.listener.Close()
	s.CloseConns()
	return err
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}

		// Register before the handshake reply is written, so a connected
		// client is guaranteed to be reachable via Send
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			conn.Close()
			return
		}
		s.conns = append(s.conns, conn)
		s.mu.Unlock()

		go s.serveConn(conn)
	}
}

// serveConn performs the handshake and then answers frames until the
// connection dies
func (s *Server) serveConn(conn net.Conn) {
	defer s.removeConn(conn)

	if !s.handshake(conn) {
		return
	}

	for {
		_, enc, payload, err := base.ReadFrame(conn)
		if err != nil {
			return
		}

		// Decode with the codec named by the frame's encoding tag
		serial, err := serializer.ForEncoding(enc)
		if err != nil {
			continue
		}
		req := &common.Message{}
		if err := serial.Deserialize(payload, req); err != nil {
			continue
		}

		resp := s.config.Handler(req)
		if resp == nil {
			continue
		}
		if err := s.Send(resp); err != nil {
			return
		}
	}
}

// handshake reads the client hello and writes the scripted response.
// Returns false when the connection should be dropped.
func (s *Server) handshake(conn net.Conn) bool {
	head := make([]byte, 8)
	if _, err := io.ReadFull(conn, head); err != nil {
		return false
	}

	status := s.config.HandshakeStatus
	if [4]byte(head[:4]) != common.Magic {
		return false
	}
	if status == common.HandshakeOK && head[4] != common.ProtocolVersion {
		status = common.HandshakeVersionMismatch
	}

	tokenLen := binary.BigEndian.Uint16(head[6:8])
	token := make([]byte, tokenLen)
	if _, err := io.ReadFull(conn, token); err != nil {
		return false
	}
	if status == common.HandshakeOK && s.config.AuthToken != "" && string(token) != s.config.AuthToken {
		status = common.HandshakeAuthFailed
	}

	resp := make([]byte, 0, 19)
	resp = append(resp, status, s.config.ServerVersion, byte(s.config.Encoding))
	resp = append(resp, s.sessionID[:]...)
	if _, err := conn.Write(resp); err != nil {
		return false
	}

	return status == common.HandshakeOK
}

func (s *Server) removeConn(conn net.Conn) {
	conn.Close()

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.conns {
		if c == conn {
			s.conns = append(s.conns[:i], s.conns[i+1:]...)
			break
		}
	}
}
