package base

import (
	"encoding/binary"
	"io"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/squirreldb/squirreldb-go/lib/document"
	"github.com/squirreldb/squirreldb-go/rpc/common"
)

// handshakeResponseSize is the fixed size of the server's handshake reply:
// - 1 byte:   status code
// - 1 byte:   server protocol version
// - 1 byte:   negotiated capability flags
// - 16 bytes: session id
const handshakeResponseSize = 19

// handshakeResult carries the session parameters negotiated with the server
type handshakeResult struct {
	sessionID string
	encoding  common.Encoding
}

// doHandshake performs the protocol handshake on a fresh connection. The
// whole exchange runs under the connect timeout. On failure the connection
// must be closed by the caller, the stream is not recoverable.
func doHandshake(conn net.Conn, config common.ClientConfig) (*handshakeResult, error) {
	token := []byte(config.AuthToken)

	// Build the client hello:
	// - 4 bytes: protocol magic
	// - 1 byte:  protocol version
	// - 1 byte:  accepted encoding flags
	// - 2 bytes: token length (uint16, big endian)
	// - N bytes: auth token
	hello := make([]byte, 8+len(token))
	copy(hello[:4], common.Magic[:])
	hello[4] = common.ProtocolVersion

	// JSON is always accepted, msgpack only advertised when preferred
	flags := byte(common.EncodingJSON)
	if config.PreferMsgpack {
		flags |= byte(common.EncodingMsgpack)
	}
	hello[5] = flags

	binary.BigEndian.PutUint16(hello[6:8], uint16(len(token)))
	copy(hello[8:], token)

	// The deadline covers both directions of the exchange
	if err := conn.SetDeadline(time.Now().Add(config.ConnectTimeout())); err != nil {
		return nil, document.NewErrorf(document.ErrCHandshakeFailed, "failed to set handshake deadline: %v", err)
	}
	defer conn.SetDeadline(time.Time{})

	if _, err := conn.Write(hello); err != nil {
		return nil, document.NewErrorf(document.ErrCHandshakeFailed, "failed to send handshake: %v", err)
	}

	var resp [handshakeResponseSize]byte
	if _, err := io.ReadFull(conn, resp[:]); err != nil {
		if isTimeout(err) {
			return nil, document.NewErrorf(document.ErrCTimeout, "handshake timed out after %d ms", config.ConnectTimeoutMs)
		}
		return nil, document.NewErrorf(document.ErrCHandshakeFailed, "failed to read handshake response: %v", err)
	}

	switch resp[0] {
	case common.HandshakeOK:
		// continue below
	case common.HandshakeVersionMismatch:
		return nil, document.NewErrorf(document.ErrCVersionMismatch,
			"server protocol version %d, client implements %d", resp[1], common.ProtocolVersion)
	case common.HandshakeAuthFailed:
		return nil, document.NewError(document.ErrCAuthFailed, "server rejected the auth token")
	default:
		return nil, document.NewErrorf(document.ErrCHandshakeFailed, "unexpected handshake status 0x%02x", resp[0])
	}

	// The server picks exactly one encoding, msgpack wins if flagged
	encoding := common.EncodingJSON
	if common.Encoding(resp[2])&common.EncodingMsgpack != 0 {
		encoding = common.EncodingMsgpack
	}

	// The 16 session id bytes are rendered as lowercase hex groups
	sessionID, err := uuid.FromBytes(resp[3:19])
	if err != nil {
		return nil, document.NewErrorf(document.ErrCHandshakeFailed, "invalid session id: %v", err)
	}

	return &handshakeResult{
		sessionID: sessionID.String(),
		encoding:  encoding,
	}, nil
}

// isTimeout reports whether an I/O error was caused by an expired deadline
func isTimeout(err error) bool {
	netErr, ok := err.(net.Error)
	return ok && netErr.Timeout()
}
