package base

import (
	"encoding/binary"
	"io"
	"net"

	"github.com/squirreldb/squirreldb-go/lib/document"
	"github.com/squirreldb/squirreldb-go/rpc/common"
)

// frameHeaderSize is the fixed prefix of every frame:
// - 4 bytes: length (uint32, big endian), counts everything after itself
// - 1 byte:  message type tag
// - 1 byte:  payload encoding tag
const frameHeaderSize = 6

// WriteFrame writes a single frame to the connection. The length field is
// always len(payload)+2 since it covers the two tag bytes.
//
// The caller must serialize concurrent writes to the same connection.
func WriteFrame(conn io.Writer, frameType byte, enc common.Encoding, payload []byte) error {
	if len(payload) > common.MaxMessageSize-2 {
		return document.NewErrorf(document.ErrCEncodeFailed,
			"payload of %d bytes exceeds maximum message size", len(payload))
	}

	header := make([]byte, frameHeaderSize)
	binary.BigEndian.PutUint32(header[:4], uint32(len(payload)+2))
	header[4] = frameType
	header[5] = byte(enc)

	b := net.Buffers{header, payload}
	_, err := b.WriteTo(conn)
	return err
}

// ReadFrame reads a single frame from the connection. It returns the two tag
// bytes and the payload. A declared length below 2 or above the maximum
// message size yields a DecodeFailed error, the connection is unusable
// afterwards since the stream position is lost.
func ReadFrame(conn io.Reader) (frameType byte, enc common.Encoding, payload []byte, err error) {
	header := make([]byte, frameHeaderSize)
	if _, err := io.ReadFull(conn, header); err != nil {
		return 0, 0, nil, err
	}

	// Parse header
	length := binary.BigEndian.Uint32(header[:4])
	frameType = header[4]
	enc = common.Encoding(header[5])

	if length < 2 || length > common.MaxMessageSize {
		return 0, 0, nil, document.NewErrorf(document.ErrCDecodeFailed,
			"invalid frame length %d", length)
	}

	// If no payload, return empty slice
	if length == 2 {
		return frameType, enc, []byte{}, nil
	}

	payload = make([]byte, length-2)
	if _, err := io.ReadFull(conn, payload); err != nil {
		return 0, 0, nil, err
	}

	return frameType, enc, payload, nil
}
