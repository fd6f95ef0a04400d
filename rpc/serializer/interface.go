package serializer

import (
	"fmt"

	"github.com/squirreldb/squirreldb-go/rpc/common"
)

// IRPCSerializer is the interface for all Message serializers
type IRPCSerializer interface {
	// Serialize serializes a Message into a byte array
	// It returns the serialized byte array and an error if any
	Serialize(msg common.Message) ([]byte, error)
	// Deserialize deserializes a byte array into a Message
	// It takes a byte array and a pointer to a Message as parameters
	// It returns an error if any
	Deserialize(b []byte, msg *common.Message) error
	// Encoding returns the wire encoding tag this serializer produces
	Encoding() common.Encoding
}

// ForEncoding returns the serializer for a wire encoding tag. It is used to
// select the payload codec after the handshake negotiation and to decode
// frames that carry an explicit encoding tag.
func ForEncoding(enc common.Encoding) (IRPCSerializer, error) {
	switch enc {
	case common.EncodingJSON:
		return NewJSONSerializer(), nil
	case common.EncodingMsgpack:
		return NewMsgpackSerializer(), nil
	default:
		return nil, fmt.Errorf("unsupported encoding 0x%02x", byte(enc))
	}
}
