package common

import (
	"encoding/json"

	"github.com/vmihailenco/msgpack/v5"
)

// --------------------------------------------------------------------------
// Protocol Constants
// --------------------------------------------------------------------------

const (
	// ProtocolVersion is the wire protocol version this client implements.
	ProtocolVersion byte = 0x01

	// DefaultPort is the default SquirrelDB server port.
	DefaultPort = 8082

	// MaxMessageSize is the upper bound for the length field of a frame.
	// Frames declaring a larger length are rejected as malformed.
	MaxMessageSize = 16 * 1024 * 1024
)

// Magic is the 4-byte protocol identifier sent first in every handshake.
var Magic = [4]byte{'S', 'Q', 'R', 'L'}

// Frame type tags. Set on outgoing frames to classify them, incoming
// messages are routed by the type field of the payload instead.
const (
	FrameRequest      byte = 0x01
	FrameResponse     byte = 0x02
	FrameNotification byte = 0x03
)

// Handshake status codes returned by the server in the first response byte.
const (
	HandshakeOK              byte = 0x00
	HandshakeVersionMismatch byte = 0x01
	HandshakeAuthFailed      byte = 0x02
)

// --------------------------------------------------------------------------
// Payload Encoding
// --------------------------------------------------------------------------

// Encoding identifies a payload serialization format. The values double as
// capability flags in the handshake and as the encoding tag of every frame.
type Encoding byte

const (
	EncodingMsgpack Encoding = 0x01
	EncodingJSON    Encoding = 0x02
)

// String returns the string representation of an Encoding.
func (e Encoding) String() string {
	switch e {
	case EncodingMsgpack:
		return "msgpack"
	case EncodingJSON:
		return "json"
	default:
		return "unknown"
	}
}

// --------------------------------------------------------------------------
// Message Structure
// --------------------------------------------------------------------------

// Message represents a single protocol message used for requests, responses
// and change notifications. Which fields are used depends on the type of
// message. The field names are fixed by the wire protocol.
type Message struct {
	// Type of message
	MsgType MessageType `json:"type" msgpack:"type"`

	// ID correlates responses with requests. For change notifications it
	// carries the subscription id instead.
	ID string `json:"id,omitempty" msgpack:"id,omitempty"`

	// Request fields
	Collection string `json:"collection,omitempty" msgpack:"collection,omitempty"` // Used for: Insert, Update, Delete
	DocumentID string `json:"document_id,omitempty" msgpack:"document_id,omitempty"`
	Query      string `json:"query,omitempty" msgpack:"query,omitempty"` // Used for: Query, Subscribe

	// Data carries the document payload of mutating requests and the result
	// of query style responses. The concrete shape depends on the operation.
	Data any `json:"data,omitempty" msgpack:"data,omitempty"`

	// Notification only fields
	Change *Change `json:"change,omitempty" msgpack:"change,omitempty"`

	// Err is empty on success, otherwise it contains the server error message
	Err string `json:"error,omitempty" msgpack:"error,omitempty"`
}

// Change is the payload of a change notification. Which fields are populated
// depends on the change type (see lib/document.ChangeEvent).
type Change struct {
	Type     string         `json:"type" msgpack:"type"`
	Document map[string]any `json:"document,omitempty" msgpack:"document,omitempty"`
	NewDoc   map[string]any `json:"new_doc,omitempty" msgpack:"new_doc,omitempty"`
	OldData  map[string]any `json:"old_data,omitempty" msgpack:"old_data,omitempty"`
}

// --------------------------------------------------------------------------
// Message Factory Functions
// --------------------------------------------------------------------------

// NewPingRequest creates a new Ping request
func NewPingRequest() *Message {
	return &Message{
		MsgType: MsgTPing,
	}
}

// NewPongResponse creates a new Pong response
func NewPongResponse(id string) *Message {
	return &Message{
		MsgType: MsgTPong,
		ID:      id,
	}
}

// NewQueryRequest creates a new Query request
func NewQueryRequest(query string) *Message {
	return &Message{
		MsgType: MsgTQuery,
		Query:   query,
	}
}

// NewInsertRequest creates a new Insert request
func NewInsertRequest(collection string, data map[string]any) *Message {
	return &Message{
		MsgType:    MsgTInsert,
		Collection: collection,
		Data:       data,
	}
}

// NewUpdateRequest creates a new Update request
func NewUpdateRequest(collection, documentID string, data map[string]any) *Message {
	return &Message{
		MsgType:    MsgTUpdate,
		Collection: collection,
		DocumentID: documentID,
		Data:       data,
	}
}

// NewDeleteRequest creates a new Delete request
func NewDeleteRequest(collection, documentID string) *Message {
	return &Message{
		MsgType:    MsgTDelete,
		Collection: collection,
		DocumentID: documentID,
	}
}

// NewListCollectionsRequest creates a new ListCollections request
func NewListCollectionsRequest() *Message {
	return &Message{
		MsgType: MsgTListCollections,
	}
}

// NewSubscribeRequest creates a new Subscribe request
func NewSubscribeRequest(query string) *Message {
	return &Message{
		MsgType: MsgTSubscribe,
		Query:   query,
	}
}

// NewUnsubscribeRequest creates a new Unsubscribe request. The id is the
// subscription id being cancelled, not a fresh correlation id.
func NewUnsubscribeRequest(subscriptionID string) *Message {
	return &Message{
		MsgType: MsgTUnsubscribe,
		ID:      subscriptionID,
	}
}

// NewDataResponse creates a generic data response for the given request id.
// The message type mirrors the type of the request being answered.
func NewDataResponse(msgType MessageType, id string, data any) *Message {
	return &Message{
		MsgType: msgType,
		ID:      id,
		Data:    data,
	}
}

// NewChangeNotification creates a new change notification for a subscription
func NewChangeNotification(subscriptionID string, change *Change) *Message {
	return &Message{
		MsgType: MsgTChange,
		ID:      subscriptionID,
		Change:  change,
	}
}

// NewErrorResponse creates a new Error response for the given request id
func NewErrorResponse(id string, err string) *Message {
	return &Message{
		MsgType: MsgTError,
		ID:      id,
		Err:     err,
	}
}

// --------------------------------------------------------------------------
// Message Type Definition
// --------------------------------------------------------------------------

// MessageType defines the type of a protocol message. On the wire it is
// represented by its string form.
type MessageType uint8

const (
	MsgTUnknown MessageType = iota
	MsgTPing
	MsgTPong
	MsgTQuery
	MsgTInsert
	MsgTUpdate
	MsgTDelete
	MsgTListCollections
	MsgTSubscribe
	MsgTUnsubscribe
	MsgTChange
	MsgTError
)

// String returns the wire representation of a MessageType.
func (t MessageType) String() string {
	switch t {
	case MsgTPing:
		return "ping"
	case MsgTPong:
		return "pong"
	case MsgTQuery:
		return "query"
	case MsgTInsert:
		return "insert"
	case MsgTUpdate:
		return "update"
	case MsgTDelete:
		return "delete"
	case MsgTListCollections:
		return "listcollections"
	case MsgTSubscribe:
		return "subscribe"
	case MsgTUnsubscribe:
		return "unsubscribe"
	case MsgTChange:
		return "change"
	case MsgTError:
		return "error"
	default:
		return "unknown"
	}
}

// ParseMessageType converts the wire representation back into a MessageType.
// Unknown strings map to MsgTUnknown without an error so that unrecognized
// server messages can still be routed by id.
func ParseMessageType(s string) MessageType {
	switch s {
	case "ping":
		return MsgTPing
	case "pong":
		return MsgTPong
	case "query":
		return MsgTQuery
	case "insert":
		return MsgTInsert
	case "update":
		return MsgTUpdate
	case "delete":
		return MsgTDelete
	case "listcollections":
		return MsgTListCollections
	case "subscribe":
		return MsgTSubscribe
	case "unsubscribe":
		return MsgTUnsubscribe
	case "change":
		return MsgTChange
	case "error":
		return MsgTError
	default:
		return MsgTUnknown
	}
}

// MarshalJSON implements the json.Marshaller interface for MessageType.
// This allows MessageType to be serialized as a string in JSON.
func (t MessageType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for MessageType.
// This allows MessageType to be deserialized from a string in JSON.
func (t *MessageType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*t = ParseMessageType(s)
	return nil
}

// MarshalMsgpack implements the msgpack.Marshaler interface for MessageType.
// This allows MessageType to be serialized as a string in msgpack.
func (t MessageType) MarshalMsgpack() ([]byte, error) {
	return msgpack.Marshal(t.String())
}

// UnmarshalMsgpack implements the msgpack.Unmarshaler interface for MessageType.
// This allows MessageType to be deserialized from a string in msgpack.
func (t *MessageType) UnmarshalMsgpack(data []byte) error {
	var s string
	if err := msgpack.Unmarshal(data, &s); err != nil {
		return err
	}
	*t = ParseMessageType(s)
	return nil
}
