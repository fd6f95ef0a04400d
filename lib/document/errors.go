package document

import (
	"errors"
	"fmt"
)

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is the custom error type returned by all SDK operations. It wraps
// an error code (of type ErrCode) and a human-readable message.
type Error struct {
	Code ErrCode // The error code
	Msg  string  // The error message
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("SquirrelDBError (code %s): %s", e.Code, e.Msg)
}

// NewError creates a new Error with the given code and message.
func NewError(code ErrCode, msg string) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
	}
}

// NewErrorf creates a new Error with the given code and a formatted message.
func NewErrorf(code ErrCode, format string, args ...any) *Error {
	return &Error{
		Code: code,
		Msg:  fmt.Sprintf(format, args...),
	}
}

// CodeOf extracts the ErrCode from an error. It unwraps the error chain and
// returns ErrCUnknown if no *Error is found or err is nil.
func CodeOf(err error) ErrCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrCUnknown
}

// IsCode reports whether the error carries the given error code.
func IsCode(err error, code ErrCode) bool {
	return CodeOf(err) == code
}

// --------------------------------------------------------------------------
// Error Codes
// --------------------------------------------------------------------------

type ErrCode uint8

const (
	ErrCUnknown         ErrCode = iota // 0: Unclassified error.
	ErrCConnectFailed                  // 1: TCP connection could not be established.
	ErrCHandshakeFailed                // 2: Handshake was malformed or rejected.
	ErrCVersionMismatch                // 3: Server speaks an incompatible protocol version.
	ErrCAuthFailed                     // 4: Server rejected the authentication token.
	ErrCSendFailed                     // 5: Writing a frame to the connection failed.
	ErrCReceiveFailed                  // 6: Reading from the connection failed.
	ErrCTimeout                        // 7: No response arrived within the request timeout.
	ErrCClosed                         // 8: Operation on a closed connection.
	ErrCInvalidArgument                // 9: A required argument was missing or malformed.
	ErrCEncodeFailed                   // 10: Request payload could not be serialized.
	ErrCDecodeFailed                   // 11: Response payload could not be deserialized.
	ErrCServer                         // 12: Server answered with an error response.
	ErrCNotFound                       // 13: The requested entity does not exist.
)

// String returns the symbolic name of an ErrCode.
func (c ErrCode) String() string {
	switch c {
	case ErrCConnectFailed:
		return "ConnectFailed"
	case ErrCHandshakeFailed:
		return "HandshakeFailed"
	case ErrCVersionMismatch:
		return "VersionMismatch"
	case ErrCAuthFailed:
		return "AuthFailed"
	case ErrCSendFailed:
		return "SendFailed"
	case ErrCReceiveFailed:
		return "ReceiveFailed"
	case ErrCTimeout:
		return "Timeout"
	case ErrCClosed:
		return "ClosedConnection"
	case ErrCInvalidArgument:
		return "InvalidArgument"
	case ErrCEncodeFailed:
		return "EncodeFailed"
	case ErrCDecodeFailed:
		return "DecodeFailed"
	case ErrCServer:
		return "ServerError"
	case ErrCNotFound:
		return "NotFound"
	default:
		return "Unknown"
	}
}
