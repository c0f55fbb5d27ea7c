package message

import (
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// ErrorKind classifies an RPC error: one of the two named codes used
// throughout the wire forms, or an arbitrary integer error code.
type ErrorKind struct {
	named   namedErrorKind
	code    int64
	isOther bool
}

type namedErrorKind int

const (
	// InternalError is JSON-RPC code -32603.
	internalErrorCode int64 = -32603
	// MethodNotFound is JSON-RPC code -32601.
	methodNotFoundCode int64 = -32601
)

const (
	namedInternalError namedErrorKind = iota
	namedMethodNotFound
)

// InternalError is the -32603 internal-server-error kind.
var InternalError = ErrorKind{named: namedInternalError}

// MethodNotFound is the -32601 method-not-found kind.
var MethodNotFound = ErrorKind{named: namedMethodNotFound}

// ErrorCode builds an ErrorKind wrapping an arbitrary integer code. If
// code is one of the two named codes, the corresponding named kind is
// returned instead, so Code() round-trips through FromCode faithfully.
func ErrorCode(code int64) ErrorKind {
	switch code {
	case internalErrorCode:
		return InternalError
	case methodNotFoundCode:
		return MethodNotFound
	default:
		return ErrorKind{code: code, isOther: true}
	}
}

// FromCode is an alias of ErrorCode, named to match the round-trip
// invariant described in the data model: integer -> kind -> integer is
// identity for the two named codes and for every other integer.
func FromCode(code int64) ErrorKind { return ErrorCode(code) }

// Code returns the wire integer code for this error kind.
func (k ErrorKind) Code() int64 {
	if k.isOther {
		return k.code
	}
	switch k.named {
	case namedMethodNotFound:
		return methodNotFoundCode
	default:
		return internalErrorCode
	}
}

// IsNamed reports whether this is InternalError or MethodNotFound.
func (k ErrorKind) IsNamed() bool { return !k.isOther }

// Description returns the short human-readable description, matching
// the original's ErrorKind::description().
func (k ErrorKind) Description() string {
	if k.isOther {
		return fmt.Sprintf("error code: %d", k.code)
	}
	switch k.named {
	case namedMethodNotFound:
		return "method not found"
	default:
		return "internal server error"
	}
}

func (k ErrorKind) String() string { return k.Description() }

// MarshalJSON encodes the error kind as its wire integer code, matching
// code.rs's ErrorCode Serialize impl.
func (k ErrorKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.Code())
}

// UnmarshalJSON decodes a wire integer code back into an ErrorKind.
func (k *ErrorKind) UnmarshalJSON(data []byte) error {
	var code int64
	if err := json.Unmarshal(data, &code); err != nil {
		return err
	}
	*k = FromCode(code)
	return nil
}

// EncodeMsgpack encodes the error kind as its wire integer code.
func (k ErrorKind) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.EncodeInt64(k.Code())
}

// DecodeMsgpack decodes a wire integer code back into an ErrorKind.
func (k *ErrorKind) DecodeMsgpack(dec *msgpack.Decoder) error {
	code, err := dec.DecodeInt64()
	if err != nil {
		return err
	}
	*k = FromCode(code)
	return nil
}

// Error is a decoded RPC error: a kind plus optional human description.
type Error struct {
	Kind        ErrorKind
	Description *string
}

// NewError builds an Error from a kind and an optional description.
func NewError(kind ErrorKind, description *string) Error {
	return Error{Kind: kind, Description: description}
}

func (e Error) Error() string {
	desc := "<nil>"
	if e.Description != nil {
		desc = *e.Description
	}
	return fmt.Sprintf("code: %s details: %s", e.Kind, desc)
}
