// Package message defines the protocol-agnostic RPC message model: the
// message kind, the identifier union, error kinds, and the generic
// Message contract that concrete wire codings (compact, JSON-RPC) satisfy.
package message

// Kind is the logical role of a message on the wire.
//
// The zero value is Event, matching the convention that a message with
// no explicit kind is a fire-and-forget notification.
type Kind int

const (
	// Event is a fire-and-forget notification; it carries no id.
	Event Kind = iota
	// Request expects a correlated Response or ErrorResponse.
	Request
	// Response answers a Request successfully.
	Response
	// ErrorResponse answers a Request with an error.
	ErrorResponse
	// Undefined is not a valid kind to send; decoders that cannot
	// determine a kind (e.g. a JSON-RPC message with both result and
	// error set) produce this and the loop core treats it as fatal.
	Undefined
)

func (k Kind) String() string {
	switch k {
	case Event:
		return "event"
	case Request:
		return "request"
	case Response:
		return "response"
	case ErrorResponse:
		return "error_response"
	default:
		return "undefined"
	}
}
