package rpcclient

import (
	"errors"

	"github.com/crackcomm/net3/message"
)

// Sentinel errors surfaced from Handle operations and the correlator,
// per SPEC_FULL.md §10 / spec.md §7.
var (
	// ErrConnectionReset is returned from any Handle operation once the
	// loop backing it has exited (mailbox receiver gone).
	ErrConnectionReset = errors.New("rpcclient: connection reset")
	// ErrTimeout is returned when a request's timeout elapses before a
	// matching response arrives.
	ErrTimeout = errors.New("rpcclient: request timed out")

	// ErrHandlerBuilderNotSet is a builder preflight error.
	ErrHandlerBuilderNotSet = errors.New("rpcclient: handler builder not set")
	// ErrAddressNotSet is a builder preflight error: reconnect requested
	// with no address configured.
	ErrAddressNotSet = errors.New("rpcclient: reconnect requested but no address set")
	// ErrChannelNotSet is a builder preflight error: one-shot Start
	// called with neither a channel nor an address configured.
	ErrChannelNotSet = errors.New("rpcclient: no channel or address set")

	// ErrInvalidPayload is returned by Request when the response
	// carries no payload to decode.
	ErrInvalidPayload = errors.New("rpcclient: response carried no payload")
)

// CallError is an RPC call error: a server returned an ErrorResponse.
// Callers can inspect the original ErrorKind and description.
type CallError struct {
	Kind        message.ErrorKind
	Description string
}

func (e *CallError) Error() string {
	return "rpcclient: rpc error: " + e.Kind.String() + ": " + e.Description
}
