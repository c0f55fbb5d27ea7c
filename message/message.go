package message

import "encoding/json"

// Message is the generic contract every concrete wire coding (compact,
// JSON-RPC) satisfies. It is parameterized over its own concrete type M
// — a self-referential, F-bounded constraint — because Go generics have
// no associated-type mechanism equivalent to the original's
// `MessageBuilderExt::Builder` trait. Every downstream package
// (codec, netchan, rpcconn, rpcclient, rpcserver, pubsub) threads this
// single type parameter instead of juggling an element type and a
// separate builder type.
//
// New must not dereference its receiver: it is called on a zero value
// of M to bootstrap a fresh instance (e.g. a codec allocating a decode
// target), so implementations should treat it as effectively a static
// constructor reached through the value's method set.
type Message[M any] interface {
	// ID returns the message identifier (Null for most events).
	ID() ID
	// Method returns the event name / request method, if any.
	Method() (string, bool)
	// Kind returns the logical message kind.
	Kind() Kind
	// ErrorKind returns the error kind carried by an ErrorResponse, if any.
	ErrorKind() (ErrorKind, bool)
	// Description returns the human error description, if any.
	Description() (string, bool)
	// IntoError converts an ErrorResponse into an Error, if this message
	// carries one.
	IntoError() (Error, bool)

	// ReadOptional returns the message payload as raw JSON, or
	// (nil, false) when there is no payload.
	ReadOptional() (json.RawMessage, bool)

	// WithID returns a copy of the message with id set.
	WithID(ID) M
	// WithEventName returns a copy of the message set up as an Event
	// with the given name.
	WithEventName(name string) M
	// WithMethodName returns a copy of the message set up as a Request
	// with the given method name.
	WithMethodName(method string) M
	// WithData returns a copy of the message with its payload set to
	// the JSON encoding of data.
	WithData(data any) (M, error)
	// WithError returns a copy of the message set up as an
	// ErrorResponse carrying err.
	WithError(err Error) M
	// WithResponseKind returns a copy of the message marked as a
	// Response. Wire shapes that store kind explicitly (compact) set it
	// here; shapes that infer kind from field presence (jsonrpc) can
	// leave the message unchanged, since an id with no method/error set
	// already resolves to Response.
	WithResponseKind() M

	// New returns a fresh zero-value instance of the concrete message
	// type. Safe to call on a nil/zero receiver.
	New() M
}

// Builder constructs new messages of concrete type M. It mirrors the
// original's free functions (message::builder::new_event, etc.) as
// methods on a small builder value so call sites read
// `compact.Builder.NewRequest(id, "sum", params)` the same shape as
// the Rust crate's `builder::new_request::<compact::Message, _>(...)`.
type Builder[M Message[M]] interface {
	// NewEvent builds an Event message with the given name and optional
	// JSON-encodable params.
	NewEvent(name string, params any) (M, error)
	// NewEmptyEvent builds an Event message with no payload.
	NewEmptyEvent(name string) M
	// NewRequest builds a Request message with the given id, method,
	// and optional JSON-encodable params.
	NewRequest(id ID, method string, params any) (M, error)
	// NewEmptyRequest builds a Request message with no payload.
	NewEmptyRequest(id ID, method string) M
	// NewResponseTo builds a Response copying the request's id.
	NewResponseTo(request M, result any) (M, error)
	// NewErrorResponseTo builds an ErrorResponse copying the request's id.
	NewErrorResponseTo(request M, err Error) M
}
