package rpcclient

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/crackcomm/net3/message"
)

// handleState is the data shared by every clone of a Handle (owned or
// reference), grounded on handle.rs's InnerHandle<M, U>.
type handleState[M message.Message[M], E any] struct {
	clientID       *uint64
	events         *mailbox[E]
	mailbox        *mailbox[clientMessage[M]]
	requests       atomic.Uint64
	requestTimeout time.Duration
	instances      atomic.Int64
}

// Handle is the user-facing reference to a running client loop. Cloning
// an owned Handle increments the shared instance counter; Release
// decrements it. A Handle obtained via Ref() is a non-owning view that
// never affects the counter.
//
// Go has no Drop, so — unlike the original, where dropping the last
// owned Handle value triggers shutdown automatically — callers MUST
// call Release explicitly exactly once per owned Handle (Clone does not
// count the handle it was cloned from) when they are done with it.
type Handle[M message.Message[M], E any] struct {
	inner *handleState[M, E]
	owned bool
}

// newHandle wraps inner in a Handle, incrementing the shared instance
// counter when owned is true.
func newHandle[M message.Message[M], E any](inner *handleState[M, E], owned bool) Handle[M, E] {
	if owned {
		inner.instances.Add(1)
	}
	return Handle[M, E]{inner: inner, owned: owned}
}

// Clone returns a new Handle sharing the same underlying state. If the
// receiver is owned, the shared instance counter is incremented.
func (h Handle[M, E]) Clone() Handle[M, E] {
	if h.owned {
		h.inner.instances.Add(1)
	}
	return Handle[M, E]{inner: h.inner, owned: h.owned}
}

// Ref returns a non-owning HandleRef sharing the same state.
func (h Handle[M, E]) Ref() HandleRef[M, E] {
	return HandleRef[M, E]{Handle[M, E]{inner: h.inner, owned: false}}
}

// Release must be called exactly once per owned Handle when the caller
// is done with it — the idiomatic stand-in for the original's Drop impl
// decrementing the instance counter. When the counter reaches zero, the
// mailbox is closed, which (once drained of anything already queued)
// ends the loop with rpcconn.ErrConnectionAborted, per spec.md's Handle
// lifecycle invariant.
func (h Handle[M, E]) Release() {
	if !h.owned {
		return
	}
	if h.inner.instances.Add(-1) == 0 {
		h.inner.mailbox.Close()
	}
}

// ClientID returns the client id assigned on the Builder, if any.
func (h Handle[M, E]) ClientID() (uint64, bool) {
	if h.inner.clientID == nil {
		return 0, false
	}
	return *h.inner.clientID, true
}

// EmitInternal posts an internal event for HandleInternalEvent to react
// to.
func (h Handle[M, E]) EmitInternal(event E) error {
	if h.inner.events == nil {
		return ErrConnectionReset
	}
	return h.inner.events.Send(event)
}

// SendNotification posts an Event message built from method/params; no
// correlation entry is created.
func (h Handle[M, E]) SendNotification(builder message.Builder[M], method string, params any) error {
	msg, err := builder.NewEvent(method, params)
	if err != nil {
		return err
	}
	return h.inner.mailbox.Send(clientMessage[M]{kind: cmRequest, msg: msg})
}

// Send posts an arbitrary message as-is.
func (h Handle[M, E]) Send(msg M) error {
	return h.inner.mailbox.Send(clientMessage[M]{kind: cmRequest, msg: msg})
}

// Close posts a Close command; the loop exits once it is processed.
func (h Handle[M, E]) Close() error {
	return h.inner.mailbox.Send(clientMessage[M]{kind: cmClose})
}

// RequestOpt sends a correlated request and decodes the response's
// payload into R, returning (zero, false, nil) if the response carries
// no payload. Uses the builder's default timeout.
func RequestOpt[M message.Message[M], E any, R any](ctx context.Context, h Handle[M, E], builder message.Builder[M], method string, params any) (R, bool, error) {
	return RequestTimeout[M, E, R](ctx, h, builder, method, params, h.inner.requestTimeout)
}

// Request is like RequestOpt but treats a response with no payload as
// ErrInvalidPayload.
func Request[M message.Message[M], E any, R any](ctx context.Context, h Handle[M, E], builder message.Builder[M], method string, params any) (R, error) {
	res, ok, err := RequestOpt[M, E, R](ctx, h, builder, method, params)
	if err != nil {
		var zero R
		return zero, err
	}
	if !ok {
		var zero R
		return zero, ErrInvalidPayload
	}
	return res, nil
}

// RequestTimeout sends a correlated request with an explicit timeout.
func RequestTimeout[M message.Message[M], E any, R any](ctx context.Context, h Handle[M, E], builder message.Builder[M], method string, params any, timeout time.Duration) (R, bool, error) {
	var zero R

	id, replyCh, err := h.sendRequest(builder, method, params)
	if err != nil {
		return zero, false, err
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case r, ok := <-replyCh:
		if !ok {
			return zero, false, ErrConnectionReset
		}
		if r.reset {
			return zero, false, ErrConnectionReset
		}
		if r.err != nil {
			desc := r.err.Kind.Description()
			if r.err.Description != nil {
				desc = *r.err.Description
			}
			return zero, false, &CallError{Kind: r.err.Kind, Description: desc}
		}
		raw, hasData := r.msg.ReadOptional()
		if !hasData {
			return zero, false, nil
		}
		if err := json.Unmarshal(raw, &zero); err != nil {
			return zero, false, err
		}
		return zero, true, nil

	case <-timer.C:
		_ = h.inner.mailbox.Send(clientMessage[M]{kind: cmCancel, id: id})
		return zero, false, ErrTimeout

	case <-ctx.Done():
		_ = h.inner.mailbox.Send(clientMessage[M]{kind: cmCancel, id: id})
		return zero, false, ctx.Err()
	}
}

func (h Handle[M, E]) sendRequest(builder message.Builder[M], method string, params any) (message.ID, <-chan reply[M], error) {
	n := h.inner.requests.Add(1) - 1
	id := message.IDFromCounter(n)

	msg, err := builder.NewRequest(id, method, params)
	if err != nil {
		return id, nil, err
	}

	replyCh := make(chan reply[M], 1)
	if err := h.inner.mailbox.Send(clientMessage[M]{
		kind:  cmRequest,
		id:    id,
		msg:   msg,
		reply: replyCh,
	}); err != nil {
		return id, nil, err
	}
	return id, replyCh, nil
}

// HandleRef is a non-owning reference to a running client loop: it can
// do everything a Handle can except affect the owned-instance count.
type HandleRef[M message.Message[M], E any] struct {
	Handle[M, E]
}
