// Package rpcclient implements the client side of the framework: the
// correlator (ClientHandler), the reference-counted Handle, the
// Builder and reconnect supervisor, and the small builder-composition
// helpers (common.go) ported from the original's rpc/client crate.
package rpcclient

import (
	"fmt"
	"sync"

	"github.com/crackcomm/net3/message"
	"github.com/crackcomm/net3/rpcconn"
	"github.com/rs/zerolog"
)

// UserHandler is the application-provided callback set: notifications,
// correlated requests from the remote peer, and internal events. This
// is the Go realization of rpc/client/src/traits.rs's `Handler` trait,
// split from the correlator (ClientHandler) the same way the original
// separates `Handler` (user code) from `ClientHandler` (the generic
// dispatcher wrapping it).
type UserHandler[M message.Message[M], E any] interface {
	// HandleNotification reacts to an inbound Event message.
	HandleNotification(msg M) ([]M, error)
	// HandleRequest reacts to an inbound Request message (the remote
	// peer correlates the reply itself; this framework never tracks
	// server-initiated pending requests, per spec.md's Non-goals).
	HandleRequest(msg M) ([]M, error)
	// HandleInternalEvent reacts to one internal event.
	HandleInternalEvent(event E) ([]M, error)
}

// ClientHandler is the correlator: it owns the pending-request map and
// drains the shared mailbox, producing the Outbound() stream rpcconn.Run
// consumes, and dispatches inbound messages by kind (notification vs.
// request vs. correlated response).
//
// Grounded on rpc/client/src/handler.rs's ClientHandler<H>.
type ClientHandler[M message.Message[M], E any] struct {
	mbox    *mailbox[clientMessage[M]]
	user    UserHandler[M, E]
	logger  zerolog.Logger
	out     chan rpcconn.OutboundItem[M]
	release func()

	mu      sync.Mutex
	pending map[string]chan<- reply[M]
}

// newClientHandler constructs the correlator over a given mailbox for
// one loop instance. Acquires the mailbox's single-consumer guard; the
// caller must arrange for the returned handler to be used by exactly
// one rpcconn.Run invocation.
func newClientHandler[M message.Message[M], E any](mbox *mailbox[clientMessage[M]], user UserHandler[M, E], logger zerolog.Logger) *ClientHandler[M, E] {
	h := &ClientHandler[M, E]{
		mbox:    mbox,
		user:    user,
		logger:  logger,
		out:     make(chan rpcconn.OutboundItem[M]),
		pending: make(map[string]chan<- reply[M]),
		release: mbox.Acquire(),
	}
	go h.pump()
	return h
}

// Outbound implements rpcconn.Handler.
func (h *ClientHandler[M, E]) Outbound() <-chan rpcconn.OutboundItem[M] { return h.out }

// close releases the mailbox guard and fails all pending requests with
// a reset error — called once the loop instance exits, per spec.md's
// "the pending-map belongs to one loop instance; on exit, walk all
// entries and fail their slots with reset."
func (h *ClientHandler[M, E]) close() {
	h.release()
	h.mu.Lock()
	pending := h.pending
	h.pending = make(map[string]chan<- reply[M])
	h.mu.Unlock()
	for _, slot := range pending {
		trySendReply(slot, reply[M]{reset: true})
	}
}

func trySendReply[M any](slot chan<- reply[M], r reply[M]) {
	defer func() { recover() }()
	select {
	case slot <- r:
	default:
	}
}

// pump drains the mailbox, translating client messages into the
// outbound stream rpcconn.Run writes to the wire, and maintaining the
// pending-request map. The pending-map insert for a Request happens
// here, before the item is handed to Outbound() (and hence before
// rpcconn.Run writes it to the wire) — the ordering spec.md's §4.4
// requires to avoid a race against an immediate response.
func (h *ClientHandler[M, E]) pump() {
	defer close(h.out)
	for item := range h.mbox.Out() {
		switch item.kind {
		case cmClose:
			h.out <- rpcconn.OutboundItem[M]{Err: rpcconn.ErrConnectionAborted}
			return
		case cmCancel:
			h.mu.Lock()
			delete(h.pending, item.id.String())
			h.mu.Unlock()
		case cmRequest:
			if item.reply != nil {
				h.mu.Lock()
				h.pending[item.msg.ID().String()] = item.reply
				h.mu.Unlock()
			}
			h.out <- rpcconn.OutboundItem[M]{Msg: item.msg}
		}
	}
}

// HandleRemoteMessage implements rpcconn.Handler: dispatch by kind.
func (h *ClientHandler[M, E]) HandleRemoteMessage(msg M) ([]M, error) {
	switch msg.Kind() {
	case message.Event:
		return h.user.HandleNotification(msg)
	case message.Request:
		return h.user.HandleRequest(msg)
	case message.Response:
		h.deliver(msg.ID(), reply[M]{msg: msg})
		return nil, nil
	case message.ErrorResponse:
		rpcErr, ok := msg.IntoError()
		if !ok {
			return nil, fmt.Errorf("%w: error response with no error payload", rpcconn.ErrInvalidData)
		}
		h.deliver(msg.ID(), reply[M]{err: &rpcErr})
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: undefined message kind", rpcconn.ErrInvalidData)
	}
}

// HandleInternalEvent implements rpcconn.Handler.
func (h *ClientHandler[M, E]) HandleInternalEvent(event E) ([]M, error) {
	return h.user.HandleInternalEvent(event)
}

// deliver routes an inbound response to its pending slot, or logs and
// drops it (it arrived after cancellation, or for an unknown id).
func (h *ClientHandler[M, E]) deliver(id message.ID, r reply[M]) {
	h.mu.Lock()
	slot, ok := h.pending[id.String()]
	if ok {
		delete(h.pending, id.String())
	}
	h.mu.Unlock()
	if !ok {
		h.logger.Warn().Str("id", id.String()).Msg("response handler not found, dropping")
		return
	}
	trySendReply(slot, r)
}
