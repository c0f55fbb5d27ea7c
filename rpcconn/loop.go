// Package rpcconn implements the loop core: the three-way select between
// the outbound mailbox (exposed by the handler), the framed socket, and
// an optional internal-event source.
//
// Grounded on rpc/conn/src/lib.rs and rpc/conn/handler/src/lib.rs in the
// original crackcomm/net3 workspace; Rust's `futures::select!` over
// fused streams translates directly to Go's native `select` over
// channels, including the "nil channel never fires" idiom standing in
// for an absent optional internal-event stream.
package rpcconn

import (
	"errors"
	"fmt"
	"io"

	"github.com/crackcomm/net3/message"
	"github.com/rs/zerolog"
)

// Sentinel exit reasons, mirroring the original's use of
// io::ErrorKind::{ConnectionAborted,ConnectionReset,InvalidData}.
var (
	// ErrConnectionAborted is returned when the outbound mailbox or the
	// internal-event source is closed (the handler/producer side is gone).
	ErrConnectionAborted = errors.New("rpcconn: connection aborted")
	// ErrConnectionReset is returned when the socket's inbound stream ends.
	ErrConnectionReset = errors.New("rpcconn: connection reset")
	// ErrInvalidData is returned for an Undefined message kind; fatal to
	// the loop. A decode failure also ends the loop, but Run returns the
	// codec's own error unchanged, not wrapped in ErrInvalidData.
	ErrInvalidData = errors.New("rpcconn: invalid data")
)

// OutboundItem is one item yielded by a Handler's outbound stream: a
// message to write to the wire, or a fatal error that ends the loop.
type OutboundItem[M any] struct {
	Msg M
	Err error
}

// Handler is user code wired into the loop core: it exposes its own
// outbound stream (the mailbox, conceptually) and reacts to inbound
// messages and internal events by returning zero or more reply messages
// to write back to the channel.
type Handler[M message.Message[M], E any] interface {
	// Outbound returns the channel the loop drains for messages this
	// handler wants written to the wire. Closing it ends the loop with
	// ErrConnectionAborted.
	Outbound() <-chan OutboundItem[M]
	// HandleRemoteMessage reacts to one inbound message, returning zero
	// or more reply messages.
	HandleRemoteMessage(msg M) ([]M, error)
	// HandleInternalEvent reacts to one internal event, returning zero
	// or more reply messages.
	HandleInternalEvent(event E) ([]M, error)
}

// channel is the minimal surface Run needs from a framed transport —
// satisfied by *netchan.Channel[M], kept as an interface here so tests
// can drive the loop over an in-memory fake.
type channel[M message.Message[M]] interface {
	ReadMessage() (M, error)
	WriteMessage(msg M) error
}

// Run executes the loop core until a fatal error or the handler's
// mailbox/event source closes. At most one of the three sources is
// processed at a time; replies are fully written before the next source
// is polled, matching the serialization requirement in SPEC_FULL.md §7.3.
func Run[M message.Message[M], E any](ch channel[M], handler Handler[M, E], events <-chan E, logger zerolog.Logger) error {
	inbound := startReader[M](ch)

	for {
		select {
		case item, ok := <-handler.Outbound():
			if !ok {
				logger.Trace().Msg("connection aborted: outbound mailbox closed")
				return ErrConnectionAborted
			}
			if item.Err != nil {
				return item.Err
			}
			if err := ch.WriteMessage(item.Msg); err != nil {
				return err
			}

		case item, ok := <-inbound:
			if !ok {
				logger.Trace().Msg("connection reset: channel stream closed")
				return ErrConnectionReset
			}
			if item.err != nil {
				return item.err
			}
			if item.msg.Kind() == message.Undefined {
				return fmt.Errorf("%w: undefined message kind", ErrInvalidData)
			}
			replies, err := handler.HandleRemoteMessage(item.msg)
			if err != nil {
				return err
			}
			for _, reply := range replies {
				if err := ch.WriteMessage(reply); err != nil {
					return err
				}
			}

		case event, ok := <-events:
			if !ok {
				logger.Trace().Msg("connection aborted: event source closed")
				return ErrConnectionAborted
			}
			replies, err := handler.HandleInternalEvent(event)
			if err != nil {
				return err
			}
			for _, reply := range replies {
				if err := ch.WriteMessage(reply); err != nil {
					return err
				}
			}
		}
	}
}

type inboundItem[M any] struct {
	msg M
	err error
}

// startReader spawns the single goroutine that reads frames off the
// channel, feeding Run's select loop. It sends at most one error before
// closing the returned channel, since a read error means the underlying
// connection is no longer usable. A clean io.EOF is not sent as an item
// at all — it closes out directly, so Run's closed-channel branch is
// what reports it, as ErrConnectionReset rather than raw io.EOF.
func startReader[M message.Message[M]](ch channel[M]) <-chan inboundItem[M] {
	out := make(chan inboundItem[M])
	go func() {
		defer close(out)
		for {
			msg, err := ch.ReadMessage()
			if err != nil {
				if errors.Is(err, io.EOF) {
					return
				}
				out <- inboundItem[M]{err: err}
				return
			}
			out <- inboundItem[M]{msg: msg}
		}
	}()
	return out
}
