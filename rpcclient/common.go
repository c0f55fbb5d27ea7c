package rpcclient

import (
	"github.com/crackcomm/net3/message"
	"github.com/rs/zerolog"
)

// DefaultBuilder builds a fresh UserHandler on every connection attempt
// by calling New, grounded on rpc/client/src/common.rs's
// DefaultBuilder<H>. Go has no "Default" trait, so the New factory
// closure stands in for it.
type DefaultBuilder[M message.Message[M], E any] struct {
	New func() UserHandler[M, E]
}

// Build implements HandlerBuilder.
func (b DefaultBuilder[M, E]) Build(Handle[M, E]) (UserHandler[M, E], error) {
	return b.New(), nil
}

// CloneBuilder hands out copies of a prototype handler on every
// reconnect, via a caller-supplied clone function (Go has no generic
// Clone trait), pairing each copy with the connection's own Handle so
// the clone can reach the loop that owns it — mirroring
// rpc/client/src/common.rs's CloneBuilder<H>/ClonedHandler<H>.
type CloneBuilder[M message.Message[M], E any] struct {
	Prototype UserHandler[M, E]
	Clone     func(UserHandler[M, E], Handle[M, E]) UserHandler[M, E]
}

// Build implements HandlerBuilder.
func (b CloneBuilder[M, E]) Build(h Handle[M, E]) (UserHandler[M, E], error) {
	return b.Clone(b.Prototype, h), nil
}

// TakeBuilder hands out a single handler value exactly once; reusing it
// across a reconnect is a programming error and panics, matching the
// original's documented "should not generally be used" TakeBuilder.
type TakeBuilder[M message.Message[M], E any] struct {
	handler UserHandler[M, E]
	taken   bool
}

// NewTakeBuilder wraps handler for single use.
func NewTakeBuilder[M message.Message[M], E any](handler UserHandler[M, E]) *TakeBuilder[M, E] {
	return &TakeBuilder[M, E]{handler: handler}
}

// Build implements HandlerBuilder.
func (b *TakeBuilder[M, E]) Build(Handle[M, E]) (UserHandler[M, E], error) {
	if b.taken {
		panic("rpcclient: tried to reuse TakeBuilder")
	}
	b.taken = true
	return b.handler, nil
}

// NoopHandler reacts to nothing: every callback returns no replies and
// no error. Useful as a base to embed, or standalone for connections
// that only ever send (never receive), per common.rs's NoopHandler.
type NoopHandler[M message.Message[M], E any] struct{}

// HandleNotification implements UserHandler.
func (NoopHandler[M, E]) HandleNotification(M) ([]M, error) { return nil, nil }

// HandleRequest implements UserHandler.
func (NoopHandler[M, E]) HandleRequest(M) ([]M, error) { return nil, nil }

// HandleInternalEvent implements UserHandler.
func (NoopHandler[M, E]) HandleInternalEvent(E) ([]M, error) { return nil, nil }

// discardLogger is the no-op logger used when a Builder is
// constructed without an explicit one.
var discardLogger = zerolog.Nop()
