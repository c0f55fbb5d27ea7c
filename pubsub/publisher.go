// Package pubsub implements fan-out broadcast over a set of connected
// client handles: Publish encodes one Event message and forwards it to
// every still-reachable registered Handle, dropping any whose send
// fails (the peer disconnected).
//
// Grounded on rpc/pubsub/src/publisher/mod.rs's Publisher/Builder.
package pubsub

import (
	"github.com/crackcomm/net3/message"
	"github.com/crackcomm/net3/rpcclient"
)

// registration is the mailbox item used to register a new subscriber
// handle with the broadcast loop.
type registration[M message.Message[M], E any] struct {
	handle rpcclient.Handle[M, E]
}

// Publisher is the write-side handle application code uses to
// broadcast events; cheap to clone/share, since it only holds a channel
// send.
type Publisher[M message.Message[M]] struct {
	builder  message.Builder[M]
	messages chan<- M
}

// Publish builds an Event message named channel carrying data (nil for
// no payload) and forwards it to the broadcast loop.
func (p Publisher[M]) Publish(channel string, data any) error {
	msg, err := p.builder.NewEvent(channel, data)
	if err != nil {
		return err
	}
	p.messages <- msg
	return nil
}

// Builder runs the broadcast loop: a two-source select between
// incoming messages to fan out and incoming subscriber registrations,
// mirroring the original's `tokio::select!` over msg_receiver /
// hnd_receiver.
type Builder[M message.Message[M], E any] struct {
	registrations chan registration[M, E]
	messages      chan M
	msgBuilder    message.Builder[M]
}

// NewBuilder returns an empty publisher builder.
func NewBuilder[M message.Message[M], E any](msgBuilder message.Builder[M]) *Builder[M, E] {
	return &Builder[M, E]{
		registrations: make(chan registration[M, E]),
		messages:      make(chan M),
		msgBuilder:    msgBuilder,
	}
}

// Publisher returns a Publisher sharing this builder's broadcast
// channel.
func (b *Builder[M, E]) Publisher() Publisher[M] {
	return Publisher[M]{builder: b.msgBuilder, messages: b.messages}
}

// Register adds handle as a broadcast subscriber. Called once per
// connection, from an initializer (see ServerInitFn) or from a
// HandlerBuilder, so that each connection is subscribed automatically.
func (b *Builder[M, E]) Register(handle rpcclient.Handle[M, E]) {
	b.registrations <- registration[M, E]{handle: handle}
}

// ServerInitFn returns an rpcclient.Initializer that registers the
// connection's Handle as a broadcast subscriber, for use with
// rpcclient.Builder.WithInit, mirroring the original's server_init_fn.
// rpcserver.Server runs no initializers, so it is not applied to
// connections accepted by a Server.
func (b *Builder[M, E]) ServerInitFn() rpcclient.Initializer[M, E] {
	return func(h rpcclient.Handle[M, E]) error {
		b.Register(h.Ref().Handle)
		return nil
	}
}

// Start runs the broadcast loop until its message or registration
// channel is closed.
// Each broadcast message is sent to every registered handle; handles
// whose Send fails (the connection is gone) are evicted lazily on the
// next broadcast, matching the original's filter-on-send-failure
// eviction instead of explicit unregistration.
func (b *Builder[M, E]) Start() error {
	var handles []rpcclient.Handle[M, E]
	for {
		select {
		case msg, ok := <-b.messages:
			if !ok {
				return nil
			}
			live := handles[:0]
			for _, h := range handles {
				if err := h.Send(msg); err == nil {
					live = append(live, h)
				}
			}
			handles = live

		case reg, ok := <-b.registrations:
			if !ok {
				return nil
			}
			handles = append(handles, reg.handle)
		}
	}
}
