package rpcclient

import (
	"context"
	"time"

	"github.com/crackcomm/net3/codec"
	"github.com/crackcomm/net3/message"
	"github.com/crackcomm/net3/netchan"
	"github.com/crackcomm/net3/rpcconn"
	"github.com/rs/zerolog"
)

// defaultRequestTimeout and defaultReconnectInterval match the
// original's Builder::new() defaults (3s / 100ms).
const (
	defaultRequestTimeout    = 3 * time.Second
	defaultReconnectInterval = 100 * time.Millisecond
)

// Builder assembles a client loop: either a one-shot run over an
// already-connected Channel, or a reconnect supervisor that redials an
// address forever while at least one owned Handle exists.
//
// Grounded on rpc/client/src/builder.rs's Builder<C, B>. Rust consumes
// `self` by value in start()/start_loop_reconnect(); Go has no move
// semantics, so callers must simply not reuse a Builder after calling
// Start or Background, the same "single use" contract expressed as a
// doc comment instead of the type system.
type Builder[M message.Message[M], E any] struct {
	state *handleState[M, E]

	channel *netchan.Channel[M]
	codec   codec.Codec[M]
	addr    string

	reconnectInterval time.Duration
	handlerBuilder    HandlerBuilder[M, E]
	initializers      []Initializer[M, E]
	logger            zerolog.Logger
}

// NewBuilder returns a Builder with the original's documented defaults:
// a 3s default request timeout and a 100ms reconnect interval. Codec is
// required for any reconnect (it frames every dialed socket).
func NewBuilder[M message.Message[M], E any](c codec.Codec[M]) *Builder[M, E] {
	return &Builder[M, E]{
		state: &handleState[M, E]{
			events:         newMailbox[E](),
			mailbox:        newMailbox[clientMessage[M]](),
			requestTimeout: defaultRequestTimeout,
		},
		codec:             c,
		reconnectInterval: defaultReconnectInterval,
		logger:            discardLogger,
	}
}

// WithID sets the client id reported by Handle.ClientID.
func (b *Builder[M, E]) WithID(id uint64) *Builder[M, E] {
	b.state.clientID = &id
	return b
}

// WithChannel sets an already-connected channel for a one-shot Start.
func (b *Builder[M, E]) WithChannel(ch *netchan.Channel[M]) *Builder[M, E] {
	b.channel = ch
	return b
}

// WithReconnect configures Start/Background to dial addr and
// automatically redial it on every connection error, until the last
// owned Handle is released.
func (b *Builder[M, E]) WithReconnect(addr string) *Builder[M, E] {
	b.addr = addr
	return b
}

// WithCallTimeout overrides the default request timeout applied by
// Request/RequestOpt (RequestTimeout always takes an explicit value).
func (b *Builder[M, E]) WithCallTimeout(timeout time.Duration) *Builder[M, E] {
	b.state.requestTimeout = timeout
	return b
}

// WithReconnectInterval overrides the delay between failed connection
// attempts in the reconnect supervisor.
func (b *Builder[M, E]) WithReconnectInterval(interval time.Duration) *Builder[M, E] {
	b.reconnectInterval = interval
	return b
}

// WithHandlerBuilder sets the per-connection handler factory. Required
// before Start or Background.
func (b *Builder[M, E]) WithHandlerBuilder(hb HandlerBuilder[M, E]) *Builder[M, E] {
	b.handlerBuilder = hb
	return b
}

// WithInit appends a connection initializer, run once per connection
// (including every reconnect). In a one-shot Start the initializers run
// before the handler is built; under the reconnect supervisor they run
// in a separate goroutine, concurrently with the connection loop.
func (b *Builder[M, E]) WithInit(init Initializer[M, E]) *Builder[M, E] {
	b.initializers = append(b.initializers, init)
	return b
}

// WithLogger overrides the builder's zerolog.Logger, propagated to the
// loop core and the reconnect supervisor's trace/debug lines.
func (b *Builder[M, E]) WithLogger(logger zerolog.Logger) *Builder[M, E] {
	b.logger = logger
	return b
}

// WithNotifications wires a Notifications registry as the builder's
// handler: every connection attempt gets a fresh NotificationHandler
// sharing the same registry, mirroring Builder::notify in the original.
func (b *Builder[M, E]) WithNotifications(n *Notifications[M]) *Builder[M, E] {
	b.handlerBuilder = DefaultBuilder[M, E]{
		New: func() UserHandler[M, E] { return NotificationHandler[M, E]{Notifications: n} },
	}
	return b
}

// Handle returns a new owned Handle sharing this builder's state. Call
// it before Start/Background to retain a handle you can send requests
// through once the loop is running.
func (b *Builder[M, E]) Handle() Handle[M, E] {
	return newHandle(b.state, true)
}

// Start runs the client loop, blocking until it ends. With a reconnect
// address configured it runs the reconnect supervisor (never returns
// except on ctx cancellation, an empty handle count, or a HandlerBuilder
// error); otherwise it
// runs a single connection loop over the configured Channel.
func (b *Builder[M, E]) Start(ctx context.Context) error {
	if b.handlerBuilder == nil {
		return ErrHandlerBuilderNotSet
	}
	if b.addr != "" {
		return b.startReconnect(ctx)
	}
	return b.startOnce(ctx)
}

// Background spawns Start in a goroutine and returns an owned Handle
// immediately, detached from the loop's lifetime — the loop keeps
// running until every owned Handle is released. Handle.Close ends the
// current connection loop; under the reconnect supervisor the address
// is then redialed.
func (b *Builder[M, E]) Background(ctx context.Context) Handle[M, E] {
	handle := b.Handle()
	go func() {
		if err := b.Start(ctx); err != nil {
			b.logger.Debug().Err(err).Msg("client loop exited")
		}
	}()
	return handle
}

func (b *Builder[M, E]) startOnce(ctx context.Context) error {
	if b.channel == nil {
		return ErrChannelNotSet
	}
	// The loop's own handle is non-owning, so releasing the last owned
	// Handle closes the mailbox and ends the loop. The channel is used
	// once, so the mailbox is closed when the loop exits.
	handle := newHandle(b.state, false)
	defer b.state.mailbox.Close()

	for _, init := range b.initializers {
		if err := init(handle); err != nil {
			return err
		}
	}
	user, err := b.handlerBuilder.Build(handle)
	if err != nil {
		return err
	}
	ch := newClientHandler[M, E](b.state.mailbox, user, b.logger)
	defer ch.close()
	return rpcconn.Run[M, E](b.channel, ch, b.state.events.Out(), b.logger)
}

func (b *Builder[M, E]) startReconnect(ctx context.Context) error {
	if b.addr == "" {
		return ErrAddressNotSet
	}
	// Non-owning, so the instance check below sees only callers' handles.
	handle := newHandle(b.state, false)

	for {
		if b.state.instances.Load() == 0 {
			b.logger.Debug().Str("addr", b.addr).Msg("no more client handles, stopping reconnect loop")
			return nil
		}

		conn, err := netchan.ConnectInfinite[M](ctx, b.addr, b.reconnectInterval, b.codec, b.logger)
		if err != nil {
			return err
		}

		initHandle := handle.Clone()
		go func(h Handle[M, E]) {
			defer h.Release()
			for _, init := range b.initializers {
				if err := init(h); err != nil {
					_ = h.Close()
					return
				}
			}
		}(initHandle)

		user, err := b.handlerBuilder.Build(handle)
		if err != nil {
			_ = conn.Close()
			return err
		}
		ch := newClientHandler[M, E](b.state.mailbox, user, b.logger)
		runErr := rpcconn.Run[M, E](conn, ch, b.state.events.Out(), b.logger)
		ch.close()
		_ = conn.Close()

		if runErr != nil {
			b.logger.Trace().Err(runErr).Str("addr", b.addr).Msg("connection error, reconnecting")
		}
	}
}
