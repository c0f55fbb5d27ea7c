// Package rpcserver implements the accept loop: binding a listener and
// running one rpcclient.Builder-driven connection loop per accepted
// socket, with a single HandlerBuilder shared (behind a mutex) across
// every connection — peers are symmetric, so the server reuses the
// entire client stack per connection rather than a bespoke dispatcher.
//
// Grounded on rpc/server/src/lib.rs's ServerBuilder/Server/RefBuilder.
package rpcserver

import (
	"context"
	"net"
	"sync"
	"sync/atomic"

	"github.com/crackcomm/net3/codec"
	"github.com/crackcomm/net3/message"
	"github.com/crackcomm/net3/netchan"
	"github.com/crackcomm/net3/rpcclient"
	"github.com/rs/zerolog"
)

// refBuilder guards a shared HandlerBuilder with a mutex so the same
// user-supplied factory can build a fresh handler for every accepted
// connection without requiring it to be reentrant. Mirrors
// rpc/server/src/lib.rs's RefBuilder<B>.
type refBuilder[M message.Message[M], E any] struct {
	mu    sync.Mutex
	inner rpcclient.HandlerBuilder[M, E]
}

func (r *refBuilder[M, E]) Build(h rpcclient.Handle[M, E]) (rpcclient.UserHandler[M, E], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.inner.Build(h)
}

// Server accepts TCP connections on a bound listener and services each
// with its own client loop (rpcclient.Builder), all sharing one
// HandlerBuilder. Per-connection client ids are assigned from a
// monotonic counter starting at zero, matching the original's
// `connections` counter threaded into `with_id`.
type Server[M message.Message[M], E any] struct {
	listener net.Listener
	builder  *refBuilder[M, E]
	codec    codec.Codec[M]
	logger   zerolog.Logger

	nextID    atomic.Uint64
	connected atomic.Int64
}

// Bind listens on addr and returns a Server ready to Start.
func Bind[M message.Message[M], E any](addr string, c codec.Codec[M], hb rpcclient.HandlerBuilder[M, E], logger zerolog.Logger) (*Server[M, E], error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server[M, E]{
		listener: ln,
		builder:  &refBuilder[M, E]{inner: hb},
		codec:    c,
		logger:   logger,
	}, nil
}

// Addr returns the listener's bound address.
func (s *Server[M, E]) Addr() net.Addr { return s.listener.Addr() }

// ConnectionCount returns the number of currently connected peers.
func (s *Server[M, E]) ConnectionCount() int64 { return s.connected.Load() }

// Start accepts connections until the listener is closed or ctx is
// canceled, running one client loop per connection in its own
// goroutine. Returns the listener's terminal Accept error (nil if ctx
// cancellation triggered a clean shutdown).
func (s *Server[M, E]) Start(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		_ = s.listener.Close()
	}()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		clientID := s.nextID.Add(1) - 1
		connected := s.connected.Add(1)
		s.logger.Trace().
			Uint64("client_id", clientID).
			Str("peer", conn.RemoteAddr().String()).
			Int64("connected", connected).
			Msg("connection accepted")

		ch, err := netchan.New[M](conn, s.codec)
		if err != nil {
			_ = conn.Close()
			s.connected.Add(-1)
			continue
		}

		go s.serve(ctx, clientID, ch)
	}
}

func (s *Server[M, E]) serve(ctx context.Context, clientID uint64, ch *netchan.Channel[M]) {
	defer func() {
		connected := s.connected.Add(-1)
		s.logger.Debug().Uint64("client_id", clientID).Int64("connected", connected).Msg("connection closed")
	}()

	b := rpcclient.NewBuilder[M, E](s.codec).
		WithID(clientID).
		WithChannel(ch).
		WithHandlerBuilder(s.builder).
		WithLogger(s.logger)

	if err := b.Start(ctx); err != nil {
		s.logger.Trace().Err(err).Uint64("client_id", clientID).Msg("connection error")
	}
}

// Background starts the accept loop in a goroutine, surfacing its
// terminal error over the returned channel (buffered, sent at most
// once).
func (s *Server[M, E]) Background(ctx context.Context) <-chan error {
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()
	return done
}

// Close closes the listener, unblocking Start's Accept loop.
func (s *Server[M, E]) Close() error { return s.listener.Close() }
