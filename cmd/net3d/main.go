// Command net3d is an example daemon binary: it binds an rpcserver.Server
// over a configurable codec, wires a pubsub.Builder so every accepted
// connection is auto-subscribed to a broadcast channel, and answers a
// handful of demo requests ("time", default echo). It exists to
// demonstrate the ambient stack (zerolog, flag-based config,
// signal-driven shutdown) wired end to end, the way the teacher's own
// main.go wires internal/daemon and internal/client together.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/crackcomm/net3/codec"
	"github.com/crackcomm/net3/codec/jsonlines"
	"github.com/crackcomm/net3/codec/msgpack"
	"github.com/crackcomm/net3/message/compact"
	"github.com/crackcomm/net3/pubsub"
	"github.com/crackcomm/net3/rpcclient"
	"github.com/crackcomm/net3/rpcserver"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:7790", "address to bind")
	useMsgpack := flag.Bool("msgpack", false, "use the msgpack codec instead of jsonlines")
	heartbeat := flag.Duration("heartbeat", 5*time.Second, "broadcast interval for the demo heartbeat event")
	verbose := flag.Bool("verbose", false, "enable debug-level logging")
	flag.Parse()

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).
		With().Timestamp().Logger()

	var c codec.Codec[compact.Message]
	if *useMsgpack {
		c = msgpack.New[compact.Message]()
	} else {
		c = jsonlines.New[compact.Message]()
	}

	if err := run(*addr, c, *heartbeat, logger); err != nil {
		fmt.Fprintf(os.Stderr, "net3d: %v\n", err)
		os.Exit(1)
	}
}

func run(addr string, c codec.Codec[compact.Message], heartbeatInterval time.Duration, logger zerolog.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	broadcast := pubsub.NewBuilder[compact.Message, struct{}](compact.Builder)
	pub := broadcast.Publisher()
	go func() {
		if err := broadcast.Start(); err != nil {
			logger.Debug().Err(err).Msg("publisher loop exited")
		}
	}()

	handlerBuilder := rpcclient.HandlerBuilderFunc[compact.Message, struct{}](
		func(h rpcclient.Handle[compact.Message, struct{}]) (rpcclient.UserHandler[compact.Message, struct{}], error) {
			broadcast.Register(h.Ref().Handle)
			return demoHandler{}, nil
		})

	srv, err := rpcserver.Bind[compact.Message, struct{}](addr, c, handlerBuilder, logger)
	if err != nil {
		return fmt.Errorf("bind %s: %w", addr, err)
	}
	defer srv.Close()

	logger.Info().Str("addr", srv.Addr().String()).Msg("net3d listening")

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case t := <-ticker.C:
				if err := pub.Publish("heartbeat", t.Unix()); err != nil {
					logger.Warn().Err(err).Msg("heartbeat publish failed")
				}
			}
		}
	}()

	err = srv.Start(ctx)
	if ctx.Err() != nil {
		logger.Info().Msg("net3d shutting down")
		return nil
	}
	return err
}

// demoHandler answers a small set of example requests and ignores
// notifications/internal events, demonstrating UserHandler wiring
// without pulling in any real application domain.
type demoHandler struct{}

func (demoHandler) HandleNotification(compact.Message) ([]compact.Message, error) {
	return nil, nil
}

func (demoHandler) HandleRequest(msg compact.Message) ([]compact.Message, error) {
	method, _ := msg.Method()
	switch method {
	case "time":
		reply, err := compact.Builder.NewResponseTo(msg, time.Now().UTC().Format(time.RFC3339))
		if err != nil {
			return nil, err
		}
		return []compact.Message{reply}, nil
	default:
		raw, ok := msg.ReadOptional()
		var echoed any
		if ok {
			echoed = string(raw)
		}
		reply, err := compact.Builder.NewResponseTo(msg, echoed)
		if err != nil {
			return nil, err
		}
		return []compact.Message{reply}, nil
	}
}

func (demoHandler) HandleInternalEvent(struct{}) ([]compact.Message, error) {
	return nil, nil
}
