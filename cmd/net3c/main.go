// Command net3c is an example reconnecting client CLI: it dials a
// net3d-compatible server, automatically redialing on disconnect, and
// sends a single request before exiting. It demonstrates
// rpcclient.Builder's reconnect supervisor and the Request helper the
// way the teacher's internal/client/client.go demonstrates dialing the
// daemon's Unix socket and issuing one command per invocation.
package main

import (
	"context"
	"encoding/json"
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
	"github.com/crackcomm/net3/rpcclient"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:7790", "server address to dial")
	method := flag.String("method", "time", "request method name")
	params := flag.String("params", "", "request params, as a JSON literal (omit for no params)")
	timeout := flag.Duration("timeout", 3*time.Second, "request timeout")
	useMsgpack := flag.Bool("msgpack", false, "use the msgpack codec instead of jsonlines")
	verbose := flag.Bool("verbose", false, "enable debug-level logging")
	subscribe := flag.Bool("subscribe", false, "after the request, print broadcast events until interrupted")
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

	var paramsValue any
	if *params != "" {
		if err := json.Unmarshal([]byte(*params), &paramsValue); err != nil {
			fmt.Fprintf(os.Stderr, "net3c: invalid --params: %v\n", err)
			os.Exit(1)
		}
	}

	if err := run(*addr, c, *method, paramsValue, *timeout, *subscribe, logger); err != nil {
		fmt.Fprintf(os.Stderr, "net3c: %v\n", err)
		os.Exit(1)
	}
}

func run(addr string, c codec.Codec[compact.Message], method string, params any, timeout time.Duration, subscribe bool, logger zerolog.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	events := make(chan compact.Message, 16)

	b := rpcclient.NewBuilder[compact.Message, struct{}](c).
		WithReconnect(addr).
		WithCallTimeout(timeout).
		WithHandlerBuilder(rpcclient.HandlerBuilderFunc[compact.Message, struct{}](
			func(h rpcclient.Handle[compact.Message, struct{}]) (rpcclient.UserHandler[compact.Message, struct{}], error) {
				return subscriberHandler{events: events}, nil
			})).
		WithLogger(logger)

	handle := b.Background(ctx)
	defer handle.Release()

	result, err := rpcclient.Request[compact.Message, struct{}, json.RawMessage](ctx, handle, compact.Builder, method, params)
	if err != nil {
		return fmt.Errorf("request %s: %w", method, err)
	}
	fmt.Println(string(result))

	if !subscribe {
		return nil
	}

	logger.Info().Msg("subscribed, waiting for broadcast events (ctrl-c to exit)")
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg := <-events:
			name, _ := msg.Method()
			raw, _ := msg.ReadOptional()
			fmt.Printf("%s: %s\n", name, string(raw))
		}
	}
}

// subscriberHandler forwards every inbound notification to a channel
// for main's print loop, and otherwise participates minimally: it never
// answers server-initiated requests or reacts to internal events.
type subscriberHandler struct {
	events chan<- compact.Message
}

func (h subscriberHandler) HandleNotification(msg compact.Message) ([]compact.Message, error) {
	select {
	case h.events <- msg:
	default:
	}
	return nil, nil
}

func (subscriberHandler) HandleRequest(compact.Message) ([]compact.Message, error) {
	return nil, nil
}

func (subscriberHandler) HandleInternalEvent(struct{}) ([]compact.Message, error) {
	return nil, nil
}
