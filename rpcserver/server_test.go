package rpcserver_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crackcomm/net3/codec/jsonlines"
	"github.com/crackcomm/net3/message"
	"github.com/crackcomm/net3/message/compact"
	"github.com/crackcomm/net3/netchan"
	"github.com/crackcomm/net3/rpcclient"
	"github.com/crackcomm/net3/rpcserver"
)

type ackHandler struct{}

func (ackHandler) HandleNotification(compact.Message) ([]compact.Message, error) { return nil, nil }

func (ackHandler) HandleRequest(msg compact.Message) ([]compact.Message, error) {
	reply, err := compact.Builder.NewResponseTo(msg, "pong")
	if err != nil {
		return nil, err
	}
	return []compact.Message{reply}, nil
}

func (ackHandler) HandleInternalEvent(struct{}) ([]compact.Message, error) { return nil, nil }

func TestServerAcceptsAndAnswersRequests(t *testing.T) {
	codec := jsonlines.New[compact.Message]()
	srv, err := rpcserver.Bind[compact.Message, struct{}](
		"127.0.0.1:0", codec,
		rpcclient.HandlerBuilderFunc[compact.Message, struct{}](
			func(rpcclient.Handle[compact.Message, struct{}]) (rpcclient.UserHandler[compact.Message, struct{}], error) {
				return ackHandler{}, nil
			}),
		zerolog.Nop())
	require.NoError(t, err)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = srv.Start(ctx) }()

	conn, err := netchan.Connect[compact.Message](ctx, srv.Addr().String(), time.Second, codec)
	require.NoError(t, err)
	defer conn.Close()

	req := compact.Builder.NewEmptyRequest(message.NullID, "ping")
	require.NoError(t, conn.WriteMessage(req))

	reply, err := conn.ReadMessage()
	require.NoError(t, err)
	raw, ok := reply.ReadOptional()
	require.True(t, ok)
	assert.JSONEq(t, `"pong"`, string(raw))

	assert.Eventually(t, func() bool { return srv.ConnectionCount() >= 1 }, time.Second, 10*time.Millisecond)
}
