package pubsub_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crackcomm/net3/codec/jsonlines"
	"github.com/crackcomm/net3/message/compact"
	"github.com/crackcomm/net3/netchan"
	"github.com/crackcomm/net3/pubsub"
	"github.com/crackcomm/net3/rpcclient"
)

type noopUserHandler struct{}

func (noopUserHandler) HandleNotification(compact.Message) ([]compact.Message, error) {
	return nil, nil
}
func (noopUserHandler) HandleRequest(compact.Message) ([]compact.Message, error) { return nil, nil }
func (noopUserHandler) HandleInternalEvent(struct{}) ([]compact.Message, error) { return nil, nil }

func TestPublisherBroadcastReachesSubscribedConnection(t *testing.T) {
	builder := pubsub.NewBuilder[compact.Message, struct{}](compact.Builder)
	pub := builder.Publisher()
	go func() { _ = builder.Start() }()

	a, b := net.Pipe()
	codec := jsonlines.New[compact.Message]()
	clientCh, err := netchan.New[compact.Message](a, codec)
	require.NoError(t, err)
	peerCh, err := netchan.New[compact.Message](b, codec)
	require.NoError(t, err)

	registered := make(chan struct{})
	clientBuilder := rpcclient.NewBuilder[compact.Message, struct{}](nil).
		WithChannel(clientCh).
		WithHandlerBuilder(rpcclient.HandlerBuilderFunc[compact.Message, struct{}](
			func(rpcclient.Handle[compact.Message, struct{}]) (rpcclient.UserHandler[compact.Message, struct{}], error) {
				return noopUserHandler{}, nil
			})).
		WithInit(func(h rpcclient.Handle[compact.Message, struct{}]) error {
			builder.Register(h.Ref().Handle)
			close(registered)
			return nil
		})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = clientBuilder.Start(ctx) }()

	select {
	case <-registered:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for subscriber registration")
	}

	require.NoError(t, pub.Publish("news", map[string]string{"headline": "hi"}))

	done := make(chan compact.Message, 1)
	go func() {
		msg, err := peerCh.ReadMessage()
		if err == nil {
			done <- msg
		}
	}()

	select {
	case msg := <-done:
		name, ok := msg.Method()
		require.True(t, ok)
		assert.Equal(t, "news", name)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for broadcast message")
	}
}
