package rpcconn_test

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crackcomm/net3/message"
	"github.com/crackcomm/net3/message/compact"
	"github.com/crackcomm/net3/rpcconn"
)

// fakeChannel is an in-memory channel[compact.Message] stand-in: it
// satisfies rpcconn's unexported channel interface structurally.
type fakeChannel struct {
	inbound  chan compact.Message
	inErr    chan error
	outbound chan compact.Message
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{
		inbound:  make(chan compact.Message, 8),
		inErr:    make(chan error, 1),
		outbound: make(chan compact.Message, 8),
	}
}

func (f *fakeChannel) ReadMessage() (compact.Message, error) {
	select {
	case msg := <-f.inbound:
		return msg, nil
	case err := <-f.inErr:
		var zero compact.Message
		return zero, err
	}
}

func (f *fakeChannel) WriteMessage(msg compact.Message) error {
	f.outbound <- msg
	return nil
}

type echoHandler struct {
	out chan rpcconn.OutboundItem[compact.Message]
}

func (h *echoHandler) Outbound() <-chan rpcconn.OutboundItem[compact.Message] { return h.out }

func (h *echoHandler) HandleRemoteMessage(msg compact.Message) ([]compact.Message, error) {
	name, _ := msg.Method()
	reply, err := compact.Builder.NewResponseTo(msg, name+"-ack")
	if err != nil {
		return nil, err
	}
	return []compact.Message{reply}, nil
}

func (h *echoHandler) HandleInternalEvent(event string) ([]compact.Message, error) {
	ev := compact.Builder.NewEmptyEvent(event)
	return []compact.Message{ev}, nil
}

func TestRunEchoesRemoteRequest(t *testing.T) {
	ch := newFakeChannel()
	handler := &echoHandler{out: make(chan rpcconn.OutboundItem[compact.Message])}
	done := make(chan error, 1)
	go func() {
		done <- rpcconn.Run[compact.Message, string](ch, handler, nil, zerolog.Nop())
	}()

	req := compact.Builder.NewEmptyRequest(message.NumID(1), "ping")
	ch.inbound <- req

	select {
	case reply := <-ch.outbound:
		name, _ := reply.Method()
		assert.Equal(t, "", name)
		assert.Equal(t, message.Response, reply.Kind())
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for echoed reply")
	}

	ch.inErr <- errors.New("socket closed")
	select {
	case err := <-done:
		require.Error(t, err)
		assert.NotErrorIs(t, err, rpcconn.ErrConnectionReset)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for Run to exit")
	}
}

func TestRunExitsWithConnectionResetOnCleanEOF(t *testing.T) {
	ch := newFakeChannel()
	handler := &echoHandler{out: make(chan rpcconn.OutboundItem[compact.Message])}
	done := make(chan error, 1)
	go func() {
		done <- rpcconn.Run[compact.Message, string](ch, handler, nil, zerolog.Nop())
	}()

	ch.inErr <- io.EOF
	select {
	case err := <-done:
		assert.ErrorIs(t, err, rpcconn.ErrConnectionReset)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for Run to exit")
	}
}

func TestRunExitsOnOutboundClose(t *testing.T) {
	ch := newFakeChannel()
	out := make(chan rpcconn.OutboundItem[compact.Message])
	handler := &echoHandler{out: out}
	close(out)

	err := rpcconn.Run[compact.Message, string](ch, handler, nil, zerolog.Nop())
	assert.ErrorIs(t, err, rpcconn.ErrConnectionAborted)
}

func TestRunDispatchesInternalEvents(t *testing.T) {
	ch := newFakeChannel()
	handler := &echoHandler{out: make(chan rpcconn.OutboundItem[compact.Message])}
	events := make(chan string, 1)
	done := make(chan error, 1)
	go func() {
		done <- rpcconn.Run[compact.Message, string](ch, handler, events, zerolog.Nop())
	}()

	events <- "tick"
	select {
	case reply := <-ch.outbound:
		name, _ := reply.Method()
		assert.Equal(t, "tick", name)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for internal-event reply")
	}

	close(events)
	select {
	case err := <-done:
		assert.ErrorIs(t, err, rpcconn.ErrConnectionAborted)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for Run to exit")
	}
}
