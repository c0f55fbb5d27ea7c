package rpcclient

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMailboxFIFOOrder(t *testing.T) {
	m := newMailbox[int]()
	defer m.Close()

	for i := 0; i < 5; i++ {
		require.NoError(t, m.Send(i))
	}

	for i := 0; i < 5; i++ {
		select {
		case got := <-m.Out():
			assert.Equal(t, i, got)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for item")
		}
	}
}

func TestMailboxCloseDrainsQueuedItems(t *testing.T) {
	m := newMailbox[int]()
	require.NoError(t, m.Send(1))
	require.NoError(t, m.Send(2))
	m.Close()

	var got []int
	for v := range m.Out() {
		got = append(got, v)
	}
	assert.Equal(t, []int{1, 2}, got)
}

func TestMailboxSendAfterCloseReturnsReset(t *testing.T) {
	m := newMailbox[int]()
	m.Close()
	for range m.Out() {
	}

	err := m.Send(1)
	assert.ErrorIs(t, err, ErrConnectionReset)
}

func TestMailboxAcquireGuardsSingleConsumer(t *testing.T) {
	m := newMailbox[int]()
	defer m.Close()

	release := m.Acquire()
	assert.Panics(t, func() { m.Acquire() })
	release()
	assert.NotPanics(t, func() { m.Acquire()() })
}
