package jsonlines_test

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crackcomm/net3/codec/jsonlines"
	"github.com/crackcomm/net3/message"
	"github.com/crackcomm/net3/message/compact"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	c := jsonlines.New[compact.Message]()
	msg, err := compact.Builder.NewRequest(message.NumID(1), "sum", []int{1, 2})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, c.Encode(&buf, msg))
	assert.True(t, bytes.HasSuffix(buf.Bytes(), []byte("\n")))

	got, err := c.Decode(bufio.NewReader(&buf))
	require.NoError(t, err)
	assert.Equal(t, msg.ID().String(), got.ID().String())
	assert.Equal(t, msg.Kind(), got.Kind())
}

func TestDecodeMultipleFramesSequentially(t *testing.T) {
	c := jsonlines.New[compact.Message]()
	first := compact.Builder.NewEmptyEvent("a")
	second := compact.Builder.NewEmptyEvent("b")

	var buf bytes.Buffer
	require.NoError(t, c.Encode(&buf, first))
	require.NoError(t, c.Encode(&buf, second))

	r := bufio.NewReader(&buf)
	got1, err := c.Decode(r)
	require.NoError(t, err)
	name1, _ := got1.Method()
	assert.Equal(t, "a", name1)

	got2, err := c.Decode(r)
	require.NoError(t, err)
	name2, _ := got2.Method()
	assert.Equal(t, "b", name2)
}
