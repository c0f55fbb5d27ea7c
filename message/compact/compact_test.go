package compact_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crackcomm/net3/message"
	"github.com/crackcomm/net3/message/compact"
)

func TestBuilderNewEvent(t *testing.T) {
	msg, err := compact.Builder.NewEvent("tick", map[string]int{"n": 1})
	require.NoError(t, err)
	assert.Equal(t, message.Event, msg.Kind())
	name, ok := msg.Method()
	require.True(t, ok)
	assert.Equal(t, "tick", name)

	raw, ok := msg.ReadOptional()
	require.True(t, ok)
	var data map[string]int
	require.NoError(t, json.Unmarshal(raw, &data))
	assert.Equal(t, 1, data["n"])
}

func TestBuilderNewRequestAndResponse(t *testing.T) {
	id := message.NumID(1)
	req, err := compact.Builder.NewRequest(id, "sum", []int{1, 2})
	require.NoError(t, err)
	assert.Equal(t, message.Request, req.Kind())

	resp, err := compact.Builder.NewResponseTo(req, 3)
	require.NoError(t, err)
	assert.Equal(t, id.String(), resp.ID().String())
}

func TestBuilderNewErrorResponseTo(t *testing.T) {
	id := message.StrID("7")
	req := compact.Builder.NewEmptyRequest(id, "sum")
	errResp := compact.Builder.NewErrorResponseTo(req, message.NewError(message.MethodNotFound, nil))

	assert.Equal(t, message.ErrorResponse, errResp.Kind())
	assert.Equal(t, id.String(), errResp.ID().String())

	rpcErr, ok := errResp.IntoError()
	require.True(t, ok)
	assert.Equal(t, message.MethodNotFound.Code(), rpcErr.Kind.Code())
}

func TestMessageJSONOmitsNullID(t *testing.T) {
	msg := compact.Builder.NewEmptyEvent("ping")
	data, err := json.Marshal(msg)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	_, hasID := raw["id"]
	assert.False(t, hasID, "a Null id must be omitted entirely, not emitted as JSON null")
}

func TestMessageJSONRoundTrip(t *testing.T) {
	id := message.NumID(5)
	msg, err := compact.Builder.NewRequest(id, "sum", []int{1, 2, 3})
	require.NoError(t, err)

	data, err := json.Marshal(msg)
	require.NoError(t, err)

	var got compact.Message
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, msg.Kind(), got.Kind())
	assert.Equal(t, msg.ID().String(), got.ID().String())
	name, _ := msg.Method()
	gotName, _ := got.Method()
	assert.Equal(t, name, gotName)
}
