package jsonrpc_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crackcomm/net3/message"
	"github.com/crackcomm/net3/message/jsonrpc"
)

func withRPCError(id message.ID) jsonrpc.Message {
	return jsonrpc.Message{IDField: id}.WithError(message.NewError(message.MethodNotFound, nil))
}

func TestResolveKindTable(t *testing.T) {
	method := "sum"

	cases := []struct {
		name string
		msg  jsonrpc.Message
		want message.Kind
	}{
		{
			name: "id + method, no result/error -> request",
			msg:  jsonrpc.Message{IDField: message.NumID(1), MethodField: &method},
			want: message.Request,
		},
		{
			name: "id + result, no method/error -> response",
			msg:  jsonrpc.Message{IDField: message.NumID(1), ResultField: json.RawMessage(`3`)},
			want: message.Response,
		},
		{
			name: "id + method + result, no error -> response (stratum tolerance)",
			msg:  jsonrpc.Message{IDField: message.NumID(1), MethodField: &method, ResultField: json.RawMessage(`3`)},
			want: message.Response,
		},
		{
			name: "id + error, no result -> error response",
			msg:  withRPCError(message.NumID(1)),
			want: message.ErrorResponse,
		},
		{
			name: "no id + method -> event",
			msg:  jsonrpc.Message{MethodField: &method},
			want: message.Event,
		},
		{
			name: "no id, no method -> undefined",
			msg:  jsonrpc.Message{},
			want: message.Undefined,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, jsonrpc.ResolveKind(tc.msg))
		})
	}
}

func TestIDErrorResultAllSetIsUndefined(t *testing.T) {
	msg := withRPCError(message.NumID(1))
	msg.ResultField = json.RawMessage(`3`)
	assert.Equal(t, message.Undefined, jsonrpc.ResolveKind(msg))
}

func TestWithDataMethodVsResult(t *testing.T) {
	method := "sum"
	req := jsonrpc.Message{MethodField: &method}
	withParams, err := req.WithData([]int{1, 2})
	require.NoError(t, err)
	raw, ok := withParams.ReadOptional()
	require.True(t, ok)
	assert.JSONEq(t, "[1,2]", string(raw))

	resp := jsonrpc.Message{}
	withResult, err := resp.WithData(3)
	require.NoError(t, err)
	raw, ok = withResult.ReadOptional()
	require.True(t, ok)
	assert.JSONEq(t, "3", string(raw))
}

func TestJSONRoundTrip(t *testing.T) {
	msg, err := jsonrpc.Message{}.New().WithMethodName("sum").WithID(message.NumID(9)).WithData([]int{1, 2})
	require.NoError(t, err)

	data, err := json.Marshal(msg)
	require.NoError(t, err)

	var got jsonrpc.Message
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, msg.ID().String(), got.ID().String())
	assert.Equal(t, msg.Kind(), got.Kind())
}

func TestIntoError(t *testing.T) {
	msg := withRPCError(message.NumID(2))
	rpcErr, ok := msg.IntoError()
	require.True(t, ok)
	assert.Equal(t, message.MethodNotFound.Code(), rpcErr.Kind.Code())
}
