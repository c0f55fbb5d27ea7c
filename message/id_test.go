package message

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func TestIDStringIdentity(t *testing.T) {
	// Str("5") and Num(5) must correlate as the same logical identity.
	assert.Equal(t, StrID("5").String(), NumID(5).String())
	assert.Equal(t, "null", NullID.String())
}

func TestIDIsSomeIsNone(t *testing.T) {
	assert.True(t, NullID.IsNone())
	assert.False(t, NullID.IsSome())
	assert.True(t, StrID("x").IsSome())
	assert.True(t, NumID(1).IsSome())
}

func TestIDJSONRoundTrip(t *testing.T) {
	cases := []ID{NullID, StrID("abc"), NumID(42)}
	for _, id := range cases {
		data, err := json.Marshal(id)
		require.NoError(t, err)

		var got ID
		require.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, id.String(), got.String())
	}
}

func TestIDMsgpackRoundTrip(t *testing.T) {
	cases := []ID{NullID, StrID("abc"), NumID(42)}
	for _, id := range cases {
		data, err := msgpack.Marshal(id)
		require.NoError(t, err)

		var got ID
		require.NoError(t, msgpack.Unmarshal(data, &got))
		assert.Equal(t, id.String(), got.String())
	}
}

func TestIDFromCounter(t *testing.T) {
	assert.Equal(t, "0", IDFromCounter(0).String())
	assert.Equal(t, "10", IDFromCounter(10).String())
}
