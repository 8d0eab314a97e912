package rawjson

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEach_KeepsRawBytes(t *testing.T) {
	var items []json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(`[{"id": "a", "x": 1}, {"id":"b"}]`), &items))

	type item struct {
		ID string `json:"id"`
	}
	var ids []string
	var raws []string
	err := Each(items, func(it item, raw json.RawMessage) {
		ids = append(ids, it.ID)
		raws = append(raws, string(raw))
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)
	assert.Equal(t, `{"id": "a", "x": 1}`, raws[0])
}

func TestEach_StopsOnBadElement(t *testing.T) {
	items := []json.RawMessage{json.RawMessage(`{"id":1}`)}
	err := Each(items, func(struct {
		ID string `json:"id"`
	}, json.RawMessage) {
	})
	assert.ErrorContains(t, err, "element 0")
}

func TestInt(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{`42`, 42},
		{`"42"`, 42},
		{`"10-12"`, 10},
		{`null`, 0},
		{`"abc"`, 0},
		{`3.0`, 3},
	}
	for _, tt := range tests {
		var n Int
		require.NoError(t, json.Unmarshal([]byte(tt.in), &n), tt.in)
		assert.Equal(t, tt.want, int(n), tt.in)
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`"HIGH"`, "HIGH"},
		{`7.5`, "7.5"},
		{`true`, "true"},
		{`null`, ""},
		{`{"a":1}`, ""},
	}
	for _, tt := range tests {
		var s String
		require.NoError(t, json.Unmarshal([]byte(tt.in), &s), tt.in)
		assert.Equal(t, tt.want, string(s), tt.in)
	}
}

func TestHelpers(t *testing.T) {
	assert.True(t, IsArray([]byte("  [1]")))
	assert.False(t, IsArray([]byte(`{}`)))
	assert.True(t, IsEmpty([]byte(" \n")))
	assert.Equal(t, "first", FirstLine("\n  first \nsecond"))
	assert.Equal(t, "abcdefg...", Truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "short", Truncate("short", 10))
}
