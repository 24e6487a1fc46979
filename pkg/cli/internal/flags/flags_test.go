package flags

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeader_Set(t *testing.T) {
	var h Header
	require.NoError(t, h.Set("Accept: text/plain"))
	require.NoError(t, h.Set("accept:application/json"))
	require.NoError(t, h.Set("X-Token=abc:def"))

	got := h.Header()
	assert.Equal(t, []string{"text/plain", "application/json"}, got.Values("Accept"))
	assert.Equal(t, "abc:def", got.Get("X-Token"))
	assert.Equal(t, 3, h.Len())
	assert.Equal(t, "header", h.Type())
}

func TestHeader_Invalid(t *testing.T) {
	var h Header
	assert.Error(t, h.Set("no-delimiter"))
	assert.Error(t, h.Set(": empty name"))
	assert.Equal(t, 0, h.Len())
	assert.NotNil(t, h.Header())
}

func TestKeyValue(t *testing.T) {
	tests := []struct {
		in         string
		delims     []rune
		key, value string
		ok         bool
	}{
		{"a:b", nil, "a", "b", true},
		{"a=b:c", []rune{':', '='}, "a", "b:c", true},
		{"a=b", nil, "", "", false},
	}
	for _, tt := range tests {
		k, v, ok := KeyValue(tt.in, tt.delims...)
		assert.Equal(t, tt.key, k, tt.in)
		assert.Equal(t, tt.value, v, tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
	}
}
