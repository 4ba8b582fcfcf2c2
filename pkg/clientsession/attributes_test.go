package clientsession_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/clientsession/pkg/clientsession"
)

func TestAttributes_NullVersusMissing(t *testing.T) {
	t.Parallel()

	a := clientsession.Attributes{}
	a.Set("cleared", nil)

	v, ok := a.Get("cleared")
	assert.True(t, ok)
	assert.Nil(t, v)
	assert.True(t, a.Has("cleared"))

	v, ok = a.Get("missing")
	assert.False(t, ok)
	assert.Nil(t, v)
	assert.False(t, a.Has("missing"))

	a.Remove("cleared")
	assert.False(t, a.Has("cleared"))
	assert.Equal(t, 0, a.Len())
}

func TestAttributes_Keys(t *testing.T) {
	t.Parallel()

	a := clientsession.Attributes{"b": 1, "a": nil, "c": "x"}
	assert.Equal(t, []string{"a", "b", "c"}, a.Keys())
	assert.Equal(t, 3, a.Len())
}

func TestAttributes_String(t *testing.T) {
	t.Parallel()

	a := clientsession.Attributes{
		"role":   "admin",
		"null":   nil,
		"count":  42,
		"ratio":  1.5,
		"big":    json.Number("9007199254740993"),
		"flag":   true,
		"off":    false,
		"object": map[string]any{"a": 1},
		"list":   []any{"a"},
	}

	tests := []struct {
		name    string
		key     string
		want    string
		wantOK  bool
		wantErr bool
	}{
		{name: "string", key: "role", want: "admin", wantOK: true},
		{name: "int", key: "count", want: "42", wantOK: true},
		{name: "float", key: "ratio", want: "1.5", wantOK: true},
		{name: "json number", key: "big", want: "9007199254740993", wantOK: true},
		{name: "true", key: "flag", want: "true", wantOK: true},
		{name: "false", key: "off", want: "false", wantOK: true},
		{name: "null", key: "null"},
		{name: "missing", key: "missing"},
		{name: "object", key: "object", wantErr: true},
		{name: "array", key: "list", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok, err := a.String(tt.key)
			if tt.wantErr {
				assert.ErrorIs(t, err, clientsession.ErrAttributeType)
				assert.False(t, ok)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAttributes_Bool(t *testing.T) {
	t.Parallel()

	a := clientsession.Attributes{"flag": true, "text": "true"}

	b, ok, err := a.Bool("flag")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, b)

	_, _, err = a.Bool("text")
	assert.ErrorIs(t, err, clientsession.ErrAttributeType)
}

func TestAttributes_Numbers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		value     any
		wantInt   int64
		intErr    bool
		wantFloat float64
		floatErr  bool
	}{
		{name: "int", value: 42, wantInt: 42, wantFloat: 42},
		{name: "uint8", value: uint8(7), wantInt: 7, wantFloat: 7},
		{name: "json number", value: json.Number("9007199254740993"), wantInt: 9007199254740993, wantFloat: 9007199254740992},
		{name: "integral float", value: 10.0, wantInt: 10, wantFloat: 10},
		{name: "fractional float", value: 1.5, intErr: true, wantFloat: 1.5},
		{name: "numeric string", value: "12", wantInt: 12, wantFloat: 12},
		{name: "exponent string", value: "1e3", wantInt: 1000, wantFloat: 1000},
		{name: "padded string", value: " 12", intErr: true, floatErr: true},
		{name: "quoted string", value: `"12"`, intErr: true, floatErr: true},
		{name: "text", value: "twelve", intErr: true, floatErr: true},
		{name: "bool", value: true, intErr: true, floatErr: true},
		{name: "too large", value: 1e19, intErr: true, wantFloat: 1e19},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			a := clientsession.Attributes{"n": tt.value}

			i, ok, err := a.Int64("n")
			if tt.intErr {
				assert.ErrorIs(t, err, clientsession.ErrAttributeType)
				assert.False(t, ok)
			} else {
				require.NoError(t, err)
				assert.True(t, ok)
				assert.Equal(t, tt.wantInt, i)
			}

			f, ok, err := a.Float64("n")
			if tt.floatErr {
				assert.ErrorIs(t, err, clientsession.ErrAttributeType)
				assert.False(t, ok)
			} else {
				require.NoError(t, err)
				assert.True(t, ok)
				assert.InDelta(t, tt.wantFloat, f, 0)
			}
		})
	}
}

func TestAttributes_NumberMissing(t *testing.T) {
	t.Parallel()

	a := clientsession.Attributes{"null": nil}
	for _, name := range []string{"null", "missing"} {
		_, ok, err := a.Int64(name)
		assert.NoError(t, err)
		assert.False(t, ok)
	}
}
