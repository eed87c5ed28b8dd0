package value

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input any
		want  string
	}{
		{name: "string", input: "abc", want: "abc"},
		{name: "integer_number", input: json.Number("90"), want: "90"},
		{name: "float", input: 2.5, want: "2.5"},
		{name: "bool", input: true, want: "true"},
		{name: "null", input: nil, want: "null"},
		{name: "array", input: []any{json.Number("1"), "a"}, want: `[1,"a"]`},
		{name: "object", input: map[string]any{"b": true, "a": nil}, want: `{"a":null,"b":true}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Text(tt.input))
		})
	}
}

func TestEqual(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{name: "same_string", a: "x", b: "x", want: true},
		{name: "different_string", a: "x", b: "y"},
		{name: "number_representations", a: json.Number("60"), b: 60.0, want: true},
		{name: "number_vs_numeric_string", a: json.Number("60"), b: "60"},
		{name: "bool", a: true, b: true, want: true},
		{name: "bool_vs_string", a: true, b: "true"},
		{name: "null_null", a: nil, b: nil, want: true},
		{name: "null_vs_zero", a: nil, b: 0},
		{name: "objects", a: map[string]any{"a": "b"}, b: map[string]any{"a": "b"}, want: true},
		{name: "string_vs_array", a: "a", b: []any{"a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Equal(tt.a, tt.b))
		})
	}
}

func TestDecode(t *testing.T) {
	t.Parallel()

	t.Run("keeps_numbers", func(t *testing.T) {
		got, err := Decode(strings.NewReader(`[{"id": 12345678901234567890, "score": 1.5}]`))
		require.NoError(t, err)

		items, ok := got.([]any)
		require.True(t, ok)
		item := items[0].(map[string]any)
		assert.Equal(t, json.Number("12345678901234567890"), item["id"])
		assert.Equal(t, json.Number("1.5"), item["score"])
	})

	t.Run("rejects_trailing_data", func(t *testing.T) {
		_, err := Decode(strings.NewReader(`{} {}`))
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrDecode))
	})

	t.Run("rejects_empty", func(t *testing.T) {
		_, err := DecodeBytes([]byte("  "))
		assert.ErrorIs(t, err, ErrDecode)
	})

	t.Run("rejects_malformed", func(t *testing.T) {
		_, err := DecodeBytes([]byte(`{"a":`))
		assert.ErrorIs(t, err, ErrDecode)
	})
}
