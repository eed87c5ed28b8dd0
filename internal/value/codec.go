// Package value holds the JSON value helpers shared by the row pipeline:
// decoding documents, rendering values as text and strict equality.
package value

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-json"
)

// ErrDecode indicates the input is not a single well-formed JSON value.
var ErrDecode = errors.New("invalid JSON")

// Decode reads exactly one JSON value from r. Numbers are kept as json.Number.
func Decode(r io.Reader) (any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	if dec.More() {
		return nil, fmt.Errorf("%w: unexpected data after top-level value", ErrDecode)
	}

	return out, nil
}

// DecodeBytes is Decode over an in-memory payload.
func DecodeBytes(data []byte) (any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrDecode)
	}
	return Decode(bytes.NewReader(data))
}

// Unmarshal decodes data into target keeping numbers as json.Number inside untyped fields.
func Unmarshal(data []byte, target any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	if err := dec.Decode(target); err != nil {
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}

	return nil
}

// Marshal encodes v as compact JSON.
func Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// MarshalIndent encodes v as indented JSON.
func MarshalIndent(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}
