package submission

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrInvalidValue is returned when decoding JSON that is not a string or an
// array of strings.
var ErrInvalidValue = errors.New("submission: invalid field value")

// Result maps field names to their submitted values. Keys keep the order in
// which each name first appeared. The zero value is an empty result.
type Result struct {
	keys   []string
	values map[string]Value
}

// Keys returns the field names in first-occurrence order.
func (r Result) Keys() []string {
	if len(r.keys) == 0 {
		return nil
	}
	return append([]string(nil), r.keys...)
}

// Get returns the value stored under name.
func (r Result) Get(name string) (Value, bool) {
	value, ok := r.values[name]
	return value, ok
}

// Len reports the number of distinct field names.
func (r Result) Len() int {
	return len(r.keys)
}

// Map returns the result as plain Go values (string or []any), matching what
// encoding/json produces when decoding into map[string]any.
func (r Result) Map() map[string]any {
	out := make(map[string]any, len(r.keys))
	for _, key := range r.keys {
		out[key] = r.values[key].Any()
	}
	return out
}

// Equal reports whether both results hold the same keys, in the same order,
// with equal values.
func (r Result) Equal(other Result) bool {
	if len(r.keys) != len(other.keys) {
		return false
	}
	for i, key := range r.keys {
		if other.keys[i] != key {
			return false
		}
		if !r.values[key].Equal(other.values[key]) {
			return false
		}
	}
	return true
}

func (r *Result) set(name string, value Value) {
	if r.values == nil {
		r.values = make(map[string]Value)
	}
	if _, exists := r.values[name]; !exists {
		r.keys = append(r.keys, name)
	}
	r.values[name] = value
}

// MarshalJSON encodes the result as a JSON object in key order.
func (r Result) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := marshalNoEscape(key)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')

		value, err := r.values[key].MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("submission: encode %q: %w", key, err)
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object of strings and string arrays, keeping
// the order of keys in the document. A repeated key replaces the earlier
// value but keeps its position.
func (r *Result) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("submission: decode result: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("%w: expected object", ErrInvalidValue)
	}

	var out Result
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("submission: decode result: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("%w: expected object key", ErrInvalidValue)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("submission: decode %q: %w", key, err)
		}
		var value Value
		if err := value.UnmarshalJSON(raw); err != nil {
			return fmt.Errorf("submission: decode %q: %w", key, err)
		}
		out.set(key, value)
	}

	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("submission: decode result: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return fmt.Errorf("%w: trailing data after object", ErrInvalidValue)
	}

	*r = out
	return nil
}

// Pretty returns the JSON encoding with a two-space indent, the format shown
// to users after each submission.
func (r Result) Pretty() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
