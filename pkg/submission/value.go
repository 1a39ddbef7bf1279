package submission

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Value holds the submitted value(s) for a single field name. A scalar wraps
// exactly one string; a list keeps every submitted value in order.
type Value struct {
	values []string
	list   bool
}

// Scalar returns a single-valued Value.
func Scalar(value string) Value {
	return Value{values: []string{value}}
}

// List returns a multi-valued Value. The slice is copied.
func List(values ...string) Value {
	return Value{values: append([]string(nil), values...), list: true}
}

// IsList reports whether the value encodes as a JSON array.
func (v Value) IsList() bool {
	return v.list
}

// Len reports how many values were submitted under the field name.
func (v Value) Len() int {
	return len(v.values)
}

// String returns the scalar value, or the list joined with ", ".
func (v Value) String() string {
	if !v.list {
		if len(v.values) == 0 {
			return ""
		}
		return v.values[0]
	}
	return strings.Join(v.values, ", ")
}

// Strings returns a copy of the submitted values in order.
func (v Value) Strings() []string {
	if len(v.values) == 0 {
		return nil
	}
	return append([]string(nil), v.values...)
}

// Any returns the value as a string or []string, the shape encoding/json
// produces when decoding into interface values.
func (v Value) Any() any {
	if v.list {
		out := make([]any, len(v.values))
		for i, s := range v.values {
			out[i] = s
		}
		return out
	}
	return v.String()
}

// Equal reports whether both values have the same shape and contents.
func (v Value) Equal(other Value) bool {
	if v.list != other.list || len(v.values) != len(other.values) {
		return false
	}
	for i := range v.values {
		if v.values[i] != other.values[i] {
			return false
		}
	}
	return true
}

func (v Value) appendValue(value string) Value {
	values := make([]string, 0, len(v.values)+1)
	values = append(values, v.values...)
	values = append(values, value)
	return Value{values: values, list: true}
}

// MarshalJSON encodes scalars as JSON strings and lists as arrays of strings.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.list {
		return marshalNoEscape(v.String())
	}
	if v.values == nil {
		return []byte("[]"), nil
	}
	return marshalNoEscape(v.values)
}

// UnmarshalJSON accepts a JSON string or an array of strings.
func (v *Value) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return fmt.Errorf("%w: empty value", ErrInvalidValue)
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidValue, err)
		}
		*v = Scalar(s)
		return nil
	case '[':
		var values []string
		if err := json.Unmarshal(trimmed, &values); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidValue, err)
		}
		*v = List(values...)
		return nil
	default:
		return fmt.Errorf("%w: expected string or array of strings, got %s", ErrInvalidValue, truncate(trimmed, 32))
	}
}

func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func truncate(data []byte, limit int) string {
	if len(data) <= limit {
		return string(data)
	}
	return string(data[:limit]) + "..."
}
