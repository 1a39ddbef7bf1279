package view

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/flosch/pongo2/v6"
)

func registerDefaultFilters() {
	if !pongo2.FilterExists("trim") {
		_ = pongo2.RegisterFilter("trim", filterTrim)
	}
	if !pongo2.FilterExists("prettyjson") {
		_ = pongo2.RegisterFilter("prettyjson", filterPrettyJSON)
	}
}

func filterTrim(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if in.Len() <= 0 {
		return pongo2.AsValue(""), nil
	}
	return pongo2.AsValue(strings.TrimSpace(in.String())), nil
}

// filterPrettyJSON indents JSON with two spaces. String input is treated as
// JSON text and reindented; anything else is encoded first.
func filterPrettyJSON(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	out, err := PrettyJSON(in.Interface())
	if err != nil {
		return nil, &pongo2.Error{Sender: "filter:prettyjson", OrigError: err}
	}
	return pongo2.AsValue(out), nil
}

// PrettyJSON formats value the way the result panel shows it.
func PrettyJSON(value any) (string, error) {
	var raw []byte
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(v); err != nil {
			return "", err
		}
		raw = buf.Bytes()
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "", nil
	}
	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		return "", err
	}
	return out.String(), nil
}
