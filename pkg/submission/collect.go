package submission

import (
	"fmt"
	"strings"
)

// Entry is one name/value pair from a submitted form.
type Entry struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ListMode controls when a field collapses to a scalar.
type ListMode int

const (
	// ListRepeated keeps single occurrences as scalars and switches to a list
	// once a name repeats.
	ListRepeated ListMode = iota
	// ListAlways stores every field as a list, even when submitted once.
	ListAlways
)

// String returns the configuration spelling of the mode.
func (m ListMode) String() string {
	switch m {
	case ListAlways:
		return "always"
	default:
		return "repeated"
	}
}

// ParseListMode maps "repeated" (or "") and "always" to a ListMode.
func ParseListMode(raw string) (ListMode, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "repeated":
		return ListRepeated, nil
	case "always":
		return ListAlways, nil
	default:
		return ListRepeated, fmt.Errorf("submission: unknown list mode %q", raw)
	}
}

// Option configures a Collector.
type Option func(*Collector)

// WithListMode selects scalar collapsing behaviour.
func WithListMode(mode ListMode) Option {
	return func(c *Collector) {
		c.listMode = mode
	}
}

// WithSkipEmptyNames drops entries whose name is empty or whitespace.
func WithSkipEmptyNames() Option {
	return func(c *Collector) {
		c.skipEmptyNames = true
	}
}

// Collector merges ordered entries into a Result. A Collector holds no
// per-call state and is safe for concurrent use.
type Collector struct {
	listMode       ListMode
	skipEmptyNames bool
}

// NewCollector returns a Collector configured with options.
func NewCollector(options ...Option) *Collector {
	c := &Collector{listMode: ListRepeated}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	return c
}

// Mode reports the configured list mode.
func (c *Collector) Mode() ListMode {
	if c == nil {
		return ListRepeated
	}
	return c.listMode
}

// Collect walks entries once, in order. The first value for a name is stored
// as a scalar; a second value turns it into [previous, value]; later values
// append. Nothing is overwritten.
func (c *Collector) Collect(entries []Entry) Result {
	var result Result
	if c == nil {
		c = defaultCollector
	}
	for _, entry := range entries {
		if c.skipEmptyNames && strings.TrimSpace(entry.Name) == "" {
			continue
		}
		existing, seen := result.Get(entry.Name)
		switch {
		case !seen && c.listMode == ListAlways:
			result.set(entry.Name, List(entry.Value))
		case !seen:
			result.set(entry.Name, Scalar(entry.Value))
		default:
			result.set(entry.Name, existing.appendValue(entry.Value))
		}
	}
	return result
}

var defaultCollector = NewCollector()

// Collect merges entries using the default collector (scalar collapse, empty
// names kept).
func Collect(entries []Entry) Result {
	return defaultCollector.Collect(entries)
}
