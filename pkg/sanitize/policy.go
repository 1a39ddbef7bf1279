// Package sanitize owns the single HTML allowlist applied to rendered
// Markdown. Form controls survive; scripts, event handlers and javascript:
// URLs do not.
package sanitize

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var formElements = []string{
	"form", "input", "label", "select", "option", "textarea",
	"button", "fieldset", "legend", "br",
}

var formAttributes = []string{
	"type", "name", "value", "placeholder", "required", "checked",
	"min", "max", "step", "pattern", "autocomplete", "novalidate",
	"rows", "cols", "multiple", "size",
}

// globalAttributes lists what is allowed on every element. The UGC base
// already allows id (restricted to token characters); class is added with
// bluemonday's styling helper.
var globalAttributes = []string{"id", "class"}

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy
)

// Policy returns the shared sanitizer. It starts from bluemonday's UGC
// policy, which covers the typography goldmark emits, and adds the form
// allowlist. Form elements survive without attributes, so a bare <form> or
// <label> is kept. The policy is built once and safe for concurrent use.
func Policy() *bluemonday.Policy {
	policyOnce.Do(func() {
		p := bluemonday.UGCPolicy()
		p.AllowElements(formElements...)
		p.AllowNoAttrs().OnElements(formElements...)
		p.AllowAttrs(formAttributes...).OnElements(formElements...)
		p.AllowStyling()
		p.AllowDataAttributes()
		policy = p
	})
	return policy
}

// HTML sanitizes raw markup and trims surrounding whitespace.
func HTML(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	return strings.TrimSpace(Policy().Sanitize(raw))
}

// Bytes sanitizes raw markup held in a byte slice.
func Bytes(raw []byte) []byte {
	if len(raw) == 0 {
		return nil
	}
	return Policy().SanitizeBytes(raw)
}

// AllowedElements lists the form elements added on top of the base policy.
func AllowedElements() []string {
	return append([]string(nil), formElements...)
}

// AllowedAttributes lists the attributes allowed on form elements, followed
// by the global id and class attributes. data-* attributes are allowed too.
func AllowedAttributes() []string {
	out := make([]string, 0, len(formAttributes)+len(globalAttributes))
	out = append(out, formAttributes...)
	return append(out, globalAttributes...)
}
