package htmlform

import (
	"strings"

	"github.com/goliatone/go-mdform/pkg/submission"
)

// Kind identifies the element behind a control.
type Kind string

const (
	KindInput    Kind = "input"
	KindSelect   Kind = "select"
	KindTextArea Kind = "textarea"
	KindButton   Kind = "button"
)

// Option is a <option> inside a select.
type Option struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected,omitempty"`
}

// Control is one form control in document order.
type Control struct {
	Kind Kind   `json:"kind"`
	Name string `json:"name,omitempty"`
	// Type is the lowercased type attribute. Inputs default to "text" and
	// buttons to "submit"; selects report "select-one" or "select-multiple"
	// and textareas "textarea".
	Type        string   `json:"type"`
	ID          string   `json:"id,omitempty"`
	Label       string   `json:"label,omitempty"`
	Caption     string   `json:"caption,omitempty"`
	Value       string   `json:"value,omitempty"`
	Placeholder string   `json:"placeholder,omitempty"`
	Pattern     string   `json:"pattern,omitempty"`
	Min         string   `json:"min,omitempty"`
	Max         string   `json:"max,omitempty"`
	Step        string   `json:"step,omitempty"`
	Required    bool     `json:"required,omitempty"`
	Checked     bool     `json:"checked,omitempty"`
	Disabled    bool     `json:"disabled,omitempty"`
	Multiple    bool     `json:"multiple,omitempty"`
	Options     []Option `json:"options,omitempty"`
}

// Submittable reports whether the control can contribute entries.
func (c Control) Submittable() bool {
	if c.Name == "" || c.Disabled {
		return false
	}
	switch c.Kind {
	case KindButton:
		return false
	case KindInput:
		switch c.Type {
		case "submit", "reset", "button", "image", "file":
			return false
		}
	}
	return true
}

// IsToggle reports whether the control is a checkbox or radio input.
func (c Control) IsToggle() bool {
	return c.Kind == KindInput && (c.Type == "checkbox" || c.Type == "radio")
}

// DisplayLabel picks the most descriptive text for prompts.
func (c Control) DisplayLabel() string {
	for _, candidate := range []string{c.Label, c.Caption, c.Placeholder, c.Name} {
		if trimmed := strings.TrimSpace(candidate); trimmed != "" {
			return trimmed
		}
	}
	return string(c.Kind)
}

// Form is a parsed <form> element.
type Form struct {
	// Name comes from data-form, then id, then name, then the position.
	Name     string    `json:"name"`
	Index    int       `json:"index"`
	Controls []Control `json:"controls"`
}

// Field groups the submittable controls that share a name.
type Field struct {
	Name     string
	Controls []Control
}

// Required reports whether any control in the field is required.
func (f Field) Required() bool {
	for _, control := range f.Controls {
		if control.Required {
			return true
		}
	}
	return false
}

// Multi reports whether the field can submit more than one value: a group
// of checkboxes sharing the name, or a select with multiple.
func (f Field) Multi() bool {
	for _, control := range f.Controls {
		if control.Kind == KindSelect && control.Multiple {
			return true
		}
	}
	return len(f.Controls) > 1 && !f.isRadioGroup()
}

func (f Field) isRadioGroup() bool {
	for _, control := range f.Controls {
		if control.Kind != KindInput || control.Type != "radio" {
			return false
		}
	}
	return len(f.Controls) > 0
}

// Fields returns submittable controls grouped by name, in order of first
// appearance.
func (f Form) Fields() []Field {
	var fields []Field
	index := map[string]int{}
	for _, control := range f.Controls {
		if !control.Submittable() {
			continue
		}
		pos, ok := index[control.Name]
		if !ok {
			pos = len(fields)
			index[control.Name] = pos
			fields = append(fields, Field{Name: control.Name})
		}
		fields[pos].Controls = append(fields[pos].Controls, control)
	}
	return fields
}

// DefaultEntries returns what a browser would submit for the form without
// any user edits: text values as written, checked toggles, selected options
// (the first option for a single select with no selection) and textarea
// contents. Buttons, unnamed and disabled controls contribute nothing.
func (f Form) DefaultEntries() []submission.Entry {
	var entries []submission.Entry
	for _, control := range f.Controls {
		if !control.Submittable() {
			continue
		}
		switch control.Kind {
		case KindSelect:
			entries = append(entries, selectedEntries(control)...)
		case KindTextArea:
			entries = append(entries, submission.Entry{Name: control.Name, Value: control.Value})
		default:
			if control.IsToggle() {
				if !control.Checked {
					continue
				}
				entries = append(entries, submission.Entry{Name: control.Name, Value: ToggleValue(control)})
				continue
			}
			entries = append(entries, submission.Entry{Name: control.Name, Value: control.Value})
		}
	}
	return entries
}

// ToggleValue is the value a checked checkbox or radio submits.
func ToggleValue(control Control) string {
	if control.Value == "" {
		return "on"
	}
	return control.Value
}

// selectedEntries follows the browser rule for single selects: the last
// selected option wins, and with no selection the first option is used.
func selectedEntries(control Control) []submission.Entry {
	if len(control.Options) == 0 {
		return nil
	}
	if control.Multiple {
		var entries []submission.Entry
		for _, option := range control.Options {
			if option.Selected {
				entries = append(entries, submission.Entry{Name: control.Name, Value: option.Value})
			}
		}
		return entries
	}

	chosen := control.Options[0]
	for _, option := range control.Options {
		if option.Selected {
			chosen = option
		}
	}
	return []submission.Entry{{Name: control.Name, Value: chosen.Value}}
}

// Lookup returns the form with the given name, or the first form when name
// is empty.
func Lookup(forms []Form, name string) (Form, bool) {
	name = strings.TrimSpace(name)
	for _, form := range forms {
		if name == "" || form.Name == name {
			return form, true
		}
	}
	return Form{}, false
}
