// Package prompt fills a parsed HTML form from the terminal. The entries it
// returns match what a browser would submit for the same answers.
package prompt

import (
	"context"
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-mdform/internal/logging"
	"github.com/goliatone/go-mdform/pkg/htmlform"
	"github.com/goliatone/go-mdform/pkg/submission"
)

const (
	defaultMaxAttempts = 3
	skipOption         = "(none)"
)

// Option configures a Filler.
type Option func(*Filler)

// WithPromptDriver overrides the prompt driver.
func WithPromptDriver(driver PromptDriver) Option {
	return func(f *Filler) {
		if driver != nil {
			f.driver = driver
		}
	}
}

// WithMaxAttempts bounds how often an invalid answer is asked again.
func WithMaxAttempts(n int) Option {
	return func(f *Filler) {
		if n > 0 {
			f.maxAttempts = n
		}
	}
}

func WithLogger(logger logging.Logger) Option {
	return func(f *Filler) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// Filler prompts for every submittable control of a form.
type Filler struct {
	driver      PromptDriver
	maxAttempts int
	logger      logging.Logger
}

// New returns a Filler backed by the survey driver unless one is given.
func New(opts ...Option) *Filler {
	f := &Filler{
		maxAttempts: defaultMaxAttempts,
		logger:      logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	if f.driver == nil {
		f.driver = NewSurveyDriver(nil)
	}
	return f
}

// Fill walks the controls in document order. Checkbox and radio controls
// sharing a name are asked once, at the first of them. Hidden inputs keep
// their value without a prompt.
func (f *Filler) Fill(ctx context.Context, form htmlform.Form) ([]submission.Entry, error) {
	groups := map[string][]htmlform.Control{}
	for _, field := range form.Fields() {
		groups[field.Name] = field.Controls
	}

	var entries []submission.Entry
	asked := map[string]bool{}
	for _, control := range form.Controls {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !control.Submittable() {
			continue
		}

		var (
			got []submission.Entry
			err error
		)
		switch {
		case control.IsToggle():
			if asked[control.Name] {
				continue
			}
			asked[control.Name] = true
			got, err = f.fillToggles(ctx, control.Name, toggles(groups[control.Name]))
		case control.Kind == htmlform.KindSelect:
			got, err = f.fillSelect(ctx, control)
		case control.Kind == htmlform.KindTextArea:
			got, err = f.fillText(ctx, control, true)
		case control.Type == "hidden":
			got = []submission.Entry{{Name: control.Name, Value: control.Value}}
		default:
			got, err = f.fillText(ctx, control, false)
		}
		if err != nil {
			return nil, fmt.Errorf("prompt: %s: %w", control.Name, err)
		}
		entries = append(entries, got...)
	}

	f.logger.Debug("form filled", "form", form.Name, "entries", len(entries))
	return entries, nil
}

func (f *Filler) fillText(ctx context.Context, control htmlform.Control, multiline bool) ([]submission.Entry, error) {
	value, err := retry(ctx, f, func() (string, error) {
		switch {
		case multiline:
			return f.driver.TextArea(ctx, TextAreaConfig{
				Message: control.DisplayLabel(),
				Default: control.Value,
				Help:    control.Placeholder,
			})
		case control.Type == "password":
			return f.driver.Password(ctx, InputConfig{
				Message:   control.DisplayLabel(),
				Help:      control.Placeholder,
				Validator: func(v string) error { return Check(control, v) },
			})
		default:
			return f.driver.Input(ctx, InputConfig{
				Message:   control.DisplayLabel(),
				Default:   control.Value,
				Help:      control.Placeholder,
				Validator: func(v string) error { return Check(control, v) },
			})
		}
	}, func(v string) error { return Check(control, v) })
	if err != nil {
		return nil, err
	}
	return []submission.Entry{{Name: control.Name, Value: value}}, nil
}

func (f *Filler) fillSelect(ctx context.Context, control htmlform.Control) ([]submission.Entry, error) {
	if len(control.Options) == 0 {
		return nil, nil
	}
	labels := make([]string, len(control.Options))
	var defaults []int
	for i, option := range control.Options {
		labels[i] = option.Label
		if labels[i] == "" {
			labels[i] = option.Value
		}
		if option.Selected {
			defaults = append(defaults, i)
		}
	}

	if control.Multiple {
		chosen, err := retry(ctx, f, func() ([]int, error) {
			return f.driver.MultiSelect(ctx, SelectConfig{
				Message:  control.DisplayLabel(),
				Options:  labels,
				Defaults: defaults,
			})
		}, func(indices []int) error {
			return validation.Validate(indices, requiredRule(control.Required)...)
		})
		if err != nil {
			return nil, err
		}
		var entries []submission.Entry
		for _, idx := range chosen {
			if idx >= 0 && idx < len(control.Options) {
				entries = append(entries, submission.Entry{Name: control.Name, Value: control.Options[idx].Value})
			}
		}
		return entries, nil
	}

	defaultIndex := 0
	if len(defaults) > 0 {
		defaultIndex = defaults[len(defaults)-1]
	}
	idx, err := retry(ctx, f, func() (int, error) {
		return f.driver.Select(ctx, SelectConfig{
			Message:      control.DisplayLabel(),
			Options:      labels,
			DefaultIndex: defaultIndex,
		})
	}, func(idx int) error {
		if idx < 0 || idx >= len(control.Options) {
			return errors.New("is not one of the options")
		}
		return validation.Validate(control.Options[idx].Value, requiredRule(control.Required)...)
	})
	if err != nil {
		return nil, err
	}
	return []submission.Entry{{Name: control.Name, Value: control.Options[idx].Value}}, nil
}

// fillToggles asks for a checkbox or radio group. A lone checkbox is a
// confirm, a radio group a select and a checkbox group a multi-select.
func (f *Filler) fillToggles(ctx context.Context, name string, group []htmlform.Control) ([]submission.Entry, error) {
	if len(group) == 0 {
		return nil, nil
	}
	required := htmlform.Field{Name: name, Controls: group}.Required()
	message := group[0].Label
	if message == "" {
		message = name
	}

	if len(group) == 1 && group[0].Type == "checkbox" {
		control := group[0]
		if control.Label == "" && control.Caption != "" {
			message = control.Caption
		}
		checked, err := retry(ctx, f, func() (bool, error) {
			return f.driver.Confirm(ctx, ConfirmConfig{Message: message, Default: control.Checked})
		}, func(checked bool) error {
			if required && !checked {
				return errors.New("must be checked")
			}
			return nil
		})
		if err != nil || !checked {
			return nil, err
		}
		return []submission.Entry{{Name: name, Value: htmlform.ToggleValue(control)}}, nil
	}

	labels := make([]string, 0, len(group)+1)
	var defaults []int
	for i, control := range group {
		labels = append(labels, toggleLabel(control))
		if control.Checked {
			defaults = append(defaults, i)
		}
	}

	if group[0].Type == "radio" {
		defaultIndex := 0
		if len(defaults) > 0 {
			defaultIndex = defaults[len(defaults)-1]
		}
		if !required {
			labels = append(labels, skipOption)
			if len(defaults) == 0 {
				defaultIndex = len(labels) - 1
			}
		}
		idx, err := retry(ctx, f, func() (int, error) {
			return f.driver.Select(ctx, SelectConfig{Message: message, Options: labels, DefaultIndex: defaultIndex})
		}, func(idx int) error {
			if idx < 0 || idx >= len(labels) {
				return errors.New("is not one of the options")
			}
			return nil
		})
		if err != nil || idx >= len(group) {
			return nil, err
		}
		return []submission.Entry{{Name: name, Value: htmlform.ToggleValue(group[idx])}}, nil
	}

	chosen, err := retry(ctx, f, func() ([]int, error) {
		return f.driver.MultiSelect(ctx, SelectConfig{Message: message, Options: labels, Defaults: defaults})
	}, func(indices []int) error {
		return validation.Validate(indices, requiredRule(required)...)
	})
	if err != nil {
		return nil, err
	}
	var entries []submission.Entry
	for _, idx := range chosen {
		if idx >= 0 && idx < len(group) {
			entries = append(entries, submission.Entry{Name: name, Value: htmlform.ToggleValue(group[idx])})
		}
	}
	return entries, nil
}

// retry asks until check passes, reporting each failure through Info.
func retry[T any](ctx context.Context, f *Filler, ask func() (T, error), check func(T) error) (T, error) {
	var zero T
	for attempt := 1; ; attempt++ {
		answer, err := ask()
		if err != nil {
			return zero, err
		}
		verr := check(answer)
		if verr == nil {
			return answer, nil
		}
		if attempt >= f.maxAttempts {
			return zero, fmt.Errorf("%w: %v", ErrTooManyAttempts, verr)
		}
		if err := f.driver.Info(ctx, "Invalid answer: "+verr.Error()); err != nil {
			return zero, err
		}
	}
}

func requiredRule(required bool) []validation.Rule {
	if !required {
		return nil
	}
	return []validation.Rule{validation.Required.Error("is required")}
}

func toggles(controls []htmlform.Control) []htmlform.Control {
	out := make([]htmlform.Control, 0, len(controls))
	for _, control := range controls {
		if control.IsToggle() {
			out = append(out, control)
		}
	}
	return out
}

func toggleLabel(control htmlform.Control) string {
	if control.Caption != "" {
		return control.Caption
	}
	return htmlform.ToggleValue(control)
}
