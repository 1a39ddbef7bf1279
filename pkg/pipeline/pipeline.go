// Package pipeline turns a Markdown document with an embedded form into a
// sanitized, submit-ready HTML page.
package pipeline

import (
	"context"
	"strings"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-mdform/internal/logging"
	"github.com/goliatone/go-mdform/pkg/htmlform"
	"github.com/goliatone/go-mdform/pkg/markdown"
	"github.com/goliatone/go-mdform/pkg/sanitize"
)

const (
	// DefaultAction is where bound forms post to.
	DefaultAction = "/submit"

	renderFailedCode = "PAGE_RENDER_FAILED"
)

// Page is the rendered document.
type Page struct {
	Title       string
	Description string
	// FormName is the form named in front matter, if any.
	FormName string
	HTML     string
	Forms    []htmlform.Form
}

// Form returns the form named in front matter, falling back to the first.
func (p Page) Form() (htmlform.Form, bool) {
	if form, ok := htmlform.Lookup(p.Forms, p.FormName); ok {
		return form, true
	}
	return htmlform.Lookup(p.Forms, "")
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithConverter replaces the Markdown converter.
func WithConverter(converter *markdown.Converter) Option {
	return func(r *Renderer) {
		if converter != nil {
			r.converter = converter
		}
	}
}

// WithAction sets the submit target written onto every form.
func WithAction(action string) Option {
	return func(r *Renderer) {
		if trimmed := strings.TrimSpace(action); trimmed != "" {
			r.action = trimmed
		}
	}
}

func WithLogger(logger logging.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Renderer runs Markdown conversion, sanitizing and form binding in order.
type Renderer struct {
	converter *markdown.Converter
	action    string
	logger    logging.Logger
}

func New(opts ...Option) *Renderer {
	r := &Renderer{
		converter: markdown.NewConverter(),
		action:    DefaultAction,
		logger:    logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Render converts source. The sanitizer runs before forms are bound, so
// the only attributes that reach the page outside the allowlist are the
// method and action set here.
func (r *Renderer) Render(ctx context.Context, source []byte) (Page, error) {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return Page{}, wrap(err, "page render cancelled")
		}
	}

	doc, err := r.converter.Convert(source)
	if err != nil {
		return Page{}, wrap(err, "markdown conversion failed")
	}

	clean := sanitize.HTML(string(doc.HTML))
	bound, err := htmlform.Bind(clean, r.action)
	if err != nil {
		return Page{}, wrap(err, "form binding failed")
	}
	forms, err := htmlform.Parse(bound)
	if err != nil {
		return Page{}, wrap(err, "form parsing failed")
	}

	page := Page{
		Title:       doc.Meta.Title,
		Description: doc.Meta.Description,
		FormName:    doc.Meta.Form,
		HTML:        bound,
		Forms:       forms,
	}
	if page.Title == "" {
		page.Title = firstHeading(doc.Body)
	}

	r.logger.Debug("page rendered",
		"title", page.Title,
		"forms", len(forms),
		"bytes", len(page.HTML),
	)
	return page, nil
}

// Render uses a default Renderer.
func Render(ctx context.Context, source []byte) (Page, error) {
	return New().Render(ctx, source)
}

// firstHeading picks the text of the first ATX heading in body.
func firstHeading(body []byte) string {
	for _, line := range strings.Split(string(body), "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "#") {
			continue
		}
		if title := strings.TrimSpace(strings.TrimLeft(trimmed, "#")); title != "" {
			return title
		}
	}
	return ""
}

func wrap(err error, message string) error {
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, message).WithTextCode(renderFailedCode)
}
