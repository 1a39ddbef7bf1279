// Package contract describes the submit endpoint of rendered forms as an
// OpenAPI 3 document.
package contract

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-mdform/pkg/htmlform"
	"github.com/goliatone/go-mdform/pkg/sanitize"
	"github.com/goliatone/go-mdform/pkg/submission"
)

const (
	openAPIVersion = "3.0.3"

	mediaTypeURLEncoded = "application/x-www-form-urlencoded"
	mediaTypeMultipart  = "multipart/form-data"

	allowlistExtension = "x-mdform-allowlist"
)

// Options tune the generated document.
type Options struct {
	Title   string
	Version string
	// SubmitPath and ResultPath default to /submit and /result.
	SubmitPath string
	ResultPath string
	// ListMode mirrors the collector: with ListAlways every property is an
	// array.
	ListMode submission.ListMode
}

func (o Options) withDefaults() Options {
	if strings.TrimSpace(o.Title) == "" {
		o.Title = "mdform"
	}
	if strings.TrimSpace(o.Version) == "" {
		o.Version = "1.0.0"
	}
	if strings.TrimSpace(o.SubmitPath) == "" {
		o.SubmitPath = "/submit"
	}
	if strings.TrimSpace(o.ResultPath) == "" {
		o.ResultPath = "/result"
	}
	return o
}

// Build returns a validated document for the submit and result endpoints.
// Every form posts to the same endpoint, so the request body merges the
// fields of all forms; a name shared across forms keeps its first schema.
func Build(ctx context.Context, forms []htmlform.Form, opts Options) (*openapi3.T, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	opts = opts.withDefaults()

	resultSchema := openapi3.NewObjectSchema()
	resultSchema.Description = "Submitted values keyed by field name, in first-occurrence order."
	resultSchema.AdditionalProperties = openapi3.AdditionalProperties{
		Schema: openapi3.NewSchemaRef("", openapi3.NewOneOfSchema(
			openapi3.NewStringSchema(),
			openapi3.NewArraySchema().WithItems(openapi3.NewStringSchema()),
		)),
	}

	bodySchema := openapi3.NewObjectSchema()
	var formNames []string
	for _, form := range forms {
		formNames = append(formNames, form.Name)
		for _, field := range form.Fields() {
			if _, exists := bodySchema.Properties[field.Name]; exists {
				continue
			}
			bodySchema.WithProperty(field.Name, FieldSchema(field, opts.ListMode))
			if field.Required() {
				bodySchema.Required = append(bodySchema.Required, field.Name)
			}
		}
	}

	submit := openapi3.NewOperation()
	submit.OperationID = "submitForm"
	submit.Summary = "Submit a rendered form"
	if len(formNames) > 0 {
		submit.Description = "Forms: " + strings.Join(formNames, ", ")
	}
	submit.RequestBody = &openapi3.RequestBodyRef{
		Value: openapi3.NewRequestBody().
			WithRequired(true).
			WithContent(openapi3.NewContentWithSchema(bodySchema, []string{mediaTypeURLEncoded, mediaTypeMultipart})),
	}
	submit.Responses = openapi3.NewResponses(
		openapi3.WithStatus(http.StatusOK, &openapi3.ResponseRef{
			Value: openapi3.NewResponse().
				WithDescription("The collected result, for clients that accept JSON.").
				WithJSONSchema(resultSchema),
		}),
		openapi3.WithStatus(http.StatusSeeOther, &openapi3.ResponseRef{
			Value: openapi3.NewResponse().WithDescription("Redirect back to the page showing the result."),
		}),
		openapi3.WithStatus(http.StatusNoContent, &openapi3.ResponseRef{
			Value: openapi3.NewResponse().WithDescription("The request was not a form submission and was ignored."),
		}),
		openapi3.WithStatus(http.StatusBadRequest, &openapi3.ResponseRef{
			Value: openapi3.NewResponse().WithDescription("The form payload could not be decoded."),
		}),
		openapi3.WithStatus(http.StatusRequestEntityTooLarge, &openapi3.ResponseRef{
			Value: openapi3.NewResponse().WithDescription("The form payload exceeded the configured size limit."),
		}),
	)

	latest := openapi3.NewOperation()
	latest.OperationID = "latestResult"
	latest.Summary = "Latest collected result"
	latest.Responses = openapi3.NewResponses(
		openapi3.WithStatus(http.StatusOK, &openapi3.ResponseRef{
			Value: openapi3.NewResponse().
				WithDescription("The most recent submission.").
				WithJSONSchema(resultSchema),
		}),
		openapi3.WithStatus(http.StatusNoContent, &openapi3.ResponseRef{
			Value: openapi3.NewResponse().WithDescription("Nothing has been submitted yet."),
		}),
	)

	doc := &openapi3.T{
		OpenAPI: openAPIVersion,
		Info: &openapi3.Info{
			Title:   opts.Title,
			Version: opts.Version,
		},
		Paths: openapi3.NewPaths(
			openapi3.WithPath(opts.SubmitPath, &openapi3.PathItem{Post: submit}),
			openapi3.WithPath(opts.ResultPath, &openapi3.PathItem{Get: latest}),
		),
		Extensions: map[string]any{
			allowlistExtension: map[string]any{
				"elements":   sanitize.AllowedElements(),
				"attributes": sanitize.AllowedAttributes(),
			},
		},
	}

	if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return nil, fmt.Errorf("contract: validate document: %w", err)
	}
	return doc, nil
}

// FieldSchema describes one form field. Fields that can submit several
// values are arrays of strings; the rest are strings.
func FieldSchema(field htmlform.Field, mode submission.ListMode) *openapi3.Schema {
	item := openapi3.NewStringSchema()
	if len(field.Controls) > 0 {
		first := field.Controls[0]
		item.Title = first.DisplayLabel()
		if first.Kind == htmlform.KindInput && first.Type == "email" {
			item.Format = "email"
		}
		if pattern := anchoredPattern(first.Pattern); pattern != "" {
			item.Pattern = pattern
		}
		if first.Placeholder != "" {
			item.Example = first.Placeholder
		}
	}
	if enum := enumValues(field); len(enum) > 0 {
		item.Enum = enum
	}

	if field.Multi() || mode == submission.ListAlways {
		array := openapi3.NewArraySchema().WithItems(item)
		array.Title = item.Title
		item.Title = ""
		return array
	}
	return item
}

// enumValues lists the closed set of values for selects and toggle groups.
func enumValues(field htmlform.Field) []any {
	var values []any
	seen := map[string]bool{}
	add := func(value string) {
		if !seen[value] {
			seen[value] = true
			values = append(values, value)
		}
	}
	for _, control := range field.Controls {
		switch {
		case control.Kind == htmlform.KindSelect:
			for _, option := range control.Options {
				add(option.Value)
			}
		case control.IsToggle():
			add(htmlform.ToggleValue(control))
		default:
			return nil
		}
	}
	return values
}

// anchoredPattern turns an HTML pattern attribute, which must match the whole
// value, into an anchored regular expression. Patterns Go cannot compile are
// dropped.
func anchoredPattern(pattern string) string {
	if strings.TrimSpace(pattern) == "" {
		return ""
	}
	anchored := "^(?:" + pattern + ")$"
	if _, err := regexp.Compile(anchored); err != nil {
		return ""
	}
	return anchored
}
