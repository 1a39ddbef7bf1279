// Package testsupport holds helpers shared by package tests: golden files,
// rendered fixture pages and writer capture.
package testsupport

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	mdform "github.com/goliatone/go-mdform"
	"github.com/goliatone/go-mdform/pkg/htmlform"
	"github.com/goliatone/go-mdform/pkg/pipeline"
)

// FeedbackPage renders the bundled feedback document through the default
// pipeline.
func FeedbackPage(t *testing.T) pipeline.Page {
	t.Helper()

	page, err := mdform.RenderFeedback(context.Background())
	if err != nil {
		t.Fatalf("render feedback page: %v", err)
	}
	return page
}

// FeedbackForm returns the form of the bundled feedback document.
func FeedbackForm(t *testing.T) htmlform.Form {
	t.Helper()

	form, ok := FeedbackPage(t).Form()
	if !ok {
		t.Fatalf("feedback page has no form")
	}
	return form
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// MustReadGoldenString reads a golden file and returns its string content.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	return string(MustReadGolden(t, path))
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// CaptureTemplateOutput runs render against a buffer and returns both the
// string result and what was written.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}
	return out, buf.String()
}
