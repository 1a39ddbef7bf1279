package mdform

import (
	"context"
	"io/fs"
	"strings"
	"testing"
)

func TestDocumentsFSContainsFeedback(t *testing.T) {
	data, err := fs.ReadFile(DocumentsFS(), FeedbackDocument)
	if err != nil {
		t.Fatalf("expected feedback document to be readable: %v", err)
	}
	if !strings.Contains(string(data), `<form data-form="feedback">`) {
		t.Fatalf("expected feedback document to embed the form")
	}
}

func TestRenderFeedback(t *testing.T) {
	page, err := RenderFeedback(context.Background())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if page.Title != "Feedback" {
		t.Fatalf("expected front matter title, got %q", page.Title)
	}
	if len(page.Forms) != 1 || page.Forms[0].Name != "feedback" {
		t.Fatalf("expected the feedback form, got %+v", page.Forms)
	}
}
