// Package mdform renders Markdown documents that embed an HTML form and
// collects what the form submits.
package mdform

import (
	"context"
	"embed"
	"io/fs"

	"github.com/goliatone/go-mdform/pkg/pipeline"
)

// FeedbackDocument is the name of the bundled sample document.
const FeedbackDocument = "feedback.md"

//go:embed documents/*.md
var embeddedDocuments embed.FS

// DocumentsFS exposes the bundled Markdown documents.
func DocumentsFS() fs.FS {
	sub, err := fs.Sub(embeddedDocuments, "documents")
	if err != nil {
		return embeddedDocuments
	}
	return sub
}

// Feedback returns the source of the bundled feedback document.
func Feedback() []byte {
	data, err := fs.ReadFile(DocumentsFS(), FeedbackDocument)
	if err != nil {
		panic("mdform: bundled feedback document missing: " + err.Error())
	}
	return data
}

// RenderFeedback runs the bundled document through the page pipeline.
func RenderFeedback(ctx context.Context, opts ...pipeline.Option) (pipeline.Page, error) {
	return pipeline.New(opts...).Render(ctx, Feedback())
}
