package view

import (
	"io"

	"github.com/goliatone/go-mdform/pkg/theme"
)

// PageTemplate is the name of the built-in page template.
const PageTemplate = "page"

// PageData is the view model of the page template. Body must already be
// sanitized; it is written without escaping. Result is the pretty JSON of
// the latest submission and is escaped like any other text.
type PageData struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Body        string        `json:"body"`
	Result      string        `json:"result"`
	Theme       theme.Context `json:"theme"`
}

// RenderPage executes the page template.
func (e *Engine) RenderPage(data PageData, out ...io.Writer) (string, error) {
	return e.RenderTemplate(PageTemplate, data, out...)
}
