package markdown_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-mdform/pkg/markdown"
)

const sourceWithForm = `---
title: " Feedback "
form: feedback
audience: beta
---
## Rendered from Markdown

<form data-form="feedback">
  <label>Name<br/><input type="text" name="name" required /></label><br/>
  <button type="submit">Send</button>
</form>
`

func TestConverter_KeepsEmbeddedForm(t *testing.T) {
	doc, err := markdown.NewConverter().Convert([]byte(sourceWithForm))
	if err != nil {
		t.Fatalf("convert: %v", err)
	}

	html := string(doc.HTML)
	for _, fragment := range []string{
		`<h2 id="rendered-from-markdown">Rendered from Markdown</h2>`,
		`<form data-form="feedback">`,
		`<input type="text" name="name" required />`,
		`<button type="submit">Send</button>`,
		`</form>`,
	} {
		if !strings.Contains(html, fragment) {
			t.Fatalf("expected html to contain %q\n%s", fragment, html)
		}
	}
	if strings.Contains(html, "title:") {
		t.Fatalf("front matter leaked into html:\n%s", html)
	}
}

func TestConverter_ParsesFrontMatter(t *testing.T) {
	doc, err := markdown.NewConverter().Convert([]byte(sourceWithForm))
	if err != nil {
		t.Fatalf("convert: %v", err)
	}

	if doc.Meta.Title != "Feedback" {
		t.Fatalf("expected trimmed title, got %q", doc.Meta.Title)
	}
	if doc.Meta.Form != "feedback" {
		t.Fatalf("expected form id, got %q", doc.Meta.Form)
	}
	if diff := cmp.Diff(map[string]any{"audience": "beta"}, doc.Meta.Extra); diff != "" {
		t.Fatalf("extra mismatch (-want +got):\n%s", diff)
	}
	if !strings.HasPrefix(strings.TrimSpace(string(doc.Body)), "## Rendered from Markdown") {
		t.Fatalf("expected body without front matter, got %q", doc.Body)
	}
}

func TestConverter_WithoutFrontMatter(t *testing.T) {
	doc, err := markdown.NewConverter().Convert([]byte("# Title\n\nplain *text*\n"))
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if doc.Meta.Title != "" {
		t.Fatalf("expected empty meta, got %+v", doc.Meta)
	}
	if !strings.Contains(string(doc.HTML), "<em>text</em>") {
		t.Fatalf("expected emphasis, got %s", doc.HTML)
	}
}

func TestConverter_WithoutRawHTMLDropsForm(t *testing.T) {
	doc, err := markdown.NewConverter(markdown.WithoutRawHTML()).Convert([]byte(sourceWithForm))
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if strings.Contains(string(doc.HTML), "<form") {
		t.Fatalf("expected raw html to be omitted, got %s", doc.HTML)
	}
}

func TestConverter_ExtensionSelection(t *testing.T) {
	source := []byte("| a | b |\n|---|---|\n| 1 | 2 |\n")

	withTables, err := markdown.NewConverter(markdown.WithExtensions("table")).Convert(source)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if !strings.Contains(string(withTables.HTML), "<table>") {
		t.Fatalf("expected table, got %s", withTables.HTML)
	}

	plain, err := markdown.NewConverter(markdown.WithExtensions("unknown")).Convert(source)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if strings.Contains(string(plain.HTML), "<table>") {
		t.Fatalf("expected no table without extension, got %s", plain.HTML)
	}
}
