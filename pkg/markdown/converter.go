// Package markdown converts Markdown documents with embedded HTML into HTML
// fragments. Raw HTML passthrough is on by default so form markup survives
// conversion; the output is not safe to serve until it is sanitized.
package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
)

// Meta is the optional YAML front matter of a document.
type Meta struct {
	Title       string         `yaml:"title"`
	Description string         `yaml:"description"`
	Form        string         `yaml:"form"`
	Extra       map[string]any `yaml:",inline"`
}

// Document is a converted Markdown source.
type Document struct {
	Meta Meta
	// Body is the Markdown without front matter.
	Body []byte
	// HTML is the unsanitized conversion of Body.
	HTML []byte
}

// Option configures a Converter.
type Option func(*config)

type config struct {
	extensions []string
	hardWraps  bool
	rawHTML    bool
}

// WithExtensions selects goldmark extensions by name (gfm, table,
// strikethrough, linkify, tasklist, definition, footnote). Unknown names are
// ignored. Without this option GFM is enabled.
func WithExtensions(names ...string) Option {
	return func(cfg *config) {
		cfg.extensions = append(cfg.extensions, names...)
	}
}

// WithHardWraps renders soft line breaks as <br>.
func WithHardWraps() Option {
	return func(cfg *config) {
		cfg.hardWraps = true
	}
}

// WithoutRawHTML drops raw HTML from the output. Embedded forms disappear.
func WithoutRawHTML() Option {
	return func(cfg *config) {
		cfg.rawHTML = false
	}
}

// Converter renders Markdown to HTML. The goldmark engine is built once and
// reused; Convert is safe for concurrent use.
type Converter struct {
	engine goldmark.Markdown
}

// NewConverter builds a Converter from options.
func NewConverter(options ...Option) *Converter {
	cfg := config{rawHTML: true}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	return &Converter{engine: newEngine(cfg)}
}

// Convert strips front matter and renders the remaining Markdown.
func (c *Converter) Convert(source []byte) (Document, error) {
	meta, body, err := ParseFrontMatter(source)
	if err != nil {
		return Document{}, err
	}

	var buf bytes.Buffer
	if err := c.engine.Convert(body, &buf); err != nil {
		return Document{}, fmt.Errorf("markdown convert: %w", err)
	}

	return Document{
		Meta: meta,
		Body: body,
		HTML: buf.Bytes(),
	}, nil
}

// ParseFrontMatter splits YAML front matter from the Markdown body. Sources
// without front matter return an empty Meta and the source unchanged.
func ParseFrontMatter(source []byte) (Meta, []byte, error) {
	var meta Meta
	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return Meta{}, nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	meta.Title = strings.TrimSpace(meta.Title)
	meta.Description = strings.TrimSpace(meta.Description)
	meta.Form = strings.TrimSpace(meta.Form)
	return meta, body, nil
}

func newEngine(cfg config) goldmark.Markdown {
	rendererOptions := []renderer.Option{}
	if cfg.hardWraps {
		rendererOptions = append(rendererOptions, html.WithHardWraps())
	}
	if cfg.rawHTML {
		rendererOptions = append(rendererOptions, html.WithUnsafe())
	}

	engineOptions := []goldmark.Option{
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithExtensions(collectExtensions(cfg.extensions)...),
	}
	if len(rendererOptions) > 0 {
		engineOptions = append(engineOptions, goldmark.WithRendererOptions(rendererOptions...))
	}
	return goldmark.New(engineOptions...)
}

var extensionRegistry = map[string]goldmark.Extender{
	"gfm":           extension.GFM,
	"table":         extension.Table,
	"strikethrough": extension.Strikethrough,
	"linkify":       extension.Linkify,
	"tasklist":      extension.TaskList,
	"definition":    extension.DefinitionList,
	"footnote":      extension.Footnote,
}

func collectExtensions(names []string) []goldmark.Extender {
	if len(names) == 0 {
		return []goldmark.Extender{extension.GFM}
	}

	var out []goldmark.Extender
	seen := map[string]struct{}{}
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, ok := seen[key]; ok {
			continue
		}
		ext, ok := extensionRegistry[key]
		if !ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, ext)
	}
	return out
}
