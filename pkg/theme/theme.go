// Package theme resolves go-theme manifests into the values the page
// template needs.
package theme

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	gotheme "github.com/goliatone/go-theme"
)

const (
	DefaultName    = "default"
	DefaultVariant = "light"
)

// Context is what templates see of the active theme.
type Context struct {
	Name    string            `json:"name"`
	Variant string            `json:"variant"`
	Tokens  map[string]string `json:"tokens"`
	CSSVars map[string]string `json:"css_vars"`
	// Stylesheet is a :root rule declaring CSSVars, ready for a <style>
	// element.
	Stylesheet string `json:"stylesheet"`
}

// DefaultManifest is the built-in theme with a light and a dark variant.
func DefaultManifest() *gotheme.Manifest {
	return &gotheme.Manifest{
		Name:    DefaultName,
		Version: "1.0.0",
		Tokens: map[string]string{
			"color-bg":     "#ffffff",
			"color-text":   "#1f2933",
			"color-muted":  "#52606d",
			"color-accent": "#2563eb",
			"color-border": "#cbd2d9",
			"font-family":  "system-ui, sans-serif",
			"radius":       "6px",
		},
		Variants: map[string]gotheme.Variant{
			"light": {},
			"dark": {
				Tokens: map[string]string{
					"color-bg":     "#111827",
					"color-text":   "#f3f4f6",
					"color-muted":  "#9ca3af",
					"color-border": "#374151",
				},
			},
		},
	}
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithDefaults changes the theme and variant used when Resolve gets empty
// names.
func WithDefaults(name, variant string) Option {
	return func(r *Resolver) {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			r.defaultTheme = trimmed
		}
		if trimmed := strings.TrimSpace(variant); trimmed != "" {
			r.defaultVariant = trimmed
		}
	}
}

// WithManifest registers an additional manifest.
func WithManifest(manifest *gotheme.Manifest) Option {
	return func(r *Resolver) {
		if manifest != nil {
			r.pending = append(r.pending, manifest)
		}
	}
}

// WithManifestDir loads a manifest from dir when the resolver is built.
func WithManifestDir(dir string) Option {
	return func(r *Resolver) {
		if trimmed := strings.TrimSpace(dir); trimmed != "" {
			r.dirs = append(r.dirs, trimmed)
		}
	}
}

// Resolver wraps a go-theme registry seeded with DefaultManifest.
type Resolver struct {
	registry       *gotheme.MemoryRegistry
	defaultTheme   string
	defaultVariant string

	pending []*gotheme.Manifest
	dirs    []string
}

func NewResolver(opts ...Option) (*Resolver, error) {
	r := &Resolver{
		registry:       gotheme.NewRegistry(),
		defaultTheme:   DefaultName,
		defaultVariant: DefaultVariant,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}

	manifests := append([]*gotheme.Manifest{DefaultManifest()}, r.pending...)
	for _, dir := range r.dirs {
		manifest, err := LoadDir(dir)
		if err != nil {
			return nil, err
		}
		manifests = append(manifests, manifest)
	}
	for _, manifest := range manifests {
		if err := r.registry.Register(manifest); err != nil {
			return nil, fmt.Errorf("theme: register %q: %w", manifest.Name, err)
		}
	}
	r.pending, r.dirs = nil, nil
	return r, nil
}

// LoadDir reads the manifest stored in dir.
func LoadDir(dir string) (*gotheme.Manifest, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, fmt.Errorf("theme: manifest dir required")
	}
	cleaned := filepath.Clean(dir)
	manifest, err := gotheme.LoadDir(os.DirFS(cleaned), ".")
	if err != nil {
		return nil, fmt.Errorf("theme: load manifest from %s: %w", cleaned, err)
	}
	if strings.TrimSpace(manifest.Name) == "" {
		manifest.Name = filepath.Base(cleaned)
	}
	return manifest, nil
}

// Resolve selects name and variant, falling back to the defaults.
func (r *Resolver) Resolve(name, variant string) (Context, error) {
	selector := gotheme.Selector{
		Registry:       r.registry,
		DefaultTheme:   r.defaultTheme,
		DefaultVariant: r.defaultVariant,
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = r.defaultTheme
	}
	variant = strings.TrimSpace(variant)
	if variant == "" {
		variant = r.defaultVariant
	}

	selection, err := selector.Select(name, variant)
	if err != nil {
		return Context{}, fmt.Errorf("theme: select %s/%s: %w", name, variant, err)
	}
	return FromSelection(selection), nil
}

// FromSelection converts a go-theme selection. A nil selection yields an
// empty context with non-nil maps.
func FromSelection(selection *gotheme.Selection) Context {
	ctx := Context{
		Tokens:  map[string]string{},
		CSSVars: map[string]string{},
	}
	if selection == nil {
		return ctx
	}

	ctx.Name = selection.Theme
	ctx.Variant = selection.Variant
	if tokens := selection.Tokens(); tokens != nil {
		ctx.Tokens = tokens
	}
	if vars := selection.CSSVariables(""); vars != nil {
		ctx.CSSVars = vars
	}
	ctx.Stylesheet = Stylesheet(ctx.CSSVars)
	return ctx
}

// Stylesheet renders vars as a single :root rule with sorted declarations.
// Values cannot close the surrounding <style> element.
func Stylesheet(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(":root {\n")
	for _, name := range names {
		property := strings.TrimSpace(name)
		if !strings.HasPrefix(property, "--") {
			property = "--" + property
		}
		value := strings.NewReplacer("<", "", ">", "", ";", "", "{", "", "}", "").Replace(vars[name])
		fmt.Fprintf(&b, "  %s: %s;\n", cssSafe(property), strings.TrimSpace(value))
	}
	b.WriteString("}")
	return b.String()
}

func cssSafe(property string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return -1
		}
	}, property)
}
