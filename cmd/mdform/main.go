package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	mdform "github.com/goliatone/go-mdform"
	"github.com/goliatone/go-mdform/internal/config"
	"github.com/goliatone/go-mdform/internal/logging"
	"github.com/goliatone/go-mdform/internal/logging/gologger"
	"github.com/goliatone/go-mdform/pkg/contract"
	"github.com/goliatone/go-mdform/pkg/htmlform"
	"github.com/goliatone/go-mdform/pkg/pipeline"
	"github.com/goliatone/go-mdform/pkg/prompt"
	"github.com/goliatone/go-mdform/pkg/server"
	"github.com/goliatone/go-mdform/pkg/submission"
	"github.com/goliatone/go-mdform/pkg/theme"
	"github.com/goliatone/go-mdform/pkg/view"
)

const usage = `Usage: %s <command> [flags]

Render a Markdown document with an embedded form and collect its submissions.

Commands:
  serve      serve the page and collect submissions over HTTP
  render     write the rendered page to stdout or a file
  fill       fill the form from the terminal and print the result
  contract   print the OpenAPI contract of the submit endpoint

Run "%s <command> -h" for the flags of a command.
`

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "mdform: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	name := filepath.Base(os.Args[0])
	if len(args) == 0 {
		fmt.Fprintf(os.Stderr, usage, name, name)
		return errors.New("missing command")
	}

	switch args[0] {
	case "serve":
		return runServe(args[1:])
	case "render":
		return runRender(args[1:], stdout)
	case "fill":
		return runFill(args[1:], stdout)
	case "contract":
		return runContract(args[1:], stdout)
	case "-h", "--help", "help":
		fmt.Fprintf(stdout, usage, name, name)
		return nil
	default:
		fmt.Fprintf(os.Stderr, usage, name, name)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

// commonFlags are shared by every command and override the config file.
type commonFlags struct {
	configPath string
	document   string
	themeName  string
	variant    string
	themeDir   string
	listMode   string
	logLevel   string
	logFormat  string
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configPath, "config", "", "YAML config file")
	fs.StringVar(&c.document, "document", "", "Markdown document (embedded feedback form if empty)")
	fs.StringVar(&c.themeName, "theme", "", "theme name")
	fs.StringVar(&c.variant, "variant", "", "theme variant")
	fs.StringVar(&c.themeDir, "theme-dir", "", "directory with an extra theme manifest")
	fs.StringVar(&c.listMode, "list-mode", "", "repeated or always")
	fs.StringVar(&c.logLevel, "log-level", "", "log level")
	fs.StringVar(&c.logFormat, "log-format", "", "json, console or pretty")
}

// load reads the config file and applies the flags set on the command line.
func (c *commonFlags) load() (config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return config.Config{}, err
	}
	override(&cfg.Document.Path, c.document)
	override(&cfg.Theme.Name, c.themeName)
	override(&cfg.Theme.Variant, c.variant)
	override(&cfg.Theme.Dir, c.themeDir)
	override(&cfg.Collect.ListMode, c.listMode)
	override(&cfg.Logging.Level, c.logLevel)
	override(&cfg.Logging.Format, c.logFormat)
	return cfg, cfg.Validate()
}

func override(dst *string, value string) {
	if value = strings.TrimSpace(value); value != "" {
		*dst = value
	}
}

// app holds what every command builds from the config.
type app struct {
	cfg      config.Config
	provider logging.Provider
	page     pipeline.Page
}

func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	provider, err := gologger.NewProvider(gologger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		return nil, err
	}

	source := mdform.Feedback()
	if path := strings.TrimSpace(cfg.Document.Path); path != "" {
		if source, err = os.ReadFile(path); err != nil {
			return nil, fmt.Errorf("read document: %w", err)
		}
	}

	renderer := pipeline.New(pipeline.WithLogger(logging.Component(provider, logging.PipelineComponent)))
	page, err := renderer.Render(ctx, source)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, provider: provider, page: page}, nil
}

func (a *app) theme() (theme.Context, error) {
	opts := []theme.Option{theme.WithDefaults(a.cfg.Theme.Name, a.cfg.Theme.Variant)}
	if dir := strings.TrimSpace(a.cfg.Theme.Dir); dir != "" {
		opts = append(opts, theme.WithManifestDir(dir))
	}
	resolver, err := theme.NewResolver(opts...)
	if err != nil {
		return theme.Context{}, err
	}
	return resolver.Resolve(a.cfg.Theme.Name, a.cfg.Theme.Variant)
}

func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	var common commonFlags
	common.register(fs)
	addr := fs.String("addr", "", "listen address")
	resultFile := fs.String("result-file", "", "file that mirrors the latest result")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := common.load()
	if err != nil {
		return err
	}
	override(&cfg.Server.Addr, *addr)
	override(&cfg.Server.ResultFile, *resultFile)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	selected, err := a.theme()
	if err != nil {
		return err
	}

	srv, err := server.New(a.page,
		server.WithTheme(selected),
		server.WithCollector(submission.NewCollector(submission.WithListMode(cfg.ListMode()))),
		server.WithMaxBodyBytes(cfg.Server.MaxBodyBytes),
		server.WithSnapshotFile(cfg.Server.ResultFile),
		server.WithLogger(logging.Component(a.provider, logging.ServerComponent)),
	)
	if err != nil {
		return err
	}
	return srv.Run(ctx, cfg.Server.Addr, server.DefaultShutdownGrace)
}

func runRender(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	var common commonFlags
	common.register(fs)
	output := fs.String("output", "", "output file (stdout if empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := common.load()
	if err != nil {
		return err
	}
	a, err := newApp(context.Background(), cfg)
	if err != nil {
		return err
	}
	selected, err := a.theme()
	if err != nil {
		return err
	}
	engine, err := view.New()
	if err != nil {
		return err
	}
	html, err := engine.RenderPage(view.PageData{
		Title:       a.page.Title,
		Description: a.page.Description,
		Body:        a.page.HTML,
		Theme:       selected,
	})
	if err != nil {
		return err
	}

	if *output != "" {
		if err := os.WriteFile(*output, []byte(html), 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Fprintf(stdout, "Page written to %s\n", *output)
		return nil
	}
	_, err = io.WriteString(stdout, html)
	return err
}

func runFill(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("fill", flag.ContinueOnError)
	var common commonFlags
	common.register(fs)
	formName := fs.String("form", "", "form to fill (front matter form, else the first)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := common.load()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	form, ok := a.page.Form()
	if *formName != "" {
		form, ok = htmlform.Lookup(a.page.Forms, *formName)
	}
	if !ok {
		return fmt.Errorf("document has no form %q", *formName)
	}

	filler := prompt.New(prompt.WithLogger(logging.Component(a.provider, logging.PromptComponent)))
	entries, err := filler.Fill(ctx, form)
	if err != nil {
		return err
	}

	result := submission.NewCollector(submission.WithListMode(cfg.ListMode())).Collect(entries)
	pretty, err := result.Pretty()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, string(pretty))
	return err
}

func runContract(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("contract", flag.ContinueOnError)
	var common commonFlags
	common.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := common.load()
	if err != nil {
		return err
	}
	ctx := context.Background()
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	doc, err := contract.Build(ctx, a.page.Forms, contract.Options{
		Title:    a.page.Title,
		ListMode: cfg.ListMode(),
	})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
