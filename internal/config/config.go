// Package config loads the runtime settings for the mdform binaries.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-mdform/pkg/submission"
)

var (
	ErrAddrRequired         = errors.New("mdform config: server address is required")
	ErrMaxBodyBytesInvalid  = errors.New("mdform config: max body bytes must be positive")
	ErrListModeInvalid      = errors.New("mdform config: collect list mode is invalid")
	ErrLoggingLevelInvalid  = errors.New("mdform config: logging level is invalid")
	ErrLoggingFormatInvalid = errors.New("mdform config: logging format is invalid")
	ErrDocumentNotFound     = errors.New("mdform config: document path does not exist")
)

const configInvalidCode = "CONFIG_INVALID"

// Config aggregates every setting read from YAML and flags.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Document DocumentConfig `yaml:"document"`
	Theme    ThemeConfig    `yaml:"theme"`
	Collect  CollectConfig  `yaml:"collect"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Addr         string `yaml:"addr"`
	MaxBodyBytes int64  `yaml:"max_body_bytes"`
	// ResultFile, when set, receives a snapshot of the latest result.
	ResultFile string `yaml:"result_file"`
}

// DocumentConfig selects the Markdown source. An empty Path uses the
// embedded feedback document.
type DocumentConfig struct {
	Path string `yaml:"path"`
}

type ThemeConfig struct {
	Name    string `yaml:"name"`
	Variant string `yaml:"variant"`
	Dir     string `yaml:"dir"`
}

type CollectConfig struct {
	ListMode string `yaml:"list_mode"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig returns the settings used when no file is given.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Addr:         ":8383",
			MaxBodyBytes: 1 << 20,
		},
		Theme: ThemeConfig{
			Name:    "default",
			Variant: "light",
		},
		Collect: CollectConfig{
			ListMode: submission.ListRepeated.String(),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads path and merges it over DefaultConfig. An empty path returns
// the defaults. The merged config is validated before it is returned.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	path = strings.TrimSpace(path)
	if path == "" {
		return cfg, cfg.Validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("mdform config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, goerrors.Wrap(err, goerrors.CategoryValidation, "config file is not valid yaml").
			WithTextCode(configInvalidCode)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate returns the first failing check wrapped in a validation error.
// Each failure unwraps to one of the Err sentinels.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.Server.Addr) == "" {
		return wrapInvalid(ErrAddrRequired)
	}
	if cfg.Server.MaxBodyBytes <= 0 {
		return wrapInvalid(fmt.Errorf("%w: %d", ErrMaxBodyBytesInvalid, cfg.Server.MaxBodyBytes))
	}
	if _, err := submission.ParseListMode(cfg.Collect.ListMode); err != nil {
		return wrapInvalid(fmt.Errorf("%w: %s", ErrListModeInvalid, cfg.Collect.ListMode))
	}

	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return wrapInvalid(fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level))
	}
	if err := validation.Validate(cfg.Logging.Format, validation.In("", "json", "console", "pretty")); err != nil {
		return wrapInvalid(fmt.Errorf("%w: %s: %v", ErrLoggingFormatInvalid, cfg.Logging.Format, err))
	}

	if path := strings.TrimSpace(cfg.Document.Path); path != "" {
		if _, statErr := os.Stat(path); statErr != nil {
			return wrapInvalid(fmt.Errorf("%w: %s", ErrDocumentNotFound, path))
		}
	}
	return nil
}

// ListMode returns the parsed collection mode. Validate has already
// rejected unknown values.
func (cfg Config) ListMode() submission.ListMode {
	mode, _ := submission.ParseListMode(cfg.Collect.ListMode)
	return mode
}

func wrapInvalid(err error) error {
	return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid configuration").
		WithTextCode(configInvalidCode)
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}
