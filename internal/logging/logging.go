// Package logging defines the leveled logger used across the module and the
// helpers that scope it per component.
package logging

import (
	"context"
	"maps"
)

// Logger is the leveled logging contract. It follows the shape of
// github.com/goliatone/go-logger so the gologger provider can adapt it
// without translation.
type Logger interface {
	Trace(msg string, args ...any)
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Fatal(msg string, args ...any)
	WithContext(ctx context.Context) Logger
}

// Provider hands out named loggers.
type Provider interface {
	GetLogger(name string) Logger
}

// FieldsLogger is implemented by loggers that can carry structured fields.
type FieldsLogger interface {
	WithFields(fields map[string]any) Logger
}

const (
	rootComponent     = "mdform"
	ServerComponent   = "mdform.server"
	PipelineComponent = "mdform.pipeline"
	PromptComponent   = "mdform.prompt"
)

// Component returns a logger scoped to name with a "component" field
// attached. A nil provider yields NoOp.
func Component(provider Provider, name string) Logger {
	if name == "" {
		name = rootComponent
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(name); provided != nil {
			logger = provided
		}
	}
	return WithFields(logger, map[string]any{"component": name})
}

// WithFields attaches fields when the logger supports them and returns it
// unchanged otherwise.
func WithFields(logger Logger, fields map[string]any) Logger {
	if logger == nil || len(fields) == 0 {
		return logger
	}
	if fieldsLogger, ok := logger.(FieldsLogger); ok {
		copied := make(map[string]any, len(fields))
		maps.Copy(copied, fields)
		return fieldsLogger.WithFields(copied)
	}
	return logger
}

// NoOp returns a logger that drops every entry.
func NoOp() Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) Logger { return n }

func (n noopLogger) WithContext(context.Context) Logger { return n }
