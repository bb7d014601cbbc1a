// Package logging defines the leveled logger used across the service and a
// go-logger backed provider. Module loggers carry a "module" field so entries
// can be filtered per component.
package logging

import "context"

const (
	RootModule    = "wireframe"
	GatewayModule = "wireframe.gateway"
	StoreModule   = "wireframe.store"
	HTTPModule    = "wireframe.http"
	EditorModule  = "wireframe.editor"
	CLIModule     = "wireframe.cli"
)

// Logger mirrors the go-logger leveled contract.
type Logger interface {
	Trace(msg string, args ...any)
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Fatal(msg string, args ...any)
	WithFields(fields map[string]any) Logger
	WithContext(ctx context.Context) Logger
}

// Provider hands out named loggers.
type Provider interface {
	GetLogger(name string) Logger
}

// Module returns the logger for module, or a no-op logger when provider is nil.
func Module(provider Provider, module string) Logger {
	if module == "" {
		module = RootModule
	}
	if provider == nil {
		return NoOp()
	}
	logger := provider.GetLogger(module)
	if logger == nil {
		return NoOp()
	}
	return logger.WithFields(map[string]any{"module": module})
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

func (n noopLogger) WithFields(map[string]any) Logger   { return n }
func (n noopLogger) WithContext(context.Context) Logger { return n }
