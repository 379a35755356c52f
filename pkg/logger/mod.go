// Package logger wraps charmbracelet/log behind a small interface that is
// carried through context.Context.
package logger

import (
	"context"
	"io"
	"os"
	"sync/atomic"

	charmlog "github.com/charmbracelet/log"
)

// Logger is the structured logger used across wrfconf.
type Logger interface {
	Debug(msg string, keyvals ...any)
	Info(msg string, keyvals ...any)
	Warn(msg string, keyvals ...any)
	Error(msg string, keyvals ...any)
	With(keyvals ...any) Logger
}

type LogLevel string

const (
	DebugLevel    LogLevel = "debug"
	InfoLevel     LogLevel = "info"
	WarnLevel     LogLevel = "warn"
	ErrorLevel    LogLevel = "error"
	DisabledLevel LogLevel = "disabled"
)

const timeFormat = "15:04:05"

// ToCharmlogLevel maps a level name onto charm's scale; unknown names mean info.
func (l LogLevel) ToCharmlogLevel() charmlog.Level {
	switch l {
	case DebugLevel:
		return charmlog.DebugLevel
	case WarnLevel:
		return charmlog.WarnLevel
	case ErrorLevel:
		return charmlog.ErrorLevel
	case DisabledLevel:
		return charmlog.Level(1000)
	}
	return charmlog.InfoLevel
}

type Config struct {
	Level     LogLevel
	Output    io.Writer
	JSON      bool
	AddSource bool
}

// TestConfig discards everything.
func TestConfig() *Config {
	return &Config{Level: DisabledLevel, Output: io.Discard}
}

type charmLogger struct {
	l *charmlog.Logger
}

func (c charmLogger) Debug(msg string, keyvals ...any) { c.l.Debug(msg, keyvals...) }
func (c charmLogger) Info(msg string, keyvals ...any)  { c.l.Info(msg, keyvals...) }
func (c charmLogger) Warn(msg string, keyvals ...any)  { c.l.Warn(msg, keyvals...) }
func (c charmLogger) Error(msg string, keyvals ...any) { c.l.Error(msg, keyvals...) }

func (c charmLogger) With(keyvals ...any) Logger {
	return charmLogger{l: c.l.With(keyvals...)}
}

// NewLogger builds a logger from cfg. A nil cfg logs info and above to stderr.
func NewLogger(cfg *Config) Logger {
	if cfg == nil {
		cfg = &Config{Level: InfoLevel}
	}
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	formatter := charmlog.TextFormatter
	if cfg.JSON {
		formatter = charmlog.JSONFormatter
	}
	return charmLogger{l: charmlog.NewWithOptions(out, charmlog.Options{
		Level:           cfg.Level.ToCharmlogLevel(),
		ReportCaller:    cfg.AddSource,
		ReportTimestamp: true,
		TimeFormat:      timeFormat,
		Formatter:       formatter,
	})}
}

var fallback atomic.Pointer[Logger]

// SetDefault replaces the logger FromContext returns when the context has none.
func SetDefault(l Logger) {
	fallback.Store(&l)
}

// Default returns the process-wide logger, creating it on first use.
func Default() Logger {
	if l := fallback.Load(); l != nil {
		return *l
	}
	l := NewLogger(nil)
	fallback.CompareAndSwap(nil, &l)
	return *fallback.Load()
}

// SetupLogger installs and returns the default logger for the CLI settings.
// Unknown levels fall back to info.
func SetupLogger(level string, json, source bool) Logger {
	l := NewLogger(&Config{Level: LogLevel(level), Output: os.Stderr, JSON: json, AddSource: source})
	SetDefault(l)
	return l
}

type contextKey struct{}

func ContextWithLogger(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// FromContext returns the logger stored in ctx, or Default.
func FromContext(ctx context.Context) Logger {
	if ctx != nil {
		if l, ok := ctx.Value(contextKey{}).(Logger); ok && l != nil {
			return l
		}
	}
	return Default()
}
