package core

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	tlog "go.temporal.io/sdk/log"
)

// NewLogger creates the process logger: a slog text handler on stdout
func NewLogger(level slog.Level) *slog.Logger {
	return newLogger(os.Stdout, level)
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTemporalLogger adapts a slog logger for the Temporal SDK.
// quiet drops every warning; HTTP 204 warnings are always dropped.
func NewTemporalLogger(base *slog.Logger, quiet bool) tlog.Logger {
	handler := base.Handler()
	if quiet {
		handler = &WarningFilter{handler: handler}
	}
	return NewFilteredLogger(tlog.NewStructuredLogger(slog.New(handler)))
}

// WarningFilter filters out warning-level log messages
type WarningFilter struct {
	handler slog.Handler
}

// Enabled returns whether the handler should process a log record at the given level
func (w *WarningFilter) Enabled(ctx context.Context, level slog.Level) bool {
	// Warnings never reach the wrapped handler; info and errors pass through
	if level == slog.LevelWarn {
		return false
	}
	return w.handler.Enabled(ctx, level)
}

// Handle processes a log record, skipping warnings
func (w *WarningFilter) Handle(ctx context.Context, record slog.Record) error {
	// Drop warnings that slipped past Enabled
	if record.Level == slog.LevelWarn {
		return nil
	}
	return w.handler.Handle(ctx, record)
}

// WithAttrs keeps the filter around a handler with extra attributes
func (w *WarningFilter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &WarningFilter{handler: w.handler.WithAttrs(attrs)}
}

// WithGroup keeps the filter around a grouped handler
func (w *WarningFilter) WithGroup(name string) slog.Handler {
	return &WarningFilter{handler: w.handler.WithGroup(name)}
}

// FilteredLogger wraps a Temporal logger and filters out specific warning messages
type FilteredLogger struct {
	logger tlog.Logger
}

// NewFilteredLogger creates a new filtered logger that suppresses HTTP 204 warnings
func NewFilteredLogger(logger tlog.Logger) *FilteredLogger {
	return &FilteredLogger{logger: logger}
}

// shouldFilter matches the SDK warning about 204 responses without a content type
func (f *FilteredLogger) shouldFilter(msg string) bool {
	// Both parts must match so unrelated 204 or header warnings still show
	return strings.Contains(msg, "204 (No Content)") &&
		strings.Contains(msg, "malformed header: missing HTTP content-typ")
}

// Debug forwards a debug message
func (f *FilteredLogger) Debug(msg string, keyvals ...interface{}) {
	f.logger.Debug(msg, keyvals...)
}

// Info forwards an info message
func (f *FilteredLogger) Info(msg string, keyvals ...interface{}) {
	f.logger.Info(msg, keyvals...)
}

// Warn logs a warning message, but filters out the HTTP 204 warning
func (f *FilteredLogger) Warn(msg string, keyvals ...interface{}) {
	if f.shouldFilter(msg) {
		// Known SDK noise, nothing to act on
		return
	}
	f.logger.Warn(msg, keyvals...)
}

// Error forwards an error message
func (f *FilteredLogger) Error(msg string, keyvals ...interface{}) {
	f.logger.Error(msg, keyvals...)
}

// With returns a new logger with additional key-value pairs
func (f *FilteredLogger) With(keyvals ...interface{}) tlog.Logger {
	return &FilteredLogger{logger: tlog.With(f.logger, keyvals...)}
}
