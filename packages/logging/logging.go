// Package logging builds the service's slog logger and threads a
// request-scoped copy of it through contexts.
//
// Log format is controlled by LOG_FORMAT (json, the default, or text) and the
// level by LOG_LEVEL (debug, info, warn, error; default info).
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/chainguard-dev/clog"
)

// New returns a logger configured from environment variables.
func New() *slog.Logger {
	return NewWithWriter(os.Stdout, os.Getenv("LOG_FORMAT"), os.Getenv("LOG_LEVEL"))
}

// NewWithWriter returns a logger writing to w with the given format and level.
func NewWithWriter(w io.Writer, format, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler
	switch strings.ToLower(format) {
	case "text", "console":
		handler = slog.NewTextHandler(w, opts)
	default:
		handler = slog.NewJSONHandler(w, opts)
	}

	return slog.New(handler)
}

// WithLogger returns a context carrying l for FromContext.
func WithLogger(ctx context.Context, l *slog.Logger) context.Context {
	return clog.WithLogger(ctx, clog.NewLogger(l))
}

// FromContext returns the request-scoped logger, or the default logger when
// none was attached.
func FromContext(ctx context.Context) *clog.Logger {
	return clog.FromContext(ctx)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
