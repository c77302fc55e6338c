// Package logging defines the structured-logging interface used across
// qaboard, with slog and zerolog implementations.
package logging

import (
	"context"
	"io"
	"strings"
)

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key–value pairs, e.g.:
//
//	log.Info(ctx, "request", "method", "GET", "status", 200)
type Logger interface {
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key–value pairs.
	With(args ...any) Logger
}

const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// New returns a JSON slog logger, or a human-readable zerolog logger when
// format is "console".
func New(format string, w io.Writer) Logger {
	if strings.EqualFold(format, FormatConsole) {
		return NewConsoleLogger(w)
	}
	return NewJSONLogger(w)
}
