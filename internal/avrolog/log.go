// Package avrolog wraps log/slog with the handler-selection helper the
// rest of the pack uses instead of reaching for a structured-logging
// library: a Format enum and one constructor that picks the handler.
package avrolog

import (
	"io"
	"log/slog"
)

// Format selects the slog handler's output shape.
type Format string

const (
	JSON   Format = "json"
	Logfmt Format = "logfmt"
)

// CreateHandler builds a slog.Handler writing to w at the given level,
// in either JSON or logfmt ("text") form.
func CreateHandler(w io.Writer, level slog.Level, format Format) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if format == JSON {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// Default is the package logger used by components that have no reason
// to carry their own *slog.Logger — builder-cache diagnostics and
// schema-parse warnings, both Debug-level and both safe to drop silently
// in production.
var Default = slog.New(CreateHandler(io.Discard, slog.LevelInfo, Logfmt))

// SetOutput redirects Default's handler, e.g. to os.Stderr in a binary's
// main(). Libraries should not call this; it exists for callers that
// embed this package directly into a program.
func SetOutput(w io.Writer, level slog.Level, format Format) {
	Default = slog.New(CreateHandler(w, level, format))
}
