// Package logging builds the structured logger shared by the pipeline.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// NewLogger creates a structured logger for service writing to stderr.
// LOG_FORMAT=json selects the JSON handler; text is the default.
func NewLogger(service string, level slog.Level) *slog.Logger {
	return New(os.Stderr, service, level, os.Getenv("LOG_FORMAT") == "json")
}

// New creates a structured logger writing to w.
func New(w io.Writer, service string, level slog.Level, json bool) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.Format(time.RFC3339))
				}
			}
			return a
		},
	}

	var handler slog.Handler
	if json {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler).With(slog.String("service", service))
}

// LevelFromEnv reads LOG_LEVEL, falling back to fallback when unset or
// unrecognized.
func LevelFromEnv(fallback slog.Level) slog.Level {
	level, ok := ParseLevel(os.Getenv("LOG_LEVEL"))
	if !ok {
		return fallback
	}
	return level
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}
