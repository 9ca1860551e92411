package logging

import (
	"io"
	"log/slog"
	"strings"

	"github.com/bornholm/go-x/slogx"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

// New builds the process logger. Unknown formats fall back to text.
func New(w io.Writer, level slog.Level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level <= slog.LevelDebug,
	}

	var handler slog.Handler
	switch strings.ToLower(format) {
	case FormatJSON:
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(slogx.ContextHandler{
		Handler: handler,
	})
}

// ParseLevel maps a level name to a slog.Level. Unknown names yield warn.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
