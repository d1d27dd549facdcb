package logger

import (
	"log/slog"
	"strings"
)

// HandlerFunc builds a slog.Handler for the resolved level.
type HandlerFunc func(level slog.Level) slog.Handler

func New(level string, handler HandlerFunc) *slog.Logger {
	h := handler(ParseLevel(level))
	return slog.New(h)
}

// ParseLevel maps LOGLEVEL values onto slog levels. Unknown values resolve to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
