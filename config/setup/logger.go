package setup

import (
	"io"
	"log/slog"
	"strings"

	"notesync/config"
)

// NewLogger returns a JSON logger in production and a text logger otherwise.
func NewLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level:     LogLevel(cfg.LogLevel),
		AddSource: cfg.Env == "development" && LogLevel(cfg.LogLevel) == slog.LevelDebug,
	}

	if cfg.IsProduction() {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

func LogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
