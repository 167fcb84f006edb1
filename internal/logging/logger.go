// Package logging builds the structured slog logger used across the service.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/iliyamo/auth-rbac/internal/config"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

// New returns a logger for the configured environment: text output locally,
// JSON everywhere else.  LOG_FORMAT and LOG_LEVEL override the defaults.
func New(env string, cfg config.LogConfig) *slog.Logger {
	return newWithWriter(os.Stdout, env, cfg)
}

func newWithWriter(w io.Writer, env string, cfg config.LogConfig) *slog.Logger {
	level := parseLevel(cfg.Level)
	format := strings.ToLower(cfg.Format)
	if format == "" {
		format = "json"
		if env == envLocal {
			format = "text"
		}
	}
	if env == envLocal && cfg.Level == "" {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if format == "text" {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	handler = handler.WithAttrs([]slog.Attr{
		slog.String("service", "auth-rbac"),
		slog.String("env", env),
	})
	return slog.New(handler)
}

// parseLevel converts a string log level to slog.Level, defaulting to info.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

// Discard is a logger that drops every record.  Tests use it when log
// output is irrelevant.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}
