package logger

import (
	"log/slog"
	"os"
	"strings"

	"github.com/shopbook-ledger/internal/config"
)

// NewLogger builds the process-wide JSON logger. Every line carries the
// service name so the two binaries (server and reconciler) stay
// distinguishable in shared log storage. Source locations are recorded only
// at debug level.
func NewLogger(cfg *config.Config) *slog.Logger {
	level := parseLevel(cfg.Logging.Level)

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	})

	logger := slog.New(handler).With("service", cfg.Application.Name)
	logger.Info("Logger initialized", "level", level.String(), "env", cfg.Application.Env)

	return logger
}

// parseLevel maps the configured level string to a slog level, defaulting
// to info on anything unrecognized.
func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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
