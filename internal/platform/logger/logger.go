// Package logger sets up the slog logger used by every NearYou binary,
// following the teacher's tint-in-dev / JSON-in-prod convention.
package logger

import (
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

// New builds a *slog.Logger for the given environment ("development" or
// anything else, treated as production) and level.
func New(environment, level string) *slog.Logger {
	lvl := parseLevel(level)

	if environment == "development" || environment == "" {
		opts := &tint.Options{
			Level:      lvl,
			TimeFormat: time.Kitchen,
			AddSource:  true,
		}
		return slog.New(tint.NewHandler(os.Stdout, opts))
	}

	opts := &slog.HandlerOptions{
		Level:     lvl,
		AddSource: false,
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func parseLevel(level string) slog.Level {
	switch level {
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
