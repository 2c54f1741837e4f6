package logging

import (
	"io"
	"log/slog"
	"os"
)

const (
	envLocal = "local"
	envDev   = "dev"
)

// Setup installs the process-wide logger for env and returns it. Local runs
// get human readable text, everything else JSON.
func Setup(env string) *slog.Logger {
	logger := New(os.Stdout, env)
	slog.SetDefault(logger)
	return logger
}

func New(w io.Writer, env string) *slog.Logger {
	switch env {
	case envLocal:
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envDev:
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	default:
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
}
