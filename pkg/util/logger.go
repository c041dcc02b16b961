package util

import (
	"io"
	"log/slog"
	"os"
)

// NewLogger logs to stdout. Development gets readable text at debug level,
// every other environment JSON at info.
func NewLogger(env string) *slog.Logger {
	return NewLoggerTo(os.Stdout, env)
}

func NewLoggerTo(w io.Writer, env string) *slog.Logger {
	if env == "development" {
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})).
			With("service", "rally")
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})).
		With("service", "rally")
}
