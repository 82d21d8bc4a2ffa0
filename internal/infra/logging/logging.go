package logging

import (
	"io"
	"log/slog"
	"os"
)

// SetupJSON sets slog's default logger to JSON on stdout at the given level
// and returns it tagged with the service name.
func SetupJSON(service string, level slog.Level) *slog.Logger {
	logger := NewJSON(os.Stdout, service, level)
	slog.SetDefault(logger)

	return logger
}

func NewJSON(w io.Writer, service string, level slog.Level) *slog.Logger {
	return slog.New(
		slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}),
	).With("service", service)
}
