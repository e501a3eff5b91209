// Package logging builds the slog JSON loggers used by the api and worker
// binaries and decorates them with request-scoped fields.
package logging

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/marchebantum/caymanmyass-sub002/internal/handler/http/requestid"
	appconfig "github.com/marchebantum/caymanmyass-sub002/pkg/config"
)

// NewLogger returns a JSON logger writing to stdout. LOG_LEVEL selects the
// minimum level (debug, info, warn, error; default info). Source locations
// are attached unless the logger only emits errors.
func NewLogger() *slog.Logger {
	level := parseLevel(appconfig.GetEnvString("LOG_LEVEL", "info"))

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:     level,
		AddSource: level <= slog.LevelWarn,
	})
	return slog.New(handler)
}

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

// WithRequestID returns logger with the context's request ID attached, so
// every line a handler writes can be tied back to one request.
func WithRequestID(ctx context.Context, logger *slog.Logger) *slog.Logger {
	reqID := requestid.FromContext(ctx)
	if reqID == "" {
		return logger
	}
	return logger.With("request_id", reqID)
}
