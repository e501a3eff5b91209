package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"
)

// GetEnvString reads key from the environment, falling back to def when the
// variable is unset or empty.
func GetEnvString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// GetEnvInt reads key as an integer. Unset and empty fall back silently;
// an unparseable value falls back with a warning so a typo in deployment
// config shows up in the logs instead of vanishing.
func GetEnvInt(key string, def int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}

	var v int
	if _, err := fmt.Sscanf(raw, "%d", &v); err != nil {
		slog.Warn("invalid integer value for environment variable, using default",
			slog.String("key", key),
			slog.String("value", raw),
			slog.Int("default", def),
			slog.String("error", err.Error()))
		return def
	}
	return v
}

// GetEnvDuration reads key as a time.ParseDuration value ("30s", "1h30m").
// Fallback behavior matches GetEnvInt.
func GetEnvDuration(key string, def time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}

	v, err := time.ParseDuration(raw)
	if err != nil {
		slog.Warn("invalid duration value for environment variable, using default",
			slog.String("key", key),
			slog.String("value", raw),
			slog.String("default", def.String()),
			slog.String("error", err.Error()))
		return def
	}
	return v
}
