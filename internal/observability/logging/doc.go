// Package logging configures the process-wide slog logger.
//
// NewLogger builds a JSON handler whose level comes from LOG_LEVEL, and
// WithRequestID attaches the request ID carried in a context so every
// line of a request's log output can be correlated.
package logging
