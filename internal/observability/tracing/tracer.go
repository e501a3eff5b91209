package tracing

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("cayman-monitor")

// GetTracer returns the process-wide tracer. Ingestion runs and entity
// resolution sweeps use it directly; HTTP requests go through Middleware.
func GetTracer() trace.Tracer {
	return tracer
}
