// Package tracing wires OpenTelemetry spans through the service.
//
// The HTTP read API is traced by Middleware, which joins incoming W3C
// trace context and records method, path, and status on each span. The
// worker traces its long operations directly through GetTracer: each
// ingestion run opens an "ingest.<source>" span and each resolution sweep
// opens "resolve.sweep".
//
// Exporter configuration is left to the host process; without one the
// global no-op provider keeps the instrumentation free.
package tracing
