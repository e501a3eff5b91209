// Package observability groups the monitoring subpackages: logging
// (slog setup), metrics (Prometheus registry and recorders), slo
// (availability and latency tracking), and tracing (OpenTelemetry
// request and pipeline spans).
package observability
