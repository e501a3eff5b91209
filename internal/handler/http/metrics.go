package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/marchebantum/caymanmyass-sub002/internal/handler/http/pathutil"
	"github.com/marchebantum/caymanmyass-sub002/internal/handler/http/responsewriter"
	"github.com/marchebantum/caymanmyass-sub002/internal/observability/metrics"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsMiddleware records request duration, sizes, and status per route.
// Paths are normalized first so article and entity IDs do not blow up the
// path label cardinality.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics.ActiveConnections.Inc()
		defer metrics.ActiveConnections.Dec()

		route := pathutil.NormalizePath(r.URL.Path)
		rec := responsewriter.Wrap(w)

		start := time.Now()
		next.ServeHTTP(rec, r)

		requestSize := 0
		if r.ContentLength > 0 {
			requestSize = int(r.ContentLength)
		}

		metrics.RecordHTTPRequest(
			r.Method,
			route,
			strconv.Itoa(rec.StatusCode()),
			time.Since(start),
			requestSize,
			rec.BytesWritten(),
		)
	})
}

// MetricsHandler serves the Prometheus scrape endpoint.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
