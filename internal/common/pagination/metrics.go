package pagination

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RequestsTotal counts list requests by status code and page bucket.
var RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "article_pagination_requests_total",
	Help: "Total number of pagination requests",
}, []string{"status", "page_range"})

// DurationSeconds tracks how long a paginated list takes per layer
// (handler, service, repository).
var DurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "article_pagination_duration_seconds",
	Help:    "Request duration distribution",
	Buckets: []float64{0.01, 0.05, 0.1, 0.2, 0.5, 1.0, 2.0},
}, []string{"operation"})

// TotalCount mirrors the article COUNT from the most recent list query.
var TotalCount = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "article_total_count",
	Help: "Current total number of articles",
})

// ErrorsTotal counts list failures by type (validation, database, timeout).
var ErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "article_pagination_errors_total",
	Help: "Total number of pagination errors",
}, []string{"type"})

// RecordRequest records a completed list request.
func RecordRequest(statusCode, page int) {
	RequestsTotal.WithLabelValues(strconv.Itoa(statusCode), pageRangeBucket(page)).Inc()
}

// RecordDuration records operation duration in seconds.
func RecordDuration(operation string, duration float64) {
	DurationSeconds.WithLabelValues(operation).Observe(duration)
}

// UpdateTotalCount updates the article count gauge.
func UpdateTotalCount(count int64) {
	TotalCount.Set(float64(count))
}

// RecordError records a list failure.
func RecordError(errorType string) {
	ErrorsTotal.WithLabelValues(errorType).Inc()
}

// Deep pages are rare enough that coarse buckets keep cardinality low.
func pageRangeBucket(page int) string {
	switch {
	case page <= 10:
		return "1-10"
	case page <= 50:
		return "11-50"
	case page <= 100:
		return "51-100"
	default:
		return "100+"
	}
}
