package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

/* ───────── HTTP ───────── */

var (
	// HTTPRequestsTotal counts requests by method, normalized path and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration measures request duration in seconds.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	// HTTPRequestSize measures request body size in bytes.
	HTTPRequestSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_size_bytes",
		Help:    "HTTP request size in bytes",
		Buckets: prometheus.ExponentialBuckets(100, 10, 8),
	}, []string{"method", "path"})

	// HTTPResponseSize measures response body size in bytes.
	HTTPResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_response_size_bytes",
		Help:    "HTTP response size in bytes",
		Buckets: prometheus.ExponentialBuckets(100, 10, 8),
	}, []string{"method", "path"})

	// ActiveConnections tracks in-flight HTTP connections.
	ActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "http_active_connections",
		Help: "Number of active HTTP connections",
	})
)

/* ───────── 取り込みパイプライン ───────── */

var (
	// ArticlesTotal tracks how many articles the database holds.
	ArticlesTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "articles_total",
		Help: "Total number of articles in the database",
	})

	// ArticlesFetchedTotal counts raw records fetched from each source.
	ArticlesFetchedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "articles_fetched_total",
		Help: "Total number of article records fetched from sources",
	}, []string{"source"})

	// ArticlesStoredTotal counts articles stored after the dedup gate.
	ArticlesStoredTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "articles_stored_total",
		Help: "Total number of new articles stored",
	}, []string{"source"})

	// ArticlesDuplicateTotal counts records rejected as duplicates.
	// reason is url_hash, title or constraint.
	ArticlesDuplicateTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "articles_duplicate_total",
		Help: "Total number of duplicate records skipped",
	}, []string{"source", "reason"})

	// ArticlesRelevantTotal counts articles classified as relevant.
	ArticlesRelevantTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "articles_relevant_total",
		Help: "Total number of articles classified as relevant",
	}, []string{"source"})

	// IngestionRunsTotal counts runs by source and outcome.
	IngestionRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ingestion_runs_total",
		Help: "Total number of ingestion runs",
	}, []string{"source", "status"})

	// IngestionRunDuration measures wall time of a full run per source.
	IngestionRunDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ingestion_run_duration_seconds",
		Help:    "Time taken for an ingestion run",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	}, []string{"source"})

	// SourceFetchErrors counts fetch failures by source and error type.
	SourceFetchErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "source_fetch_errors_total",
		Help: "Total number of source fetch errors",
	}, []string{"source", "error_type"})

	// NewsAPIQuotaRemaining tracks requests left in the current quota period.
	NewsAPIQuotaRemaining = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "newsapi_quota_remaining",
		Help: "Remaining NewsAPI requests in the current quota period",
	})
)

/* ───────── エンティティ解決 ───────── */

var (
	// EntitiesTotal tracks how many monitored entities exist.
	EntitiesTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "monitored_entities_total",
		Help: "Total number of monitored entities",
	})

	// EntityMentionsTotal counts mentions recorded during resolution.
	EntityMentionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "entity_mentions_total",
		Help: "Total number of entity mentions recorded",
	}, []string{"entity_type"})

	// ResolutionDuration measures time to resolve entities for one article.
	ResolutionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "entity_resolution_duration_seconds",
		Help:    "Time taken to resolve entities for an article",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
	})

	// ReviewItemsTotal counts items enqueued for manual review.
	ReviewItemsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "review_items_total",
		Help: "Total number of items enqueued for manual review",
	}, []string{"item_type"})
)

/* ───────── データベース ───────── */

var (
	// DBQueryDuration measures query duration by named operation.
	DBQueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Database query duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 10),
	}, []string{"operation"})

	// DBConnectionsActive tracks in-use pool connections.
	DBConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "db_connections_active",
		Help: "Number of active database connections",
	})

	// DBConnectionsIdle tracks idle pool connections.
	DBConnectionsIdle = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "db_connections_idle",
		Help: "Number of idle database connections",
	})
)

// RecordHTTPRequest records one served request. Sizes of zero are not
// observed so missing Content-Length headers do not skew the histograms.
func RecordHTTPRequest(method, path, status string, duration time.Duration, requestSize, responseSize int) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
	if requestSize > 0 {
		HTTPRequestSize.WithLabelValues(method, path).Observe(float64(requestSize))
	}
	if responseSize > 0 {
		HTTPResponseSize.WithLabelValues(method, path).Observe(float64(responseSize))
	}
}

// RecordOperationDuration records the duration of a named database operation.
func RecordOperationDuration(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
