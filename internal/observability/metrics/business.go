package metrics

import (
	"time"
)

// RecordArticlesFetched records the number of raw records fetched from a source.
// This metric helps track source activity and fetch volume over time.
func RecordArticlesFetched(source string, count int) {
	ArticlesFetchedTotal.WithLabelValues(source).Add(float64(count))
}

// RecordArticleStored records a new article that passed the dedup gate.
func RecordArticleStored(source string) {
	ArticlesStoredTotal.WithLabelValues(source).Inc()
}

// RecordArticleDuplicate records a record rejected as a duplicate.
// Reason should be "url_hash", "title", or "constraint".
func RecordArticleDuplicate(source, reason string) {
	ArticlesDuplicateTotal.WithLabelValues(source, reason).Inc()
}

// RecordArticleRelevant records an article classified as relevant.
func RecordArticleRelevant(source string) {
	ArticlesRelevantTotal.WithLabelValues(source).Inc()
}

// RecordIngestionRun records the outcome and duration of an ingestion run.
// Status should be "completed" or "failed".
func RecordIngestionRun(source, status string, duration time.Duration) {
	IngestionRunsTotal.WithLabelValues(source, status).Inc()
	IngestionRunDuration.WithLabelValues(source).Observe(duration.Seconds())
}

// RecordSourceFetchError records an error during source fetching.
func RecordSourceFetchError(source, errorType string) {
	SourceFetchErrors.WithLabelValues(source, errorType).Inc()
}

// UpdateNewsAPIQuotaRemaining updates the remaining NewsAPI quota gauge.
func UpdateNewsAPIQuotaRemaining(remaining int) {
	NewsAPIQuotaRemaining.Set(float64(remaining))
}

// UpdateArticlesTotal updates the total count of articles in the database.
// This gauge should be updated periodically to reflect the current state.
func UpdateArticlesTotal(count int) {
	ArticlesTotal.Set(float64(count))
}

// UpdateEntitiesTotal updates the total count of monitored entities.
// This gauge should be updated periodically to reflect the current state.
func UpdateEntitiesTotal(count int) {
	EntitiesTotal.Set(float64(count))
}

// RecordEntityMention records an entity mention by entity type.
func RecordEntityMention(entityType string) {
	EntityMentionsTotal.WithLabelValues(entityType).Inc()
}

// RecordResolutionDuration records the time taken to resolve entities for one article.
func RecordResolutionDuration(duration time.Duration) {
	ResolutionDuration.Observe(duration.Seconds())
}

// RecordReviewItem records an item enqueued for manual review.
// ItemType should be "article" or "entity".
func RecordReviewItem(itemType string) {
	ReviewItemsTotal.WithLabelValues(itemType).Inc()
}

// RecordDBQuery records the duration of a database query operation.
// Operation should describe the query type (e.g., "select_articles", "insert_article").
func RecordDBQuery(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// UpdateDBConnectionStats updates database connection pool statistics.
func UpdateDBConnectionStats(active, idle int) {
	DBConnectionsActive.Set(float64(active))
	DBConnectionsIdle.Set(float64(idle))
}
