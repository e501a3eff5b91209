package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

/* ───────── 取り込みメトリクス ───────── */

func TestRecordArticlesFetched_AddsPerSource(t *testing.T) {
	ArticlesFetchedTotal.Reset()

	RecordArticlesFetched("newsapi", 40)
	RecordArticlesFetched("newsapi", 12)
	RecordArticlesFetched("gdelt", 250)
	RecordArticlesFetched("gdelt", 0)

	assert.Equal(t, float64(52), testutil.ToFloat64(ArticlesFetchedTotal.WithLabelValues("newsapi")))
	assert.Equal(t, float64(250), testutil.ToFloat64(ArticlesFetchedTotal.WithLabelValues("gdelt")))
}

func TestRecordArticleDuplicate_LabelsReason(t *testing.T) {
	ArticlesDuplicateTotal.Reset()

	RecordArticleDuplicate("newsapi", "url_hash")
	RecordArticleDuplicate("newsapi", "url_hash")
	RecordArticleDuplicate("gdelt", "title")
	RecordArticleDuplicate("gdelt", "constraint")

	assert.Equal(t, float64(2), testutil.ToFloat64(ArticlesDuplicateTotal.WithLabelValues("newsapi", "url_hash")))
	assert.Equal(t, float64(1), testutil.ToFloat64(ArticlesDuplicateTotal.WithLabelValues("gdelt", "title")))
	assert.Equal(t, float64(1), testutil.ToFloat64(ArticlesDuplicateTotal.WithLabelValues("gdelt", "constraint")))
}

func TestRecordIngestionRun_CountsAndTimes(t *testing.T) {
	IngestionRunsTotal.Reset()
	before := testutil.CollectAndCount(IngestionRunDuration)

	RecordIngestionRun("newsapi", "completed", 2*time.Second)
	RecordIngestionRun("gdelt", "failed", 500*time.Millisecond)
	RecordIngestionRun("gdelt", "completed", 0)

	assert.Equal(t, float64(1), testutil.ToFloat64(IngestionRunsTotal.WithLabelValues("newsapi", "completed")))
	assert.Equal(t, float64(1), testutil.ToFloat64(IngestionRunsTotal.WithLabelValues("gdelt", "failed")))
	assert.Equal(t, float64(1), testutil.ToFloat64(IngestionRunsTotal.WithLabelValues("gdelt", "completed")))
	assert.GreaterOrEqual(t, testutil.CollectAndCount(IngestionRunDuration), before)
}

func TestRecordSourceFetchError_LabelsErrorType(t *testing.T) {
	SourceFetchErrors.Reset()

	RecordSourceFetchError("newsapi", "rate_limited")
	RecordSourceFetchError("gdelt", "timeout")
	RecordSourceFetchError("gdelt", "timeout")
	RecordSourceFetchError("gdelt", "parse_error")

	assert.Equal(t, float64(1), testutil.ToFloat64(SourceFetchErrors.WithLabelValues("newsapi", "rate_limited")))
	assert.Equal(t, float64(2), testutil.ToFloat64(SourceFetchErrors.WithLabelValues("gdelt", "timeout")))
	assert.Equal(t, float64(1), testutil.ToFloat64(SourceFetchErrors.WithLabelValues("gdelt", "parse_error")))
}

/* ───────── ゲージ ───────── */

func TestGaugeUpdates(t *testing.T) {
	UpdateArticlesTotal(1480)
	assert.Equal(t, float64(1480), testutil.ToFloat64(ArticlesTotal))

	UpdateArticlesTotal(0)
	assert.Equal(t, float64(0), testutil.ToFloat64(ArticlesTotal))

	UpdateEntitiesTotal(37)
	assert.Equal(t, float64(37), testutil.ToFloat64(EntitiesTotal))

	UpdateNewsAPIQuotaRemaining(42)
	assert.Equal(t, float64(42), testutil.ToFloat64(NewsAPIQuotaRemaining))

	UpdateDBConnectionStats(5, 20)
	assert.Equal(t, float64(5), testutil.ToFloat64(DBConnectionsActive))
	assert.Equal(t, float64(20), testutil.ToFloat64(DBConnectionsIdle))
}

/* ───────── エンティティ解決 ───────── */

func TestRecordEntityMention_LabelsType(t *testing.T) {
	EntityMentionsTotal.Reset()

	for _, entityType := range []string{"organization", "person", "registered_office_provider", "organization"} {
		RecordEntityMention(entityType)
	}

	assert.Equal(t, float64(2), testutil.ToFloat64(EntityMentionsTotal.WithLabelValues("organization")))
	assert.Equal(t, float64(1), testutil.ToFloat64(EntityMentionsTotal.WithLabelValues("person")))
	assert.Equal(t, float64(1), testutil.ToFloat64(EntityMentionsTotal.WithLabelValues("registered_office_provider")))
}

func TestRecordReviewItem(t *testing.T) {
	ReviewItemsTotal.Reset()

	RecordReviewItem("entity")
	RecordReviewItem("entity")
	RecordReviewItem("article")

	assert.Equal(t, float64(2), testutil.ToFloat64(ReviewItemsTotal.WithLabelValues("entity")))
	assert.Equal(t, float64(1), testutil.ToFloat64(ReviewItemsTotal.WithLabelValues("article")))
}

/* ───────── パイプライン一括 ───────── */

func TestIngestionPipelineSequence(t *testing.T) {
	ArticlesFetchedTotal.Reset()
	ArticlesStoredTotal.Reset()
	ArticlesDuplicateTotal.Reset()
	ArticlesRelevantTotal.Reset()

	// One run: 10 fetched, 3 duplicates skipped, 7 stored, 2 relevant.
	RecordArticlesFetched("newsapi", 10)
	for i := 0; i < 3; i++ {
		RecordArticleDuplicate("newsapi", "url_hash")
	}
	for i := 0; i < 7; i++ {
		RecordArticleStored("newsapi")
	}
	RecordArticleRelevant("newsapi")
	RecordArticleRelevant("newsapi")
	RecordIngestionRun("newsapi", "completed", 3*time.Second)
	RecordResolutionDuration(5 * time.Millisecond)
	RecordDBQuery("insert_article", 10*time.Millisecond)

	fetched := testutil.ToFloat64(ArticlesFetchedTotal.WithLabelValues("newsapi"))
	stored := testutil.ToFloat64(ArticlesStoredTotal.WithLabelValues("newsapi"))
	dupes := testutil.ToFloat64(ArticlesDuplicateTotal.WithLabelValues("newsapi", "url_hash"))
	assert.Equal(t, fetched, stored+dupes)
	assert.Equal(t, float64(2), testutil.ToFloat64(ArticlesRelevantTotal.WithLabelValues("newsapi")))
}
