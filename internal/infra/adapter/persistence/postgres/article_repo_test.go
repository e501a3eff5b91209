package postgres_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/marchebantum/caymanmyass-sub002/internal/domain/entity"
	pg "github.com/marchebantum/caymanmyass-sub002/internal/infra/adapter/persistence/postgres"
	"github.com/marchebantum/caymanmyass-sub002/internal/repository"
)

/* ─────────────────────────── ヘルパ ─────────────────────────── */

var articleCols = []string{
	"id", "source", "url", "url_hash", "title", "normalized_title",
	"content", "normalized_content", "snippet", "published_at",
	"source_domain", "matched_keywords", "relevant",
	"financial_decline", "fraud", "misstated_financials",
	"shareholder_issues", "director_duties", "regulatory_investigation",
	"confidence", "status", "ingested_at",
}

func artRow(a *entity.Article) *sqlmock.Rows {
	var publishedAt any
	if a.PublishedAt != nil {
		publishedAt = *a.PublishedAt
	}
	var confidence any
	if a.Confidence != nil {
		confidence = *a.Confidence
	}
	return sqlmock.NewRows(articleCols).AddRow(
		a.ID, a.Source, a.URL, a.URLHash, a.Title, a.NormalizedTitle,
		a.Content, a.NormalizedContent, a.Snippet, publishedAt,
		a.SourceDomain, "{cayman,cima}", a.Relevant,
		a.Signals.FinancialDecline, a.Signals.Fraud, a.Signals.MisstatedFinancials,
		a.Signals.ShareholderIssues, a.Signals.DirectorDuties, a.Signals.RegulatoryInvestigation,
		confidence, a.Status, a.IngestedAt,
	)
}

func sampleArticle() *entity.Article {
	published := time.Date(2025, 7, 19, 10, 0, 0, 0, time.UTC)
	confidence := 0.8
	return &entity.Article{
		ID:                1,
		Source:            entity.SourceNewsAPI,
		URL:               "https://news.example.com/cima-fine",
		URLHash:           "a3f1b2",
		Title:             "CIMA fines Cayman fund administrator",
		NormalizedTitle:   "cima fines cayman fund administrator",
		Content:           "The regulator announced enforcement action.",
		NormalizedContent: "the regulator announced enforcement action.",
		Snippet:           "The regulator announced",
		PublishedAt:       &published,
		SourceDomain:      "news.example.com",
		MatchedKeywords:   []string{"cayman", "cima"},
		Relevant:          true,
		Signals:           entity.SignalFlags{RegulatoryInvestigation: true},
		Confidence:        &confidence,
		Status:            entity.ArticleStatusClassified,
		IngestedAt:        published.Add(30 * time.Minute),
	}
}

/* ─────────────────────────── 1. Get ─────────────────────────── */

func TestArticleRepo_Get(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	want := sampleArticle()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id")).
		WithArgs(int64(1)).
		WillReturnRows(artRow(want))

	repo := pg.NewArticleRepo(db)
	got, err := repo.Get(context.Background(), 1)
	if err != nil {
		t.Fatalf("Get err=%v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestArticleRepo_Get_NotFound(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id")).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows(articleCols))

	repo := pg.NewArticleRepo(db)
	got, err := repo.Get(context.Background(), 99)
	if err != nil {
		t.Fatalf("Get err=%v", err)
	}
	if got != nil {
		t.Fatalf("want nil for missing article, got %+v", got)
	}
}

/* ─────────────────────────── 2. Dedup lookups ─────────────────────────── */

func TestArticleRepo_GetByURLHash(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	want := sampleArticle()

	mock.ExpectQuery("url_hash = \\$1").
		WithArgs("a3f1b2").
		WillReturnRows(artRow(want))

	repo := pg.NewArticleRepo(db)
	got, err := repo.GetByURLHash(context.Background(), "a3f1b2")
	if err != nil {
		t.Fatalf("GetByURLHash err=%v", err)
	}
	if got == nil || got.URLHash != "a3f1b2" {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestArticleRepo_GetByNormalizedTitle_NotFound(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("normalized_title = \\$1").
		WithArgs("no such title").
		WillReturnRows(sqlmock.NewRows(articleCols))

	repo := pg.NewArticleRepo(db)
	got, err := repo.GetByNormalizedTitle(context.Background(), "no such title")
	if err != nil {
		t.Fatalf("GetByNormalizedTitle err=%v", err)
	}
	if got != nil {
		t.Fatalf("want nil, got %+v", got)
	}
}

/* ─────────────────────────── 3. Create ─────────────────────────── */

func TestArticleRepo_Create(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	art := sampleArticle()
	art.ID = 0

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO articles")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))

	repo := pg.NewArticleRepo(db)
	if err := repo.Create(context.Background(), art); err != nil {
		t.Fatalf("Create err=%v", err)
	}
	if art.ID != 42 {
		t.Fatalf("ID = %d, want 42", art.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestArticleRepo_Create_DuplicateKey(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	// 一意制約違反は entity.ErrDuplicate にマップされる
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO articles")).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	repo := pg.NewArticleRepo(db)
	err := repo.Create(context.Background(), sampleArticle())
	if !errors.Is(err, entity.ErrDuplicate) {
		t.Fatalf("want ErrDuplicate, got %v", err)
	}
}

/* ─────────────────────────── 4. ListPaginated / Count ─────────────────────────── */

func TestArticleRepo_ListPaginated(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	source := "newsapi"
	mock.ExpectQuery("FROM articles").
		WithArgs("newsapi", 10, 0).
		WillReturnRows(artRow(sampleArticle()))

	repo := pg.NewArticleRepo(db)
	got, err := repo.ListPaginated(context.Background(),
		repository.ArticleFilters{Source: &source}, 0, 10)
	if err != nil || len(got) != 1 {
		t.Fatalf("ListPaginated err=%v len=%d", err, len(got))
	}
	if got[0].Source != entity.SourceNewsAPI {
		t.Fatalf("Source = %q", got[0].Source)
	}
}

func TestArticleRepo_Count(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	relevant := true
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM articles")).
		WithArgs(true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(7)))

	repo := pg.NewArticleRepo(db)
	count, err := repo.Count(context.Background(), repository.ArticleFilters{Relevant: &relevant})
	if err != nil || count != 7 {
		t.Fatalf("Count err=%v count=%d", err, count)
	}
}

/* ─────────────────────────── 5. Resolver queue ─────────────────────────── */

func TestArticleRepo_ListUnresolved(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("resolved_at IS NULL").
		WithArgs(50).
		WillReturnRows(artRow(sampleArticle()))

	repo := pg.NewArticleRepo(db)
	got, err := repo.ListUnresolved(context.Background(), 50)
	if err != nil || len(got) != 1 {
		t.Fatalf("ListUnresolved err=%v len=%d", err, len(got))
	}
}

func TestArticleRepo_MarkResolved(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	at := time.Date(2025, 7, 19, 12, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE articles SET resolved_at")).
		WithArgs(int64(1), at).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := pg.NewArticleRepo(db)
	if err := repo.MarkResolved(context.Background(), 1, at); err != nil {
		t.Fatalf("MarkResolved err=%v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

/* ─────────────────────────── 6. CountBySignal ─────────────────────────── */

func TestArticleRepo_CountBySignal(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("FILTER").
		WillReturnRows(sqlmock.NewRows([]string{
			"financial_decline", "fraud", "misstated_financials",
			"shareholder_issues", "director_duties", "regulatory_investigation",
		}).AddRow(int64(3), int64(5), int64(0), int64(1), int64(2), int64(4)))

	repo := pg.NewArticleRepo(db)
	counts, err := repo.CountBySignal(context.Background())
	if err != nil {
		t.Fatalf("CountBySignal err=%v", err)
	}
	want := []repository.SignalCount{
		{Signal: "financial_decline", Count: 3},
		{Signal: "fraud", Count: 5},
		{Signal: "misstated_financials", Count: 0},
		{Signal: "shareholder_issues", Count: 1},
		{Signal: "director_duties", Count: 2},
		{Signal: "regulatory_investigation", Count: 4},
	}
	if diff := cmp.Diff(want, counts); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}
