package postgres_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"

	"github.com/marchebantum/caymanmyass-sub002/internal/domain/entity"
	pg "github.com/marchebantum/caymanmyass-sub002/internal/infra/adapter/persistence/postgres"
)

/* ─────────────────────────── ヘルパ ─────────────────────────── */

var runCols = []string{
	"id", "source", "status", "triggered_by", "fetched", "new_articles",
	"duplicates", "relevant", "errors", "started_at", "finished_at",
	"lookback_days", "quota_remaining",
}

func runRow(r *entity.IngestionRun) *sqlmock.Rows {
	var finishedAt any
	if r.FinishedAt != nil {
		finishedAt = *r.FinishedAt
	}
	var quota any
	if r.QuotaRemaining != nil {
		quota = int64(*r.QuotaRemaining)
	}
	return sqlmock.NewRows(runCols).AddRow(
		r.ID, r.Source, r.Status, r.TriggeredBy, r.Fetched, r.New,
		r.Duplicate, r.Relevant, "{}", r.StartedAt, finishedAt,
		r.LookbackDays, quota,
	)
}

func sampleRun() *entity.IngestionRun {
	started := time.Date(2025, 7, 19, 6, 0, 0, 0, time.UTC)
	finished := started.Add(40 * time.Second)
	quota := 87
	return &entity.IngestionRun{
		ID:             "0d1f6a9a-4a2e-4a61-9d0c-3f1f8a2b7c44",
		Source:         entity.SourceNewsAPI,
		Status:         entity.RunStatusCompleted,
		TriggeredBy:    entity.TriggerScheduled,
		Fetched:        40,
		New:            12,
		Duplicate:      28,
		Relevant:       5,
		Errors:         []string{},
		StartedAt:      started,
		FinishedAt:     &finished,
		LookbackDays:   2,
		QuotaRemaining: &quota,
	}
}

/* ─────────────────────────── Create / Finalize ─────────────────────────── */

func TestRunRepo_Create(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	run := sampleRun()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO ingestion_runs")).
		WithArgs(run.ID, run.Source, run.Status, run.TriggeredBy,
			run.StartedAt, run.LookbackDays, *run.QuotaRemaining).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := pg.NewRunRepo(db)
	if err := repo.Create(context.Background(), run); err != nil {
		t.Fatalf("Create err=%v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestRunRepo_Create_NilQuota(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	run := sampleRun()
	run.Source = entity.SourceGDELT
	run.QuotaRemaining = nil

	// GDELT has no daily quota, the column stays NULL
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO ingestion_runs")).
		WithArgs(run.ID, run.Source, run.Status, run.TriggeredBy,
			run.StartedAt, run.LookbackDays, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := pg.NewRunRepo(db)
	if err := repo.Create(context.Background(), run); err != nil {
		t.Fatalf("Create err=%v", err)
	}
}

func TestRunRepo_Finalize(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	run := sampleRun()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE ingestion_runs")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := pg.NewRunRepo(db)
	if err := repo.Finalize(context.Background(), run); err != nil {
		t.Fatalf("Finalize err=%v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

/* ─────────────────────────── Get / ListRecent ─────────────────────────── */

func TestRunRepo_Get(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	want := sampleRun()

	mock.ExpectQuery(regexp.QuoteMeta("FROM ingestion_runs WHERE id = $1")).
		WithArgs(want.ID).
		WillReturnRows(runRow(want))

	repo := pg.NewRunRepo(db)
	got, err := repo.Get(context.Background(), want.ID)
	if err != nil {
		t.Fatalf("Get err=%v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestRunRepo_Get_NotFound(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta("FROM ingestion_runs WHERE id = $1")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(runCols))

	repo := pg.NewRunRepo(db)
	got, err := repo.Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("Get err=%v", err)
	}
	if got != nil {
		t.Fatalf("want nil for missing run, got %+v", got)
	}
}

func TestRunRepo_ListRecent_AllSources(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	want := sampleRun()

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY started_at DESC LIMIT $1")).
		WithArgs(20).
		WillReturnRows(runRow(want))

	repo := pg.NewRunRepo(db)
	got, err := repo.ListRecent(context.Background(), "", 20)
	if err != nil {
		t.Fatalf("ListRecent err=%v", err)
	}
	if len(got) != 1 {
		t.Fatalf("want 1 run, got %d", len(got))
	}
	if diff := cmp.Diff(want, got[0]); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestRunRepo_ListRecent_SourceFilter(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	want := sampleRun()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE source = $1 ORDER BY started_at DESC LIMIT $2")).
		WithArgs("newsapi", 10).
		WillReturnRows(runRow(want))

	repo := pg.NewRunRepo(db)
	got, err := repo.ListRecent(context.Background(), "newsapi", 10)
	if err != nil {
		t.Fatalf("ListRecent err=%v", err)
	}
	if len(got) != 1 || got[0].Source != entity.SourceNewsAPI {
		t.Fatalf("unexpected result: %+v", got)
	}
}
