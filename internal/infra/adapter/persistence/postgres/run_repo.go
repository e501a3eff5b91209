package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/marchebantum/caymanmyass-sub002/internal/domain/entity"
	"github.com/marchebantum/caymanmyass-sub002/internal/repository"
)

const runColumns = `id, source, status, triggered_by, fetched, new_articles, duplicates, relevant,
errors, started_at, finished_at, lookback_days, quota_remaining`

type RunRepo struct {
	db DB
}

func NewRunRepo(db DB) repository.RunRepository {
	return &RunRepo{db: db}
}

func scanRun(s scanner) (*entity.IngestionRun, error) {
	var (
		run        entity.IngestionRun
		errs       pq.StringArray
		finishedAt sql.NullTime
		quota      sql.NullInt64
	)
	err := s.Scan(
		&run.ID, &run.Source, &run.Status, &run.TriggeredBy,
		&run.Fetched, &run.New, &run.Duplicate, &run.Relevant,
		&errs, &run.StartedAt, &finishedAt, &run.LookbackDays, &quota,
	)
	if err != nil {
		return nil, err
	}
	run.Errors = []string(errs)
	if finishedAt.Valid {
		t := finishedAt.Time
		run.FinishedAt = &t
	}
	if quota.Valid {
		v := int(quota.Int64)
		run.QuotaRemaining = &v
	}
	return &run, nil
}

func (repo *RunRepo) Create(ctx context.Context, run *entity.IngestionRun) error {
	const query = `
INSERT INTO ingestion_runs (id, source, status, triggered_by, started_at, lookback_days, quota_remaining)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	var quota any
	if run.QuotaRemaining != nil {
		quota = *run.QuotaRemaining
	}
	_, err := repo.db.ExecContext(ctx, query,
		run.ID, run.Source, run.Status, run.TriggeredBy, run.StartedAt, run.LookbackDays, quota)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

// Finalize writes the terminal state of a run. The coordinator calls this
// exactly once per run, from a defer, so a run record is never left open.
func (repo *RunRepo) Finalize(ctx context.Context, run *entity.IngestionRun) error {
	const query = `
UPDATE ingestion_runs
SET status = $2, fetched = $3, new_articles = $4, duplicates = $5, relevant = $6,
    errors = $7, finished_at = $8, quota_remaining = $9
WHERE id = $1`

	var finishedAt any
	if run.FinishedAt != nil {
		finishedAt = *run.FinishedAt
	}
	var quota any
	if run.QuotaRemaining != nil {
		quota = *run.QuotaRemaining
	}
	_, err := repo.db.ExecContext(ctx, query,
		run.ID, run.Status, run.Fetched, run.New, run.Duplicate, run.Relevant,
		pq.Array(run.Errors), finishedAt, quota)
	if err != nil {
		return fmt.Errorf("Finalize: %w", err)
	}
	return nil
}

func (repo *RunRepo) Get(ctx context.Context, id string) (*entity.IngestionRun, error) {
	query := fmt.Sprintf(`SELECT %s FROM ingestion_runs WHERE id = $1 LIMIT 1`, runColumns)
	run, err := scanRun(repo.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return run, nil
}

func (repo *RunRepo) ListRecent(ctx context.Context, source string, limit int) ([]*entity.IngestionRun, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if source == "" {
		query := fmt.Sprintf(`SELECT %s FROM ingestion_runs ORDER BY started_at DESC LIMIT $1`, runColumns)
		rows, err = repo.db.QueryContext(ctx, query, limit)
	} else {
		query := fmt.Sprintf(`SELECT %s FROM ingestion_runs WHERE source = $1 ORDER BY started_at DESC LIMIT $2`, runColumns)
		rows, err = repo.db.QueryContext(ctx, query, source, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("ListRecent: %w", err)
	}
	defer func() { _ = rows.Close() }()

	runs := make([]*entity.IngestionRun, 0, limit)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("ListRecent: Scan: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
