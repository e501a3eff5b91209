// Package stats provides the aggregate statistics facade backing the
// dashboard endpoint: article totals, per-signal breakdown, recent run
// history, and the current NewsAPI quota snapshot.
package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/marchebantum/caymanmyass-sub002/internal/domain/entity"
	"github.com/marchebantum/caymanmyass-sub002/internal/repository"
)

// Number of recent runs included in the overview.
const recentRunsLimit = 10

// Quota is the current NewsAPI request quota snapshot.
type Quota struct {
	Enabled      bool      `json:"enabled"`
	RequestCount int       `json:"request_count"`
	DailyLimit   int       `json:"daily_limit"`
	Remaining    int       `json:"remaining"`
	PeriodStart  time.Time `json:"period_start"`
}

// Overview is the aggregate statistics payload.
type Overview struct {
	TotalArticles    int64                  `json:"total_articles"`
	RelevantArticles int64                  `json:"relevant_articles"`
	TotalEntities    int64                  `json:"total_entities"`
	SignalCounts     map[string]int64       `json:"signal_counts"`
	RecentRuns       []*entity.IngestionRun `json:"recent_runs"`
	Quota            Quota                  `json:"quota"`
}

// Service aggregates read models from the article, entity, run, and
// settings repositories.
type Service struct {
	Articles repository.ArticleRepository
	Entities repository.EntityRepository
	Runs     repository.RunRepository
	Settings repository.SettingsRepository
}

// Overview assembles the aggregate statistics snapshot.
func (s *Service) Overview(ctx context.Context) (*Overview, error) {
	total, err := s.Articles.Count(ctx, repository.ArticleFilters{})
	if err != nil {
		return nil, fmt.Errorf("count articles: %w", err)
	}

	relevant := true
	relevantCount, err := s.Articles.Count(ctx, repository.ArticleFilters{Relevant: &relevant})
	if err != nil {
		return nil, fmt.Errorf("count relevant articles: %w", err)
	}

	entityCount, err := s.Entities.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count entities: %w", err)
	}

	signals, err := s.Articles.CountBySignal(ctx)
	if err != nil {
		return nil, fmt.Errorf("count by signal: %w", err)
	}
	signalCounts := make(map[string]int64, len(signals))
	for _, sc := range signals {
		signalCounts[sc.Signal] = sc.Count
	}

	runs, err := s.Runs.ListRecent(ctx, "", recentRunsLimit)
	if err != nil {
		return nil, fmt.Errorf("list recent runs: %w", err)
	}

	settings, err := s.Settings.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}

	return &Overview{
		TotalArticles:    total,
		RelevantArticles: relevantCount,
		TotalEntities:    entityCount,
		SignalCounts:     signalCounts,
		RecentRuns:       runs,
		Quota: Quota{
			Enabled:      settings.NewsAPIEnabled,
			RequestCount: settings.NewsAPIRequestCount,
			DailyLimit:   settings.NewsAPIDailyLimit,
			Remaining:    settings.QuotaRemaining(),
			PeriodStart:  settings.PeriodStart,
		},
	}, nil
}

// ListRuns returns the newest ingestion runs first, optionally filtered by
// source (empty string means all sources).
func (s *Service) ListRuns(ctx context.Context, source string, limit int) ([]*entity.IngestionRun, error) {
	if source != "" && !entity.ValidSource(source) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSource, source)
	}
	if limit <= 0 || limit > 100 {
		limit = recentRunsLimit
	}

	runs, err := s.Runs.ListRecent(ctx, source, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// GetRun returns a single ingestion run by its UUID.
func (s *Service) GetRun(ctx context.Context, id string) (*entity.IngestionRun, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRunID, id)
	}

	run, err := s.Runs.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	if run == nil {
		return nil, ErrRunNotFound
	}
	return run, nil
}
