package repository

import (
	"context"
	"time"

	"github.com/marchebantum/caymanmyass-sub002/internal/domain/entity"
)

// ArticleFilters contains optional filters for article listing and search.
type ArticleFilters struct {
	Source   *string    // Optional: filter by source system tag
	Relevant *bool      // Optional: filter by relevance flag
	Signal   *string    // Optional: filter by signal column name
	Keyword  *string    // Optional: substring match on title/snippet
	From     *time.Time // Optional: published_at >= this instant
	To       *time.Time // Optional: published_at <= this instant
}

// SignalCount pairs a signal name with the number of articles carrying it.
type SignalCount struct {
	Signal string
	Count  int64
}

type ArticleRepository interface {
	// Create inserts a new article. The storage layer's unique constraints on
	// url_hash and normalized_title are the true duplicate arbiter: a
	// uniqueness violation is reported as entity.ErrDuplicate, which callers
	// treat as a normal duplicate outcome rather than a failure.
	Create(ctx context.Context, article *entity.Article) error

	Get(ctx context.Context, id int64) (*entity.Article, error)

	// GetByURLHash looks up an article by its primary dedup key.
	// Returns (nil, nil) if no article matches.
	GetByURLHash(ctx context.Context, hash string) (*entity.Article, error)

	// GetByNormalizedTitle looks up an article by its secondary dedup key.
	// Returns (nil, nil) if no article matches.
	GetByNormalizedTitle(ctx context.Context, title string) (*entity.Article, error)

	// ListPaginated retrieves articles matching the filters, newest first.
	ListPaginated(ctx context.Context, filters ArticleFilters, offset, limit int) ([]*entity.Article, error)

	// Count returns the number of articles matching the filters,
	// for pagination metadata.
	Count(ctx context.Context, filters ArticleFilters) (int64, error)

	// ListUnresolved returns relevant, classified articles that have not yet
	// been through entity resolution, oldest first.
	ListUnresolved(ctx context.Context, limit int) ([]*entity.Article, error)

	// MarkResolved records that entity resolution has processed the article.
	MarkResolved(ctx context.Context, id int64, at time.Time) error

	// CountBySignal returns, per signal, how many relevant articles carry it.
	CountBySignal(ctx context.Context) ([]SignalCount, error)
}
