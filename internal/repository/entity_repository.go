package repository

import (
	"context"
	"time"

	"github.com/marchebantum/caymanmyass-sub002/internal/domain/entity"
)

// EntityRepository persists monitored entities and their article links.
//
// Insert and InsertLink surface storage uniqueness violations as
// entity.ErrDuplicate so that the resolver can run its
// insert-then-reread-on-conflict convergence path without distributed locks.
type EntityRepository interface {
	// GetByNormalizedName returns the entity with the given identity key,
	// or (nil, nil) when absent.
	GetByNormalizedName(ctx context.Context, name string) (*entity.MonitoredEntity, error)

	// Insert creates a new entity row. Returns entity.ErrDuplicate when a
	// concurrent resolver created the same normalized name first.
	Insert(ctx context.Context, e *entity.MonitoredEntity) error

	// RecordMention increments the entity's mention counter and advances
	// last_seen_at. Called once per newly created article link, so the
	// counter stays equal to the number of distinct linked articles.
	RecordMention(ctx context.Context, entityID int64, seenAt time.Time) error

	// TouchLastSeen advances last_seen_at without touching the counter, for
	// repeat mentions inside an already-linked article.
	TouchLastSeen(ctx context.Context, entityID int64, seenAt time.Time) error

	Get(ctx context.Context, id int64) (*entity.MonitoredEntity, error)

	// ListByMentions returns entities ordered by mention count descending.
	ListByMentions(ctx context.Context, offset, limit int) ([]*entity.MonitoredEntity, error)

	Count(ctx context.Context) (int64, error)

	// InsertLink creates an article-entity link, returning true when a new
	// row was created and false when the pair already existed (in which case
	// the existing link's mention_count is bumped instead).
	InsertLink(ctx context.Context, link *entity.ArticleEntityLink) (created bool, err error)

	// ListLinkedArticles returns the articles linked to an entity, newest first.
	ListLinkedArticles(ctx context.Context, entityID int64, limit int) ([]*entity.Article, error)
}
