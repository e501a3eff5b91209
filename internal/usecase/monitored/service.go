package monitored

import (
	"context"
	"fmt"

	"github.com/marchebantum/caymanmyass-sub002/internal/common/pagination"
	"github.com/marchebantum/caymanmyass-sub002/internal/domain/entity"
	"github.com/marchebantum/caymanmyass-sub002/internal/repository"
)

// Maximum number of linked articles returned alongside an entity detail.
const linkedArticlesLimit = 20

// Service provides read-side monitored entity use cases.
type Service struct {
	Repo repository.EntityRepository
}

// PaginatedResult represents the result of a paginated entity query.
type PaginatedResult struct {
	Data       []*entity.MonitoredEntity
	Pagination pagination.Metadata
}

// Detail is an entity together with its most recently linked articles.
type Detail struct {
	Entity   *entity.MonitoredEntity
	Articles []*entity.Article
}

// ListByMentions retrieves entities ordered by mention count descending,
// with pagination metadata. Params are normalized before use.
func (s *Service) ListByMentions(ctx context.Context, params pagination.Params) (*PaginatedResult, error) {
	params = params.WithDefaults(pagination.DefaultConfig())
	strategy := pagination.OffsetStrategy{}
	window := strategy.CalculateQuery(params)

	total, err := s.Repo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count entities: %w", err)
	}

	entities, err := s.Repo.ListByMentions(ctx, window.Offset, window.Limit)
	if err != nil {
		return nil, fmt.Errorf("list entities: %w", err)
	}

	return &PaginatedResult{
		Data:       entities,
		Pagination: strategy.BuildMetadata(params, total),
	}, nil
}

// Get retrieves a single entity by ID along with its linked articles,
// newest first.
// Returns ErrInvalidEntityID if the ID is not positive.
// Returns ErrEntityNotFound if the entity does not exist.
func (s *Service) Get(ctx context.Context, id int64) (*Detail, error) {
	if id <= 0 {
		return nil, ErrInvalidEntityID
	}

	ent, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get entity: %w", err)
	}
	if ent == nil {
		return nil, ErrEntityNotFound
	}

	articles, err := s.Repo.ListLinkedArticles(ctx, id, linkedArticlesLimit)
	if err != nil {
		return nil, fmt.Errorf("list linked articles: %w", err)
	}

	return &Detail{Entity: ent, Articles: articles}, nil
}
