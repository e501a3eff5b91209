package article

import (
	"context"
	"fmt"

	"github.com/marchebantum/caymanmyass-sub002/internal/common/pagination"
	"github.com/marchebantum/caymanmyass-sub002/internal/domain/entity"
	"github.com/marchebantum/caymanmyass-sub002/internal/repository"
)

// Service provides read-side article use cases.
// It handles filtering and pagination logic and delegates persistence to the repository.
type Service struct {
	Repo repository.ArticleRepository
}

// PaginatedResult represents the result of a paginated article query.
// It contains both the data and pagination metadata.
type PaginatedResult struct {
	Data       []*entity.Article
	Pagination pagination.Metadata
}

// ListPaginated retrieves articles matching the filters with pagination support.
// Params are normalized before use so callers that build them in code get the
// same defaults as the HTTP layer. Results are ordered newest first.
func (s *Service) ListPaginated(ctx context.Context, filters repository.ArticleFilters, params pagination.Params) (*PaginatedResult, error) {
	params = params.WithDefaults(pagination.DefaultConfig())
	strategy := pagination.OffsetStrategy{}
	window := strategy.CalculateQuery(params)

	total, err := s.Repo.Count(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("count articles: %w", err)
	}

	articles, err := s.Repo.ListPaginated(ctx, filters, window.Offset, window.Limit)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}

	return &PaginatedResult{
		Data:       articles,
		Pagination: strategy.BuildMetadata(params, total),
	}, nil
}

// Get retrieves a single article by its ID. IDs are positive serials,
// so anything else fails fast with ErrInvalidArticleID. A missing row
// maps to ErrArticleNotFound.
func (s *Service) Get(ctx context.Context, id int64) (*entity.Article, error) {
	if id <= 0 {
		return nil, ErrInvalidArticleID
	}

	article, err := s.Repo.Get(ctx, id)
	switch {
	case err != nil:
		return nil, fmt.Errorf("get article: %w", err)
	case article == nil:
		return nil, ErrArticleNotFound
	}
	return article, nil
}
