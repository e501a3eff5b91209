package article

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/marchebantum/caymanmyass-sub002/internal/common/pagination"
	"github.com/marchebantum/caymanmyass-sub002/internal/domain/entity"
	"github.com/marchebantum/caymanmyass-sub002/internal/handler/http/requestid"
	"github.com/marchebantum/caymanmyass-sub002/internal/handler/http/respond"
	"github.com/marchebantum/caymanmyass-sub002/internal/observability/logging"
	"github.com/marchebantum/caymanmyass-sub002/internal/repository"
	artUC "github.com/marchebantum/caymanmyass-sub002/internal/usecase/article"
)

type ListHandler struct {
	Svc           *artUC.Service
	PaginationCfg pagination.Config
	Logger        *slog.Logger
}

// ServeHTTP serves the filtered, paginated article list.
//
// Query parameters:
//   - page, limit: pagination (1-based page)
//   - source: source system tag (newsapi, gdelt)
//   - relevant: true/false relevance filter
//   - signal: signal column name (e.g. fraud, regulatory_investigation)
//   - q: keyword substring match on title and snippet
//   - from, to: RFC 3339 bounds on published_at
func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	reqID := requestid.FromContext(ctx)
	logger := logging.WithRequestID(ctx, h.Logger)

	params, err := pagination.ParseQueryParams(r, h.PaginationCfg)
	if err != nil {
		logger.Warn("Invalid pagination parameters",
			"error", err.Error(),
			"request_id", reqID)
		pagination.RecordError("validation")
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	filters, err := parseFilters(r)
	if err != nil {
		logger.Warn("Invalid filter parameters",
			"error", err.Error(),
			"request_id", reqID)
		pagination.RecordError("validation")
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := h.Svc.ListPaginated(ctx, filters, params)
	if err != nil {
		logger.Error("Failed to list articles",
			"error", err.Error(),
			"page", params.Page,
			"limit", params.Limit,
			"request_id", reqID)
		pagination.RecordError("database")
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	dtos := make([]DTO, 0, len(result.Data))
	for _, item := range result.Data {
		dtos = append(dtos, toDTO(item))
	}

	response := pagination.NewResponse(dtos, result.Pagination)

	duration := time.Since(startTime)
	pagination.RecordRequest(http.StatusOK, params.Page)
	pagination.RecordDuration("handler", duration.Seconds())
	pagination.UpdateTotalCount(result.Pagination.Total)

	logger.Info("Paginated response",
		"page", params.Page,
		"limit", params.Limit,
		"returned_count", len(dtos),
		"duration_ms", duration.Milliseconds(),
		"status", http.StatusOK,
		"request_id", reqID)

	respond.JSON(w, http.StatusOK, response)
}

// parseFilters builds repository filters from the request query string.
func parseFilters(r *http.Request) (repository.ArticleFilters, error) {
	var filters repository.ArticleFilters
	q := r.URL.Query()

	if source := q.Get("source"); source != "" {
		if !entity.ValidSource(source) {
			return filters, fmt.Errorf("invalid query parameter: unknown source %q", source)
		}
		filters.Source = &source
	}

	if relevantStr := q.Get("relevant"); relevantStr != "" {
		relevant, err := strconv.ParseBool(relevantStr)
		if err != nil {
			return filters, fmt.Errorf("invalid query parameter: relevant must be true or false")
		}
		filters.Relevant = &relevant
	}

	if signal := q.Get("signal"); signal != "" {
		filters.Signal = &signal
	}

	if keyword := q.Get("q"); keyword != "" {
		filters.Keyword = &keyword
	}

	if fromStr := q.Get("from"); fromStr != "" {
		from, err := time.Parse(time.RFC3339, fromStr)
		if err != nil {
			return filters, fmt.Errorf("invalid query parameter: from must be RFC 3339")
		}
		filters.From = &from
	}

	if toStr := q.Get("to"); toStr != "" {
		to, err := time.Parse(time.RFC3339, toStr)
		if err != nil {
			return filters, fmt.Errorf("invalid query parameter: to must be RFC 3339")
		}
		filters.To = &to
	}

	return filters, nil
}
