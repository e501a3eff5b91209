package monitored

import (
	"log/slog"
	"net/http"

	"github.com/marchebantum/caymanmyass-sub002/internal/common/pagination"
	"github.com/marchebantum/caymanmyass-sub002/internal/handler/http/respond"
	"github.com/marchebantum/caymanmyass-sub002/internal/observability/logging"
	monUC "github.com/marchebantum/caymanmyass-sub002/internal/usecase/monitored"
)

type ListHandler struct {
	Svc           *monUC.Service
	PaginationCfg pagination.Config
	Logger        *slog.Logger
}

// ServeHTTP serves the paginated entity list ordered by mention count.
func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.WithRequestID(ctx, h.Logger)

	params, err := pagination.ParseQueryParams(r, h.PaginationCfg)
	if err != nil {
		logger.Warn("Invalid pagination parameters", "error", err.Error())
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := h.Svc.ListByMentions(ctx, params)
	if err != nil {
		logger.Error("Failed to list entities", "error", err.Error())
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	dtos := make([]DTO, 0, len(result.Data))
	for _, e := range result.Data {
		dtos = append(dtos, toDTO(e))
	}

	respond.JSON(w, http.StatusOK, pagination.NewResponse(dtos, result.Pagination))
}
