package run

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/marchebantum/caymanmyass-sub002/internal/handler/http/respond"
	"github.com/marchebantum/caymanmyass-sub002/internal/observability/logging"
	statsUC "github.com/marchebantum/caymanmyass-sub002/internal/usecase/stats"
)

type ListHandler struct {
	Svc    *statsUC.Service
	Logger *slog.Logger
}

// ServeHTTP serves the recent ingestion run history, newest first.
// Optional query parameters: source (newsapi or gdelt) and limit.
func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.WithRequestID(ctx, h.Logger)

	source := r.URL.Query().Get("source")

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respond.SafeError(w, http.StatusBadRequest, err)
			return
		}
		limit = n
	}

	runs, err := h.Svc.ListRuns(ctx, source, limit)
	if err != nil {
		if errors.Is(err, statsUC.ErrUnknownSource) {
			respond.SafeError(w, http.StatusBadRequest, err)
			return
		}
		logger.Error("Failed to list runs", "error", err.Error())
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	dtos := make([]DTO, 0, len(runs))
	for _, run := range runs {
		dtos = append(dtos, toDTO(run))
	}

	respond.JSON(w, http.StatusOK, map[string]any{"data": dtos})
}
