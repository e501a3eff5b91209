// Package stats provides the HTTP handler for the aggregate statistics
// endpoint backing the dashboard.
package stats

import (
	"log/slog"
	"net/http"

	"github.com/marchebantum/caymanmyass-sub002/internal/handler/http/respond"
	"github.com/marchebantum/caymanmyass-sub002/internal/observability/logging"
	statsUC "github.com/marchebantum/caymanmyass-sub002/internal/usecase/stats"
)

type Handler struct {
	Svc    *statsUC.Service
	Logger *slog.Logger
}

// ServeHTTP serves the aggregate statistics overview.
func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.WithRequestID(ctx, h.Logger)

	overview, err := h.Svc.Overview(ctx)
	if err != nil {
		logger.Error("Failed to build stats overview", "error", err.Error())
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	respond.JSON(w, http.StatusOK, overview)
}

// Register registers the statistics HTTP handler with the given mux.
func Register(mux *http.ServeMux, svc *statsUC.Service, logger *slog.Logger) {
	mux.Handle("GET /stats", Handler{Svc: svc, Logger: logger})
}
