package monitored

import (
	"log/slog"
	"net/http"

	"github.com/marchebantum/caymanmyass-sub002/internal/common/pagination"
	monUC "github.com/marchebantum/caymanmyass-sub002/internal/usecase/monitored"
)

// Register registers the monitored entity HTTP handlers with the given mux.
func Register(mux *http.ServeMux, svc *monUC.Service, paginationCfg pagination.Config, logger *slog.Logger) {
	mux.Handle("GET /entities", ListHandler{
		Svc:           svc,
		PaginationCfg: paginationCfg,
		Logger:        logger,
	})
	mux.Handle("GET /entities/", GetHandler{Svc: svc})
}
