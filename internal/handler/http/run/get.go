package run

import (
	"errors"
	"net/http"
	"strings"

	"github.com/marchebantum/caymanmyass-sub002/internal/handler/http/respond"
	statsUC "github.com/marchebantum/caymanmyass-sub002/internal/usecase/stats"
)

type GetHandler struct{ Svc *statsUC.Service }

// ServeHTTP serves a single ingestion run by UUID.
func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/runs/")

	run, err := h.Svc.GetRun(r.Context(), id)
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, statsUC.ErrInvalidRunID) {
			code = http.StatusBadRequest
		} else if errors.Is(err, statsUC.ErrRunNotFound) {
			code = http.StatusNotFound
		}
		respond.SafeError(w, code, err)
		return
	}

	respond.JSON(w, http.StatusOK, toDTO(run))
}
