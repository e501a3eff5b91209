package monitored

import (
	"errors"
	"net/http"

	"github.com/marchebantum/caymanmyass-sub002/internal/handler/http/pathutil"
	"github.com/marchebantum/caymanmyass-sub002/internal/handler/http/respond"
	monUC "github.com/marchebantum/caymanmyass-sub002/internal/usecase/monitored"
)

type GetHandler struct{ Svc *monUC.Service }

// ServeHTTP serves a single entity by ID with its linked articles.
func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ExtractID(r.URL.Path, "/entities/")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	detail, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, monUC.ErrInvalidEntityID) {
			code = http.StatusBadRequest
		} else if errors.Is(err, monUC.ErrEntityNotFound) {
			code = http.StatusNotFound
		}
		respond.SafeError(w, code, err)
		return
	}

	out := DetailDTO{
		DTO:      toDTO(detail.Entity),
		Articles: make([]LinkedArticleDTO, 0, len(detail.Articles)),
	}
	for _, a := range detail.Articles {
		out.Articles = append(out.Articles, toLinkedArticleDTO(a))
	}

	respond.JSON(w, http.StatusOK, out)
}
