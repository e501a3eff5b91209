package article

import (
	"errors"
	"net/http"

	"github.com/marchebantum/caymanmyass-sub002/internal/handler/http/pathutil"
	"github.com/marchebantum/caymanmyass-sub002/internal/handler/http/respond"
	artUC "github.com/marchebantum/caymanmyass-sub002/internal/usecase/article"
)

type GetHandler struct{ Svc *artUC.Service }

// ServeHTTP serves a single article by ID, including full content.
func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ExtractID(r.URL.Path, "/articles/")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	art, err := h.Svc.Get(r.Context(), id)
	switch {
	case errors.Is(err, artUC.ErrInvalidArticleID):
		respond.SafeError(w, http.StatusBadRequest, err)
	case errors.Is(err, artUC.ErrArticleNotFound):
		respond.SafeError(w, http.StatusNotFound, err)
	case err != nil:
		respond.SafeError(w, http.StatusInternalServerError, err)
	default:
		respond.JSON(w, http.StatusOK, DetailDTO{DTO: toDTO(art), Content: art.Content})
	}
}
