// Package search обрабатывает поиск групп по подстроке имени.
package search

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/billkeeper/internal/http/view"
	"github.com/magabrotheeeer/billkeeper/internal/lib/sl"
	"github.com/magabrotheeeer/billkeeper/internal/models"
)

// Service описывает контракт сервиса поиска групп.
type Service interface {
	Search(ctx context.Context, query string) ([]*models.Group, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
	view    *view.View
}

func New(log *slog.Logger, service Service, v *view.View) *Handler {
	return &Handler{
		log:     log,
		service: service,
		view:    v,
	}
}

type pageData struct {
	Query  string
	Groups []*models.Group
}

// ServeHTTP ищет группы по параметру q среди групп всех пользователей.
// Пустой запрос соответствует каждой группе.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.group.search.ServeHTTP"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	query := r.URL.Query().Get("q")
	groups, err := h.service.Search(r.Context(), query)
	if err != nil {
		log.Error("failed to search groups", sl.Err(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	h.view.Render(w, "search.html", pageData{Query: query, Groups: groups})
}
