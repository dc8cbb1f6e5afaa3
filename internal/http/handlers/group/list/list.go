// Package list отображает страницу со списком групп пользователя.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/billkeeper/internal/http/middlewarectx"
	"github.com/magabrotheeeer/billkeeper/internal/http/view"
	"github.com/magabrotheeeer/billkeeper/internal/lib/sl"
	"github.com/magabrotheeeer/billkeeper/internal/models"
	"github.com/magabrotheeeer/billkeeper/internal/session"
)

// Service описывает контракт сервиса списка групп.
type Service interface {
	ListForUser(ctx context.Context, userID int64) ([]*models.Group, error)
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
	Flashes []session.Flash
	Groups  []*models.Group
}

// ServeHTTP отображает группы вошедшего пользователя.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.group.list.ServeHTTP"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, ok := middlewarectx.UserID(r.Context())
	if !ok {
		log.Error("user identification missing")
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	groups, err := h.service.ListForUser(r.Context(), userID)
	if err != nil {
		log.Error("failed to list groups", sl.Err(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var flashes []session.Flash
	if sess, ok := middlewarectx.Session(r.Context()); ok {
		flashes, err = sess.PopFlashes()
		if err != nil {
			log.Error("failed to pop flashes", sl.Err(err))
		}
	}

	h.view.Render(w, "groups.html", pageData{Flashes: flashes, Groups: groups})
}
