// Package list отображает страницу со счетами группы.
package list

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/billkeeper/internal/http/middlewarectx"
	"github.com/magabrotheeeer/billkeeper/internal/http/view"
	"github.com/magabrotheeeer/billkeeper/internal/lib/sl"
	"github.com/magabrotheeeer/billkeeper/internal/models"
	"github.com/magabrotheeeer/billkeeper/internal/session"
	"github.com/magabrotheeeer/billkeeper/internal/storage/repository"
)

// Service описывает контракт сервиса списка счетов.
type Service interface {
	ListForGroup(ctx context.Context, groupID int64) ([]*models.Bill, error)
}

// GroupProvider возвращает группу для заголовка страницы.
type GroupProvider interface {
	Get(ctx context.Context, id int64) (*models.Group, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
	groups  GroupProvider
	view    *view.View
}

func New(log *slog.Logger, service Service, groups GroupProvider, v *view.View) *Handler {
	return &Handler{
		log:     log,
		service: service,
		groups:  groups,
		view:    v,
	}
}

type pageData struct {
	Flashes []session.Flash
	Group   *models.Group
	Bills   []*models.Bill
}

// ServeHTTP отображает счета группы.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.bill.list.ServeHTTP"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	groupID, err := strconv.ParseInt(chi.URLParam(r, "group_id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	group, err := h.groups.Get(r.Context(), groupID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		log.Error("failed to get group", sl.Err(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	bills, err := h.service.ListForGroup(r.Context(), groupID)
	if err != nil {
		log.Error("failed to list bills", sl.Err(err))
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

	h.view.Render(w, "bills.html", pageData{Flashes: flashes, Group: group, Bills: bills})
}
