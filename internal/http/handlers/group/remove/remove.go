// Package remove обрабатывает удаление группы вместе с её счетами.
package remove

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/billkeeper/internal/http/middlewarectx"
	"github.com/magabrotheeeer/billkeeper/internal/lib/sl"
	"github.com/magabrotheeeer/billkeeper/internal/models"
	"github.com/magabrotheeeer/billkeeper/internal/storage/repository"
)

// Service описывает контракт сервиса удаления групп.
type Service interface {
	Get(ctx context.Context, id int64) (*models.Group, error)
	Delete(ctx context.Context, id int64) error
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP удаляет группу и перенаправляет на список групп.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.group.remove.ServeHTTP"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	groupID, err := strconv.ParseInt(chi.URLParam(r, "group_id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	group, err := h.service.Get(r.Context(), groupID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		log.Error("failed to get group", sl.Err(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if err := h.service.Delete(r.Context(), groupID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		log.Error("failed to delete group", sl.Err(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	log.Info("group deleted", slog.Int64("group_id", groupID))

	if sess, ok := middlewarectx.Session(r.Context()); ok {
		if err := sess.AddFlash(fmt.Sprintf("%s has been deleted!", group.Name), "success"); err != nil {
			log.Error("failed to add flash", sl.Err(err))
		}
	}
	http.Redirect(w, r, "/groups", http.StatusFound)
}
