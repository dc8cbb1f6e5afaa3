// Package remove обрабатывает удаление счета.
package remove

import (
	"context"
	"errors"
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

// Service описывает контракт сервиса удаления счетов.
type Service interface {
	Delete(ctx context.Context, userID, groupID, billID int64) (*models.Bill, error)
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

// ServeHTTP удаляет счет и перенаправляет на список счетов его группы.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.bill.remove.ServeHTTP"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	groupID, err := strconv.ParseInt(chi.URLParam(r, "group_id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	billID, err := strconv.ParseInt(chi.URLParam(r, "bill_id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	userID, ok := middlewarectx.UserID(r.Context())
	if !ok {
		log.Error("user identification missing")
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	bill, err := h.service.Delete(r.Context(), userID, groupID, billID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		log.Error("failed to delete bill", sl.Err(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	log.Info("bill deleted", slog.Int64("bill_id", billID), slog.Int64("group_id", groupID))

	if sess, ok := middlewarectx.Session(r.Context()); ok {
		if err := sess.AddFlash("The bill has been deleted.", "success"); err != nil {
			log.Error("failed to add flash", sl.Err(err))
		}
	}
	http.Redirect(w, r, "/groups/"+strconv.FormatInt(bill.GroupID, 10)+"/bills", http.StatusFound)
}
