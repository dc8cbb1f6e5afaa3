// Package create обрабатывает добавление счета в группу.
package create

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/billkeeper/internal/http/middlewarectx"
	"github.com/magabrotheeeer/billkeeper/internal/http/response"
	"github.com/magabrotheeeer/billkeeper/internal/http/view"
	"github.com/magabrotheeeer/billkeeper/internal/lib/sl"
	"github.com/magabrotheeeer/billkeeper/internal/models"
	"github.com/magabrotheeeer/billkeeper/internal/services/bill"
	"github.com/magabrotheeeer/billkeeper/internal/session"
	"github.com/magabrotheeeer/billkeeper/internal/storage/repository"
)

// invalidDateMessage показывается, когда дата счета не разбирается.
const invalidDateMessage = "field Date can contain only date in format 2006-01-02"

// Service описывает контракт сервиса создания счетов.
type Service interface {
	Create(ctx context.Context, userID, groupID int64, form models.BillForm) (int64, error)
	ListForGroup(ctx context.Context, groupID int64) ([]*models.Bill, error)
}

// GroupProvider возвращает группу для заголовка страницы.
type GroupProvider interface {
	Get(ctx context.Context, id int64) (*models.Group, error)
}

type Handler struct {
	log      *slog.Logger
	service  Service
	groups   GroupProvider
	view     *view.View
	validate *validator.Validate
}

func New(log *slog.Logger, service Service, groups GroupProvider, v *view.View) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		groups:   groups,
		view:     v,
		validate: validator.New(),
	}
}

type pageData struct {
	Flashes []session.Flash
	Group   *models.Group
	Bills   []*models.Bill
}

// ServeHTTP добавляет счет и заново отображает список счетов группы.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.bill.create.ServeHTTP"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	groupID, err := strconv.ParseInt(chi.URLParam(r, "group_id"), 10, 64)
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
	sess, _ := middlewarectx.Session(r.Context())

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

	if err := r.ParseForm(); err != nil {
		log.Error("failed to parse form", sl.Err(err))
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	form := models.BillForm{
		Name:        r.PostFormValue("name"),
		Date:        r.PostFormValue("date"),
		Description: r.PostFormValue("description"),
	}

	if err := h.validate.Struct(form); err != nil {
		log.Error("validation failed", sl.Err(err))
		h.flash(log, sess, response.ValidationMessage(err.(validator.ValidationErrors)))
	} else if _, err := h.service.Create(r.Context(), userID, groupID, form); err != nil {
		if !errors.Is(err, bill.ErrInvalidDate) {
			log.Error("failed to create bill", sl.Err(err))
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
		log.Error("invalid bill date", sl.Err(err))
		h.flash(log, sess, invalidDateMessage)
	}

	bills, err := h.service.ListForGroup(r.Context(), groupID)
	if err != nil {
		log.Error("failed to list bills", sl.Err(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var flashes []session.Flash
	if sess != nil {
		flashes, err = sess.PopFlashes()
		if err != nil {
			log.Error("failed to pop flashes", sl.Err(err))
		}
	}
	h.view.Render(w, "bills.html", pageData{Flashes: flashes, Group: group, Bills: bills})
}

func (h *Handler) flash(log *slog.Logger, sess *session.Session, message string) {
	if sess == nil {
		return
	}
	if err := sess.AddFlash(message, "error"); err != nil {
		log.Error("failed to add flash", sl.Err(err))
	}
}
