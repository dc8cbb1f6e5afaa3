// Package edit обрабатывает страницу редактирования счета.
package edit

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

// Service описывает контракт сервиса редактирования счетов.
type Service interface {
	Get(ctx context.Context, groupID, billID int64) (*models.Bill, error)
	Update(ctx context.Context, userID, groupID, billID int64, form models.BillForm) error
}

type Handler struct {
	log      *slog.Logger
	service  Service
	view     *view.View
	validate *validator.Validate
}

func New(log *slog.Logger, service Service, v *view.View) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		view:     v,
		validate: validator.New(),
	}
}

type pageData struct {
	Flashes []session.Flash
	GroupID int64
	Bill    *models.Bill
}

func params(r *http.Request) (groupID, billID int64, err error) {
	groupID, err = strconv.ParseInt(chi.URLParam(r, "group_id"), 10, 64)
	if err != nil {
		return 0, 0, err
	}
	billID, err = strconv.ParseInt(chi.URLParam(r, "bill_id"), 10, 64)
	if err != nil {
		return 0, 0, err
	}
	return groupID, billID, nil
}

// NewForm отображает форму редактирования счета.
func (h *Handler) NewForm(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.bill.edit.NewForm"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	groupID, billID, err := params(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	bill, err := h.service.Get(r.Context(), groupID, billID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		log.Error("failed to get bill", sl.Err(err))
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
	h.view.Render(w, "bill_edit.html", pageData{Flashes: flashes, GroupID: groupID, Bill: bill})
}

// ServeHTTP применяет изменения счета и перенаправляет на список счетов группы.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.bill.edit.ServeHTTP"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	groupID, billID, err := params(r)
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

	billsURL := "/groups/" + strconv.FormatInt(groupID, 10) + "/bills"

	if err := h.validate.Struct(form); err != nil {
		log.Error("validation failed", sl.Err(err))
		if sess != nil {
			if err := sess.AddFlash(response.ValidationMessage(err.(validator.ValidationErrors)), "error"); err != nil {
				log.Error("failed to add flash", sl.Err(err))
			}
		}
		http.Redirect(w, r, billsURL+"/"+strconv.FormatInt(billID, 10)+"/edit", http.StatusFound)
		return
	}

	if err := h.service.Update(r.Context(), userID, groupID, billID, form); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		if errors.Is(err, bill.ErrInvalidDate) {
			log.Error("invalid bill date", sl.Err(err))
			if sess != nil {
				if err := sess.AddFlash(invalidDateMessage, "error"); err != nil {
					log.Error("failed to add flash", sl.Err(err))
				}
			}
			http.Redirect(w, r, billsURL+"/"+strconv.FormatInt(billID, 10)+"/edit", http.StatusFound)
			return
		}
		log.Error("failed to update bill", sl.Err(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	log.Info("bill updated", slog.Int64("bill_id", billID), slog.Int64("group_id", groupID))

	if sess != nil {
		if err := sess.AddFlash("The bill has been updated.", "success"); err != nil {
			log.Error("failed to add flash", sl.Err(err))
		}
	}
	http.Redirect(w, r, billsURL, http.StatusFound)
}
