// Package create обрабатывает создание новой группы с фотографией.
package create

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/billkeeper/internal/http/middlewarectx"
	"github.com/magabrotheeeer/billkeeper/internal/http/response"
	"github.com/magabrotheeeer/billkeeper/internal/http/view"
	"github.com/magabrotheeeer/billkeeper/internal/lib/sl"
	"github.com/magabrotheeeer/billkeeper/internal/models"
	"github.com/magabrotheeeer/billkeeper/internal/session"
	"github.com/magabrotheeeer/billkeeper/internal/uploads"
)

const maxUploadBytes = 32 << 20

// Service описывает контракт сервиса создания групп.
type Service interface {
	Create(ctx context.Context, userID int64, form models.GroupForm, photo *string) (int64, error)
	ListForUser(ctx context.Context, userID int64) ([]*models.Group, error)
}

type Handler struct {
	log      *slog.Logger
	service  Service
	saver    *uploads.Saver
	view     *view.View
	validate *validator.Validate
}

func New(log *slog.Logger, service Service, saver *uploads.Saver, v *view.View) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		saver:    saver,
		view:     v,
		validate: validator.New(),
	}
}

type pageData struct {
	Flashes []session.Flash
	Groups  []*models.Group
}

// ServeHTTP создает группу и заново отображает список групп.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.group.create.ServeHTTP"

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
	sess, _ := middlewarectx.Session(r.Context())

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		log.Error("failed to parse multipart form", sl.Err(err))
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	form := models.GroupForm{
		Name:        r.PostFormValue("name"),
		Description: r.PostFormValue("description"),
	}

	if err := h.validate.Struct(form); err != nil {
		log.Error("validation failed", sl.Err(err))
		h.flash(log, sess, response.ValidationMessage(err.(validator.ValidationErrors)), "error")
		h.render(w, r, log, sess, userID)
		return
	}

	var photo *string
	if file, header, err := r.FormFile("photo"); err == nil {
		defer file.Close()
		name, err := h.saver.Save(file, header.Filename, uploads.MaxCreateBox)
		if err != nil {
			if errors.Is(err, uploads.ErrUnsupportedFormat) {
				h.flash(log, sess, "Invalid file format. Only png, jpg, jpeg, and gif files are allowed.", "error")
			} else {
				log.Error("failed to save photo", sl.Err(err))
				http.Error(w, "internal server error", http.StatusInternalServerError)
				return
			}
		} else {
			photo = &name
		}
	}

	if _, err := h.service.Create(r.Context(), userID, form, photo); err != nil {
		log.Error("failed to create group", sl.Err(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.render(w, r, log, sess, userID)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, log *slog.Logger, sess *session.Session, userID int64) {
	groups, err := h.service.ListForUser(r.Context(), userID)
	if err != nil {
		log.Error("failed to list groups", sl.Err(err))
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
	h.view.Render(w, "groups.html", pageData{Flashes: flashes, Groups: groups})
}

func (h *Handler) flash(log *slog.Logger, sess *session.Session, message, category string) {
	if sess == nil {
		return
	}
	if err := sess.AddFlash(message, category); err != nil {
		log.Error("failed to add flash", sl.Err(err))
	}
}
