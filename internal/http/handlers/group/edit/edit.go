// Package edit обрабатывает страницу редактирования группы.
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
	"github.com/magabrotheeeer/billkeeper/internal/session"
	"github.com/magabrotheeeer/billkeeper/internal/storage/repository"
	"github.com/magabrotheeeer/billkeeper/internal/uploads"
)

const maxUploadBytes = 32 << 20

// Service описывает контракт сервиса редактирования групп.
type Service interface {
	Get(ctx context.Context, id int64) (*models.Group, error)
	Update(ctx context.Context, id int64, form models.GroupForm, newPhoto *string) error
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
	Group   *models.Group
}

// NewForm отображает форму редактирования группы.
func (h *Handler) NewForm(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.group.edit.NewForm"

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

	var flashes []session.Flash
	if sess, ok := middlewarectx.Session(r.Context()); ok {
		flashes, err = sess.PopFlashes()
		if err != nil {
			log.Error("failed to pop flashes", sl.Err(err))
		}
	}
	h.view.Render(w, "group_edit.html", pageData{Flashes: flashes, Group: group})
}

// ServeHTTP применяет изменения группы и перенаправляет на список групп.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.group.edit.ServeHTTP"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	groupID, err := strconv.ParseInt(chi.URLParam(r, "group_id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
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
		http.Redirect(w, r, "/groups/"+strconv.FormatInt(groupID, 10)+"/edit", http.StatusFound)
		return
	}

	var photo *string
	if file, header, err := r.FormFile("photo"); err == nil {
		defer file.Close()
		name, err := h.saver.Save(file, header.Filename, uploads.MaxEditBox)
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

	if err := h.service.Update(r.Context(), groupID, form, photo); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		log.Error("failed to update group", sl.Err(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	log.Info("group updated", slog.Int64("group_id", groupID))

	h.flash(log, sess, "Group information has been updated.", "success")
	http.Redirect(w, r, "/groups", http.StatusFound)
}

func (h *Handler) flash(log *slog.Logger, sess *session.Session, message, category string) {
	if sess == nil {
		return
	}
	if err := sess.AddFlash(message, category); err != nil {
		log.Error("failed to add flash", sl.Err(err))
	}
}
