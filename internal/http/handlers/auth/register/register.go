// Package register обрабатывает страницу регистрации пользователя.
package register

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/billkeeper/internal/http/view"
	"github.com/magabrotheeeer/billkeeper/internal/lib/sl"
	"github.com/magabrotheeeer/billkeeper/internal/models"
	"github.com/magabrotheeeer/billkeeper/internal/services/auth"
	"github.com/magabrotheeeer/billkeeper/internal/session"
)

// Service описывает контракт сервиса регистрации.
type Service interface {
	Register(ctx context.Context, name, email, rawPassword string) (int64, error)
}

type Handler struct {
	log      *slog.Logger
	service  Service
	sessions *session.Manager
	view     *view.View
	validate *validator.Validate
}

func New(log *slog.Logger, service Service, sessions *session.Manager, v *view.View) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		sessions: sessions,
		view:     v,
		validate: validator.New(),
	}
}

type pageData struct {
	Flashes []session.Flash
	Error   string
	Name    string
	Email   string
}

// NewForm отображает пустую форму регистрации.
func (h *Handler) NewForm(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.register.NewForm"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	sess, err := h.sessions.Ensure(w, r)
	if err != nil {
		log.Error("failed to ensure session", sl.Err(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	flashes, err := sess.PopFlashes()
	if err != nil {
		log.Error("failed to pop flashes", sl.Err(err))
	}
	h.view.Render(w, "register.html", pageData{Flashes: flashes})
}

// ServeHTTP обрабатывает отправленную форму регистрации.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.register.ServeHTTP"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	if err := r.ParseForm(); err != nil {
		log.Error("failed to parse form", sl.Err(err))
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	form := models.RegisterForm{
		Name:     r.PostFormValue("name"),
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
		Confirm:  r.PostFormValue("password2"),
	}

	if form.Password != form.Confirm {
		h.view.Render(w, "register.html", pageData{
			Error: "Passwords do not match",
			Name:  form.Name,
			Email: form.Email,
		})
		return
	}
	if err := h.validate.Struct(form); err != nil {
		log.Error("validation failed", sl.Err(err))
		h.view.Render(w, "register.html", pageData{
			Error: "Please enter valid email address",
			Name:  form.Name,
			Email: form.Email,
		})
		return
	}

	_, err := h.service.Register(r.Context(), form.Name, form.Email, form.Password)
	if err != nil {
		if errors.Is(err, auth.ErrEmailTaken) {
			h.view.Render(w, "register.html", pageData{
				Error: "Please enter valid email address",
				Name:  form.Name,
				Email: form.Email,
			})
			return
		}
		log.Error("registration failed", sl.Err(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	log.Info("user registered", slog.String("email", form.Email))

	sess, err := h.sessions.Ensure(w, r)
	if err != nil {
		log.Error("failed to ensure session", sl.Err(err))
	} else if err := sess.AddFlash("Registered successfully!", "success"); err != nil {
		log.Error("failed to add flash", sl.Err(err))
	}
	http.Redirect(w, r, "/login", http.StatusFound)
}
