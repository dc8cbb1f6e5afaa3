// Package login обрабатывает страницу входа пользователя.
package login

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/billkeeper/internal/http/view"
	"github.com/magabrotheeeer/billkeeper/internal/lib/sl"
	"github.com/magabrotheeeer/billkeeper/internal/models"
	"github.com/magabrotheeeer/billkeeper/internal/services/auth"
	"github.com/magabrotheeeer/billkeeper/internal/session"
)

// Service описывает контракт сервиса проверки учётных данных.
type Service interface {
	Login(ctx context.Context, email, rawPassword string) (*models.User, error)
}

type Handler struct {
	log      *slog.Logger
	service  Service
	sessions *session.Manager
	view     *view.View
}

func New(log *slog.Logger, service Service, sessions *session.Manager, v *view.View) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		sessions: sessions,
		view:     v,
	}
}

type pageData struct {
	Flashes []session.Flash
	Error   string
	Email   string
}

// NewForm отображает форму входа.
func (h *Handler) NewForm(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login.NewForm"

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
	h.view.Render(w, "login.html", pageData{Flashes: flashes})
}

// ServeHTTP обрабатывает отправленную форму входа.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login.ServeHTTP"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	if err := r.ParseForm(); err != nil {
		log.Error("failed to parse form", sl.Err(err))
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	email := r.PostFormValue("email")
	rawPassword := r.PostFormValue("password")

	user, err := h.service.Login(r.Context(), email, rawPassword)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			h.view.Render(w, "login.html", pageData{
				Error: "Invalid email or password",
				Email: email,
			})
			return
		}
		log.Error("login failed", sl.Err(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	sess, err := h.sessions.Ensure(w, r)
	if err != nil {
		log.Error("failed to ensure session", sl.Err(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if err := sess.SetUserID(user.ID); err != nil {
		log.Error("failed to bind user to session", sl.Err(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	log.Info("user logged in", slog.Int64("user_id", user.ID))

	http.Redirect(w, r, "/groups", http.StatusFound)
}
