// Package logout завершает сессию пользователя.
package logout

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/billkeeper/internal/lib/sl"
	"github.com/magabrotheeeer/billkeeper/internal/session"
)

type Handler struct {
	log      *slog.Logger
	sessions *session.Manager
}

func New(log *slog.Logger, sessions *session.Manager) *Handler {
	return &Handler{
		log:      log,
		sessions: sessions,
	}
}

// ServeHTTP уничтожает текущую сессию и перенаправляет на вход.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.logout.ServeHTTP"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	if sess, ok := h.sessions.Lookup(r); ok {
		if err := h.sessions.Destroy(w, sess); err != nil {
			log.Error("failed to destroy session", sl.Err(err))
		}
	}
	http.Redirect(w, r, "/login", http.StatusFound)
}
