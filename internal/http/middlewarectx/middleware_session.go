// Package middlewarectx содержит HTTP middleware для проверки сессии
// пользователя и ограничения частоты запросов.
//
// SessionMiddleware проверяет наличие действующей сессии с выполненным
// входом и в случае успеха добавляет в контекст идентификатор пользователя
// и саму сессию для дальнейшего использования в обработчиках.
//
// Анонимные запросы перенаправляются на страницу входа.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/magabrotheeeer/billkeeper/internal/session"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

const (
	// User — ключ для идентификатора пользователя в контексте
	User Key = "user_id"
	// Sess — ключ для сессии в контексте
	Sess Key = "session"
)

// UserID извлекает идентификатор пользователя из контекста запроса.
func UserID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(User).(int64)
	return id, ok
}

// Session извлекает сессию из контекста запроса.
func Session(ctx context.Context) (*session.Session, bool) {
	s, ok := ctx.Value(Sess).(*session.Session)
	return s, ok
}

// SessionMiddleware возвращает HTTP middleware, который проверяет сессию
// по куке запроса.
//
// Если сессия действительна и вход выполнен, добавляет идентификатор
// пользователя и сессию в контекст запроса, иначе перенаправляет на /login.
func SessionMiddleware(sessions *session.Manager, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.SessionMiddleware"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			sess, ok := sessions.Lookup(r)
			if !ok || sess.UserID() == 0 {
				log.Info("anonymous request, redirecting to login")
				http.Redirect(w, r, "/login", http.StatusFound)
				return
			}

			ctx := context.WithValue(r.Context(), User, sess.UserID())
			ctx = context.WithValue(ctx, Sess, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
