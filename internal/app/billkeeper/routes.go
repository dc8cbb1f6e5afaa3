// Package billkeeper предоставляет маршруты для основного приложения.
package billkeeper

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/magabrotheeeer/billkeeper/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/billkeeper/internal/http/handlers/auth/logout"
	"github.com/magabrotheeeer/billkeeper/internal/http/handlers/auth/register"
	billcreate "github.com/magabrotheeeer/billkeeper/internal/http/handlers/bill/create"
	billedit "github.com/magabrotheeeer/billkeeper/internal/http/handlers/bill/edit"
	billlist "github.com/magabrotheeeer/billkeeper/internal/http/handlers/bill/list"
	billremove "github.com/magabrotheeeer/billkeeper/internal/http/handlers/bill/remove"
	groupcreate "github.com/magabrotheeeer/billkeeper/internal/http/handlers/group/create"
	groupedit "github.com/magabrotheeeer/billkeeper/internal/http/handlers/group/edit"
	grouplist "github.com/magabrotheeeer/billkeeper/internal/http/handlers/group/list"
	groupremove "github.com/magabrotheeeer/billkeeper/internal/http/handlers/group/remove"
	groupsearch "github.com/magabrotheeeer/billkeeper/internal/http/handlers/group/search"
	"github.com/magabrotheeeer/billkeeper/internal/http/handlers/health"
	"github.com/magabrotheeeer/billkeeper/internal/http/middlewarectx"
	"github.com/magabrotheeeer/billkeeper/internal/http/view"
	authservice "github.com/magabrotheeeer/billkeeper/internal/services/auth"
	billservice "github.com/magabrotheeeer/billkeeper/internal/services/bill"
	groupservice "github.com/magabrotheeeer/billkeeper/internal/services/group"
	"github.com/magabrotheeeer/billkeeper/internal/session"
	"github.com/magabrotheeeer/billkeeper/internal/uploads"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger,
	authService *authservice.AuthService,
	groupService *groupservice.GroupService,
	billService *billservice.BillService,
	sessions *session.Manager,
	saver *uploads.Saver,
	v *view.View,
) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	// Открытые конечные точки
	loginHandler := login.New(logger, authService, sessions, v)
	registerHandler := register.New(logger, authService, sessions, v)
	r.Get("/", loginHandler.NewForm)
	r.Get("/login", loginHandler.NewForm)
	r.Post("/login", loginHandler.ServeHTTP)
	r.Get("/register", registerHandler.NewForm)
	r.Post("/register", registerHandler.ServeHTTP)
	r.Get("/logout", logout.New(logger, sessions).ServeHTTP)

	// Поиск открыт и ищет по группам всех пользователей
	r.Get("/search", groupsearch.New(logger, groupService, v).ServeHTTP)

	// Группа с проверкой сессии
	r.Group(func(r chi.Router) {
		r.Use(middlewarectx.SessionMiddleware(sessions, logger))
		r.Use(middlewarectx.RateLimitMiddleware(logger))

		r.Get("/groups", grouplist.New(logger, groupService, v).ServeHTTP)
		r.Post("/groups", groupcreate.New(logger, groupService, saver, v).ServeHTTP)
		groupeditHandler := groupedit.New(logger, groupService, saver, v)
		r.Get("/groups/{group_id}/edit", groupeditHandler.NewForm)
		r.Post("/groups/{group_id}/edit", groupeditHandler.ServeHTTP)
		r.Post("/groups/{group_id}/delete", groupremove.New(logger, groupService).ServeHTTP)

		r.Get("/groups/{group_id}/bills", billlist.New(logger, billService, groupService, v).ServeHTTP)
		r.Post("/groups/{group_id}/bills", billcreate.New(logger, billService, groupService, v).ServeHTTP)
		billeditHandler := billedit.New(logger, billService, v)
		r.Get("/groups/{group_id}/bills/{bill_id}/edit", billeditHandler.NewForm)
		r.Post("/groups/{group_id}/bills/{bill_id}/edit", billeditHandler.ServeHTTP)
		r.Post("/groups/{group_id}/bills/{bill_id}/delete", billremove.New(logger, billService).ServeHTTP)
	})

	// Отдача загруженных фотографий
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(saver.Dir()))))

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/health", health.New(logger).ServeHTTP)
}
