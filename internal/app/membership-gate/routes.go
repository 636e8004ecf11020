// Package membershipgate предоставляет маршруты для основного приложения.
package membershipgate

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/membership-gate/internal/http/handlers/auth/callback"
	"github.com/magabrotheeeer/membership-gate/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/membership-gate/internal/http/handlers/auth/logout"
	"github.com/magabrotheeeer/membership-gate/internal/http/handlers/auth/verify"
	"github.com/magabrotheeeer/membership-gate/internal/http/handlers/membership/access"
	"github.com/magabrotheeeer/membership-gate/internal/http/handlers/membership/status"
	"github.com/magabrotheeeer/membership-gate/internal/http/middlewarectx"
	authservice "github.com/magabrotheeeer/membership-gate/internal/services/auth"
	membershipservice "github.com/magabrotheeeer/membership-gate/internal/services/membership"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, authService *authservice.AuthService,
	membershipService *membershipservice.MembershipService, secure bool) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Конечные точки входа с ограничением частоты запросов
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Post("/auth/login", login.New(logger, authService).ServeHTTP)
			r.Post("/auth/verify", verify.New(logger, authService, secure).ServeHTTP)
		})

		// Группа с восстановлением сессии из cookie
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.SessionMiddleware(authService, logger, secure))
			r.Post("/auth/logout", logout.New(logger, authService, secure).ServeHTTP)
			r.Get("/membership", status.New(logger, membershipService).ServeHTTP)
			r.Get("/access", access.New(logger, membershipService).ServeHTTP)
		})
	})

	// Переход по ссылке из письма
	r.Get("/auth/callback", callback.New(logger, authService, secure).ServeHTTP)

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
