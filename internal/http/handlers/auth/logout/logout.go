// Package logout реализует HTTP-обработчик выхода из сессии.
package logout

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/membership-gate/internal/http/session"
	"github.com/magabrotheeeer/membership-gate/internal/lib/sl"
)

// Handler обрабатывает HTTP-запросы выхода.
type Handler struct {
	log     *slog.Logger
	service Service
	secure  bool
}

// Service описывает интерфейс бизнес-логики для завершения сессии.
type Service interface {
	Logout(ctx context.Context, refreshToken string) error
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service, secure bool) *Handler {
	return &Handler{
		log:     log,
		service: service,
		secure:  secure,
	}
}

// ServeHTTP godoc
// @Summary Выход из сессии
// @Description Отзывает refresh-токен, сбрасывает сессионные cookie и перенаправляет на главную.
// @Tags Auth
// @Success 302 "Перенаправление на главную"
// @Router /auth/logout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.logout"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var refreshToken string
	if cookie, err := r.Cookie(session.RefreshCookie); err == nil {
		refreshToken = cookie.Value
	}

	// выход завершается даже при ошибке отзыва токена
	if err := h.service.Logout(r.Context(), refreshToken); err != nil {
		log.Error("failed to revoke session", sl.Err(err))
	}

	session.ClearSessionCookies(w, h.secure)
	log.Info("session cleared")
	http.Redirect(w, r, "/", http.StatusFound)
}
