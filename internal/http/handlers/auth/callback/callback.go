// Package callback реализует HTTP-обработчик перехода по ссылке из письма.
//
// Обработчик обменивает одноразовый код из query-параметра на сессию и
// перенаправляет в приложение. Все ошибки превращаются в редирект на
// страницу входа с кодом ошибки в query-параметре.
package callback

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/membership-gate/internal/http/session"
	"github.com/magabrotheeeer/membership-gate/internal/lib/sl"
	"github.com/magabrotheeeer/membership-gate/internal/models"
)

// Handler обрабатывает переходы по ссылке входа из письма.
type Handler struct {
	log     *slog.Logger
	service Service
	secure  bool
}

// Service описывает интерфейс бизнес-логики для обмена кода из ссылки.
type Service interface {
	ExchangeLinkCode(ctx context.Context, linkCode string) (*models.Session, error)
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
// @Summary Вход по ссылке из письма
// @Description Обменивает одноразовый код из ссылки на сессию и перенаправляет в приложение.
// @Tags Auth
// @Param code query string false "Одноразовый код из письма"
// @Success 302 "Перенаправление в приложение или на страницу входа с кодом ошибки"
// @Router /auth/callback [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.callback"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	query := r.URL.Query()

	if errMsg := query.Get("error"); errMsg != "" {
		log.Error("provider returned error", slog.String("error", errMsg))
		http.Redirect(w, r, "/login?error=auth_error", http.StatusFound)
		return
	}

	code := query.Get("code")
	if code == "" {
		log.Error("no auth data in callback")
		http.Redirect(w, r, "/login?error=no_auth_data", http.StatusFound)
		return
	}

	newSession, err := h.service.ExchangeLinkCode(r.Context(), code)
	if err != nil {
		log.Error("failed to exchange link code", sl.Err(err))
		http.Redirect(w, r, "/login?error=session_error", http.StatusFound)
		return
	}

	session.SetSessionCookies(w, newSession, h.secure)
	log.Info("session established via link", slog.String("email", newSession.User.Email))
	http.Redirect(w, r, "/", http.StatusFound)
}
