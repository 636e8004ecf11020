// Package middlewarectx содержит HTTP middleware для восстановления сессии
// из cookie и ограничения частоты запросов.
//
// SessionMiddleware читает access-токен из cookie, проверяет его и кладёт
// данные пользователя в контекст запроса. Протухший access-токен тихо
// обновляется по refresh-токену. Запрос без валидной сессии проходит
// дальше анонимно — решение о доступе принимают обработчики.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/membership-gate/internal/http/session"
	"github.com/magabrotheeeer/membership-gate/internal/models"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

// User — ключ для данных сессии пользователя в контексте.
const User Key = "user"

// Service описывает интерфейс сервиса для проверки и обновления сессии.
type Service interface {
	ValidateAccessToken(token string) (*models.SessionUser, error)
	Refresh(ctx context.Context, refreshToken string) (*models.Session, error)
}

// UserFromContext возвращает данные сессии из контекста запроса.
// Второе значение false означает анонимный запрос.
func UserFromContext(ctx context.Context) (*models.SessionUser, bool) {
	user, ok := ctx.Value(User).(*models.SessionUser)
	return user, ok && user != nil
}

// SessionMiddleware возвращает HTTP middleware, восстанавливающий сессию
// пользователя из cookie.
func SessionMiddleware(authService Service, log *slog.Logger, secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.SessionMiddleware"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			if cookie, err := r.Cookie(session.AccessCookie); err == nil && cookie.Value != "" {
				user, err := authService.ValidateAccessToken(cookie.Value)
				if err == nil {
					ctx := context.WithValue(r.Context(), User, user)
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
				log.Debug("access token rejected, trying refresh")
			}

			if cookie, err := r.Cookie(session.RefreshCookie); err == nil && cookie.Value != "" {
				newSession, err := authService.Refresh(r.Context(), cookie.Value)
				if err == nil {
					session.SetSessionCookies(w, newSession, secure)
					ctx := context.WithValue(r.Context(), User, &newSession.User)
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
				log.Debug("refresh token rejected")
			}

			next.ServeHTTP(w, r)
		})
	}
}
