// Package session содержит работу с сессионными cookie: установку пары
// access/refresh токенов и их сброс при выходе.
package session

import (
	"net/http"
	"time"

	"github.com/magabrotheeeer/membership-gate/internal/models"
)

const (
	// AccessCookie имя cookie с access-токеном.
	AccessCookie = "sb-access-token"
	// RefreshCookie имя cookie с refresh-токеном.
	RefreshCookie = "sb-refresh-token"

	accessMaxAge  = 7 * 24 * time.Hour
	refreshMaxAge = 30 * 24 * time.Hour
)

// SetSessionCookies устанавливает пару httpOnly cookie с токенами сессии.
// Secure задаётся флагом, чтобы локальная разработка работала без TLS.
func SetSessionCookies(w http.ResponseWriter, s *models.Session, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     AccessCookie,
		Value:    s.AccessToken,
		Path:     "/",
		MaxAge:   int(accessMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookie,
		Value:    s.RefreshToken,
		Path:     "/",
		MaxAge:   int(refreshMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookies сбрасывает сессионные cookie.
func ClearSessionCookies(w http.ResponseWriter, secure bool) {
	for _, name := range []string{AccessCookie, RefreshCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}
