// Package auth содержит бизнес-логику беспарольной аутентификации:
// выдачу одноразовых кодов входа по email, их проверку и управление
// сессиями (JWT-токен доступа плюс непрозрачный refresh-токен в Redis).
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/membership-gate/internal/lib/jwt"
	"github.com/magabrotheeeer/membership-gate/internal/lib/otp"
	"github.com/magabrotheeeer/membership-gate/internal/lib/sl"
	"github.com/magabrotheeeer/membership-gate/internal/metrics"
	"github.com/magabrotheeeer/membership-gate/internal/models"
)

// RefreshTokenTTL срок жизни refresh-сессии в Redis. Совпадает со сроком
// жизни cookie sb-refresh-token.
const RefreshTokenTTL = 30 * 24 * time.Hour

// ErrInvalidCode возвращается при неверном, истёкшем или уже использованном
// коде входа. Текст ошибки уходит клиенту как есть.
var ErrInvalidCode = errors.New("invalid or expired code")

// ErrInvalidSession возвращается при неизвестном или истёкшем refresh-токене.
var ErrInvalidSession = errors.New("invalid or expired session")

// UserRepository описывает контракт для работы с идентичностями пользователей.
type UserRepository interface {
	// UpsertUser сохраняет идентичность при первом входе и возвращает её UID.
	UpsertUser(ctx context.Context, email string) (string, error)
}

// Cache описывает методы для хранения короткоживущего состояния аутентификации.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// Mailer описывает отправку письма с кодом входа.
type Mailer interface {
	SendLoginCode(email, code, link string) error
}

// AuthService отвечает за выдачу кодов входа, проверку и сессии.
type AuthService struct {
	users    UserRepository
	cache    Cache
	mailer   Mailer
	jwtMaker jwt.Maker
	siteURL  string
	codeTTL  time.Duration
	log      *slog.Logger
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, cache Cache, mailer Mailer, jwtMaker jwt.Maker,
	siteURL string, codeTTL time.Duration, log *slog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		cache:    cache,
		mailer:   mailer,
		jwtMaker: jwtMaker,
		siteURL:  siteURL,
		codeTTL:  codeTTL,
		log:      log,
	}
}

// RequestCode генерирует одноразовый код входа и ссылку для входа в один
// клик, сохраняет их в Redis и отправляет пользователю письмо. В Redis
// попадает только bcrypt-хэш цифрового кода.
func (s *AuthService) RequestCode(ctx context.Context, email string) error {
	const op = "auth.RequestCode"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	code, err := otp.NewCode()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	hash, err := otp.GetHash(code)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	linkCode := uuid.NewString()

	if err := s.cache.Set("logincode:"+email, hash, s.codeTTL); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.cache.Set("linkcode:"+linkCode, email, s.codeTTL); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	link := s.siteURL + "/auth/callback?code=" + linkCode
	if err := s.mailer.SendLoginCode(email, code, link); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	metrics.LoginCodesIssued.Inc()
	s.log.Info("login code sent", slog.String("email", email))
	return nil
}

// VerifyCode проверяет одноразовый код и при успехе выдаёт сессию.
// Код одноразовый: хэш удаляется из Redis до выдачи сессии.
func (s *AuthService) VerifyCode(ctx context.Context, email, code string) (*models.Session, error) {
	const op = "auth.VerifyCode"

	var hash string
	found, err := s.cache.Get("logincode:"+email, &hash)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !found {
		return nil, ErrInvalidCode
	}
	if err := otp.CompareHash(hash, code); err != nil {
		return nil, ErrInvalidCode
	}

	if err := s.cache.Invalidate("logincode:" + email); err != nil {
		s.log.Warn("failed to invalidate login code", sl.Err(err))
	}

	session, err := s.issueSession(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	metrics.SessionsIssued.WithLabelValues("code").Inc()
	return session, nil
}

// ExchangeLinkCode обменивает код авторизации из magic-ссылки на сессию.
// Код одноразовый.
func (s *AuthService) ExchangeLinkCode(ctx context.Context, linkCode string) (*models.Session, error) {
	const op = "auth.ExchangeLinkCode"

	var email string
	found, err := s.cache.Get("linkcode:"+linkCode, &email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !found {
		return nil, ErrInvalidCode
	}

	if err := s.cache.Invalidate("linkcode:" + linkCode); err != nil {
		s.log.Warn("failed to invalidate link code", sl.Err(err))
	}

	session, err := s.issueSession(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	metrics.SessionsIssued.WithLabelValues("link").Inc()
	return session, nil
}

// Refresh проверяет refresh-токен и выдаёт новую пару токенов.
// Старый refresh-токен отзывается (ротация).
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*models.Session, error) {
	const op = "auth.Refresh"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var user models.SessionUser
	found, err := s.cache.Get("session:"+refreshToken, &user)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !found {
		return nil, ErrInvalidSession
	}

	if err := s.cache.Invalidate("session:" + refreshToken); err != nil {
		s.log.Warn("failed to invalidate old session", sl.Err(err))
	}

	return s.newSessionFor(user)
}

// Logout отзывает refresh-сессию. Отсутствие сессии не считается ошибкой.
func (s *AuthService) Logout(_ context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.cache.Invalidate("session:" + refreshToken)
}

// ValidateAccessToken проверяет JWT-токен доступа и возвращает данные
// пользователя из его claims без обращения к хранилищу.
func (s *AuthService) ValidateAccessToken(token string) (*models.SessionUser, error) {
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, err
	}
	return &models.SessionUser{
		UID:   claims.UserUID,
		Email: claims.Email,
	}, nil
}

func (s *AuthService) issueSession(ctx context.Context, email string) (*models.Session, error) {
	uid, err := s.users.UpsertUser(ctx, email)
	if err != nil {
		return nil, err
	}
	return s.newSessionFor(models.SessionUser{UID: uid, Email: email})
}

func (s *AuthService) newSessionFor(user models.SessionUser) (*models.Session, error) {
	accessToken, err := s.jwtMaker.GenerateToken(user.UID, user.Email)
	if err != nil {
		return nil, err
	}

	refreshToken := uuid.NewString()
	if err := s.cache.Set("session:"+refreshToken, user, RefreshTokenTTL); err != nil {
		return nil, err
	}

	s.log.Info("session issued", slog.String("uid", user.UID))
	return &models.Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
	}, nil
}
