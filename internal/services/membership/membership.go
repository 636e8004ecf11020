// Package membership содержит бизнес-логику работы с членствами: поиск
// записи для пользователя с запасным путём по email, привязку записи
// к пользователю после первого входа и проверку доступа к закрытому контенту.
package membership

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/membership-gate/internal/lib/plan"
	"github.com/magabrotheeeer/membership-gate/internal/lib/sl"
	"github.com/magabrotheeeer/membership-gate/internal/metrics"
	"github.com/magabrotheeeer/membership-gate/internal/models"
	"github.com/magabrotheeeer/membership-gate/internal/storage/repository"
)

// ErrNoMembership возвращается, когда у пользователя нет записи членства.
var ErrNoMembership = errors.New("no membership")

// ResolveOutcome способ, которым была найдена запись членства.
type ResolveOutcome int

// Возможные исходы поиска. FoundByEmail означает, что запись найдена по
// запасному пути и привязка user_uid была дозаписана.
const (
	NotFound ResolveOutcome = iota
	FoundByUser
	FoundByEmail
)

// MembershipRepository определяет методы для работы с членствами в хранилище.
type MembershipRepository interface {
	// GetMembershipByUserUID возвращает членство, привязанное к пользователю.
	GetMembershipByUserUID(ctx context.Context, userUID string) (*models.Membership, error)
	// GetMembershipByEmail возвращает членство по email.
	GetMembershipByEmail(ctx context.Context, email string) (*models.Membership, error)
	// LinkMembershipUser записывает user_uid в найденную по email запись.
	LinkMembershipUser(ctx context.Context, membershipID, userUID string) (int64, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// MembershipService реализует поиск членств и проверку доступа.
type MembershipService struct {
	repo  MembershipRepository
	cache Cache
	log   *slog.Logger
}

// NewMembershipService создает новый экземпляр MembershipService.
func NewMembershipService(repo MembershipRepository, cache Cache, log *slog.Logger) *MembershipService {
	return &MembershipService{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// Resolve ищет членство пользователя: сначала по привязанному user_uid,
// затем по email. Найденную по email запись дозаписывает привязкой —
// это сверка для членств, созданных до первого входа пользователя.
// Привязка не транзакционна: гонка двух первых входов перезапишет
// одно и то же значение, что безвредно.
func (s *MembershipService) Resolve(ctx context.Context, user models.SessionUser) (*models.Membership, ResolveOutcome, error) {
	const op = "membership.Resolve"

	cacheKey := "membership:user:" + user.UID
	var cached models.Membership
	if found, err := s.cache.Get(cacheKey, &cached); err == nil && found {
		return &cached, FoundByUser, nil
	}

	m, err := s.repo.GetMembershipByUserUID(ctx, user.UID)
	if err == nil {
		s.cacheMembership(cacheKey, m)
		return m, FoundByUser, nil
	}
	if !errors.Is(err, repository.ErrMembershipNotFound) {
		return nil, NotFound, fmt.Errorf("%s: %w", op, err)
	}

	m, err = s.repo.GetMembershipByEmail(ctx, user.Email)
	if err != nil {
		if errors.Is(err, repository.ErrMembershipNotFound) {
			return nil, NotFound, nil
		}
		return nil, NotFound, fmt.Errorf("%s: %w", op, err)
	}

	if m.UserUID == nil || *m.UserUID != user.UID {
		if _, err := s.repo.LinkMembershipUser(ctx, m.ID, user.UID); err != nil {
			// привязка best-effort, членство уже найдено
			s.log.Warn("failed to link membership to user", sl.Err(err))
		} else {
			uid := user.UID
			m.UserUID = &uid
			s.log.Info("membership linked to user",
				slog.String("membership_id", m.ID), slog.String("uid", user.UID))
		}
	}

	s.cacheMembership(cacheKey, m)
	return m, FoundByEmail, nil
}

// CheckAccess принимает данные сессии (nil для анонимного запроса) и
// возвращает решение о доступе к закрытому контенту с кодом причины.
// Порядок проверок фиксирован: отмена проверяется раньше истечения срока,
// чтобы код причины оставался специфичным.
func (s *MembershipService) CheckAccess(ctx context.Context, user *models.SessionUser) (models.AccessResult, error) {
	if user == nil {
		return s.decision(models.AccessResult{Reason: models.ReasonNotAuthenticated}), nil
	}

	m, outcome, err := s.Resolve(ctx, *user)
	if err != nil {
		return models.AccessResult{}, err
	}
	if outcome == NotFound {
		return s.decision(models.AccessResult{Reason: models.ReasonNoMembership}), nil
	}

	if m.Status == models.StatusCancelled {
		return s.decision(models.AccessResult{Reason: models.ReasonCancelled, Membership: m}), nil
	}
	if !plan.IsActive(*m) {
		return s.decision(models.AccessResult{Reason: models.ReasonExpired, Membership: m}), nil
	}

	return s.decision(models.AccessResult{HasAccess: true, Membership: m}), nil
}

// Summary возвращает сводку членства для отображения пользователю.
func (s *MembershipService) Summary(ctx context.Context, user models.SessionUser) (*plan.Summary, error) {
	m, outcome, err := s.Resolve(ctx, user)
	if err != nil {
		return nil, err
	}
	if outcome == NotFound {
		return nil, ErrNoMembership
	}
	summary := plan.Summarize(*m, time.Now())
	return &summary, nil
}

func (s *MembershipService) decision(result models.AccessResult) models.AccessResult {
	reason := "granted"
	if !result.HasAccess {
		reason = string(result.Reason)
	}
	metrics.AccessDecisions.WithLabelValues(reason).Inc()
	return result
}

func (s *MembershipService) cacheMembership(key string, m *models.Membership) {
	if err := s.cache.Set(key, m, time.Hour); err != nil {
		s.log.Warn("failed to cache membership", slog.String("key", key), sl.Err(err))
	}
}
