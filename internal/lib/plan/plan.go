// Package plan содержит чистые функции расчёта срока действия членства:
// дату окончания по тарифному плану, признак активности и сводку для UI.
// Функции не имеют побочных эффектов и не обращаются к хранилищу.
package plan

import (
	"math"
	"time"

	"github.com/magabrotheeeer/membership-gate/internal/models"
)

// ExpiringSoonDays размер окна "скоро истекает" в днях.
const ExpiringSoonDays = 30

// Summary сводка состояния членства для отображения пользователю.
// DaysRemaining равен nil, если дата окончания отсутствует или уже прошла.
type Summary struct {
	IsActive       bool            `json:"is_active"`
	PlanType       models.PlanType `json:"plan_type"`
	ExpiresAt      *time.Time      `json:"expires_at,omitempty"`
	DaysRemaining  *int            `json:"days_remaining,omitempty"`
	IsExpiringSoon bool            `json:"is_expiring_soon"`
}

// CalculateEndDate возвращает дату окончания членства: monthly +1 месяц,
// semester +6 месяцев, annual +1 год, lifetime — nil.
//
// Календарная арифметика выполняется через time.AddDate, которая нормализует
// переполнение дня месяца переносом вперёд: 31 января + 1 месяц даёт
// 2 марта (3 марта в невисокосный год). Правило детерминированное и
// зафиксировано тестами.
func CalculateEndDate(start time.Time, planType models.PlanType) *time.Time {
	var end time.Time
	switch planType {
	case models.PlanMonthly:
		end = start.AddDate(0, 1, 0)
	case models.PlanSemester:
		end = start.AddDate(0, 6, 0)
	case models.PlanAnnual:
		end = start.AddDate(1, 0, 0)
	case models.PlanLifetime:
		return nil
	default:
		return nil
	}
	return &end
}

// IsActive сообщает, действует ли членство в данный момент: статус active
// и либо lifetime-план, либо дата окончания строго в будущем.
func IsActive(m models.Membership) bool {
	return IsActiveAt(m, time.Now())
}

// IsActiveAt вариант IsActive с явным моментом времени, удобен в тестах.
func IsActiveAt(m models.Membership, now time.Time) bool {
	if m.Status != models.StatusActive {
		return false
	}
	if m.PlanType == models.PlanLifetime {
		return true
	}
	if m.EndDate == nil {
		return false
	}
	return m.EndDate.After(now)
}

// Summarize строит сводку членства на момент now. Количество оставшихся
// дней округляется вверх; неположительный остаток не отображается.
func Summarize(m models.Membership, now time.Time) Summary {
	s := Summary{
		IsActive: IsActiveAt(m, now),
		PlanType: m.PlanType,
	}
	if m.PlanType == models.PlanLifetime || m.EndDate == nil {
		return s
	}

	expiresAt := *m.EndDate
	s.ExpiresAt = &expiresAt

	days := int(math.Ceil(expiresAt.Sub(now).Hours() / 24))
	if days > 0 {
		s.DaysRemaining = &days
		s.IsExpiringSoon = days <= ExpiringSoonDays
	}
	return s
}
