// Package models содержит доменные структуры членства, пользователя и сессии,
// а также вспомогательные типы для приёма данных из внешних источников
// (JSON-запросы, CSV-файл импорта).
package models

import "time"

// PlanType тип тарифного плана членства.
type PlanType string

// Возможные тарифные планы. Для lifetime дата окончания отсутствует.
const (
	PlanMonthly  PlanType = "monthly"
	PlanSemester PlanType = "semester"
	PlanAnnual   PlanType = "annual"
	PlanLifetime PlanType = "lifetime"
)

// MembershipStatus статус членства, хранимый в базе данных.
type MembershipStatus string

// Возможные статусы членства. Переходы в expired и cancelled выполняются
// внешними процессами, сервис их только читает.
const (
	StatusActive    MembershipStatus = "active"
	StatusExpired   MembershipStatus = "expired"
	StatusCancelled MembershipStatus = "cancelled"
	StatusPending   MembershipStatus = "pending"
)

// Membership представляет запись членства, дающую доступ к закрытому контенту.
// Поле EndDate может быть nil — по соглашению это означает lifetime-план.
// UserUID заполняется после первого входа пользователя по email.
type Membership struct {
	ID                   string           // Уникальный идентификатор записи
	UserUID              *string          // UID связанного пользователя, nil до первого входа
	Email                string           // Электронная почта, уникальный бизнес-ключ
	Name                 *string          // Отображаемое имя, опционально
	PlanType             PlanType         // Тарифный план
	Status               MembershipStatus // Статус членства
	StartDate            time.Time        // Дата начала действия
	EndDate              *time.Time       // Дата окончания, nil для lifetime
	StripeCustomerID     *string          // Привязка к Stripe-клиенту
	StripeSubscriptionID *string          // Привязка к Stripe-подписке
	Metadata             map[string]any   // Произвольные метаданные (JSONB)
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// AccessReason код причины отказа в доступе к закрытому контенту.
type AccessReason string

// Коды причин в порядке проверки: отсутствие сессии, отсутствие членства,
// отмена, истечение срока. Отмена проверяется раньше истечения, чтобы код
// причины оставался специфичным.
const (
	ReasonNotAuthenticated AccessReason = "not_authenticated"
	ReasonNoMembership     AccessReason = "no_membership"
	ReasonCancelled        AccessReason = "cancelled"
	ReasonExpired          AccessReason = "expired"
)

// AccessResult результат проверки доступа к закрытому контенту.
type AccessResult struct {
	HasAccess  bool         `json:"has_access"`
	Reason     AccessReason `json:"reason,omitempty"`
	Membership *Membership  `json:"-"`
}

// ImportRow одна строка CSV-файла импорта членств.
type ImportRow struct {
	Email    string
	Name     string
	PlanType PlanType
}

// ImportStats итог пакетного импорта. Ошибки по отдельным строкам
// не прерывают пакет, а только увеличивают счётчик Errors.
type ImportStats struct {
	Success int
	Errors  int
	ByPlan  map[PlanType]int
}

// Total возвращает общее количество обработанных строк.
func (s ImportStats) Total() int {
	return s.Success + s.Errors
}
