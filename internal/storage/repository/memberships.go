package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/membership-gate/internal/models"
)

const membershipColumns = `id, user_uid, email, name, plan_type, status,
			      start_date, end_date, stripe_customer_id, stripe_subscription_id,
			      metadata, created_at, updated_at`

// CreateMembership вставляет новую запись членства и возвращает её ID.
func (s *Storage) CreateMembership(ctx context.Context, m models.Membership) (string, error) {
	const op = "storage.CreateMembership"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	metadata, err := json.Marshal(m.Metadata)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	query := `INSERT INTO memberships (user_uid, email, name, plan_type, status,
			      start_date, end_date, stripe_customer_id, stripe_subscription_id, metadata)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			  RETURNING id`
	var newID string
	err = s.DB.QueryRowContext(ctx, query,
		m.UserUID, m.Email, m.Name, m.PlanType, m.Status, m.StartDate, m.EndDate,
		m.StripeCustomerID, m.StripeSubscriptionID, metadata).Scan(&newID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetMembershipByUserUID возвращает членство, привязанное к пользователю.
// Возвращает ErrMembershipNotFound, если привязки нет.
func (s *Storage) GetMembershipByUserUID(ctx context.Context, userUID string) (*models.Membership, error) {
	const op = "storage.GetMembershipByUserUID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + membershipColumns + `
			  FROM memberships
			  WHERE user_uid = $1`
	m, err := scanMembership(s.DB.QueryRowContext(ctx, query, userUID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrMembershipNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return m, nil
}

// GetMembershipByEmail возвращает членство по email — запасной путь поиска
// для пользователей, чьё членство создано до первого входа.
func (s *Storage) GetMembershipByEmail(ctx context.Context, email string) (*models.Membership, error) {
	const op = "storage.GetMembershipByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + membershipColumns + `
			  FROM memberships
			  WHERE email = $1`
	m, err := scanMembership(s.DB.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrMembershipNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return m, nil
}

// LinkMembershipUser записывает user_uid в членство, найденное по email.
// Повторная запись того же значения безвредна: последняя запись побеждает.
func (s *Storage) LinkMembershipUser(ctx context.Context, membershipID, userUID string) (int64, error) {
	const op = "storage.LinkMembershipUser"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE memberships
			  SET user_uid = $1, updated_at = now()
			  WHERE id = $2`
	result, err := s.DB.ExecContext(ctx, query, userUID, membershipID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected, nil
}

// FindMembershipsExpiringTomorrow возвращает активные членства, срок которых
// истекает на следующий день. Используется планировщиком напоминаний.
func (s *Storage) FindMembershipsExpiringTomorrow(ctx context.Context) ([]*models.ReminderInfo, error) {
	const op = "storage.FindMembershipsExpiringTomorrow"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT email, COALESCE(name, ''), plan_type, end_date
			  FROM memberships
			  WHERE status = 'active'
			    AND end_date IS NOT NULL
			    AND end_date::date = (now() + interval '1 day')::date`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []*models.ReminderInfo
	for rows.Next() {
		var item models.ReminderInfo
		if err := rows.Scan(&item.Email, &item.Name, &item.PlanType, &item.EndDate); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMembership(row rowScanner) (*models.Membership, error) {
	m := &models.Membership{}
	var (
		userUID, name, stripeCustomer, stripeSubscription sql.NullString
		endDate                                           sql.NullTime
		metadata                                          []byte
	)
	if err := row.Scan(&m.ID, &userUID, &m.Email, &name, &m.PlanType, &m.Status,
		&m.StartDate, &endDate, &stripeCustomer, &stripeSubscription,
		&metadata, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}

	if userUID.Valid {
		m.UserUID = &userUID.String
	}
	if name.Valid {
		m.Name = &name.String
	}
	if stripeCustomer.Valid {
		m.StripeCustomerID = &stripeCustomer.String
	}
	if stripeSubscription.Valid {
		m.StripeSubscriptionID = &stripeSubscription.String
	}
	if endDate.Valid {
		t := endDate.Time
		m.EndDate = &t
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &m.Metadata); err != nil {
			return nil, err
		}
	}
	return m, nil
}
