package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/membership-gate/internal/models"
)

// UpsertUser сохраняет идентичность пользователя при первом входе по email
// и возвращает её UID. Повторный вход с тем же email возвращает прежний UID.
func (s *Storage) UpsertUser(ctx context.Context, email string) (string, error) {
	const op = "storage.UpsertUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var uid string
	query := `INSERT INTO users (email)
			  VALUES ($1)
			  ON CONFLICT (email) DO UPDATE SET email = EXCLUDED.email
			  RETURNING uid`
	if err := s.DB.QueryRowContext(ctx, query, email).Scan(&uid); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return uid, nil
}

// GetUserByUID возвращает пользователя по его UID.
func (s *Storage) GetUserByUID(ctx context.Context, uid string) (*models.User, error) {
	const op = "storage.GetUserByUID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	u := &models.User{}
	query := `SELECT uid, email, created_at
			  FROM users
			  WHERE uid = $1`
	if err := s.DB.QueryRowContext(ctx, query, uid).Scan(&u.UID, &u.Email, &u.CreatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}
