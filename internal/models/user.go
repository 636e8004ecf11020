package models

import "time"

// User представляет идентичность пользователя, создаваемую при первом
// успешном входе по email-коду. Пароля нет: аутентификация беспарольная.
type User struct {
	UID       string    // Уникальный идентификатор пользователя
	Email     string    // Электронная почта (уникальная)
	CreatedAt time.Time // Дата первого входа
}
