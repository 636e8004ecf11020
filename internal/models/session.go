package models

// SessionUser данные пользователя, извлечённые из действующей сессии.
type SessionUser struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
}

// Session пара токенов, выдаваемая после успешной аутентификации.
// AccessToken — JWT, RefreshToken — непрозрачный ключ сессии в Redis.
type Session struct {
	AccessToken  string
	RefreshToken string
	User         SessionUser
}

// LoginRequest тело запроса на начало беспарольного входа.
type LoginRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// VerifyRequest тело запроса на завершение входа по одноразовому коду.
type VerifyRequest struct {
	Email string `json:"email" validate:"required,email"`
	Token string `json:"token" validate:"required,numeric,len=6"`
}
