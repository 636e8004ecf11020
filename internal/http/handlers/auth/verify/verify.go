// Package verify реализует HTTP-обработчик завершения входа по
// одноразовому коду. При успехе устанавливает сессионные cookie.
package verify

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/membership-gate/internal/http/response"
	"github.com/magabrotheeeer/membership-gate/internal/http/session"
	"github.com/magabrotheeeer/membership-gate/internal/lib/sl"
	"github.com/magabrotheeeer/membership-gate/internal/models"
	"github.com/magabrotheeeer/membership-gate/internal/services/auth"
)

// Handler обрабатывает HTTP-запросы подтверждения кода входа.
type Handler struct {
	log      *slog.Logger
	service  Service
	secure   bool
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики для проверки кода входа.
type Service interface {
	VerifyCode(ctx context.Context, email, code string) (*models.Session, error)
}

// New создает новый экземпляр Handler. Флаг secure управляет атрибутом
// Secure у сессионных cookie.
func New(log *slog.Logger, service Service, secure bool) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		secure:   secure,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Завершение входа по одноразовому коду
// @Description Проверяет код из письма и устанавливает сессионные cookie.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body models.VerifyRequest true "Email и код подтверждения"
// @Success 200 {object} response.Response "Сессия установлена"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или код"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /auth/verify [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.verify"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	newSession, err := h.service.VerifyCode(r.Context(), req.Email, req.Token)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCode) {
			log.Error("invalid or expired code", slog.String("email", req.Email))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid or expired code"))
			return
		}
		log.Error("failed to verify code", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal service error"))
		return
	}

	session.SetSessionCookies(w, newSession, h.secure)
	log.Info("session established", slog.String("email", req.Email))
	render.JSON(w, r, response.StatusOKWithData(newSession.User))
}
