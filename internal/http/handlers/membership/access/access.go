// Package access реализует HTTP-обработчик проверки доступа к закрытому
// контенту. В отличие от сводки членства, отвечает 200 и анонимным
// запросам: решение о доступе возвращается в теле ответа.
package access

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/membership-gate/internal/http/middlewarectx"
	"github.com/magabrotheeeer/membership-gate/internal/http/response"
	"github.com/magabrotheeeer/membership-gate/internal/lib/sl"
	"github.com/magabrotheeeer/membership-gate/internal/models"
)

// Handler обрабатывает HTTP-запросы проверки доступа.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики проверки доступа.
type Service interface {
	CheckAccess(ctx context.Context, user *models.SessionUser) (models.AccessResult, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Проверка доступа к закрытому контенту
// @Description Возвращает решение о доступе с кодом причины отказа.
// @Tags Membership
// @Produce  json
// @Success 200 {object} response.Response "Решение о доступе"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /access [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.membership.access"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user, _ := middlewarectx.UserFromContext(r.Context())

	result, err := h.service.CheckAccess(r.Context(), user)
	if err != nil {
		log.Error("failed to check access", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal service error"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(result))
}
