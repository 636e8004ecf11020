// Package status реализует HTTP-обработчик сводки членства текущего
// пользователя.
package status

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/membership-gate/internal/http/middlewarectx"
	"github.com/magabrotheeeer/membership-gate/internal/http/response"
	"github.com/magabrotheeeer/membership-gate/internal/lib/plan"
	"github.com/magabrotheeeer/membership-gate/internal/lib/sl"
	"github.com/magabrotheeeer/membership-gate/internal/models"
	"github.com/magabrotheeeer/membership-gate/internal/services/membership"
)

// Handler обрабатывает HTTP-запросы сводки членства.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики для получения сводки членства.
type Service interface {
	Summary(ctx context.Context, user models.SessionUser) (*plan.Summary, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Сводка членства текущего пользователя
// @Description Возвращает план, дату окончания и оставшиеся дни членства.
// @Tags Membership
// @Produce  json
// @Success 200 {object} response.Response "Сводка членства"
// @Failure 401 {object} response.ErrorResponse "Запрос без сессии"
// @Failure 404 {object} response.ErrorResponse "Членство не найдено"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /membership [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.membership.status"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		log.Error("user identification missing")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("authentication required"))
		return
	}

	summary, err := h.service.Summary(r.Context(), *user)
	if err != nil {
		if errors.Is(err, membership.ErrNoMembership) {
			log.Info("membership not found", slog.String("uid", user.UID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("membership not found"))
			return
		}
		log.Error("failed to get membership summary", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal service error"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(summary))
}
