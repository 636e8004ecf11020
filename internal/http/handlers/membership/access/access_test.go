package access_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/membership-gate/internal/http/handlers/membership/access"
	"github.com/magabrotheeeer/membership-gate/internal/http/middlewarectx"
	"github.com/magabrotheeeer/membership-gate/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) CheckAccess(ctx context.Context, user *models.SessionUser) (models.AccessResult, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(models.AccessResult), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func decodeResult(t *testing.T, body []byte) models.AccessResult {
	t.Helper()
	var resp struct {
		Status string              `json:"status"`
		Data   models.AccessResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &resp))
	require.Equal(t, "OK", resp.Status)
	return resp.Data
}

func TestAccessHandler(t *testing.T) {
	user := &models.SessionUser{UID: "uid-1", Email: "user@example.com"}

	t.Run("доступ разрешён активному членству", func(t *testing.T) {
		svc := new(ServiceMock)
		svc.On("CheckAccess", mock.Anything, user).
			Return(models.AccessResult{HasAccess: true}, nil)

		handler := access.New(newNoopLogger(), svc)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/access", nil)
		req = req.WithContext(context.WithValue(req.Context(), middlewarectx.User, user))
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		result := decodeResult(t, rec.Body.Bytes())
		assert.True(t, result.HasAccess)
	})

	t.Run("анонимный запрос получает отказ в теле ответа", func(t *testing.T) {
		svc := new(ServiceMock)
		svc.On("CheckAccess", mock.Anything, (*models.SessionUser)(nil)).
			Return(models.AccessResult{Reason: models.ReasonNotAuthenticated}, nil)

		handler := access.New(newNoopLogger(), svc)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/access", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		result := decodeResult(t, rec.Body.Bytes())
		assert.False(t, result.HasAccess)
		assert.Equal(t, models.ReasonNotAuthenticated, result.Reason)
	})

	t.Run("ошибка сервиса даёт 500", func(t *testing.T) {
		svc := new(ServiceMock)
		svc.On("CheckAccess", mock.Anything, user).
			Return(models.AccessResult{}, assert.AnError)

		handler := access.New(newNoopLogger(), svc)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/access", nil)
		req = req.WithContext(context.WithValue(req.Context(), middlewarectx.User, user))
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
