package logout_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/membership-gate/internal/http/handlers/auth/logout"
	"github.com/magabrotheeeer/membership-gate/internal/http/session"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Logout(ctx context.Context, refreshToken string) error {
	args := m.Called(ctx, refreshToken)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLogoutHandler(t *testing.T) {
	t.Run("отзывает токен и сбрасывает cookie", func(t *testing.T) {
		svc := new(ServiceMock)
		svc.On("Logout", mock.Anything, "refresh-1").Return(nil)

		handler := logout.New(newNoopLogger(), svc, false)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
		req.AddCookie(&http.Cookie{Name: session.RefreshCookie, Value: "refresh-1"})
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/", rec.Header().Get("Location"))

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 2)
		for _, c := range cookies {
			assert.Empty(t, c.Value)
			assert.Negative(t, c.MaxAge)
		}
		svc.AssertExpectations(t)
	})

	t.Run("ошибка отзыва не мешает выходу", func(t *testing.T) {
		svc := new(ServiceMock)
		svc.On("Logout", mock.Anything, mock.Anything).Return(assert.AnError)

		handler := logout.New(newNoopLogger(), svc, false)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Len(t, rec.Result().Cookies(), 2)
	})
}
