package auth

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/membership-gate/internal/lib/jwt"
	"github.com/magabrotheeeer/membership-gate/internal/lib/otp"
)

type UsersMock struct{ mock.Mock }

func (m *UsersMock) UpsertUser(ctx context.Context, email string) (string, error) {
	args := m.Called(ctx, email)
	return args.String(0), args.Error(1)
}

type MailerMock struct{ mock.Mock }

func (m *MailerMock) SendLoginCode(email, code, link string) error {
	return m.Called(email, code, link).Error(0)
}

// fakeCache реализация Cache поверх map: хранит JSON, как настоящий кэш,
// но без TTL
type fakeCache struct {
	data map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]byte)}
}

func (c *fakeCache) Get(key string, result any) (bool, error) {
	val, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(val, result)
}

func (c *fakeCache) Set(key string, value any, _ time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = data
	return nil
}

func (c *fakeCache) Invalidate(key string) error {
	delete(c.data, key)
	return nil
}

func newTestService(users *UsersMock, mailer *MailerMock, cache Cache) *AuthService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	maker := jwt.NewJWTMaker("test-secret", time.Hour)
	return NewAuthService(users, cache, mailer, maker, "https://example.com", 15*time.Minute, logger)
}

func TestRequestCode(t *testing.T) {
	users := new(UsersMock)
	mailer := new(MailerMock)
	cache := newFakeCache()

	var sentCode, sentLink string
	mailer.On("SendLoginCode", "user@example.com", mock.AnythingOfType("string"), mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) {
			sentCode = args.String(1)
			sentLink = args.String(2)
		}).Return(nil)

	svc := newTestService(users, mailer, cache)
	require.NoError(t, svc.RequestCode(context.Background(), "user@example.com"))

	assert.Len(t, sentCode, otp.CodeLength)
	assert.True(t, strings.HasPrefix(sentLink, "https://example.com/auth/callback?code="))

	// в кэше лежит хэш, а не сам код
	var hash string
	found, err := cache.Get("logincode:user@example.com", &hash)
	require.NoError(t, err)
	require.True(t, found)
	assert.NotEqual(t, sentCode, hash)
	assert.NoError(t, otp.CompareHash(hash, sentCode))

	mailer.AssertExpectations(t)
}

func TestRequestCode_MailerFails(t *testing.T) {
	users := new(UsersMock)
	mailer := new(MailerMock)
	cache := newFakeCache()

	mailer.On("SendLoginCode", mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("smtp down"))

	svc := newTestService(users, mailer, cache)
	err := svc.RequestCode(context.Background(), "user@example.com")
	assert.Error(t, err)
}

func TestVerifyCode(t *testing.T) {
	users := new(UsersMock)
	mailer := new(MailerMock)
	cache := newFakeCache()

	hash, err := otp.GetHash("123456")
	require.NoError(t, err)
	require.NoError(t, cache.Set("logincode:user@example.com", hash, time.Minute))

	users.On("UpsertUser", mock.Anything, "user@example.com").Return("uid-1", nil)

	svc := newTestService(users, mailer, cache)

	t.Run("неверный код", func(t *testing.T) {
		_, err := svc.VerifyCode(context.Background(), "user@example.com", "000000")
		assert.ErrorIs(t, err, ErrInvalidCode)
	})

	t.Run("успешная проверка выдаёт сессию и гасит код", func(t *testing.T) {
		session, err := svc.VerifyCode(context.Background(), "user@example.com", "123456")
		require.NoError(t, err)
		assert.NotEmpty(t, session.AccessToken)
		assert.NotEmpty(t, session.RefreshToken)
		assert.Equal(t, "uid-1", session.User.UID)

		// повторное использование того же кода невозможно
		_, err = svc.VerifyCode(context.Background(), "user@example.com", "123456")
		assert.ErrorIs(t, err, ErrInvalidCode)
	})

	t.Run("код для неизвестного email", func(t *testing.T) {
		_, err := svc.VerifyCode(context.Background(), "other@example.com", "123456")
		assert.ErrorIs(t, err, ErrInvalidCode)
	})
}

func TestExchangeLinkCode(t *testing.T) {
	users := new(UsersMock)
	mailer := new(MailerMock)
	cache := newFakeCache()

	require.NoError(t, cache.Set("linkcode:link-abc", "user@example.com", time.Minute))
	users.On("UpsertUser", mock.Anything, "user@example.com").Return("uid-1", nil)

	svc := newTestService(users, mailer, cache)

	session, err := svc.ExchangeLinkCode(context.Background(), "link-abc")
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", session.User.Email)

	// ссылка одноразовая
	_, err = svc.ExchangeLinkCode(context.Background(), "link-abc")
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestValidateAccessToken(t *testing.T) {
	users := new(UsersMock)
	mailer := new(MailerMock)
	cache := newFakeCache()

	require.NoError(t, cache.Set("linkcode:link-abc", "user@example.com", time.Minute))
	users.On("UpsertUser", mock.Anything, "user@example.com").Return("uid-1", nil)

	svc := newTestService(users, mailer, cache)
	session, err := svc.ExchangeLinkCode(context.Background(), "link-abc")
	require.NoError(t, err)

	user, err := svc.ValidateAccessToken(session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "uid-1", user.UID)
	assert.Equal(t, "user@example.com", user.Email)

	_, err = svc.ValidateAccessToken("garbage")
	assert.Error(t, err)
}

func TestRefreshAndLogout(t *testing.T) {
	users := new(UsersMock)
	mailer := new(MailerMock)
	cache := newFakeCache()

	require.NoError(t, cache.Set("linkcode:link-abc", "user@example.com", time.Minute))
	users.On("UpsertUser", mock.Anything, "user@example.com").Return("uid-1", nil)

	svc := newTestService(users, mailer, cache)
	session, err := svc.ExchangeLinkCode(context.Background(), "link-abc")
	require.NoError(t, err)

	t.Run("ротация refresh-токена", func(t *testing.T) {
		next, err := svc.Refresh(context.Background(), session.RefreshToken)
		require.NoError(t, err)
		assert.NotEqual(t, session.RefreshToken, next.RefreshToken)
		assert.Equal(t, "uid-1", next.User.UID)

		// старый токен отозван
		_, err = svc.Refresh(context.Background(), session.RefreshToken)
		assert.ErrorIs(t, err, ErrInvalidSession)

		session = next
	})

	t.Run("logout отзывает сессию", func(t *testing.T) {
		require.NoError(t, svc.Logout(context.Background(), session.RefreshToken))
		_, err := svc.Refresh(context.Background(), session.RefreshToken)
		assert.ErrorIs(t, err, ErrInvalidSession)
	})

	t.Run("logout без токена безвреден", func(t *testing.T) {
		assert.NoError(t, svc.Logout(context.Background(), ""))
	})
}
