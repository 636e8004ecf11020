// Package membershipgate собирает основное HTTP-приложение: хранилище,
// кэш, сервисы аутентификации и членств, маршруты и сервер.
package membershipgate

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/membership-gate/internal/cache"
	"github.com/magabrotheeeer/membership-gate/internal/config"
	"github.com/magabrotheeeer/membership-gate/internal/lib/jwt"
	"github.com/magabrotheeeer/membership-gate/internal/migrations"
	authservice "github.com/magabrotheeeer/membership-gate/internal/services/auth"
	membershipservice "github.com/magabrotheeeer/membership-gate/internal/services/membership"
	senderservice "github.com/magabrotheeeer/membership-gate/internal/services/sender"
	"github.com/magabrotheeeer/membership-gate/internal/storage/repository"
)

// App представляет основное приложение.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
}

// New создает новый экземпляр App.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	mailer := senderservice.NewSenderService(cfg, logger)

	authService := authservice.NewAuthService(db, cacheRedis, mailer, jwtMaker,
		cfg.SiteURL, cfg.CodeTTL, logger)
	membershipService := membershipservice.NewMembershipService(db, cacheRedis, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, authService, membershipService, cfg.IsProd())

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
	}, nil
}

// Run запускает HTTP-сервер и останавливает его по отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.db.DB.Close()
		return err
	}
}
