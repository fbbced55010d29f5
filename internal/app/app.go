// Package app initializes and runs the auth daemon: configuration, storage
// backends, the auth service, and the HTTP server with graceful shutdown.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"golang.org/x/sync/errgroup"

	"github.com/chatline/authd/internal/config"
	"github.com/chatline/authd/internal/db"
	"github.com/chatline/authd/internal/httpapi"
	"github.com/chatline/authd/internal/logging"
	"github.com/chatline/authd/internal/password"
	"github.com/chatline/authd/internal/revocation"
	"github.com/chatline/authd/internal/service"
	"github.com/chatline/authd/internal/token"
)

type App struct {
	config *config.Config
	logger logging.Logger
	dbm    *db.Manager
	redis  *redis.Client
	server *http.Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	dbm, err := db.NewPostgresManager(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	redisClient, err := revocation.NewRedisClient(cfg.RedisURL)
	if err != nil {
		dbm.Close()
		return nil, fmt.Errorf("redis init error: %w", err)
	}

	issuer := token.NewIssuer([]byte(cfg.SecretKey),
		cfg.AccessTokenValidityDuration, cfg.RefreshTokenValidityDuration, nil)
	hasher := password.NewHasher(password.DefaultParams)
	store := revocation.NewRedisStore(redisClient, nil)

	auth := service.NewAuth(dbm.Users(), store, issuer, hasher)
	handler := httpapi.NewHandler(auth, logger)

	server := &http.Server{
		Addr:              cfg.EndpointAddr,
		Handler:           httpapi.NewRouter(handler),
		ReadHeaderTimeout: 5 * time.Second,
	}

	return &App{config: cfg, logger: logger, dbm: dbm, redis: redisClient, server: server}, nil
}

// Run serves until the context is canceled or a termination signal arrives,
// then shuts the server down gracefully.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	app.logger.Info(ctx, "starting server", "addr", app.config.EndpointAddr)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := app.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		return app.server.Shutdown(shutdownCtx)
	})

	err := g.Wait()

	if closeErr := app.dbm.Close(); closeErr != nil {
		app.logger.Error(ctx, "closing db", "error", closeErr.Error())
	}
	if closeErr := app.redis.Close(); closeErr != nil {
		app.logger.Error(ctx, "closing redis", "error", closeErr.Error())
	}

	app.logger.Info(ctx, "server stopped")
	return err
}
