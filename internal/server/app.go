// Package server wires configuration, storage, services and transports into
// the running portfolio server and handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrijs2005/portfolio/internal/logging"
	"github.com/dmitrijs2005/portfolio/internal/server/auth"
	"github.com/dmitrijs2005/portfolio/internal/server/config"
	"github.com/dmitrijs2005/portfolio/internal/server/httpapi"
	"github.com/dmitrijs2005/portfolio/internal/server/ratelimit"
	"github.com/dmitrijs2005/portfolio/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/portfolio/internal/server/revalidate"
	"github.com/dmitrijs2005/portfolio/internal/server/services"

	gs "github.com/dmitrijs2005/portfolio/internal/server/grpc"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	limiter ratelimit.Checker
	closers []func() error

	authService *services.AuthService
	handler     http.Handler
}

// NewApp validates c, opens the database, applies migrations and builds
// every service. Nothing is served until Run.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	logger := logging.NewJSON(os.Stdout, c.LogLevel)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	app := &App{config: c, logger: logger, db: db, closers: []func() error{db.Close}}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		app.close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	limiter, closeLimiter := newLimiter(ctx, c, logger)
	app.limiter = limiter
	if closeLimiter != nil {
		app.closers = append(app.closers, closeLimiter)
	}

	tokens, err := auth.NewTokenService([]byte(c.SecretKey), c.Algorithm, auth.WithDefaultTTL(c.AccessTokenValidity))
	if err != nil {
		app.close()
		return nil, err
	}
	hasher := auth.NewHasher(c.BcryptCost)
	guard := auth.NewGuard(tokens, hasher, rm.Users(db), rm.RevokedTokens(db))

	app.authService = services.NewAuthService(db, rm, guard, tokens, hasher, logger.With("module", "auth_service"))
	revalidator := revalidate.NewClient(c.RevalidateURL, c.RevalidateSecret, c.RevalidateTimeout)
	if !revalidator.Enabled() {
		logger.Info(ctx, "revalidation webhook disabled")
	}

	app.handler, err = httpapi.Build(httpapi.Options{
		Config:   c,
		Logger:   logger,
		Limiter:  limiter,
		Guard:    guard,
		Auth:     app.authService,
		Content:  services.NewContentService(db, rm, revalidator, logger.With("module", "content_service")),
		Messages: services.NewMessageService(db, rm, logger.With("module", "message_service")),
		Media:    services.NewMediaService(db, rm, c, logger.With("module", "media_service")),
	})
	if err != nil {
		app.close()
		return nil, err
	}

	return app, nil
}

// newLimiter picks the rate limit backend. The returned close func is nil for
// the in-memory backend.
func newLimiter(ctx context.Context, c *config.Config, logger logging.Logger) (ratelimit.Checker, func() error) {
	if c.RateLimitBackend != config.BackendRedis {
		return ratelimit.NewLimiter(), nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     c.RedisAddr,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn(ctx, "redis unreachable, requests are admitted until it recovers", "addr", c.RedisAddr, "error", err)
	}
	return ratelimit.NewRedisLimiter(rdb, ratelimit.WithPrefix(c.RedisPrefix)), rdb.Close
}

func (app *App) close() {
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i](); err != nil {
			app.logger.Error(context.Background(), "close failed", "error", err)
		}
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) bootstrapAdmin(ctx context.Context) {
	c := app.config
	if c.AdminPassword == "" {
		app.logger.Warn(ctx, "admin password not configured, skipping admin bootstrap")
		return
	}
	created, err := app.authService.EnsureAdmin(ctx, c.AdminUsername, c.AdminEmail, c.AdminPassword)
	if err != nil {
		app.logger.Error(ctx, "admin bootstrap failed", "error", err)
		return
	}
	if created {
		app.logger.Info(ctx, "admin user created", "username", c.AdminUsername)
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	srv := &http.Server{
		Addr:              app.config.HTTPAddr,
		Handler:           app.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		app.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), app.config.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(ctx, "HTTP shutdown", "error", err)
		}
	}()

	app.logger.Info(ctx, "Starting HTTP server", "address", app.config.HTTPAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.GRPCAddr, app.logger, app.limiter)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves HTTP and gRPC until ctx is cancelled, a signal arrives or either
// server fails, then releases the database and Redis connections.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()
	defer app.close()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)
	app.bootstrapAdmin(ctx)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()
}
