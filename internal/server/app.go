package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/uptrace/bun"

	"drivenpass/internal/account"
	"drivenpass/internal/auth"
	"drivenpass/internal/cipher"
	"drivenpass/internal/config"
	"drivenpass/internal/hub"
	"drivenpass/internal/middleware"
	"drivenpass/internal/store"
	"drivenpass/internal/vault"
)

// App is the fully wired service.
type App struct {
	Config config.Config
	DB     *bun.DB
	Router *gin.Engine

	log     *slog.Logger
	closers []func() error
}

// NewApp opens the database, applies migrations and wires every component.
func NewApp(ctx context.Context, cfg config.Config, log *slog.Logger) (_ *App, err error) {
	app := &App{Config: cfg, log: log}
	defer func() {
		if err != nil {
			_ = app.Close()
		}
	}()

	db, err := store.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	app.DB = db
	app.closers = append(app.closers, db.Close)

	migrator, err := store.NewMigrator(db, log)
	if err != nil {
		return nil, err
	}
	if err := migrator.Up(ctx); err != nil {
		return nil, err
	}

	var sessions account.SessionRegistry = store.NewSessionRepo(db)
	if cfg.RedisAddr != "" {
		rs, err := store.NewRedisSessions(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, rs.Close)
		sessions = rs
		log.Info("session registry", "backend", "redis", "addr", cfg.RedisAddr)
	}

	c, err := cipher.New(cfg.CipherSecret)
	if err != nil {
		return nil, fmt.Errorf("cipher: %w", err)
	}

	tokens := auth.DefaultTokenConfig(cfg.JWTSecret)
	tokens.Expiry = cfg.TokenExpiry
	accounts := account.NewService(
		account.NewDirectory(store.NewAccountRepo(db)),
		sessions,
		auth.NewHasher(cfg.BcryptCost),
		tokens,
		log,
	)

	feed := hub.New(log)
	secretDeps := vault.Deps{
		Repo:   store.NewSecretRepo(db),
		Cipher: c,
		Events: vault.NotifierFunc(func(ownerID int64, ev vault.Event) { feed.Publish(ownerID, ev) }),
		Log:    log,
	}

	var limiter *middleware.RateLimiter
	if cfg.AuthRateLimit > 0 {
		limiter = middleware.NewRateLimiter(cfg.AuthRateLimit, time.Minute)
		app.closers = append(app.closers, func() error { limiter.Stop(); return nil })
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewDBStatsCollector(db.DB, cfg.DatabaseDriver))

	app.Router = NewRouter(Deps{
		Accounts:    accounts,
		Credentials: vault.NewStore(vault.Credentials, secretDeps),
		Networks:    vault.NewStore(vault.Networks, secretDeps),
		Hub:         feed,
		Ping:        db.PingContext,
		Logger:      log,
		Registry:    reg,
		AuthLimiter: limiter,
	})
	return app, nil
}

func (a *App) Run(ctx context.Context) error {
	return Run(ctx, a.Config, a.Router, a.log)
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
