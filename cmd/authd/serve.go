package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vaultline/authd/internal/api"
	"github.com/vaultline/authd/internal/api/metrics"
	"github.com/vaultline/authd/internal/api/middleware"
	"github.com/vaultline/authd/internal/core/service"
	"github.com/vaultline/authd/internal/infrastructure/cache"
	dbmongo "github.com/vaultline/authd/internal/infrastructure/db/mongo"
	dbredis "github.com/vaultline/authd/internal/infrastructure/db/redis"
	"github.com/vaultline/authd/internal/infrastructure/http/handlers"
	"github.com/vaultline/authd/internal/infrastructure/queue"
	"github.com/vaultline/authd/pkg/logger"
)

const (
	shutdownTimeout   = 15 * time.Second
	rateLimitPrefix   = "authd:rl:"
	readHeaderTimeout = 5 * time.Second
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the session sweeper and the activity workers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	cfg := a.cfg

	db, closeMongo, err := a.connectMongo(ctx)
	if err != nil {
		return err
	}
	defer closeMongo()

	if err := dbmongo.EnsureIndexes(ctx, db); err != nil {
		return err
	}

	rdb, err := dbredis.Connect(ctx, dbredis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		Timeout:  cfg.Redis.Timeout,
	})
	if err != nil {
		return err
	}
	defer func() { _ = rdb.Close() }()

	// --- Repositories ---
	apps := cache.NewApplicationCache(dbmongo.NewApplicationRepository(db), cfg.AppCache.TTL)
	users := dbmongo.NewAppUserRepository(db)
	accounts := dbmongo.NewAccountRepository(db)
	licenses := dbmongo.NewLicenseRepository(db)
	blacklist := dbmongo.NewBlacklistRepository(db)
	activityRepo := dbmongo.NewActivityRepository(db)
	sessionRepo := dbmongo.NewSessionRepository(db)

	// --- Background workers ---
	dispatcher := queue.NewDispatcher(
		cfg.Activity.Workers,
		service.NewActivityRecorder(activityRepo, logger.Component("activity")),
		func(event string) { metrics.ActivityDroppedTotal.WithLabelValues(event).Inc() },
		logger.Component("dispatcher"),
	)
	sessions := service.NewSessionTracker(sessionRepo, cfg.Session.TTL, logger.Component("sessions"))
	sweeper := queue.NewSweeper(
		sessions,
		cfg.Session.SweepInterval,
		func(n int64) { metrics.SessionsSweptTotal.Add(float64(n)) },
		logger.Component("sweeper"),
	)

	// --- Services ---
	ledger := service.NewLicenseLedger(licenses)
	authSvc := service.NewAuthService(service.AuthDeps{
		Apps:      apps,
		Users:     users,
		Blacklist: service.NewBlacklistFilter(blacklist),
		Ledger:    ledger,
		Guard:     service.NewDeviceGuard(users),
		Sessions:  sessions,
		Activity:  dispatcher,
		Hasher:    service.NewPasswordHasher(0),
		Timeout:   cfg.StoreTimeout,
	}, logger.Component("auth"))
	consoleSvc := service.NewConsoleService(service.ConsoleDeps{
		Apps:      apps,
		Users:     users,
		Licenses:  licenses,
		Blacklist: blacklist,
		Activity:  activityRepo,
		Recorder:  dispatcher,
		Ledger:    ledger,
		Sessions:  sessions,
	}, logger.Component("console"))

	var limiter middleware.Limiter
	if cfg.RateLimit.Max > 0 {
		limiter = dbredis.NewRateLimiter(rdb, rateLimitPrefix, cfg.RateLimit.Max, cfg.RateLimit.Window)
	}
	if cfg.JWTSecret == "" {
		a.log.Warn().Msg("JWT_SECRET is empty, owner console sign-in is disabled")
	}

	trusted, err := cfg.TrustedNetworks()
	if err != nil {
		return err
	}

	e := api.NewRouter(api.Deps{
		Log:            logger.Component("http"),
		Auth:           authSvc,
		Console:        consoleSvc,
		Accounts:       accounts,
		ConsoleSecret:  cfg.JWTSecret,
		Limiter:        limiter,
		TrustedProxies: trusted,
		Checks: map[string]handlers.Check{
			"mongo": handlers.MongoCheck(db),
			"redis": handlers.RedisCheck(rdb),
		},
	})
	e.Server.ReadHeaderTimeout = readHeaderTimeout

	// The dispatcher outlives the HTTP server so in-flight requests can
	// still record activity during shutdown.
	dispatchCtx, stopDispatch := context.WithCancel(context.Background())
	defer stopDispatch()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return dispatcher.Run(dispatchCtx) })
	g.Go(func() error { return sweeper.Run(gctx) })
	g.Go(func() error {
		a.log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("http server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		defer stopDispatch()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.log.Info().Msg("shutting down")
		return e.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	a.log.Info().Msg("server exited properly")
	return nil
}
