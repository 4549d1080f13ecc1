package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"broker_portal_backend/internal/calls"
	"broker_portal_backend/internal/clients"
	"broker_portal_backend/internal/email"
	"broker_portal_backend/internal/events"
	"broker_portal_backend/internal/exports"
	apphttp "broker_portal_backend/internal/http"
	"broker_portal_backend/internal/http/router"
	"broker_portal_backend/internal/marketrate"
	"broker_portal_backend/internal/notification"
	"broker_portal_backend/platform/cache"
	"broker_portal_backend/platform/config"
	"broker_portal_backend/platform/db"
	"broker_portal_backend/platform/logger"
	"broker_portal_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, pool, log)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	health := map[string]apphttp.HealthChecker{"database": db.NewPoolAdapter(pool)}

	rdb := initRedis(ctx, cfg, log)
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
		health["redis"] = cache.NewPingAdapter(rdb)
	}

	eventBus := events.NewInMemoryBus(log)
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	marketRateModule := marketrate.NewModule(pool, rdb, cfg, val, log)

	clientsModule, err := clients.NewModule(pool, marketRateModule.Service(), cfg, val, log)
	if err != nil {
		log.Error("failed to initialize clients module", "error", err)
		panic("failed to initialize clients module: " + err.Error())
	}

	// Notification module subscribes to domain events (not HTTP-facing)
	notificationModule := notification.New(email.NewSender(cfg), clientsModule.Repository(), cfg.GetDefaultPhoneRegion(), log)
	notificationModule.RegisterHandlers(eventBus)

	callsModule := calls.NewModule(clientsModule.Service(), initGenerator(ctx, cfg, log), val, log)

	var exportsModule *exports.Module
	if err := withRetry(ctx, log, "exports storage", 5, 2*time.Second, func() error {
		m, err := exports.NewModule(ctx, pool, clientsModule.Repository(), marketRateModule.Service(), clientsModule.Service(), eventBus, cfg, val, log)
		if err != nil {
			return err
		}
		exportsModule = m
		return nil
	}); err != nil {
		log.Error("failed to initialize exports module", "error", err)
		panic("failed to initialize exports module: " + err.Error())
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   health,
		EventBus: eventBus,
		Modules: []apphttp.Module{
			marketRateModule,
			clientsModule,
			callsModule,
			exportsModule,
		},
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
		eventBus.Wait()
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func initRedis(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) *redis.Client {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; market rates are read from the database on every request")
		return nil
	}

	var rdb *redis.Client
	if err := withRetry(ctx, log, "redis connection", 5, time.Second, func() error {
		client, err := cache.NewRedis(ctx, cfg)
		if err != nil {
			return err
		}
		rdb = client
		return nil
	}); err != nil {
		log.Error("redis unavailable; market rate cache disabled", "error", err)
		return nil
	}
	return rdb
}

func initGenerator(ctx context.Context, cfg config.BriefingConfig, log *logger.Logger) calls.Generator {
	if !cfg.IsBriefingEnabled() {
		log.Warn("GEMINI_API_KEY not configured; call briefings disabled")
		return nil
	}

	gen, err := calls.NewGeminiGenerator(ctx, cfg.GetGeminiAPIKey(), cfg.GetBriefingModel())
	if err != nil {
		log.Error("failed to initialize briefing generator", "error", err)
		return nil
	}
	return gen
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
