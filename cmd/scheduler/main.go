package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"broker_portal_backend/internal/clients"
	"broker_portal_backend/internal/clients/insights"
	clientrepo "broker_portal_backend/internal/clients/repository"
	clientservice "broker_portal_backend/internal/clients/service"
	"broker_portal_backend/internal/email"
	"broker_portal_backend/internal/events"
	"broker_portal_backend/internal/exports"
	"broker_portal_backend/internal/marketrate"
	"broker_portal_backend/internal/monitoring"
	"broker_portal_backend/internal/notification"
	"broker_portal_backend/internal/scheduler"
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
	log.Info("starting scheduler", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	var rdb *redis.Client
	if err := withRetry(ctx, log, "redis connection", 5, 2*time.Second, func() error {
		client, err := cache.NewRedis(ctx, cfg)
		if err != nil {
			return err
		}
		rdb = client
		return nil
	}); err != nil {
		log.Error("failed to connect to redis", "error", err)
		panic("failed to connect to redis: " + err.Error())
	}
	defer func() { _ = rdb.Close() }()

	eventBus := events.NewInMemoryBus(log)

	rates := marketrate.NewService(marketrate.NewRepository(pool), rdb, cfg.GetMarketRateCacheTTL(), cfg.GetDefaultLoanProduct(), log)

	scorer, err := clients.NewScorer(cfg)
	if err != nil {
		log.Error("failed to load scoring profile", "error", err)
		panic("failed to load scoring profile: " + err.Error())
	}
	clientsRepo := clientrepo.New(pool)
	clientsSvc := clientservice.New(clientsRepo, rates, scorer, insights.DefaultThresholds(), log)

	notificationModule := notification.New(email.NewSender(cfg), clientsRepo, cfg.GetDefaultPhoneRegion(), log)
	notificationModule.RegisterHandlers(eventBus)

	exportsModule, err := exports.NewModule(ctx, pool, clientsRepo, rates, clientsSvc, eventBus, cfg, validator.New(), log)
	if err != nil {
		log.Error("failed to initialize exports", "error", err)
		panic("failed to initialize exports: " + err.Error())
	}

	sweeper := monitoring.NewSweeper(clientsRepo, clientsSvc, monitoring.NewRepository(pool), eventBus, cfg.GetRateAlertCooldown(), log)

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize scheduler client", "error", err)
		panic("failed to initialize scheduler client: " + err.Error())
	}
	defer func() { _ = client.Close() }()

	jobs := scheduler.NewJobs(sweeper, clientsRepo, clientsSvc, exportsModule.Service(), client, eventBus, cfg.GetDigestTopN(), log)

	periodic, err := scheduler.NewPeriodic(cfg, log)
	if err != nil {
		log.Error("failed to initialize periodic tasks", "error", err)
		panic("failed to initialize periodic tasks: " + err.Error())
	}
	go func() {
		if err := periodic.Run(ctx); err != nil {
			log.Error("periodic scheduler stopped", "error", err)
		}
	}()

	worker, err := scheduler.NewWorker(cfg, jobs, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
	eventBus.Wait()
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
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
