package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/bloomstack/bloomstack-backend/internal/cron"
	"github.com/bloomstack/bloomstack-backend/internal/notifications"
	"github.com/bloomstack/bloomstack-backend/internal/plans"
	"github.com/bloomstack/bloomstack-backend/internal/shops"
	"github.com/bloomstack/bloomstack-backend/internal/subscriptions"
	"github.com/bloomstack/bloomstack-backend/pkg/config"
	"github.com/bloomstack/bloomstack-backend/pkg/db"
	"github.com/bloomstack/bloomstack-backend/pkg/logger"
	"github.com/bloomstack/bloomstack-backend/pkg/mailer"
	"github.com/bloomstack/bloomstack-backend/pkg/metrics"
	"github.com/bloomstack/bloomstack-backend/pkg/migrate"
	"github.com/bloomstack/bloomstack-backend/pkg/redis"
	"github.com/bloomstack/bloomstack-backend/pkg/telegram"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	mailSender := mailer.Sender(mailer.Noop{})
	if client, mailErr := mailer.NewClient(cfg.Mailer); mailErr == nil {
		mailSender = client
	} else {
		logg.Warn(context.Background(), "mailer not configured, email notifications disabled")
	}

	telegramNotifier := telegram.Notifier(telegram.Noop{})
	if client, tgErr := telegram.NewClient(cfg.Telegram); tgErr == nil {
		telegramNotifier = client
	} else {
		logg.Warn(context.Background(), "telegram not configured, bot notifications disabled")
	}

	gormDB := dbClient.DB()
	shopsRepo := shops.NewRepository(gormDB)
	plansRepo := plans.NewRepository(gormDB)

	dispatcher, err := notifications.NewDispatcher(notifications.NewRepository(gormDB), mailSender, telegramNotifier, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create dispatcher", err)
		os.Exit(1)
	}

	subscriptionsService, err := subscriptions.NewService(
		subscriptions.NewRepository(gormDB),
		shopsRepo,
		plansRepo,
		dispatcher,
		dbClient,
		logg,
		cfg.Cron.WarnWindow,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create subscriptions service", err)
		os.Exit(1)
	}

	expiryJob, err := cron.NewSubscriptionExpiryJob(subscriptionsService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create expiry job", err)
		os.Exit(1)
	}
	warningJob, err := cron.NewExpiryWarningJob(subscriptionsService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create warning job", err)
		os.Exit(1)
	}

	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey("subscription-sweep"), 0)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(expiryJob, warningJob),
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env})
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}
