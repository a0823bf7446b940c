package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/bloomstack/bloomstack-backend/api/routes"
	"github.com/bloomstack/bloomstack-backend/internal/auth"
	"github.com/bloomstack/bloomstack-backend/internal/bouquet"
	"github.com/bloomstack/bloomstack-backend/internal/catalog"
	"github.com/bloomstack/bloomstack-backend/internal/cron"
	"github.com/bloomstack/bloomstack-backend/internal/inventory"
	"github.com/bloomstack/bloomstack-backend/internal/notifications"
	"github.com/bloomstack/bloomstack-backend/internal/orders"
	"github.com/bloomstack/bloomstack-backend/internal/plans"
	"github.com/bloomstack/bloomstack-backend/internal/shops"
	"github.com/bloomstack/bloomstack-backend/internal/subscriptions"
	"github.com/bloomstack/bloomstack-backend/internal/zones"
	"github.com/bloomstack/bloomstack-backend/pkg/auth/session"
	"github.com/bloomstack/bloomstack-backend/pkg/config"
	"github.com/bloomstack/bloomstack-backend/pkg/db"
	"github.com/bloomstack/bloomstack-backend/pkg/logger"
	"github.com/bloomstack/bloomstack-backend/pkg/mailer"
	"github.com/bloomstack/bloomstack-backend/pkg/metrics"
	"github.com/bloomstack/bloomstack-backend/pkg/migrate"
	"github.com/bloomstack/bloomstack-backend/pkg/redis"
	"github.com/bloomstack/bloomstack-backend/pkg/security"
	"github.com/bloomstack/bloomstack-backend/pkg/telegram"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
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

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	mailSender := mailerSender(cfg, logg)
	telegramNotifier := telegramSender(cfg, logg)

	gormDB := dbClient.DB()
	shopsRepo := shops.NewRepository(gormDB)
	plansRepo := plans.NewRepository(gormDB)
	notificationsRepo := notifications.NewRepository(gormDB)
	ordersRepo := orders.NewRepository(gormDB)
	inventoryRepo := inventory.NewRepository(gormDB)

	dispatcher, err := notifications.NewDispatcher(notificationsRepo, mailSender, telegramNotifier, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create dispatcher", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(
		auth.NewRepository(gormDB),
		shopsRepo,
		plansRepo,
		sessionManager,
		dbClient,
		cfg.JWT,
		cfg.Password,
	)
	requireService(logg, "auth", err)

	plansService, err := plans.NewService(plansRepo)
	requireService(logg, "plans", err)

	shopsService, err := shops.NewService(shopsRepo, plansRepo)
	requireService(logg, "shops", err)

	catalogService, err := catalog.NewService(catalog.NewRepository(gormDB), shopsRepo, plansRepo)
	requireService(logg, "catalog", err)

	inventoryService, err := inventory.NewService(inventoryRepo)
	requireService(logg, "inventory", err)

	zonesService, err := zones.NewService(zones.NewRepository(gormDB), shopsRepo)
	requireService(logg, "zones", err)

	ordersService, err := orders.NewService(ordersRepo, shopsRepo, dispatcher)
	requireService(logg, "orders", err)

	bouquetService, err := bouquet.NewService(ordersRepo, shopsRepo, inventoryRepo, dispatcher)
	requireService(logg, "bouquet", err)

	subscriptionsService, err := subscriptions.NewService(
		subscriptions.NewRepository(gormDB),
		shopsRepo,
		plansRepo,
		dispatcher,
		dbClient,
		logg,
		cfg.Cron.WarnWindow,
	)
	requireService(logg, "subscriptions", err)

	notificationsService, err := notifications.NewService(notificationsRepo)
	requireService(logg, "notifications", err)

	adminVerifier, err := security.NewSignedToken(cfg.Admin.TokenSecret, cfg.Admin.TokenSkew)
	requireService(logg, "admin verifier", err)

	cronVerifier, err := security.NewSignedToken(cfg.Cron.TokenSecret, cfg.Cron.TokenSkew)
	requireService(logg, "cron verifier", err)

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	cronService, err := buildCronService(cfg, logg, redisClient, subscriptionsService, promRegistry)
	requireService(logg, "cron", err)

	router := routes.NewRouter(routes.Deps{
		Config:               cfg,
		Logger:               logg,
		DB:                   dbClient,
		Redis:                redisClient,
		PromRegistry:         promRegistry,
		Sessions:             sessionManager,
		AdminVerifier:        adminVerifier,
		CronVerifier:         cronVerifier,
		AuthService:          authService,
		PlansService:         plansService,
		ShopsService:         shopsService,
		ShopsRepo:            shopsRepo,
		CatalogService:       catalogService,
		InventoryService:     inventoryService,
		ZonesService:         zonesService,
		BouquetService:       bouquetService,
		OrdersService:        ordersService,
		SubscriptionsService: subscriptionsService,
		NotificationsService: notificationsService,
		CronService:          cronService,
		TelegramNotifier:     telegramNotifier,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(shutdownCtx, "server shutdown", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "api server shut down gracefully")
}

// buildCronService wires the sweep jobs behind a redis lock so the manual
// cron endpoint shares one runner with the worker binary.
func buildCronService(
	cfg *config.Config,
	logg *logger.Logger,
	redisClient *redis.Client,
	subs subscriptions.Service,
	promRegistry *prometheus.Registry,
) (*cron.Service, error) {
	expiryJob, err := cron.NewSubscriptionExpiryJob(subs, logg)
	if err != nil {
		return nil, err
	}
	warningJob, err := cron.NewExpiryWarningJob(subs, logg)
	if err != nil {
		return nil, err
	}

	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey("subscription-sweep"), 0)
	if err != nil {
		return nil, err
	}

	return cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(expiryJob, warningJob),
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(promRegistry),
		Interval: cfg.Cron.Interval,
	})
}

func mailerSender(cfg *config.Config, logg *logger.Logger) mailer.Sender {
	client, err := mailer.NewClient(cfg.Mailer)
	if err != nil {
		logg.Warn(context.Background(), "mailer not configured, email notifications disabled")
		return mailer.Noop{}
	}
	return client
}

func telegramSender(cfg *config.Config, logg *logger.Logger) telegram.Notifier {
	client, err := telegram.NewClient(cfg.Telegram)
	if err != nil {
		logg.Warn(context.Background(), "telegram not configured, bot notifications disabled")
		return telegram.Noop{}
	}
	return client
}

func requireService(logg *logger.Logger, name string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), "failed to create "+name+" service", err)
	os.Exit(1)
}
