package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bloomstack/bloomstack-backend/api/controllers"
	"github.com/bloomstack/bloomstack-backend/api/middleware"
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
	"github.com/bloomstack/bloomstack-backend/pkg/metrics"
	"github.com/bloomstack/bloomstack-backend/pkg/redis"
	"github.com/bloomstack/bloomstack-backend/pkg/security"
	"github.com/bloomstack/bloomstack-backend/pkg/telegram"
)

// Deps carries everything the router mounts. Nil optional members degrade
// to the matching controller's internal-error guard instead of panicking
// at wire-up.
type Deps struct {
	Config        *config.Config
	Logger        *logger.Logger
	DB            db.Pinger
	Redis         *redis.Client
	PromRegistry  *prometheus.Registry
	Sessions      session.AccessSessionChecker
	AdminVerifier *security.SignedToken
	CronVerifier  *security.SignedToken

	AuthService          auth.Service
	PlansService         plans.Service
	ShopsService         shops.Service
	ShopsRepo            shops.Repository
	CatalogService       catalog.Service
	InventoryService     inventory.Service
	ZonesService         zones.Service
	BouquetService       bouquet.Service
	OrdersService        orders.Service
	SubscriptionsService subscriptions.Service
	NotificationsService notifications.Service
	CronService          *cron.Service
	TelegramNotifier     telegram.Notifier
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()

	httpMetrics := metrics.NewHTTPMetrics(deps.PromRegistry)

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(),
	)

	// A typed-nil client would slip past the middleware's own nil check, so
	// redis-backed middleware is bypassed here when no client is wired.
	passthrough := func(next http.Handler) http.Handler { return next }
	limit := func(policy middleware.RateLimitPolicy) func(http.Handler) http.Handler {
		if deps.Redis == nil {
			return passthrough
		}
		return middleware.RateLimit(policy, deps.Redis, logg)
	}
	idempotency := passthrough
	if deps.Redis != nil {
		idempotency = middleware.Idempotency(deps.Redis, logg)
	}

	loginPolicy := middleware.NewRateLimitPolicy("login", cfg.RateLimit.Window, cfg.RateLimit.LoginLimit)
	signupPolicy := middleware.NewRateLimitPolicy("signup", cfg.RateLimit.Window, cfg.RateLimit.SignupLimit)
	orderPolicy := middleware.NewRateLimitPolicy("order", cfg.RateLimit.Window, cfg.RateLimit.OrderLimit)
	submitPolicy := middleware.NewRateLimitPolicy("subscription", cfg.RateLimit.Window, cfg.RateLimit.SubmitLimit)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	if deps.PromRegistry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.PromRegistry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/public", func(r chi.Router) {
		r.Get("/plans", controllers.PublicPlans(deps.PlansService, logg))
		r.Route("/shops/{slug}", func(r chi.Router) {
			r.Get("/", controllers.Storefront(deps.ShopsService, logg))
			r.Get("/custom-bouquet-data", controllers.ComposerData(deps.BouquetService, logg))
			r.Get("/delivery-zones", controllers.PublicDeliveryZones(deps.ZonesService, logg))
			r.With(limit(orderPolicy)).Post("/orders", controllers.CreateInquiry(deps.OrdersService, logg))
			r.With(limit(orderPolicy)).Post("/custom-bouquet", controllers.SubmitCustomBouquet(deps.BouquetService, logg))
		})
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(limit(signupPolicy)).Post("/register", controllers.AuthRegister(deps.AuthService, logg))
		r.With(limit(loginPolicy)).Post("/login", controllers.AuthLogin(deps.AuthService, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.AuthService, logg))
		r.Post("/logout", controllers.AuthLogout(deps.AuthService, cfg.JWT, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
			r.Use(middleware.ShopContext(logg))
			r.Use(idempotency)

			r.Route("/shop", func(r chi.Router) {
				r.Get("/", controllers.ShopProfile(deps.ShopsService, logg))
				r.Put("/", controllers.ShopUpdate(deps.ShopsService, logg))
			})
			r.Post("/telegram/connect", controllers.TelegramConnect(deps.ShopsService, logg))
			r.Post("/telegram/disconnect", controllers.TelegramDisconnect(deps.ShopsService, logg))

			r.Route("/stock-flowers", func(r chi.Router) {
				r.Post("/", controllers.CreateStockFlower(deps.InventoryService, logg))
				r.Get("/", controllers.ListStockFlowers(deps.InventoryService, logg))
				r.Post("/{flowerId}/adjust", controllers.AdjustStock(deps.InventoryService, logg))
				r.Delete("/{flowerId}", controllers.DeleteStockFlower(deps.InventoryService, logg))
			})
			r.Route("/wrappings", func(r chi.Router) {
				r.Post("/", controllers.CreateWrapping(deps.InventoryService, logg))
				r.Get("/", controllers.ListWrappings(deps.InventoryService, logg))
				r.Put("/{wrappingId}", controllers.UpdateWrapping(deps.InventoryService, logg))
				r.Delete("/{wrappingId}", controllers.DeleteWrapping(deps.InventoryService, logg))
			})
			r.Route("/flowers", func(r chi.Router) {
				r.Post("/", controllers.CreateFlower(deps.CatalogService, logg))
				r.Get("/", controllers.ListFlowers(deps.CatalogService, logg))
				r.Get("/{flowerId}", controllers.FlowerDetail(deps.CatalogService, logg))
				r.Put("/{flowerId}", controllers.UpdateFlower(deps.CatalogService, logg))
				r.Delete("/{flowerId}", controllers.DeleteFlower(deps.CatalogService, logg))
			})
			r.Route("/delivery-zones", func(r chi.Router) {
				r.Post("/", controllers.CreateDeliveryZone(deps.ZonesService, logg))
				r.Get("/", controllers.ListDeliveryZones(deps.ZonesService, logg))
				r.Put("/{zoneId}", controllers.UpdateDeliveryZone(deps.ZonesService, logg))
				r.Delete("/{zoneId}", controllers.DeleteDeliveryZone(deps.ZonesService, logg))
			})
			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.ListOrders(deps.OrdersService, logg))
				r.Get("/{orderId}", controllers.OrderDetail(deps.OrdersService, logg))
				r.Patch("/{orderId}/status", controllers.UpdateOrderStatus(deps.OrdersService, logg))
			})
			r.Route("/subscriptions", func(r chi.Router) {
				r.With(limit(submitPolicy)).Post("/", controllers.SubscriptionSubmit(deps.SubscriptionsService, logg))
				r.Get("/", controllers.SubscriptionCurrent(deps.SubscriptionsService, logg))
			})
			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", controllers.ListNotifications(deps.NotificationsService, logg))
				r.Get("/unread-count", controllers.UnreadNotificationCount(deps.NotificationsService, logg))
				r.Post("/{notificationId}/read", controllers.MarkNotificationRead(deps.NotificationsService, logg))
				r.Post("/read-all", controllers.MarkAllNotificationsRead(deps.NotificationsService, logg))
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.SignedToken(deps.AdminVerifier, middleware.AdminTokenHeader, logg))
			r.Get("/payments", controllers.AdminPendingPayments(deps.SubscriptionsService, logg))
			r.Post("/payments/{paymentId}/approve", controllers.AdminApprovePayment(deps.SubscriptionsService, logg))
			r.Post("/payments/{paymentId}/reject", controllers.AdminRejectPayment(deps.SubscriptionsService, logg))
			r.Post("/subscriptions/{subscriptionId}/cancel", controllers.AdminCancelSubscription(deps.SubscriptionsService, logg))
			r.Post("/subscriptions/{subscriptionId}/reactivate", controllers.AdminReactivateSubscription(deps.SubscriptionsService, logg))
			r.Get("/shops", controllers.AdminShops(deps.ShopsService, logg))
			r.Patch("/shops/{shopId}/suspend", controllers.AdminSuspendShop(deps.ShopsService, logg))
		})

		r.Route("/cron", func(r chi.Router) {
			r.Use(middleware.SignedToken(deps.CronVerifier, middleware.CronTokenHeader, logg))
			r.Post("/check-subscriptions", controllers.CronCheckSubscriptions(deps.CronService, logg))
		})

		r.Post("/telegram/webhook", controllers.TelegramWebhook(cfg.Telegram, deps.OrdersService, deps.ShopsRepo, deps.TelegramNotifier, logg))
	})

	return r
}
