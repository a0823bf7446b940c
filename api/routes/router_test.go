package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/bloomstack/bloomstack-backend/internal/orders"
	"github.com/bloomstack/bloomstack-backend/internal/subscriptions"
	pkgauth "github.com/bloomstack/bloomstack-backend/pkg/auth"
	"github.com/bloomstack/bloomstack-backend/pkg/config"
	"github.com/bloomstack/bloomstack-backend/pkg/db/models"
	"github.com/bloomstack/bloomstack-backend/pkg/enums"
	"github.com/bloomstack/bloomstack-backend/pkg/logger"
	"github.com/bloomstack/bloomstack-backend/pkg/pagination"
	"github.com/bloomstack/bloomstack-backend/pkg/security"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubSessions struct{}

func (stubSessions) HasSession(context.Context, string) (bool, error) {
	return true, nil
}

type stubPlansService struct{}

func (stubPlansService) List(ctx context.Context) ([]models.Plan, error) {
	return []models.Plan{}, nil
}

func (stubPlansService) Get(ctx context.Context, id uuid.UUID) (*models.Plan, error) {
	panic("unimplemented")
}

func (stubPlansService) GetBySlug(ctx context.Context, slug enums.PlanSlug) (*models.Plan, error) {
	panic("unimplemented")
}

func (stubPlansService) FreePlan(ctx context.Context) (*models.Plan, error) {
	panic("unimplemented")
}

type stubOrdersService struct{}

func (stubOrdersService) CreateInquiry(ctx context.Context, shopSlug string, input orders.CreateInquiryInput) (*models.Order, error) {
	panic("unimplemented")
}

func (stubOrdersService) List(ctx context.Context, shopID uuid.UUID, input orders.ListInput) ([]models.Order, *pagination.Cursor, error) {
	return []models.Order{}, nil, nil
}

func (stubOrdersService) Get(ctx context.Context, shopID, id uuid.UUID) (*models.Order, error) {
	panic("unimplemented")
}

func (stubOrdersService) UpdateStatus(ctx context.Context, shopID, id uuid.UUID, to enums.OrderStatus) (*models.Order, error) {
	panic("unimplemented")
}

type stubSubscriptionsService struct{}

func (stubSubscriptionsService) Submit(ctx context.Context, shopID uuid.UUID, input subscriptions.SubmitInput) (*models.Subscription, error) {
	panic("unimplemented")
}

func (stubSubscriptionsService) Current(ctx context.Context, shopID uuid.UUID) (*subscriptions.Status, error) {
	panic("unimplemented")
}

func (stubSubscriptionsService) ListPendingPayments(ctx context.Context) ([]subscriptions.PendingPaymentRow, error) {
	return []subscriptions.PendingPaymentRow{}, nil
}

func (stubSubscriptionsService) Approve(ctx context.Context, subscriptionID uuid.UUID) (*models.Subscription, error) {
	panic("unimplemented")
}

func (stubSubscriptionsService) ApproveByPayment(ctx context.Context, paymentID uuid.UUID) (*models.Subscription, error) {
	panic("unimplemented")
}

func (stubSubscriptionsService) Reject(ctx context.Context, subscriptionID uuid.UUID, notes *string) (*models.Subscription, error) {
	panic("unimplemented")
}

func (stubSubscriptionsService) RejectByPayment(ctx context.Context, paymentID uuid.UUID, notes *string) (*models.Subscription, error) {
	panic("unimplemented")
}

func (stubSubscriptionsService) Cancel(ctx context.Context, subscriptionID uuid.UUID) (*models.Subscription, error) {
	panic("unimplemented")
}

func (stubSubscriptionsService) Reactivate(ctx context.Context, subscriptionID uuid.UUID) (*models.Subscription, error) {
	panic("unimplemented")
}

func (stubSubscriptionsService) ExpirySweep(ctx context.Context) (subscriptions.SweepResult, error) {
	panic("unimplemented")
}

func (stubSubscriptionsService) WarningSweep(ctx context.Context) (int, error) {
	panic("unimplemented")
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "issuer",
			ExpirationMinutes: 30,
		},
	}
}

func newTestRouter(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	adminVerifier, err := security.NewSignedToken("admin-secret", time.Minute)
	if err != nil {
		t.Fatalf("admin verifier: %v", err)
	}
	cronVerifier, err := security.NewSignedToken("cron-secret", time.Minute)
	if err != nil {
		t.Fatalf("cron verifier: %v", err)
	}
	return NewRouter(Deps{
		Config:               cfg,
		Logger:               logg,
		DB:                   stubPinger{},
		PromRegistry:         prometheus.NewRegistry(),
		Sessions:             stubSessions{},
		AdminVerifier:        adminVerifier,
		CronVerifier:         cronVerifier,
		PlansService:         stubPlansService{},
		OrdersService:        stubOrdersService{},
		SubscriptionsService: stubSubscriptionsService{},
	})
}

func adminToken(t *testing.T) string {
	t.Helper()
	verifier, err := security.NewSignedToken("admin-secret", time.Minute)
	if err != nil {
		t.Fatalf("admin verifier: %v", err)
	}
	return verifier.Generate()
}

func ownerToken(t *testing.T, cfg *config.Config) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), pkgauth.AccessTokenPayload{
		UserID: uuid.New(),
		ShopID: uuid.New(),
		Role:   enums.UserRoleOwner,
		JTI:    uuid.NewString(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLiveResponds(t *testing.T) {
	router := newTestRouter(t, testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for liveness got %d", resp.Code)
	}
}

func TestPublicPlansResponds(t *testing.T) {
	router := newTestRouter(t, testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/public/plans", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for public plans got %d", resp.Code)
	}
}

func TestOwnerGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(t, testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestOwnerGroupAcceptsValidJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(t, cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req.Header.Set("Authorization", "Bearer "+ownerToken(t, cfg))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for owner orders got %d", resp.Code)
	}
}

func TestAdminGroupRequiresSignedToken(t *testing.T) {
	router := newTestRouter(t, testConfig())

	missing := httptest.NewRequest(http.MethodGet, "/api/v1/admin/payments", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, missing)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without admin token got %d", resp.Code)
	}

	signed := httptest.NewRequest(http.MethodGet, "/api/v1/admin/payments", nil)
	signed.Header.Set("X-Admin-Token", adminToken(t))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, signed)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 with admin token got %d", resp.Code)
	}
}

func TestAdminTokenDoesNotOpenCronSurface(t *testing.T) {
	router := newTestRouter(t, testConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cron/check-subscriptions", nil)
	req.Header.Set("X-Cron-Token", adminToken(t))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for cross-surface token got %d", resp.Code)
	}
}

func TestMetricsEndpointMounted(t *testing.T) {
	router := newTestRouter(t, testConfig())
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for metrics got %d", resp.Code)
	}
}
