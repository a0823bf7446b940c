package subscriptions

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/bloomstack/bloomstack-backend/internal/shops"
	"github.com/bloomstack/bloomstack-backend/pkg/db/models"
	"github.com/bloomstack/bloomstack-backend/pkg/enums"
	pkgerrors "github.com/bloomstack/bloomstack-backend/pkg/errors"
	"github.com/bloomstack/bloomstack-backend/pkg/logger"
)

type fakeRepo struct {
	subs     map[uuid.UUID]*models.Subscription
	payments map[uuid.UUID]*models.Payment
	expired  []models.Subscription
	expiring []models.Subscription

	updateSubErr func(sub *models.Subscription) error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		subs:     map[uuid.UUID]*models.Subscription{},
		payments: map[uuid.UUID]*models.Payment{},
	}
}

func (f *fakeRepo) WithTx(tx *gorm.DB) Repository { return f }
func (f *fakeRepo) CreateSubscription(ctx context.Context, sub *models.Subscription) error {
	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}
	f.subs[sub.ID] = sub
	return nil
}
func (f *fakeRepo) CreatePayment(ctx context.Context, payment *models.Payment) error {
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	f.payments[payment.SubscriptionID] = payment
	return nil
}
func (f *fakeRepo) GetSubscription(ctx context.Context, id uuid.UUID) (*models.Subscription, error) {
	sub, ok := f.subs[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "subscription not found")
	}
	copied := *sub
	return &copied, nil
}
func (f *fakeRepo) GetPayment(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	for _, payment := range f.payments {
		if payment.ID == id {
			copied := *payment
			return &copied, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
}
func (f *fakeRepo) GetPaymentBySubscription(ctx context.Context, subscriptionID uuid.UUID) (*models.Payment, error) {
	payment, ok := f.payments[subscriptionID]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
	}
	copied := *payment
	return &copied, nil
}
func (f *fakeRepo) LatestByShop(ctx context.Context, shopID uuid.UUID) (*models.Subscription, error) {
	for _, sub := range f.subs {
		if sub.ShopID == shopID {
			copied := *sub
			return &copied, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "subscription not found")
}
func (f *fakeRepo) UpdateSubscription(ctx context.Context, sub *models.Subscription) error {
	if f.updateSubErr != nil {
		if err := f.updateSubErr(sub); err != nil {
			return err
		}
	}
	copied := *sub
	f.subs[sub.ID] = &copied
	return nil
}
func (f *fakeRepo) UpdatePayment(ctx context.Context, payment *models.Payment) error {
	copied := *payment
	f.payments[payment.SubscriptionID] = &copied
	return nil
}
func (f *fakeRepo) ListPendingPayments(ctx context.Context) ([]PendingPaymentRow, error) {
	return nil, nil
}
func (f *fakeRepo) ListExpired(ctx context.Context, now time.Time) ([]models.Subscription, error) {
	return f.expired, nil
}
func (f *fakeRepo) ListExpiring(ctx context.Context, now, until time.Time) ([]models.Subscription, error) {
	return f.expiring, nil
}

type fakeShopRepo struct {
	shops    map[uuid.UUID]*models.Shop
	setPlans []uuid.UUID
}

func newFakeShopRepo(shopList ...*models.Shop) *fakeShopRepo {
	f := &fakeShopRepo{shops: map[uuid.UUID]*models.Shop{}}
	for _, shop := range shopList {
		f.shops[shop.ID] = shop
	}
	return f
}

func (f *fakeShopRepo) WithTx(tx *gorm.DB) shops.Repository { return f }
func (f *fakeShopRepo) Create(ctx context.Context, shop *models.Shop) error {
	return nil
}
func (f *fakeShopRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Shop, error) {
	shop, ok := f.shops[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shop not found")
	}
	return shop, nil
}
func (f *fakeShopRepo) GetBySlug(ctx context.Context, slug string) (*models.Shop, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shop not found")
}
func (f *fakeShopRepo) GetByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Shop, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shop not found")
}
func (f *fakeShopRepo) Update(ctx context.Context, shop *models.Shop) error {
	return nil
}
func (f *fakeShopRepo) SetPlan(ctx context.Context, shopID, planID uuid.UUID) error {
	f.setPlans = append(f.setPlans, planID)
	if shop, ok := f.shops[shopID]; ok {
		shop.PlanID = planID
	}
	return nil
}
func (f *fakeShopRepo) GetByTelegramChat(ctx context.Context, chatID int64) (*models.Shop, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shop not found")
}
func (f *fakeShopRepo) SetTelegramChat(ctx context.Context, shopID uuid.UUID, chatID *int64) error {
	return nil
}
func (f *fakeShopRepo) SetSuspended(ctx context.Context, shopID uuid.UUID, suspended bool) error {
	return nil
}
func (f *fakeShopRepo) List(ctx context.Context, limit, offset int) ([]models.Shop, int64, error) {
	return nil, 0, nil
}
func (f *fakeShopRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	return false, nil
}

type fakePlanRepo struct {
	plans map[uuid.UUID]*models.Plan
	free  *models.Plan
}

func (f *fakePlanRepo) List(ctx context.Context) ([]models.Plan, error) { return nil, nil }
func (f *fakePlanRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Plan, error) {
	plan, ok := f.plans[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "plan not found")
	}
	return plan, nil
}
func (f *fakePlanRepo) GetBySlug(ctx context.Context, slug enums.PlanSlug) (*models.Plan, error) {
	if slug == enums.PlanSlugFree && f.free != nil {
		return f.free, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "plan not found")
}

type fakeDispatcher struct {
	approved int
	expiring int
	expired  int
}

func (d *fakeDispatcher) SubscriptionApproved(ctx context.Context, shop *models.Shop, plan *models.Plan, expiry *time.Time) {
	d.approved++
}
func (d *fakeDispatcher) SubscriptionExpiring(ctx context.Context, shop *models.Shop, expiry time.Time) {
	d.expiring++
}
func (d *fakeDispatcher) SubscriptionExpired(ctx context.Context, shop *models.Shop) {
	d.expired++
}

type fakeTx struct{}

func (fakeTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.ErrorLevel, Output: io.Discard})
}

type lifecycleFixture struct {
	svc        *service
	repo       *fakeRepo
	shopRepo   *fakeShopRepo
	dispatcher *fakeDispatcher
	shop       *models.Shop
	basic      *models.Plan
	free       *models.Plan
	now        time.Time
}

func newLifecycleFixture(t *testing.T) *lifecycleFixture {
	t.Helper()

	free := &models.Plan{ID: uuid.New(), Slug: enums.PlanSlugFree, Name: "Free", DurationDays: 0}
	basic := &models.Plan{
		ID:           uuid.New(),
		Slug:         enums.PlanSlugBasic,
		Name:         "Basic",
		Price:        decimal.NewFromFloat(19.00),
		DurationDays: 30,
	}
	shop := &models.Shop{ID: uuid.New(), Slug: "rose-corner", PlanID: free.ID}

	repo := newFakeRepo()
	shopRepo := newFakeShopRepo(shop)
	planRepo := &fakePlanRepo{plans: map[uuid.UUID]*models.Plan{free.ID: free, basic.ID: basic}, free: free}
	dispatcher := &fakeDispatcher{}

	svc, err := NewService(repo, shopRepo, planRepo, dispatcher, fakeTx{}, testLogger(), 7*24*time.Hour)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	impl := svc.(*service)
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	impl.now = func() time.Time { return now }

	return &lifecycleFixture{
		svc:        impl,
		repo:       repo,
		shopRepo:   shopRepo,
		dispatcher: dispatcher,
		shop:       shop,
		basic:      basic,
		free:       free,
		now:        now,
	}
}

func (fx *lifecycleFixture) submit(t *testing.T) *models.Subscription {
	t.Helper()
	sub, err := fx.svc.Submit(context.Background(), fx.shop.ID, SubmitInput{
		PlanID:         fx.basic.ID,
		CardNumber:     "4242 4242 4242 4242",
		CardType:       "visa",
		CardHolderName: "Dana Bloom",
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	return sub
}

func TestSubmitCreatesPendingPair(t *testing.T) {
	fx := newLifecycleFixture(t)

	sub := fx.submit(t)
	if sub.Status != enums.SubscriptionStatusPending {
		t.Fatalf("expected pending subscription, got %s", sub.Status)
	}

	payment := fx.repo.payments[sub.ID]
	if payment == nil || payment.Status != enums.PaymentStatusPending {
		t.Fatalf("expected pending payment, got %+v", payment)
	}
	if payment.CardLast4 != "4242" {
		t.Fatalf("expected last4 only, got %q", payment.CardLast4)
	}
	if !payment.Amount.Equal(fx.basic.Price) {
		t.Fatalf("payment amount must mirror the plan price, got %s", payment.Amount)
	}
	if len(fx.shopRepo.setPlans) != 0 {
		t.Fatal("submit must not touch the shop plan")
	}
}

func TestApproveActivatesAndUpgrades(t *testing.T) {
	fx := newLifecycleFixture(t)
	sub := fx.submit(t)

	approved, err := fx.svc.Approve(context.Background(), sub.ID)
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if approved.Status != enums.SubscriptionStatusActive {
		t.Fatalf("expected active, got %s", approved.Status)
	}
	if approved.StartDate == nil || !approved.StartDate.Equal(fx.now) {
		t.Fatalf("start date not stamped: %v", approved.StartDate)
	}
	wantExpiry := fx.now.AddDate(0, 0, 30)
	if approved.ExpiryDate == nil || !approved.ExpiryDate.Equal(wantExpiry) {
		t.Fatalf("expected expiry %s, got %v", wantExpiry, approved.ExpiryDate)
	}

	payment := fx.repo.payments[sub.ID]
	if payment.Status != enums.PaymentStatusApproved || payment.ApprovedAt == nil {
		t.Fatalf("payment not approved: %+v", payment)
	}
	if fx.shop.PlanID != fx.basic.ID {
		t.Fatal("shop must move onto the paid plan")
	}
	if fx.dispatcher.approved != 1 {
		t.Fatal("approval notification not dispatched")
	}
}

func TestApproveNonPendingConflicts(t *testing.T) {
	fx := newLifecycleFixture(t)
	sub := fx.submit(t)
	if _, err := fx.svc.Approve(context.Background(), sub.ID); err != nil {
		t.Fatalf("first approve failed: %v", err)
	}

	_, err := fx.svc.Approve(context.Background(), sub.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestRejectLeavesShopUntouched(t *testing.T) {
	fx := newLifecycleFixture(t)
	sub := fx.submit(t)

	notes := "card declined by issuer"
	rejected, err := fx.svc.Reject(context.Background(), sub.ID, &notes)
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if rejected.Status != enums.SubscriptionStatusCancelled {
		t.Fatalf("expected cancelled, got %s", rejected.Status)
	}

	payment := fx.repo.payments[sub.ID]
	if payment.Status != enums.PaymentStatusRejected || payment.Notes == nil || *payment.Notes != notes {
		t.Fatalf("payment not rejected with notes: %+v", payment)
	}
	if fx.shop.PlanID != fx.free.ID || len(fx.shopRepo.setPlans) != 0 {
		t.Fatal("reject must not touch the shop plan")
	}
}

func TestCancelDowngradesToFree(t *testing.T) {
	fx := newLifecycleFixture(t)
	sub := fx.submit(t)
	if _, err := fx.svc.Approve(context.Background(), sub.ID); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	cancelled, err := fx.svc.Cancel(context.Background(), sub.ID)
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if cancelled.Status != enums.SubscriptionStatusCancelled {
		t.Fatalf("expected cancelled, got %s", cancelled.Status)
	}
	if fx.shop.PlanID != fx.free.ID {
		t.Fatal("cancel must downgrade the shop to free")
	}
}

func TestCancelPendingConflicts(t *testing.T) {
	fx := newLifecycleFixture(t)
	sub := fx.submit(t)

	_, err := fx.svc.Cancel(context.Background(), sub.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestReactivateExpired(t *testing.T) {
	fx := newLifecycleFixture(t)
	sub := fx.submit(t)
	fx.repo.subs[sub.ID].Status = enums.SubscriptionStatusExpired

	reactivated, err := fx.svc.Reactivate(context.Background(), sub.ID)
	if err != nil {
		t.Fatalf("reactivate failed: %v", err)
	}
	if reactivated.Status != enums.SubscriptionStatusActive {
		t.Fatalf("expected active, got %s", reactivated.Status)
	}
	wantExpiry := fx.now.AddDate(0, 0, 30)
	if reactivated.ExpiryDate == nil || !reactivated.ExpiryDate.Equal(wantExpiry) {
		t.Fatalf("expected fresh expiry %s, got %v", wantExpiry, reactivated.ExpiryDate)
	}
	if fx.shop.PlanID != fx.basic.ID {
		t.Fatal("reactivate must reassign the shop plan")
	}
}

func TestReactivateCancelledConflicts(t *testing.T) {
	fx := newLifecycleFixture(t)
	sub := fx.submit(t)
	fx.repo.subs[sub.ID].Status = enums.SubscriptionStatusCancelled

	_, err := fx.svc.Reactivate(context.Background(), sub.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("cancelled rows stay closed, got %v", err)
	}
}

func TestExpirySweepContinuesPastFailures(t *testing.T) {
	fx := newLifecycleFixture(t)

	expiry := fx.now.Add(-time.Hour)
	good := models.Subscription{ID: uuid.New(), ShopID: fx.shop.ID, PlanID: fx.basic.ID, Status: enums.SubscriptionStatusActive, ExpiryDate: &expiry}
	bad := models.Subscription{ID: uuid.New(), ShopID: uuid.New(), PlanID: fx.basic.ID, Status: enums.SubscriptionStatusActive, ExpiryDate: &expiry}
	fx.repo.subs[good.ID] = &good
	fx.repo.subs[bad.ID] = &bad
	fx.repo.expired = []models.Subscription{good, bad}
	fx.repo.updateSubErr = func(sub *models.Subscription) error {
		if sub.ID == bad.ID {
			return errors.New("write failed")
		}
		return nil
	}

	result, err := fx.svc.ExpirySweep(context.Background())
	if err == nil {
		t.Fatal("expected aggregated sweep error")
	}
	if result.Processed != 1 || result.Failed != 1 {
		t.Fatalf("unexpected sweep result %+v", result)
	}
	if fx.repo.subs[good.ID].Status != enums.SubscriptionStatusExpired {
		t.Fatal("surviving row must be expired")
	}
	if fx.shop.PlanID != fx.free.ID {
		t.Fatal("expired shop must land on the free plan")
	}
	if fx.dispatcher.expired != 1 {
		t.Fatal("expiry notification goes out only for committed rows")
	}
}

func TestExpirySweepIdempotent(t *testing.T) {
	fx := newLifecycleFixture(t)
	fx.repo.expired = nil

	result, err := fx.svc.ExpirySweep(context.Background())
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if result.Processed != 0 || result.Failed != 0 {
		t.Fatalf("empty sweep must be a no-op, got %+v", result)
	}
}

func TestWarningSweepNotifiesWithoutStateChange(t *testing.T) {
	fx := newLifecycleFixture(t)

	expiry := fx.now.Add(48 * time.Hour)
	sub := models.Subscription{ID: uuid.New(), ShopID: fx.shop.ID, PlanID: fx.basic.ID, Status: enums.SubscriptionStatusActive, ExpiryDate: &expiry}
	fx.repo.subs[sub.ID] = &sub
	fx.repo.expiring = []models.Subscription{sub}

	warned, err := fx.svc.WarningSweep(context.Background())
	if err != nil {
		t.Fatalf("warning sweep failed: %v", err)
	}
	if warned != 1 || fx.dispatcher.expiring != 1 {
		t.Fatalf("expected one warning, got %d", warned)
	}
	if fx.repo.subs[sub.ID].Status != enums.SubscriptionStatusActive {
		t.Fatal("warning sweep must not change state")
	}
}

func TestCardLast4(t *testing.T) {
	last4, err := cardLast4("4242-4242-4242-4242")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if last4 != "4242" {
		t.Fatalf("expected 4242, got %s", last4)
	}
	if _, err := cardLast4("1234"); err == nil {
		t.Fatal("short numbers must be rejected")
	}
}
