package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bloomstack/bloomstack-backend/internal/shops"
	"github.com/bloomstack/bloomstack-backend/pkg/db/models"
	"github.com/bloomstack/bloomstack-backend/pkg/enums"
	pkgerrors "github.com/bloomstack/bloomstack-backend/pkg/errors"
	"github.com/bloomstack/bloomstack-backend/pkg/pagination"
)

type fakeRepo struct {
	create       func(ctx context.Context, order *models.Order) error
	get          func(ctx context.Context, shopID, id uuid.UUID) (*models.Order, error)
	updateStatus func(ctx context.Context, shopID, id uuid.UUID, from, to enums.OrderStatus) (bool, error)
}

func (f *fakeRepo) WithTx(tx *gorm.DB) Repository { return f }
func (f *fakeRepo) Create(ctx context.Context, order *models.Order) error {
	return f.create(ctx, order)
}
func (f *fakeRepo) Get(ctx context.Context, shopID, id uuid.UUID) (*models.Order, error) {
	return f.get(ctx, shopID, id)
}
func (f *fakeRepo) List(ctx context.Context, params ListOrdersParams) ([]models.Order, *pagination.Cursor, error) {
	return nil, nil, nil
}
func (f *fakeRepo) UpdateStatus(ctx context.Context, shopID, id uuid.UUID, from, to enums.OrderStatus) (bool, error) {
	return f.updateStatus(ctx, shopID, id, from, to)
}

type fakeShopRepo struct {
	shop *models.Shop
}

func (f *fakeShopRepo) WithTx(tx *gorm.DB) shops.Repository { return f }
func (f *fakeShopRepo) Create(ctx context.Context, shop *models.Shop) error {
	return nil
}
func (f *fakeShopRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Shop, error) {
	if f.shop == nil || f.shop.ID != id {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shop not found")
	}
	return f.shop, nil
}
func (f *fakeShopRepo) GetBySlug(ctx context.Context, slug string) (*models.Shop, error) {
	if f.shop == nil || f.shop.Slug != slug {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shop not found")
	}
	return f.shop, nil
}
func (f *fakeShopRepo) GetByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Shop, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shop not found")
}
func (f *fakeShopRepo) Update(ctx context.Context, shop *models.Shop) error {
	return nil
}
func (f *fakeShopRepo) SetPlan(ctx context.Context, shopID, planID uuid.UUID) error {
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

type recordingDispatcher struct {
	received      int
	statusChanged int
	lastPrevious  enums.OrderStatus
}

func (d *recordingDispatcher) OrderReceived(ctx context.Context, shop *models.Shop, order *models.Order) {
	d.received++
}

func (d *recordingDispatcher) OrderStatusChanged(ctx context.Context, shop *models.Shop, order *models.Order, previous enums.OrderStatus) {
	d.statusChanged++
	d.lastPrevious = previous
}

func TestCreateInquiry(t *testing.T) {
	shop := &models.Shop{ID: uuid.New(), Slug: "rose-corner"}
	dispatcher := &recordingDispatcher{}

	var created *models.Order
	repo := &fakeRepo{
		create: func(ctx context.Context, order *models.Order) error {
			created = order
			return nil
		},
	}
	svc, err := NewService(repo, &fakeShopRepo{shop: shop}, dispatcher)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	order, err := svc.CreateInquiry(context.Background(), "rose-corner", CreateInquiryInput{
		CustomerName:   "Dana",
		CustomerPhone:  "+15550100",
		DeliveryMethod: enums.DeliveryMethodPickup,
	})
	if err != nil {
		t.Fatalf("create inquiry failed: %v", err)
	}
	if created == nil || created.ShopID != shop.ID {
		t.Fatal("order not scoped to the slug's shop")
	}
	if order.Status != enums.OrderStatusPending {
		t.Fatalf("new orders must start pending, got %s", order.Status)
	}
	if order.OrderType != enums.OrderTypeInquiry {
		t.Fatalf("unexpected order type %s", order.OrderType)
	}
	if dispatcher.received != 1 {
		t.Fatal("owner notification not dispatched")
	}
}

func TestCreateInquirySuspendedShopHidden(t *testing.T) {
	shop := &models.Shop{ID: uuid.New(), Slug: "rose-corner", Suspended: true}
	svc, err := NewService(&fakeRepo{}, &fakeShopRepo{shop: shop}, &recordingDispatcher{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.CreateInquiry(context.Background(), "rose-corner", CreateInquiryInput{
		CustomerName:   "Dana",
		CustomerPhone:  "+15550100",
		DeliveryMethod: enums.DeliveryMethodPickup,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("suspended shops must look absent, got %v", err)
	}
}

func TestCreateInquiryDeliveryRequiresAddress(t *testing.T) {
	shop := &models.Shop{ID: uuid.New(), Slug: "rose-corner"}
	svc, err := NewService(&fakeRepo{}, &fakeShopRepo{shop: shop}, &recordingDispatcher{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.CreateInquiry(context.Background(), "rose-corner", CreateInquiryInput{
		CustomerName:   "Dana",
		CustomerPhone:  "+15550100",
		DeliveryMethod: enums.DeliveryMethodDelivery,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateStatusTransition(t *testing.T) {
	shop := &models.Shop{ID: uuid.New(), Slug: "rose-corner"}
	orderID := uuid.New()
	dispatcher := &recordingDispatcher{}

	repo := &fakeRepo{
		get: func(ctx context.Context, shopID, id uuid.UUID) (*models.Order, error) {
			return &models.Order{ID: orderID, ShopID: shopID, Status: enums.OrderStatusPending}, nil
		},
		updateStatus: func(ctx context.Context, shopID, id uuid.UUID, from, to enums.OrderStatus) (bool, error) {
			if from != enums.OrderStatusPending || to != enums.OrderStatusConfirmed {
				t.Fatalf("unexpected compare-and-set %s -> %s", from, to)
			}
			return true, nil
		},
	}
	svc, err := NewService(repo, &fakeShopRepo{shop: shop}, dispatcher)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	order, err := svc.UpdateStatus(context.Background(), shop.ID, orderID, enums.OrderStatusConfirmed)
	if err != nil {
		t.Fatalf("update status failed: %v", err)
	}
	if order.Status != enums.OrderStatusConfirmed {
		t.Fatalf("status not applied, got %s", order.Status)
	}
	if dispatcher.statusChanged != 1 || dispatcher.lastPrevious != enums.OrderStatusPending {
		t.Fatal("status change notification not dispatched with previous state")
	}
}

func TestUpdateStatusRejectsInvalidTransition(t *testing.T) {
	shop := &models.Shop{ID: uuid.New(), Slug: "rose-corner"}
	orderID := uuid.New()

	repo := &fakeRepo{
		get: func(ctx context.Context, shopID, id uuid.UUID) (*models.Order, error) {
			return &models.Order{ID: orderID, ShopID: shopID, Status: enums.OrderStatusCompleted}, nil
		},
	}
	svc, err := NewService(repo, &fakeShopRepo{shop: shop}, &recordingDispatcher{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.UpdateStatus(context.Background(), shop.ID, orderID, enums.OrderStatusPending)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestUpdateStatusConcurrentLoss(t *testing.T) {
	shop := &models.Shop{ID: uuid.New(), Slug: "rose-corner"}
	orderID := uuid.New()

	repo := &fakeRepo{
		get: func(ctx context.Context, shopID, id uuid.UUID) (*models.Order, error) {
			return &models.Order{ID: orderID, ShopID: shopID, Status: enums.OrderStatusPending}, nil
		},
		updateStatus: func(ctx context.Context, shopID, id uuid.UUID, from, to enums.OrderStatus) (bool, error) {
			return false, nil
		},
	}
	svc, err := NewService(repo, &fakeShopRepo{shop: shop}, &recordingDispatcher{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.UpdateStatus(context.Background(), shop.ID, orderID, enums.OrderStatusCancelled)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict on lost race, got %v", err)
	}
}
