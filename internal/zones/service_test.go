package zones

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/bloomstack/bloomstack-backend/internal/shops"
	"github.com/bloomstack/bloomstack-backend/pkg/db/models"
	pkgerrors "github.com/bloomstack/bloomstack-backend/pkg/errors"
)

type fakeRepo struct {
	zones      []models.DeliveryZone
	get        func(ctx context.Context, shopID, id uuid.UUID) (*models.DeliveryZone, error)
	updated    *models.DeliveryZone
	listActive func(ctx context.Context, shopID uuid.UUID) ([]models.DeliveryZone, error)
}

func (f *fakeRepo) WithTx(tx *gorm.DB) Repository { return f }
func (f *fakeRepo) Create(ctx context.Context, zone *models.DeliveryZone) error {
	f.zones = append(f.zones, *zone)
	return nil
}
func (f *fakeRepo) List(ctx context.Context, shopID uuid.UUID) ([]models.DeliveryZone, error) {
	return f.zones, nil
}
func (f *fakeRepo) ListActive(ctx context.Context, shopID uuid.UUID) ([]models.DeliveryZone, error) {
	if f.listActive != nil {
		return f.listActive(ctx, shopID)
	}
	var out []models.DeliveryZone
	for _, zone := range f.zones {
		if zone.Active {
			out = append(out, zone)
		}
	}
	return out, nil
}
func (f *fakeRepo) Get(ctx context.Context, shopID, id uuid.UUID) (*models.DeliveryZone, error) {
	return f.get(ctx, shopID, id)
}
func (f *fakeRepo) Update(ctx context.Context, zone *models.DeliveryZone) error {
	f.updated = zone
	return nil
}
func (f *fakeRepo) Delete(ctx context.Context, shopID, id uuid.UUID) error {
	return nil
}

type fakeShopRepo struct {
	shop *models.Shop
}

func (f *fakeShopRepo) WithTx(tx *gorm.DB) shops.Repository { return f }
func (f *fakeShopRepo) Create(ctx context.Context, shop *models.Shop) error {
	return nil
}
func (f *fakeShopRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Shop, error) {
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

func TestCreateDefaultsActive(t *testing.T) {
	repo := &fakeRepo{}
	svc, err := NewService(repo, &fakeShopRepo{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	zone, err := svc.Create(context.Background(), uuid.New(), CreateZoneInput{
		Name: "Downtown",
		Fee:  decimal.NewFromFloat(5.00),
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if !zone.Active {
		t.Fatal("zones must default to active")
	}
}

func TestCreateRejectsInvertedEstimate(t *testing.T) {
	svc, err := NewService(&fakeRepo{}, &fakeShopRepo{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.Create(context.Background(), uuid.New(), CreateZoneInput{
		Name:              "Downtown",
		Fee:               decimal.NewFromFloat(5.00),
		EstimatedMinHours: 4,
		EstimatedMaxHours: 2,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestListPublicFiltersInactive(t *testing.T) {
	shop := &models.Shop{ID: uuid.New(), Slug: "rose-corner"}
	repo := &fakeRepo{zones: []models.DeliveryZone{
		{Name: "Downtown", Active: true},
		{Name: "Suburbs", Active: false},
	}}
	svc, err := NewService(repo, &fakeShopRepo{shop: shop})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	zones, err := svc.ListPublic(context.Background(), "rose-corner")
	if err != nil {
		t.Fatalf("list public failed: %v", err)
	}
	if len(zones) != 1 || zones[0].Name != "Downtown" {
		t.Fatalf("inactive zones must be hidden, got %+v", zones)
	}
}

func TestListPublicSuspendedShop(t *testing.T) {
	shop := &models.Shop{ID: uuid.New(), Slug: "rose-corner", Suspended: true}
	svc, err := NewService(&fakeRepo{}, &fakeShopRepo{shop: shop})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.ListPublic(context.Background(), "rose-corner")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("suspended shops must look absent, got %v", err)
	}
}

func TestUpdatePartialZone(t *testing.T) {
	shopID := uuid.New()
	zoneID := uuid.New()
	repo := &fakeRepo{
		get: func(ctx context.Context, sID, id uuid.UUID) (*models.DeliveryZone, error) {
			return &models.DeliveryZone{
				ID:                zoneID,
				ShopID:            shopID,
				Name:              "Downtown",
				Fee:               decimal.NewFromFloat(5.00),
				EstimatedMinHours: 1,
				EstimatedMaxHours: 3,
				Active:            true,
			}, nil
		},
	}
	svc, err := NewService(repo, &fakeShopRepo{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	fee := decimal.NewFromFloat(7.50)
	active := false
	zone, err := svc.Update(context.Background(), shopID, zoneID, UpdateZoneInput{Fee: &fee, Active: &active})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if !zone.Fee.Equal(fee) || zone.Active {
		t.Fatalf("update not applied: %+v", zone)
	}
	if zone.Name != "Downtown" {
		t.Fatal("untouched fields must survive")
	}
}
