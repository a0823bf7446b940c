package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bloomstack/bloomstack-backend/pkg/db/models"
	pkgerrors "github.com/bloomstack/bloomstack-backend/pkg/errors"
)

func TestAdjustStockClampsAtZero(t *testing.T) {
	conn := openTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	shopID := uuid.New()
	flower := &models.StockFlower{
		ID:           uuid.New(),
		ShopID:       shopID,
		Name:         "Red Rose",
		PricePerStem: decimal.NewFromFloat(2.50),
		StockCount:   5,
	}
	if err := conn.Create(flower).Error; err != nil {
		t.Fatalf("seed flower: %v", err)
	}
	t.Cleanup(func() {
		conn.Where("id = ?", flower.ID).Delete(&models.StockFlower{})
	})

	count, err := repo.AdjustStock(ctx, shopID, flower.ID, -3)
	if err != nil {
		t.Fatalf("adjust failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2, got %d", count)
	}

	count, err = repo.AdjustStock(ctx, shopID, flower.ID, -10)
	if err != nil {
		t.Fatalf("adjust failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected clamp at 0, got %d", count)
	}

	count, err = repo.AdjustStock(ctx, shopID, flower.ID, 7)
	if err != nil {
		t.Fatalf("adjust failed: %v", err)
	}
	if count != 7 {
		t.Fatalf("expected 7, got %d", count)
	}
}

func TestAdjustStockIsTenantScoped(t *testing.T) {
	conn := openTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	flower := &models.StockFlower{
		ID:           uuid.New(),
		ShopID:       uuid.New(),
		Name:         "White Lily",
		PricePerStem: decimal.NewFromFloat(3.00),
		StockCount:   4,
	}
	if err := conn.Create(flower).Error; err != nil {
		t.Fatalf("seed flower: %v", err)
	}
	t.Cleanup(func() {
		conn.Where("id = ?", flower.ID).Delete(&models.StockFlower{})
	})

	otherShop := uuid.New()
	_, err := repo.AdjustStock(ctx, otherShop, flower.ID, -1)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for cross-tenant adjust, got %v", err)
	}
}
