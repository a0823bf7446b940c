package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bloomstack/bloomstack-backend/pkg/enums"
)

// Flower is a pre-made catalog bouquet shown on the storefront. Row count
// per shop is capped by the plan's max_bouquets.
type Flower struct {
	ID           uuid.UUID                `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ShopID       uuid.UUID                `gorm:"column:shop_id;type:uuid;not null;index"`
	Name         string                   `gorm:"column:name;not null"`
	Description  *string                  `gorm:"column:description"`
	Price        decimal.Decimal          `gorm:"column:price;type:numeric(12,2);not null"`
	Availability enums.FlowerAvailability `gorm:"column:availability;not null;default:'in_stock'"`
	ImageURL     *string                  `gorm:"column:image_url"`
	CreatedAt    time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}
