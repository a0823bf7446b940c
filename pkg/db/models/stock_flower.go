package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockFlower is a per-stem inventory row used by the bouquet composer.
// stock_count never drops below zero.
type StockFlower struct {
	ID           uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ShopID       uuid.UUID       `gorm:"column:shop_id;type:uuid;not null;index"`
	Name         string          `gorm:"column:name;not null"`
	Color        *string         `gorm:"column:color"`
	PricePerStem decimal.Decimal `gorm:"column:price_per_stem;type:numeric(12,2);not null"`
	StockCount   int             `gorm:"column:stock_count;not null;default:0"`
	ImageURL     *string         `gorm:"column:image_url"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
