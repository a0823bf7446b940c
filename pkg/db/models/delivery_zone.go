package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DeliveryZone is a named delivery area with a flat fee and time estimate.
type DeliveryZone struct {
	ID                uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ShopID            uuid.UUID       `gorm:"column:shop_id;type:uuid;not null;index"`
	Name              string          `gorm:"column:name;not null"`
	Fee               decimal.Decimal `gorm:"column:fee;type:numeric(12,2);not null"`
	EstimatedMinHours int             `gorm:"column:estimated_min_hours;not null;default:0"`
	EstimatedMaxHours int             `gorm:"column:estimated_max_hours;not null;default:0"`
	SameDayAvailable  bool            `gorm:"column:same_day_available;not null;default:false"`
	MinimumOrder      decimal.Decimal `gorm:"column:minimum_order;type:numeric(12,2);not null;default:0"`
	Active            bool            `gorm:"column:active;not null;default:true"`
	SortOrder         int             `gorm:"column:sort_order;not null;default:0"`
	CreatedAt         time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
