package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/bloomstack/bloomstack-backend/pkg/enums"
)

// Order is an append-only ledger row. The JSON snapshots are written once
// at creation and never mutated; only Status changes afterwards.
type Order struct {
	ID              uuid.UUID            `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ShopID          uuid.UUID            `gorm:"column:shop_id;type:uuid;not null;index"`
	CustomerName    string               `gorm:"column:customer_name;not null"`
	CustomerPhone   string               `gorm:"column:customer_phone;not null"`
	CustomerEmail   *string              `gorm:"column:customer_email"`
	Message         *string              `gorm:"column:message"`
	OrderType       enums.OrderType      `gorm:"column:order_type;not null"`
	DeliveryMethod  enums.DeliveryMethod `gorm:"column:delivery_method;not null"`
	DeliveryAddress datatypes.JSON       `gorm:"column:delivery_address;type:jsonb"`
	CustomBouquet   datatypes.JSON       `gorm:"column:custom_bouquet;type:jsonb"`
	Status          enums.OrderStatus    `gorm:"column:status;not null;default:'pending';index"`
	TotalAmount     *decimal.Decimal     `gorm:"column:total_amount;type:numeric(12,2)"`
	CreatedAt       time.Time            `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt       time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
