package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bloomstack/bloomstack-backend/pkg/enums"
)

// Payment records the manually reviewed card submission backing a
// subscription. One payment per subscription.
type Payment struct {
	ID             uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	SubscriptionID uuid.UUID           `gorm:"column:subscription_id;type:uuid;not null;uniqueIndex"`
	CardLast4      string              `gorm:"column:card_last4;not null"`
	CardType       string              `gorm:"column:card_type;not null"`
	CardHolderName string              `gorm:"column:card_holder_name;not null"`
	Amount         decimal.Decimal     `gorm:"column:amount;type:numeric(12,2);not null"`
	Status         enums.PaymentStatus `gorm:"column:status;not null;default:'pending';index"`
	ApprovedAt     *time.Time          `gorm:"column:approved_at"`
	Notes          *string             `gorm:"column:notes"`
	CreatedAt      time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
