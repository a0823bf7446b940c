package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/bloomstack/bloomstack-backend/pkg/enums"
)

// Subscription is one paid-plan request per shop. A nil ExpiryDate means
// the plan never expires (duration_days = 0).
type Subscription struct {
	ID         uuid.UUID                `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ShopID     uuid.UUID                `gorm:"column:shop_id;type:uuid;not null;index"`
	PlanID     uuid.UUID                `gorm:"column:plan_id;type:uuid;not null"`
	Status     enums.SubscriptionStatus `gorm:"column:status;not null;default:'pending';index"`
	StartDate  *time.Time               `gorm:"column:start_date"`
	ExpiryDate *time.Time               `gorm:"column:expiry_date;index"`
	CreatedAt  time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}
