package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/bloomstack/bloomstack-backend/pkg/enums"
)

// Shop is the tenant model. plan_id always reflects the plan of the most
// recently activated subscription, falling back to the free plan.
type Shop struct {
	ID                    uuid.UUID            `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Slug                  string               `gorm:"column:slug;not null;uniqueIndex"`
	OwnerID               uuid.UUID            `gorm:"column:owner_id;type:uuid;not null;index"`
	PlanID                uuid.UUID            `gorm:"column:plan_id;type:uuid;not null"`
	Name                  string               `gorm:"column:name;not null"`
	Description           *string              `gorm:"column:description"`
	Phone                 *string              `gorm:"column:phone"`
	Email                 *string              `gorm:"column:email"`
	Currency              string               `gorm:"column:currency;not null;default:'USD'"`
	Locale                string               `gorm:"column:locale;not null;default:'en'"`
	Address               *string              `gorm:"column:address"`
	WorkingHours          datatypes.JSON       `gorm:"column:working_hours;type:jsonb"`
	ShowPhone             bool                 `gorm:"column:show_phone;not null;default:true"`
	ShowEmail             bool                 `gorm:"column:show_email;not null;default:true"`
	ShowAddress           bool                 `gorm:"column:show_address;not null;default:true"`
	DefaultDeliveryMethod enums.DeliveryMethod `gorm:"column:default_delivery_method;not null;default:'pickup'"`
	TelegramChatID        *int64               `gorm:"column:telegram_chat_id"`
	Suspended             bool                 `gorm:"column:suspended;not null;default:false"`
	CreatedAt             time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
