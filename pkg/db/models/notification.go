package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/bloomstack/bloomstack-backend/pkg/enums"
)

// Notification is an in-app feed entry for a shop owner.
type Notification struct {
	ID        uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ShopID    uuid.UUID              `gorm:"column:shop_id;type:uuid;not null;index"`
	Kind      enums.NotificationKind `gorm:"column:kind;not null"`
	Title     string                 `gorm:"column:title;not null"`
	Body      string                 `gorm:"column:body;not null"`
	ReadAt    *time.Time             `gorm:"column:read_at"`
	CreatedAt time.Time              `gorm:"column:created_at;autoCreateTime;index"`
}
