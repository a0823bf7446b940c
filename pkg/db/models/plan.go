package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/bloomstack/bloomstack-backend/pkg/enums"
)

// Plan is a seeded subscription tier. Rows are read-only at runtime.
type Plan struct {
	ID                  uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Slug                enums.PlanSlug  `gorm:"column:slug;not null;uniqueIndex"`
	Name                string          `gorm:"column:name;not null"`
	Price               decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	DurationDays        int             `gorm:"column:duration_days;not null;default:0"`
	MaxBouquets         int             `gorm:"column:max_bouquets;not null;default:0"`
	AllowProfileDetails bool            `gorm:"column:allow_profile_details;not null;default:false"`
	Features            pq.StringArray  `gorm:"column:features;type:text[];default:ARRAY[]::text[]"`
	CreatedAt           time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// Unlimited reports whether the plan places no cap on catalog bouquets.
func (p Plan) Unlimited() bool {
	return p.MaxBouquets <= 0
}
