package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/bloomstack/bloomstack-backend/pkg/enums"
)

// CreateFlowerInput is the owner-facing payload for a catalog bouquet.
type CreateFlowerInput struct {
	Name         string                    `json:"name" validate:"required,min=1,max=120"`
	Description  *string                   `json:"description" validate:"omitempty,max=2000"`
	Price        decimal.Decimal           `json:"price" validate:"required"`
	Availability *enums.FlowerAvailability `json:"availability"`
	ImageURL     *string                   `json:"image_url" validate:"omitempty,url,max=500"`
}

// UpdateFlowerInput carries partial bouquet updates.
type UpdateFlowerInput struct {
	Name         *string                   `json:"name" validate:"omitempty,min=1,max=120"`
	Description  *string                   `json:"description" validate:"omitempty,max=2000"`
	Price        *decimal.Decimal          `json:"price"`
	Availability *enums.FlowerAvailability `json:"availability"`
	ImageURL     *string                   `json:"image_url" validate:"omitempty,url,max=500"`
}

// QuotaDetails is attached to BOUQUET_LIMIT_REACHED errors so the client can
// render an upgrade prompt.
type QuotaDetails struct {
	Limit   int   `json:"limit"`
	Current int64 `json:"current"`
}
