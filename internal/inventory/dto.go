package inventory

import (
	"github.com/shopspring/decimal"
)

// CreateStockFlowerInput is the owner-facing payload for a new stem.
type CreateStockFlowerInput struct {
	Name         string          `json:"name" validate:"required,min=1,max=120"`
	Color        *string         `json:"color" validate:"omitempty,max=40"`
	PricePerStem decimal.Decimal `json:"price_per_stem" validate:"required"`
	StockCount   int             `json:"stock_count" validate:"gte=0"`
	ImageURL     *string         `json:"image_url" validate:"omitempty,url,max=500"`
}

// AdjustStockInput applies a signed delta to a stem count.
type AdjustStockInput struct {
	Delta int `json:"delta" validate:"required"`
}

// CreateWrappingInput is the owner-facing payload for a wrapping option.
type CreateWrappingInput struct {
	Name      string          `json:"name" validate:"required,min=1,max=120"`
	Price     decimal.Decimal `json:"price" validate:"required"`
	Available *bool           `json:"available"`
}

// UpdateWrappingInput carries partial wrapping updates.
type UpdateWrappingInput struct {
	Name      *string          `json:"name" validate:"omitempty,min=1,max=120"`
	Price     *decimal.Decimal `json:"price"`
	Available *bool            `json:"available"`
}
