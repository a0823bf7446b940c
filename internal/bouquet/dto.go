package bouquet

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bloomstack/bloomstack-backend/internal/orders"
	"github.com/bloomstack/bloomstack-backend/pkg/db/models"
	"github.com/bloomstack/bloomstack-backend/pkg/enums"
)

// ComposerData is everything the storefront needs to render the composer.
type ComposerData struct {
	StockFlowers []models.StockFlower    `json:"stock_flowers"`
	Wrappings    []models.WrappingOption `json:"wrappings"`
	Tiers        []SizeTier              `json:"tiers"`
}

// ItemInput is one flower pick in a submitted composition.
type ItemInput struct {
	StockFlowerID uuid.UUID `json:"stock_flower_id" validate:"required"`
	Quantity      int       `json:"quantity" validate:"required,min=1"`
}

// SubmitInput is the public payload for a custom bouquet order. QuotedTotal
// is the price the customer saw and agreed to in the composer.
type SubmitInput struct {
	CustomerName    string                  `json:"customer_name" validate:"required,min=1,max=120"`
	CustomerPhone   string                  `json:"customer_phone" validate:"required,min=5,max=32"`
	CustomerEmail   *string                 `json:"customer_email" validate:"omitempty,email"`
	Message         *string                 `json:"message" validate:"omitempty,max=2000"`
	Size            enums.BouquetSize       `json:"size" validate:"required"`
	Items           []ItemInput             `json:"items" validate:"required,min=1,dive"`
	WrappingID      *uuid.UUID              `json:"wrapping_id"`
	QuotedTotal     decimal.Decimal         `json:"quoted_total" validate:"required"`
	DeliveryMethod  enums.DeliveryMethod    `json:"delivery_method" validate:"required"`
	DeliveryAddress *orders.DeliveryAddress `json:"delivery_address"`
}

// SnapshotItem is one line of the persisted composition, priced as it was
// at submit time.
type SnapshotItem struct {
	StockFlowerID uuid.UUID       `json:"stock_flower_id"`
	Name          string          `json:"name"`
	Quantity      int             `json:"quantity"`
	PricePerStem  decimal.Decimal `json:"price_per_stem"`
}

// SnapshotWrapping is the chosen wrapping as it was at submit time.
type SnapshotWrapping struct {
	ID    uuid.UUID       `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// Snapshot is the custom_bouquet jsonb document written on the order. The
// client quote is stored verbatim next to the server-derived total so a
// disagreement stays visible to the owner.
type Snapshot struct {
	Size           enums.BouquetSize `json:"size"`
	Items          []SnapshotItem    `json:"items"`
	Wrapping       *SnapshotWrapping `json:"wrapping,omitempty"`
	QuotedTotal    decimal.Decimal   `json:"quoted_total"`
	ServerTotal    decimal.Decimal   `json:"server_total"`
	RequiresReview bool              `json:"requires_review"`
}
