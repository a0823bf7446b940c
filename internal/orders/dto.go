package orders

import (
	"github.com/bloomstack/bloomstack-backend/pkg/enums"
	"github.com/bloomstack/bloomstack-backend/pkg/pagination"
)

// DeliveryAddress is the structured address snapshot stored on delivery
// orders. It is persisted as jsonb and never normalized afterwards.
type DeliveryAddress struct {
	Line1    string  `json:"line1" validate:"required,max=200"`
	Line2    *string `json:"line2" validate:"omitempty,max=200"`
	City     string  `json:"city" validate:"required,max=120"`
	Postcode *string `json:"postcode" validate:"omitempty,max=20"`
	Comment  *string `json:"comment" validate:"omitempty,max=500"`
}

// CreateInquiryInput is the public storefront payload for a plain inquiry
// order. Custom bouquet orders go through the composer instead.
type CreateInquiryInput struct {
	CustomerName    string               `json:"customer_name" validate:"required,min=1,max=120"`
	CustomerPhone   string               `json:"customer_phone" validate:"required,min=5,max=32"`
	CustomerEmail   *string              `json:"customer_email" validate:"omitempty,email"`
	Message         *string              `json:"message" validate:"omitempty,max=2000"`
	DeliveryMethod  enums.DeliveryMethod `json:"delivery_method" validate:"required"`
	DeliveryAddress *DeliveryAddress     `json:"delivery_address"`
}

// ListInput carries owner-facing list filters.
type ListInput struct {
	Limit  int
	Cursor *pagination.Cursor
	Status *enums.OrderStatus
}
