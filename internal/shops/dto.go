package shops

import (
	"gorm.io/datatypes"

	"github.com/bloomstack/bloomstack-backend/pkg/db/models"
	"github.com/bloomstack/bloomstack-backend/pkg/enums"
)

// UpdateProfileInput carries partial profile updates. Nil pointers leave the
// stored value untouched.
type UpdateProfileInput struct {
	Name                  *string               `json:"name" validate:"omitempty,min=1,max=120"`
	Description           *string               `json:"description" validate:"omitempty,max=2000"`
	Phone                 *string               `json:"phone" validate:"omitempty,max=32"`
	Email                 *string               `json:"email" validate:"omitempty,email"`
	Currency              *string               `json:"currency" validate:"omitempty,len=3"`
	Locale                *string               `json:"locale" validate:"omitempty,min=2,max=10"`
	Address               *string               `json:"address" validate:"omitempty,max=500"`
	WorkingHours          datatypes.JSON        `json:"working_hours"`
	ShowPhone             *bool                 `json:"show_phone"`
	ShowEmail             *bool                 `json:"show_email"`
	ShowAddress           *bool                 `json:"show_address"`
	DefaultDeliveryMethod *enums.DeliveryMethod `json:"default_delivery_method"`
}

// StorefrontView is the public shape of a shop. Contact and address fields
// are stripped according to the plan and the owner's visibility toggles.
type StorefrontView struct {
	Slug                  string               `json:"slug"`
	Name                  string               `json:"name"`
	Description           *string              `json:"description,omitempty"`
	Phone                 *string              `json:"phone,omitempty"`
	Email                 *string              `json:"email,omitempty"`
	Address               *string              `json:"address,omitempty"`
	WorkingHours          datatypes.JSON       `json:"working_hours,omitempty"`
	Currency              string               `json:"currency"`
	Locale                string               `json:"locale"`
	DefaultDeliveryMethod enums.DeliveryMethod `json:"default_delivery_method"`
}

// AdminShopList wraps the paged admin listing.
type AdminShopList struct {
	Items []models.Shop `json:"items"`
	Total int64         `json:"total"`
}

// NewStorefrontView builds the public view for a shop under the given plan.
func NewStorefrontView(shop *models.Shop, plan *models.Plan) *StorefrontView {
	view := &StorefrontView{
		Slug:                  shop.Slug,
		Name:                  shop.Name,
		Currency:              shop.Currency,
		Locale:                shop.Locale,
		DefaultDeliveryMethod: shop.DefaultDeliveryMethod,
	}

	if plan == nil || !plan.AllowProfileDetails {
		return view
	}

	view.Description = shop.Description
	view.WorkingHours = shop.WorkingHours
	if shop.ShowPhone {
		view.Phone = shop.Phone
	}
	if shop.ShowEmail {
		view.Email = shop.Email
	}
	if shop.ShowAddress {
		view.Address = shop.Address
	}
	return view
}

// ApplyTo copies the non-nil fields onto the shop model.
func (in UpdateProfileInput) ApplyTo(shop *models.Shop) {
	if in.Name != nil {
		shop.Name = *in.Name
	}
	if in.Description != nil {
		shop.Description = in.Description
	}
	if in.Phone != nil {
		shop.Phone = in.Phone
	}
	if in.Email != nil {
		shop.Email = in.Email
	}
	if in.Currency != nil {
		shop.Currency = *in.Currency
	}
	if in.Locale != nil {
		shop.Locale = *in.Locale
	}
	if in.Address != nil {
		shop.Address = in.Address
	}
	if in.WorkingHours != nil {
		shop.WorkingHours = in.WorkingHours
	}
	if in.ShowPhone != nil {
		shop.ShowPhone = *in.ShowPhone
	}
	if in.ShowEmail != nil {
		shop.ShowEmail = *in.ShowEmail
	}
	if in.ShowAddress != nil {
		shop.ShowAddress = *in.ShowAddress
	}
	if in.DefaultDeliveryMethod != nil {
		shop.DefaultDeliveryMethod = *in.DefaultDeliveryMethod
	}
}
