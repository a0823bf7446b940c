package zones

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bloomstack/bloomstack-backend/internal/shops"
	"github.com/bloomstack/bloomstack-backend/pkg/db/models"
	pkgerrors "github.com/bloomstack/bloomstack-backend/pkg/errors"
)

// CreateZoneInput is the owner-facing payload for a delivery zone.
type CreateZoneInput struct {
	Name              string          `json:"name" validate:"required,min=1,max=120"`
	Fee               decimal.Decimal `json:"fee" validate:"required"`
	EstimatedMinHours int             `json:"estimated_min_hours" validate:"min=0"`
	EstimatedMaxHours int             `json:"estimated_max_hours" validate:"min=0"`
	SameDayAvailable  bool            `json:"same_day_available"`
	MinimumOrder      decimal.Decimal `json:"minimum_order"`
	Active            *bool           `json:"active"`
	SortOrder         int             `json:"sort_order" validate:"min=0"`
}

// UpdateZoneInput carries partial zone updates.
type UpdateZoneInput struct {
	Name              *string          `json:"name" validate:"omitempty,min=1,max=120"`
	Fee               *decimal.Decimal `json:"fee"`
	EstimatedMinHours *int             `json:"estimated_min_hours" validate:"omitempty,min=0"`
	EstimatedMaxHours *int             `json:"estimated_max_hours" validate:"omitempty,min=0"`
	SameDayAvailable  *bool            `json:"same_day_available"`
	MinimumOrder      *decimal.Decimal `json:"minimum_order"`
	Active            *bool            `json:"active"`
	SortOrder         *int             `json:"sort_order" validate:"omitempty,min=0"`
}

// Service defines delivery zone operations.
type Service interface {
	Create(ctx context.Context, shopID uuid.UUID, input CreateZoneInput) (*models.DeliveryZone, error)
	List(ctx context.Context, shopID uuid.UUID) ([]models.DeliveryZone, error)
	ListPublic(ctx context.Context, shopSlug string) ([]models.DeliveryZone, error)
	Update(ctx context.Context, shopID, id uuid.UUID, input UpdateZoneInput) (*models.DeliveryZone, error)
	Delete(ctx context.Context, shopID, id uuid.UUID) error
}

type service struct {
	repo  Repository
	shops shops.Repository
}

// NewService wires zone dependencies.
func NewService(repo Repository, shopRepo shops.Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "zones repository required")
	}
	if shopRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "shops repository required")
	}
	return &service{repo: repo, shops: shopRepo}, nil
}

func (s *service) Create(ctx context.Context, shopID uuid.UUID, input CreateZoneInput) (*models.DeliveryZone, error) {
	if shopID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop id required")
	}
	if input.Fee.IsNegative() || input.MinimumOrder.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "fee and minimum order cannot be negative")
	}
	if input.EstimatedMaxHours < input.EstimatedMinHours {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "estimated max hours below min")
	}

	active := true
	if input.Active != nil {
		active = *input.Active
	}
	zone := &models.DeliveryZone{
		ShopID:            shopID,
		Name:              input.Name,
		Fee:               input.Fee,
		EstimatedMinHours: input.EstimatedMinHours,
		EstimatedMaxHours: input.EstimatedMaxHours,
		SameDayAvailable:  input.SameDayAvailable,
		MinimumOrder:      input.MinimumOrder,
		Active:            active,
		SortOrder:         input.SortOrder,
	}
	if err := s.repo.Create(ctx, zone); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create delivery zone")
	}
	return zone, nil
}

func (s *service) List(ctx context.Context, shopID uuid.UUID) ([]models.DeliveryZone, error) {
	if shopID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop id required")
	}
	zones, err := s.repo.List(ctx, shopID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list delivery zones")
	}
	return zones, nil
}

// ListPublic returns active zones for a visible storefront.
func (s *service) ListPublic(ctx context.Context, shopSlug string) ([]models.DeliveryZone, error) {
	shop, err := s.shops.GetBySlug(ctx, shopSlug)
	if err != nil {
		return nil, err
	}
	if shop.Suspended {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shop not found")
	}
	zones, err := s.repo.ListActive(ctx, shop.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list delivery zones")
	}
	return zones, nil
}

func (s *service) Update(ctx context.Context, shopID, id uuid.UUID, input UpdateZoneInput) (*models.DeliveryZone, error) {
	if shopID == uuid.Nil || id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop id and zone id required")
	}
	if input.Fee != nil && input.Fee.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "fee cannot be negative")
	}
	if input.MinimumOrder != nil && input.MinimumOrder.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "minimum order cannot be negative")
	}

	zone, err := s.repo.Get(ctx, shopID, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		zone.Name = *input.Name
	}
	if input.Fee != nil {
		zone.Fee = *input.Fee
	}
	if input.EstimatedMinHours != nil {
		zone.EstimatedMinHours = *input.EstimatedMinHours
	}
	if input.EstimatedMaxHours != nil {
		zone.EstimatedMaxHours = *input.EstimatedMaxHours
	}
	if input.SameDayAvailable != nil {
		zone.SameDayAvailable = *input.SameDayAvailable
	}
	if input.MinimumOrder != nil {
		zone.MinimumOrder = *input.MinimumOrder
	}
	if input.Active != nil {
		zone.Active = *input.Active
	}
	if input.SortOrder != nil {
		zone.SortOrder = *input.SortOrder
	}
	if zone.EstimatedMaxHours < zone.EstimatedMinHours {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "estimated max hours below min")
	}

	if err := s.repo.Update(ctx, zone); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update delivery zone")
	}
	return zone, nil
}

func (s *service) Delete(ctx context.Context, shopID, id uuid.UUID) error {
	if shopID == uuid.Nil || id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "shop id and zone id required")
	}
	return s.repo.Delete(ctx, shopID, id)
}
