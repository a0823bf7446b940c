package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/bloomstack/bloomstack-backend/internal/plans"
	"github.com/bloomstack/bloomstack-backend/internal/shops"
	"github.com/bloomstack/bloomstack-backend/pkg/db/models"
	"github.com/bloomstack/bloomstack-backend/pkg/enums"
	pkgerrors "github.com/bloomstack/bloomstack-backend/pkg/errors"
)

// Service defines catalog bouquet operations. Creation is gated by the
// shop's plan quota.
type Service interface {
	Create(ctx context.Context, shopID uuid.UUID, input CreateFlowerInput) (*models.Flower, error)
	List(ctx context.Context, shopID uuid.UUID) ([]models.Flower, error)
	Get(ctx context.Context, shopID, id uuid.UUID) (*models.Flower, error)
	Update(ctx context.Context, shopID, id uuid.UUID, input UpdateFlowerInput) (*models.Flower, error)
	Delete(ctx context.Context, shopID, id uuid.UUID) error
}

type service struct {
	repo  Repository
	shops shops.Repository
	plans plans.Repository
}

// NewService wires catalog dependencies.
func NewService(repo Repository, shopRepo shops.Repository, planRepo plans.Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "catalog repository required")
	}
	if shopRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "shops repository required")
	}
	if planRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "plans repository required")
	}
	return &service{repo: repo, shops: shopRepo, plans: planRepo}, nil
}

// Create checks the row count against the plan quota before inserting. The
// check is not serialized; a concurrent pair of creates can land one row
// over quota, which the product tolerates.
func (s *service) Create(ctx context.Context, shopID uuid.UUID, input CreateFlowerInput) (*models.Flower, error) {
	if shopID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop id required")
	}
	if input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	if input.Availability != nil && !input.Availability.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid availability")
	}

	shop, err := s.shops.GetByID(ctx, shopID)
	if err != nil {
		return nil, err
	}
	plan, err := s.plans.GetByID(ctx, shop.PlanID)
	if err != nil {
		return nil, err
	}

	if !plan.Unlimited() {
		current, err := s.repo.CountByShop(ctx, shopID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count bouquets")
		}
		if current >= int64(plan.MaxBouquets) {
			return nil, pkgerrors.New(pkgerrors.CodeBouquetLimit, "bouquet limit reached for current plan").
				WithDetails(QuotaDetails{Limit: plan.MaxBouquets, Current: current})
		}
	}

	availability := enums.FlowerAvailabilityInStock
	if input.Availability != nil {
		availability = *input.Availability
	}

	flower := &models.Flower{
		ShopID:       shopID,
		Name:         input.Name,
		Description:  input.Description,
		Price:        input.Price,
		Availability: availability,
		ImageURL:     input.ImageURL,
	}
	if err := s.repo.Create(ctx, flower); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create bouquet")
	}
	return flower, nil
}

func (s *service) List(ctx context.Context, shopID uuid.UUID) ([]models.Flower, error) {
	if shopID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop id required")
	}
	flowers, err := s.repo.List(ctx, shopID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list bouquets")
	}
	return flowers, nil
}

func (s *service) Get(ctx context.Context, shopID, id uuid.UUID) (*models.Flower, error) {
	if shopID == uuid.Nil || id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop id and bouquet id required")
	}
	return s.repo.Get(ctx, shopID, id)
}

func (s *service) Update(ctx context.Context, shopID, id uuid.UUID, input UpdateFlowerInput) (*models.Flower, error) {
	if shopID == uuid.Nil || id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop id and bouquet id required")
	}
	if input.Price != nil && input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	if input.Availability != nil && !input.Availability.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid availability")
	}

	flower, err := s.repo.Get(ctx, shopID, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		flower.Name = *input.Name
	}
	if input.Description != nil {
		flower.Description = input.Description
	}
	if input.Price != nil {
		flower.Price = *input.Price
	}
	if input.Availability != nil {
		flower.Availability = *input.Availability
	}
	if input.ImageURL != nil {
		flower.ImageURL = input.ImageURL
	}

	if err := s.repo.Update(ctx, flower); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update bouquet")
	}
	return flower, nil
}

func (s *service) Delete(ctx context.Context, shopID, id uuid.UUID) error {
	if shopID == uuid.Nil || id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "shop id and bouquet id required")
	}
	return s.repo.Delete(ctx, shopID, id)
}
