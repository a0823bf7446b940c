package inventory

import (
	"context"

	"github.com/google/uuid"

	"github.com/bloomstack/bloomstack-backend/pkg/db/models"
	pkgerrors "github.com/bloomstack/bloomstack-backend/pkg/errors"
)

// Service defines stock flower and wrapping option operations. Every call is
// scoped to the authenticated shop.
type Service interface {
	CreateStockFlower(ctx context.Context, shopID uuid.UUID, input CreateStockFlowerInput) (*models.StockFlower, error)
	ListStockFlowers(ctx context.Context, shopID uuid.UUID) ([]models.StockFlower, error)
	DeleteStockFlower(ctx context.Context, shopID, id uuid.UUID) error
	AdjustStock(ctx context.Context, shopID, id uuid.UUID, delta int) (int, error)

	CreateWrapping(ctx context.Context, shopID uuid.UUID, input CreateWrappingInput) (*models.WrappingOption, error)
	ListWrappings(ctx context.Context, shopID uuid.UUID) ([]models.WrappingOption, error)
	UpdateWrapping(ctx context.Context, shopID, id uuid.UUID, input UpdateWrappingInput) (*models.WrappingOption, error)
	DeleteWrapping(ctx context.Context, shopID, id uuid.UUID) error
}

type service struct {
	repo Repository
}

// NewService wires inventory dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "inventory repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) CreateStockFlower(ctx context.Context, shopID uuid.UUID, input CreateStockFlowerInput) (*models.StockFlower, error) {
	if shopID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop id required")
	}
	if input.PricePerStem.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price per stem cannot be negative")
	}
	if input.StockCount < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock count cannot be negative")
	}

	flower := &models.StockFlower{
		ShopID:       shopID,
		Name:         input.Name,
		Color:        input.Color,
		PricePerStem: input.PricePerStem,
		StockCount:   input.StockCount,
		ImageURL:     input.ImageURL,
	}
	if err := s.repo.CreateStockFlower(ctx, flower); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create stock flower")
	}
	return flower, nil
}

func (s *service) ListStockFlowers(ctx context.Context, shopID uuid.UUID) ([]models.StockFlower, error) {
	if shopID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop id required")
	}
	flowers, err := s.repo.ListStockFlowers(ctx, shopID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stock flowers")
	}
	return flowers, nil
}

func (s *service) DeleteStockFlower(ctx context.Context, shopID, id uuid.UUID) error {
	if shopID == uuid.Nil || id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "shop id and flower id required")
	}
	return s.repo.DeleteStockFlower(ctx, shopID, id)
}

// AdjustStock clamps the result at zero; a delta that would go negative
// leaves the count at zero rather than failing.
func (s *service) AdjustStock(ctx context.Context, shopID, id uuid.UUID, delta int) (int, error) {
	if shopID == uuid.Nil || id == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "shop id and flower id required")
	}
	if delta == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "delta cannot be zero")
	}
	count, err := s.repo.AdjustStock(ctx, shopID, id, delta)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return 0, err
		}
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "adjust stock")
	}
	return count, nil
}

func (s *service) CreateWrapping(ctx context.Context, shopID uuid.UUID, input CreateWrappingInput) (*models.WrappingOption, error) {
	if shopID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop id required")
	}
	if input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "wrapping price cannot be negative")
	}

	available := true
	if input.Available != nil {
		available = *input.Available
	}

	wrapping := &models.WrappingOption{
		ShopID:    shopID,
		Name:      input.Name,
		Price:     input.Price,
		Available: available,
	}
	if err := s.repo.CreateWrapping(ctx, wrapping); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create wrapping option")
	}
	return wrapping, nil
}

func (s *service) ListWrappings(ctx context.Context, shopID uuid.UUID) ([]models.WrappingOption, error) {
	if shopID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop id required")
	}
	wrappings, err := s.repo.ListWrappings(ctx, shopID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list wrapping options")
	}
	return wrappings, nil
}

func (s *service) UpdateWrapping(ctx context.Context, shopID, id uuid.UUID, input UpdateWrappingInput) (*models.WrappingOption, error) {
	if shopID == uuid.Nil || id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop id and wrapping id required")
	}
	if input.Price != nil && input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "wrapping price cannot be negative")
	}

	wrapping, err := s.repo.GetWrapping(ctx, shopID, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		wrapping.Name = *input.Name
	}
	if input.Price != nil {
		wrapping.Price = *input.Price
	}
	if input.Available != nil {
		wrapping.Available = *input.Available
	}

	if err := s.repo.UpdateWrapping(ctx, wrapping); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update wrapping option")
	}
	return wrapping, nil
}

func (s *service) DeleteWrapping(ctx context.Context, shopID, id uuid.UUID) error {
	if shopID == uuid.Nil || id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "shop id and wrapping id required")
	}
	return s.repo.DeleteWrapping(ctx, shopID, id)
}
