package plans

import (
	"context"

	"github.com/google/uuid"

	"github.com/bloomstack/bloomstack-backend/pkg/db/models"
	"github.com/bloomstack/bloomstack-backend/pkg/enums"
	pkgerrors "github.com/bloomstack/bloomstack-backend/pkg/errors"
)

// Service defines plan catalog reads.
type Service interface {
	List(ctx context.Context) ([]models.Plan, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Plan, error)
	GetBySlug(ctx context.Context, slug enums.PlanSlug) (*models.Plan, error)
	FreePlan(ctx context.Context) (*models.Plan, error)
}

type service struct {
	repo Repository
}

// NewService wires plan catalog dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "plans repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context) ([]models.Plan, error) {
	return s.repo.List(ctx)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Plan, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "plan id required")
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetBySlug(ctx context.Context, slug enums.PlanSlug) (*models.Plan, error) {
	if !slug.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid plan slug")
	}
	return s.repo.GetBySlug(ctx, slug)
}

// FreePlan returns the default downgrade target.
func (s *service) FreePlan(ctx context.Context) (*models.Plan, error) {
	return s.repo.GetBySlug(ctx, enums.PlanSlugFree)
}
