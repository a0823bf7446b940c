package shops

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/bloomstack/bloomstack-backend/internal/plans"
	"github.com/bloomstack/bloomstack-backend/pkg/db/models"
	pkgerrors "github.com/bloomstack/bloomstack-backend/pkg/errors"
)

// Service defines shop profile and storefront operations.
type Service interface {
	GetProfile(ctx context.Context, shopID uuid.UUID) (*models.Shop, error)
	UpdateProfile(ctx context.Context, shopID uuid.UUID, input UpdateProfileInput) (*models.Shop, error)
	Storefront(ctx context.Context, slug string) (*StorefrontView, error)
	ConnectTelegram(ctx context.Context, shopID uuid.UUID, chatID int64) error
	DisconnectTelegram(ctx context.Context, shopID uuid.UUID) error
	ListForAdmin(ctx context.Context, limit, offset int) (*AdminShopList, error)
	SetSuspended(ctx context.Context, shopID uuid.UUID, suspended bool) error
}

type service struct {
	repo  Repository
	plans plans.Repository
}

// NewService wires shop dependencies.
func NewService(repo Repository, planRepo plans.Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "shops repository required")
	}
	if planRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "plans repository required")
	}
	return &service{repo: repo, plans: planRepo}, nil
}

func (s *service) GetProfile(ctx context.Context, shopID uuid.UUID) (*models.Shop, error) {
	if shopID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop id required")
	}
	return s.repo.GetByID(ctx, shopID)
}

func (s *service) UpdateProfile(ctx context.Context, shopID uuid.UUID, input UpdateProfileInput) (*models.Shop, error) {
	if shopID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop id required")
	}
	if input.DefaultDeliveryMethod != nil && !input.DefaultDeliveryMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid delivery method")
	}

	shop, err := s.repo.GetByID(ctx, shopID)
	if err != nil {
		return nil, err
	}

	input.ApplyTo(shop)
	if err := s.repo.Update(ctx, shop); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update shop profile")
	}
	return shop, nil
}

// Storefront returns the public view by slug. Suspended shops are
// indistinguishable from missing ones.
func (s *service) Storefront(ctx context.Context, slug string) (*StorefrontView, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop slug required")
	}

	shop, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if shop.Suspended {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shop not found")
	}

	plan, err := s.plans.GetByID(ctx, shop.PlanID)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeNotFound {
			// orphaned plan reference, fall back to the bare view
			return NewStorefrontView(shop, nil), nil
		}
		return nil, err
	}
	return NewStorefrontView(shop, plan), nil
}

func (s *service) ConnectTelegram(ctx context.Context, shopID uuid.UUID, chatID int64) error {
	if shopID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "shop id required")
	}
	if chatID == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "chat id required")
	}
	return s.repo.SetTelegramChat(ctx, shopID, &chatID)
}

func (s *service) DisconnectTelegram(ctx context.Context, shopID uuid.UUID) error {
	if shopID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "shop id required")
	}
	return s.repo.SetTelegramChat(ctx, shopID, nil)
}

func (s *service) ListForAdmin(ctx context.Context, limit, offset int) (*AdminShopList, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}
	items, total, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list shops")
	}
	return &AdminShopList{Items: items, Total: total}, nil
}

func (s *service) SetSuspended(ctx context.Context, shopID uuid.UUID, suspended bool) error {
	if shopID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "shop id required")
	}
	return s.repo.SetSuspended(ctx, shopID, suspended)
}

// Slugify turns a shop name into a url-safe slug candidate.
func Slugify(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	lastDash := true
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}
