package notifications

import (
	"context"

	"github.com/google/uuid"

	"github.com/bloomstack/bloomstack-backend/pkg/db/models"
	pkgerrors "github.com/bloomstack/bloomstack-backend/pkg/errors"
	"github.com/bloomstack/bloomstack-backend/pkg/pagination"
)

// ListInput carries owner-facing feed filters.
type ListInput struct {
	Limit      int
	Cursor     *pagination.Cursor
	UnreadOnly bool
}

// Service defines the in-app feed surface.
type Service interface {
	List(ctx context.Context, shopID uuid.UUID, input ListInput) ([]models.Notification, *pagination.Cursor, error)
	MarkRead(ctx context.Context, shopID, id uuid.UUID) error
	MarkAllRead(ctx context.Context, shopID uuid.UUID) (int64, error)
	UnreadCount(ctx context.Context, shopID uuid.UUID) (int64, error)
}

type service struct {
	repo Repository
}

// NewService wires the feed dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, shopID uuid.UUID, input ListInput) ([]models.Notification, *pagination.Cursor, error) {
	if shopID == uuid.Nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "shop id required")
	}
	items, next, err := s.repo.List(ctx, ListParams{
		ShopID:     shopID,
		Limit:      input.Limit,
		Cursor:     input.Cursor,
		UnreadOnly: input.UnreadOnly,
	})
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}
	return items, next, nil
}

func (s *service) MarkRead(ctx context.Context, shopID, id uuid.UUID) error {
	if shopID == uuid.Nil || id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "shop id and notification id required")
	}
	return s.repo.MarkRead(ctx, shopID, id)
}

func (s *service) MarkAllRead(ctx context.Context, shopID uuid.UUID) (int64, error) {
	if shopID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "shop id required")
	}
	count, err := s.repo.MarkAllRead(ctx, shopID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark all read")
	}
	return count, nil
}

func (s *service) UnreadCount(ctx context.Context, shopID uuid.UUID) (int64, error) {
	if shopID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "shop id required")
	}
	count, err := s.repo.CountUnread(ctx, shopID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count unread")
	}
	return count, nil
}
