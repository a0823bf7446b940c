package notifications

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bloomstack/bloomstack-backend/pkg/db/models"
	pkgerrors "github.com/bloomstack/bloomstack-backend/pkg/errors"
	"github.com/bloomstack/bloomstack-backend/pkg/pagination"
)

// Repository exposes persistence helpers for the in-app notification feed.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, notification *models.Notification) error
	List(ctx context.Context, params ListParams) ([]models.Notification, *pagination.Cursor, error)
	MarkRead(ctx context.Context, shopID, id uuid.UUID) error
	MarkAllRead(ctx context.Context, shopID uuid.UUID) (int64, error)
	CountUnread(ctx context.Context, shopID uuid.UUID) (int64, error)
}

// ListParams carries feed filters.
type ListParams struct {
	ShopID     uuid.UUID
	Limit      int
	Cursor     *pagination.Cursor
	UnreadOnly bool
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a notifications repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *repositoryImpl) List(ctx context.Context, params ListParams) ([]models.Notification, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).Model(&models.Notification{}).Where("shop_id = ?", params.ShopID)
	if params.UnreadOnly {
		query = query.Where("read_at IS NULL")
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var items []models.Notification
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&items).Error; err != nil {
		return nil, nil, err
	}

	if len(items) > normalized {
		next := items[normalized]
		items = items[:normalized]
		return items, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return items, nil, nil
}

// MarkRead is idempotent; re-reading an already-read row keeps the original
// read_at.
func (r *repositoryImpl) MarkRead(ctx context.Context, shopID, id uuid.UUID) error {
	var notification models.Notification
	if err := r.db.WithContext(ctx).
		First(&notification, "id = ? AND shop_id = ?", id, shopID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "get notification")
	}
	if notification.ReadAt != nil {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND shop_id = ? AND read_at IS NULL", id, shopID).
		UpdateColumn("read_at", time.Now().UTC()).Error
}

func (r *repositoryImpl) MarkAllRead(ctx context.Context, shopID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("shop_id = ? AND read_at IS NULL", shopID).
		UpdateColumn("read_at", time.Now().UTC())
	return result.RowsAffected, result.Error
}

func (r *repositoryImpl) CountUnread(ctx context.Context, shopID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("shop_id = ? AND read_at IS NULL", shopID).
		Count(&count).Error
	return count, err
}
