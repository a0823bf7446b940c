package shops

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bloomstack/bloomstack-backend/pkg/db/models"
	pkgerrors "github.com/bloomstack/bloomstack-backend/pkg/errors"
)

// Repository exposes persistence helpers for shops.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, shop *models.Shop) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Shop, error)
	GetBySlug(ctx context.Context, slug string) (*models.Shop, error)
	GetByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Shop, error)
	GetByTelegramChat(ctx context.Context, chatID int64) (*models.Shop, error)
	Update(ctx context.Context, shop *models.Shop) error
	SetPlan(ctx context.Context, shopID, planID uuid.UUID) error
	SetTelegramChat(ctx context.Context, shopID uuid.UUID, chatID *int64) error
	SetSuspended(ctx context.Context, shopID uuid.UUID, suspended bool) error
	List(ctx context.Context, limit, offset int) ([]models.Shop, int64, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a shops repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, shop *models.Shop) error {
	return r.db.WithContext(ctx).Create(shop).Error
}

func (r *repositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.Shop, error) {
	var shop models.Shop
	if err := r.db.WithContext(ctx).First(&shop, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shop not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "get shop")
	}
	return &shop, nil
}

func (r *repositoryImpl) GetBySlug(ctx context.Context, slug string) (*models.Shop, error) {
	var shop models.Shop
	if err := r.db.WithContext(ctx).First(&shop, "slug = ?", slug).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shop not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "get shop by slug")
	}
	return &shop, nil
}

func (r *repositoryImpl) GetByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Shop, error) {
	var shop models.Shop
	if err := r.db.WithContext(ctx).First(&shop, "owner_id = ?", ownerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shop not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "get shop by owner")
	}
	return &shop, nil
}

func (r *repositoryImpl) GetByTelegramChat(ctx context.Context, chatID int64) (*models.Shop, error) {
	var shop models.Shop
	if err := r.db.WithContext(ctx).First(&shop, "telegram_chat_id = ?", chatID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shop not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "get shop by telegram chat")
	}
	return &shop, nil
}

func (r *repositoryImpl) Update(ctx context.Context, shop *models.Shop) error {
	return r.db.WithContext(ctx).Save(shop).Error
}

func (r *repositoryImpl) SetPlan(ctx context.Context, shopID, planID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&models.Shop{}).
		Where("id = ?", shopID).
		UpdateColumn("plan_id", planID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "shop not found")
	}
	return nil
}

func (r *repositoryImpl) SetTelegramChat(ctx context.Context, shopID uuid.UUID, chatID *int64) error {
	result := r.db.WithContext(ctx).
		Model(&models.Shop{}).
		Where("id = ?", shopID).
		UpdateColumn("telegram_chat_id", chatID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "shop not found")
	}
	return nil
}

func (r *repositoryImpl) SetSuspended(ctx context.Context, shopID uuid.UUID, suspended bool) error {
	result := r.db.WithContext(ctx).
		Model(&models.Shop{}).
		Where("id = ?", shopID).
		UpdateColumn("suspended", suspended)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "shop not found")
	}
	return nil
}

func (r *repositoryImpl) List(ctx context.Context, limit, offset int) ([]models.Shop, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Shop{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var shops []models.Shop
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&shops).Error; err != nil {
		return nil, 0, err
	}
	return shops, total, nil
}

func (r *repositoryImpl) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Shop{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
