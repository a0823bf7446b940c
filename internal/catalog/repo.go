package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bloomstack/bloomstack-backend/pkg/db/models"
	pkgerrors "github.com/bloomstack/bloomstack-backend/pkg/errors"
)

// Repository exposes persistence helpers for catalog bouquets.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, flower *models.Flower) error
	List(ctx context.Context, shopID uuid.UUID) ([]models.Flower, error)
	Get(ctx context.Context, shopID, id uuid.UUID) (*models.Flower, error)
	Update(ctx context.Context, flower *models.Flower) error
	Delete(ctx context.Context, shopID, id uuid.UUID) error
	CountByShop(ctx context.Context, shopID uuid.UUID) (int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a catalog repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, flower *models.Flower) error {
	return r.db.WithContext(ctx).Create(flower).Error
}

func (r *repositoryImpl) List(ctx context.Context, shopID uuid.UUID) ([]models.Flower, error) {
	var flowers []models.Flower
	if err := r.db.WithContext(ctx).
		Where("shop_id = ?", shopID).
		Order("created_at DESC").
		Find(&flowers).Error; err != nil {
		return nil, err
	}
	return flowers, nil
}

func (r *repositoryImpl) Get(ctx context.Context, shopID, id uuid.UUID) (*models.Flower, error) {
	var flower models.Flower
	if err := r.db.WithContext(ctx).
		First(&flower, "id = ? AND shop_id = ?", id, shopID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "bouquet not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "get bouquet")
	}
	return &flower, nil
}

func (r *repositoryImpl) Update(ctx context.Context, flower *models.Flower) error {
	return r.db.WithContext(ctx).Save(flower).Error
}

func (r *repositoryImpl) Delete(ctx context.Context, shopID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND shop_id = ?", id, shopID).
		Delete(&models.Flower{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "bouquet not found")
	}
	return nil
}

func (r *repositoryImpl) CountByShop(ctx context.Context, shopID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Flower{}).
		Where("shop_id = ?", shopID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
