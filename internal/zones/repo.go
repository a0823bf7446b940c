package zones

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bloomstack/bloomstack-backend/pkg/db/models"
	pkgerrors "github.com/bloomstack/bloomstack-backend/pkg/errors"
)

// Repository exposes persistence helpers for delivery zones.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, zone *models.DeliveryZone) error
	List(ctx context.Context, shopID uuid.UUID) ([]models.DeliveryZone, error)
	ListActive(ctx context.Context, shopID uuid.UUID) ([]models.DeliveryZone, error)
	Get(ctx context.Context, shopID, id uuid.UUID) (*models.DeliveryZone, error)
	Update(ctx context.Context, zone *models.DeliveryZone) error
	Delete(ctx context.Context, shopID, id uuid.UUID) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a zones repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, zone *models.DeliveryZone) error {
	return r.db.WithContext(ctx).Create(zone).Error
}

func (r *repositoryImpl) List(ctx context.Context, shopID uuid.UUID) ([]models.DeliveryZone, error) {
	var zones []models.DeliveryZone
	if err := r.db.WithContext(ctx).
		Where("shop_id = ?", shopID).
		Order("sort_order ASC, name ASC").
		Find(&zones).Error; err != nil {
		return nil, err
	}
	return zones, nil
}

func (r *repositoryImpl) ListActive(ctx context.Context, shopID uuid.UUID) ([]models.DeliveryZone, error) {
	var zones []models.DeliveryZone
	if err := r.db.WithContext(ctx).
		Where("shop_id = ? AND active", shopID).
		Order("sort_order ASC, name ASC").
		Find(&zones).Error; err != nil {
		return nil, err
	}
	return zones, nil
}

func (r *repositoryImpl) Get(ctx context.Context, shopID, id uuid.UUID) (*models.DeliveryZone, error) {
	var zone models.DeliveryZone
	if err := r.db.WithContext(ctx).
		First(&zone, "id = ? AND shop_id = ?", id, shopID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "delivery zone not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "get delivery zone")
	}
	return &zone, nil
}

func (r *repositoryImpl) Update(ctx context.Context, zone *models.DeliveryZone) error {
	return r.db.WithContext(ctx).Save(zone).Error
}

func (r *repositoryImpl) Delete(ctx context.Context, shopID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND shop_id = ?", id, shopID).
		Delete(&models.DeliveryZone{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "delivery zone not found")
	}
	return nil
}
