package inventory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bloomstack/bloomstack-backend/pkg/db/models"
	pkgerrors "github.com/bloomstack/bloomstack-backend/pkg/errors"
)

// Repository exposes persistence helpers for stock flowers and wrappings.
// Every query is scoped by shop_id so cross-tenant rows surface as missing.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateStockFlower(ctx context.Context, flower *models.StockFlower) error
	ListStockFlowers(ctx context.Context, shopID uuid.UUID) ([]models.StockFlower, error)
	ListAvailableStockFlowers(ctx context.Context, shopID uuid.UUID) ([]models.StockFlower, error)
	GetStockFlower(ctx context.Context, shopID, id uuid.UUID) (*models.StockFlower, error)
	GetStockFlowers(ctx context.Context, shopID uuid.UUID, ids []uuid.UUID) ([]models.StockFlower, error)
	DeleteStockFlower(ctx context.Context, shopID, id uuid.UUID) error
	AdjustStock(ctx context.Context, shopID, id uuid.UUID, delta int) (int, error)

	CreateWrapping(ctx context.Context, wrapping *models.WrappingOption) error
	ListWrappings(ctx context.Context, shopID uuid.UUID) ([]models.WrappingOption, error)
	ListAvailableWrappings(ctx context.Context, shopID uuid.UUID) ([]models.WrappingOption, error)
	GetWrapping(ctx context.Context, shopID, id uuid.UUID) (*models.WrappingOption, error)
	UpdateWrapping(ctx context.Context, wrapping *models.WrappingOption) error
	DeleteWrapping(ctx context.Context, shopID, id uuid.UUID) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns an inventory repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) CreateStockFlower(ctx context.Context, flower *models.StockFlower) error {
	return r.db.WithContext(ctx).Create(flower).Error
}

func (r *repositoryImpl) ListStockFlowers(ctx context.Context, shopID uuid.UUID) ([]models.StockFlower, error) {
	var flowers []models.StockFlower
	if err := r.db.WithContext(ctx).
		Where("shop_id = ?", shopID).
		Order("name ASC").
		Find(&flowers).Error; err != nil {
		return nil, err
	}
	return flowers, nil
}

func (r *repositoryImpl) ListAvailableStockFlowers(ctx context.Context, shopID uuid.UUID) ([]models.StockFlower, error) {
	var flowers []models.StockFlower
	if err := r.db.WithContext(ctx).
		Where("shop_id = ? AND stock_count > 0", shopID).
		Order("name ASC").
		Find(&flowers).Error; err != nil {
		return nil, err
	}
	return flowers, nil
}

func (r *repositoryImpl) GetStockFlower(ctx context.Context, shopID, id uuid.UUID) (*models.StockFlower, error) {
	var flower models.StockFlower
	if err := r.db.WithContext(ctx).
		First(&flower, "id = ? AND shop_id = ?", id, shopID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "stock flower not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "get stock flower")
	}
	return &flower, nil
}

func (r *repositoryImpl) GetStockFlowers(ctx context.Context, shopID uuid.UUID, ids []uuid.UUID) ([]models.StockFlower, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var flowers []models.StockFlower
	if err := r.db.WithContext(ctx).
		Where("shop_id = ? AND id IN ?", shopID, ids).
		Find(&flowers).Error; err != nil {
		return nil, err
	}
	return flowers, nil
}

func (r *repositoryImpl) DeleteStockFlower(ctx context.Context, shopID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND shop_id = ?", id, shopID).
		Delete(&models.StockFlower{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "stock flower not found")
	}
	return nil
}

// AdjustStock applies the delta with a floor of zero in a single guarded
// UPDATE, then reads the resulting count.
func (r *repositoryImpl) AdjustStock(ctx context.Context, shopID, id uuid.UUID, delta int) (int, error) {
	result := r.db.WithContext(ctx).
		Model(&models.StockFlower{}).
		Where("id = ? AND shop_id = ?", id, shopID).
		UpdateColumn("stock_count", gorm.Expr("CASE WHEN stock_count + ? < 0 THEN 0 ELSE stock_count + ? END", delta, delta))
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeNotFound, "stock flower not found")
	}

	var flower models.StockFlower
	if err := r.db.WithContext(ctx).
		Select("stock_count").
		First(&flower, "id = ? AND shop_id = ?", id, shopID).Error; err != nil {
		return 0, err
	}
	return flower.StockCount, nil
}

func (r *repositoryImpl) CreateWrapping(ctx context.Context, wrapping *models.WrappingOption) error {
	return r.db.WithContext(ctx).Create(wrapping).Error
}

func (r *repositoryImpl) ListWrappings(ctx context.Context, shopID uuid.UUID) ([]models.WrappingOption, error) {
	var wrappings []models.WrappingOption
	if err := r.db.WithContext(ctx).
		Where("shop_id = ?", shopID).
		Order("name ASC").
		Find(&wrappings).Error; err != nil {
		return nil, err
	}
	return wrappings, nil
}

func (r *repositoryImpl) ListAvailableWrappings(ctx context.Context, shopID uuid.UUID) ([]models.WrappingOption, error) {
	var wrappings []models.WrappingOption
	if err := r.db.WithContext(ctx).
		Where("shop_id = ? AND available", shopID).
		Order("name ASC").
		Find(&wrappings).Error; err != nil {
		return nil, err
	}
	return wrappings, nil
}

func (r *repositoryImpl) GetWrapping(ctx context.Context, shopID, id uuid.UUID) (*models.WrappingOption, error) {
	var wrapping models.WrappingOption
	if err := r.db.WithContext(ctx).
		First(&wrapping, "id = ? AND shop_id = ?", id, shopID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "wrapping option not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "get wrapping option")
	}
	return &wrapping, nil
}

func (r *repositoryImpl) UpdateWrapping(ctx context.Context, wrapping *models.WrappingOption) error {
	return r.db.WithContext(ctx).Save(wrapping).Error
}

func (r *repositoryImpl) DeleteWrapping(ctx context.Context, shopID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND shop_id = ?", id, shopID).
		Delete(&models.WrappingOption{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "wrapping option not found")
	}
	return nil
}
