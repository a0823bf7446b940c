package subscriptions

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bloomstack/bloomstack-backend/pkg/db/models"
	"github.com/bloomstack/bloomstack-backend/pkg/enums"
	pkgerrors "github.com/bloomstack/bloomstack-backend/pkg/errors"
)

// PendingPaymentRow is the admin review-queue projection.
type PendingPaymentRow struct {
	Payment      models.Payment      `json:"payment"`
	Subscription models.Subscription `json:"subscription"`
	ShopName     string              `json:"shop_name"`
	PlanName     string              `json:"plan_name"`
}

// Repository exposes persistence helpers for subscriptions and their
// payments.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateSubscription(ctx context.Context, sub *models.Subscription) error
	CreatePayment(ctx context.Context, payment *models.Payment) error
	GetSubscription(ctx context.Context, id uuid.UUID) (*models.Subscription, error)
	GetPayment(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	GetPaymentBySubscription(ctx context.Context, subscriptionID uuid.UUID) (*models.Payment, error)
	LatestByShop(ctx context.Context, shopID uuid.UUID) (*models.Subscription, error)
	UpdateSubscription(ctx context.Context, sub *models.Subscription) error
	UpdatePayment(ctx context.Context, payment *models.Payment) error
	ListPendingPayments(ctx context.Context) ([]PendingPaymentRow, error)
	ListExpired(ctx context.Context, now time.Time) ([]models.Subscription, error)
	ListExpiring(ctx context.Context, now, until time.Time) ([]models.Subscription, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a subscriptions repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) CreateSubscription(ctx context.Context, sub *models.Subscription) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

func (r *repositoryImpl) CreatePayment(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *repositoryImpl) GetSubscription(ctx context.Context, id uuid.UUID) (*models.Subscription, error) {
	var sub models.Subscription
	if err := r.db.WithContext(ctx).First(&sub, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "subscription not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "get subscription")
	}
	return &sub, nil
}

func (r *repositoryImpl) GetPayment(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.WithContext(ctx).First(&payment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "get payment")
	}
	return &payment, nil
}

func (r *repositoryImpl) GetPaymentBySubscription(ctx context.Context, subscriptionID uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.WithContext(ctx).
		First(&payment, "subscription_id = ?", subscriptionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "get payment")
	}
	return &payment, nil
}

func (r *repositoryImpl) LatestByShop(ctx context.Context, shopID uuid.UUID) (*models.Subscription, error) {
	var sub models.Subscription
	if err := r.db.WithContext(ctx).
		Where("shop_id = ?", shopID).
		Order("created_at DESC").
		First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "subscription not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "get latest subscription")
	}
	return &sub, nil
}

func (r *repositoryImpl) UpdateSubscription(ctx context.Context, sub *models.Subscription) error {
	return r.db.WithContext(ctx).Save(sub).Error
}

func (r *repositoryImpl) UpdatePayment(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Save(payment).Error
}

func (r *repositoryImpl) ListPendingPayments(ctx context.Context) ([]PendingPaymentRow, error) {
	var payments []models.Payment
	if err := r.db.WithContext(ctx).
		Where("status = ?", enums.PaymentStatusPending).
		Order("created_at ASC").
		Find(&payments).Error; err != nil {
		return nil, err
	}

	rows := make([]PendingPaymentRow, 0, len(payments))
	for _, payment := range payments {
		var sub models.Subscription
		if err := r.db.WithContext(ctx).
			First(&sub, "id = ?", payment.SubscriptionID).Error; err != nil {
			return nil, err
		}
		row := PendingPaymentRow{Payment: payment, Subscription: sub}

		var shop models.Shop
		if err := r.db.WithContext(ctx).
			Select("name").
			First(&shop, "id = ?", sub.ShopID).Error; err == nil {
			row.ShopName = shop.Name
		}
		var plan models.Plan
		if err := r.db.WithContext(ctx).
			Select("name").
			First(&plan, "id = ?", sub.PlanID).Error; err == nil {
			row.PlanName = plan.Name
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (r *repositoryImpl) ListExpired(ctx context.Context, now time.Time) ([]models.Subscription, error) {
	var subs []models.Subscription
	if err := r.db.WithContext(ctx).
		Where("status = ? AND expiry_date IS NOT NULL AND expiry_date <= ?", enums.SubscriptionStatusActive, now).
		Order("expiry_date ASC").
		Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}

func (r *repositoryImpl) ListExpiring(ctx context.Context, now, until time.Time) ([]models.Subscription, error) {
	var subs []models.Subscription
	if err := r.db.WithContext(ctx).
		Where("status = ? AND expiry_date IS NOT NULL AND expiry_date > ? AND expiry_date <= ?", enums.SubscriptionStatusActive, now, until).
		Order("expiry_date ASC").
		Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}
