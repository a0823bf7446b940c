package subscriptions

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/bloomstack/bloomstack-backend/internal/plans"
	"github.com/bloomstack/bloomstack-backend/internal/shops"
	"github.com/bloomstack/bloomstack-backend/pkg/db/models"
	"github.com/bloomstack/bloomstack-backend/pkg/enums"
	pkgerrors "github.com/bloomstack/bloomstack-backend/pkg/errors"
	"github.com/bloomstack/bloomstack-backend/pkg/logger"
)

// Dispatcher fans subscription lifecycle events out to the shop owner.
// Implementations must swallow delivery failures.
type Dispatcher interface {
	SubscriptionApproved(ctx context.Context, shop *models.Shop, plan *models.Plan, expiry *time.Time)
	SubscriptionExpiring(ctx context.Context, shop *models.Shop, expiry time.Time)
	SubscriptionExpired(ctx context.Context, shop *models.Shop)
}

// TxRunner runs a function inside a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// SubmitInput is the owner payload for a paid plan request. The card is
// never charged automatically; an operator reviews it by hand. Only the
// last four digits are persisted.
type SubmitInput struct {
	PlanID         uuid.UUID `json:"plan_id" validate:"required"`
	CardNumber     string    `json:"card_number" validate:"required,min=12,max=23"`
	CardType       string    `json:"card_type" validate:"required,max=32"`
	CardHolderName string    `json:"card_holder_name" validate:"required,max=120"`
}

// Status is the owner-facing view of the latest subscription.
type Status struct {
	Subscription *models.Subscription `json:"subscription"`
	Payment      *models.Payment      `json:"payment,omitempty"`
}

// SweepResult reports one expiry sweep run.
type SweepResult struct {
	Processed int `json:"processed"`
	Failed    int `json:"failed"`
}

// Service drives the manual-approval subscription lifecycle. Every status
// write that touches shop.plan_id goes through planTransition inside a
// single transaction.
type Service interface {
	Submit(ctx context.Context, shopID uuid.UUID, input SubmitInput) (*models.Subscription, error)
	Current(ctx context.Context, shopID uuid.UUID) (*Status, error)
	ListPendingPayments(ctx context.Context) ([]PendingPaymentRow, error)
	Approve(ctx context.Context, subscriptionID uuid.UUID) (*models.Subscription, error)
	ApproveByPayment(ctx context.Context, paymentID uuid.UUID) (*models.Subscription, error)
	Reject(ctx context.Context, subscriptionID uuid.UUID, notes *string) (*models.Subscription, error)
	RejectByPayment(ctx context.Context, paymentID uuid.UUID, notes *string) (*models.Subscription, error)
	Cancel(ctx context.Context, subscriptionID uuid.UUID) (*models.Subscription, error)
	Reactivate(ctx context.Context, subscriptionID uuid.UUID) (*models.Subscription, error)
	ExpirySweep(ctx context.Context) (SweepResult, error)
	WarningSweep(ctx context.Context) (int, error)
}

type service struct {
	repo       Repository
	shops      shops.Repository
	plans      plans.Repository
	dispatcher Dispatcher
	tx         TxRunner
	log        *logger.Logger
	warnWindow time.Duration
	now        func() time.Time
}

// NewService wires subscription dependencies. warnWindow bounds how far
// ahead the warning sweep looks.
func NewService(
	repo Repository,
	shopRepo shops.Repository,
	planRepo plans.Repository,
	dispatcher Dispatcher,
	tx TxRunner,
	log *logger.Logger,
	warnWindow time.Duration,
) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "subscriptions repository required")
	}
	if shopRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "shops repository required")
	}
	if planRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "plans repository required")
	}
	if dispatcher == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "dispatcher required")
	}
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	}
	if log == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	if warnWindow <= 0 {
		warnWindow = 7 * 24 * time.Hour
	}
	return &service{
		repo:       repo,
		shops:      shopRepo,
		plans:      planRepo,
		dispatcher: dispatcher,
		tx:         tx,
		log:        log,
		warnWindow: warnWindow,
		now:        time.Now,
	}, nil
}

func (s *service) Submit(ctx context.Context, shopID uuid.UUID, input SubmitInput) (*models.Subscription, error) {
	if shopID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop id required")
	}
	last4, err := cardLast4(input.CardNumber)
	if err != nil {
		return nil, err
	}

	if _, err := s.shops.GetByID(ctx, shopID); err != nil {
		return nil, err
	}
	plan, err := s.plans.GetByID(ctx, input.PlanID)
	if err != nil {
		return nil, err
	}

	sub := &models.Subscription{
		ShopID: shopID,
		PlanID: plan.ID,
		Status: enums.SubscriptionStatusPending,
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreateSubscription(ctx, sub); err != nil {
			return err
		}
		return repo.CreatePayment(ctx, &models.Payment{
			SubscriptionID: sub.ID,
			CardLast4:      last4,
			CardType:       input.CardType,
			CardHolderName: input.CardHolderName,
			Amount:         plan.Price,
			Status:         enums.PaymentStatusPending,
		})
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "submit subscription")
	}
	return sub, nil
}

func (s *service) Current(ctx context.Context, shopID uuid.UUID) (*Status, error) {
	if shopID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop id required")
	}
	sub, err := s.repo.LatestByShop(ctx, shopID)
	if err != nil {
		return nil, err
	}
	status := &Status{Subscription: sub}
	if payment, err := s.repo.GetPaymentBySubscription(ctx, sub.ID); err == nil {
		status.Payment = payment
	}
	return status, nil
}

func (s *service) ListPendingPayments(ctx context.Context) ([]PendingPaymentRow, error) {
	rows, err := s.repo.ListPendingPayments(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list pending payments")
	}
	return rows, nil
}

// Approve activates a pending subscription: the payment is marked approved,
// the subscription becomes active with a fresh expiry, and the shop moves
// onto the paid plan, all in one transaction. The approval notification
// goes out only after commit.
func (s *service) Approve(ctx context.Context, subscriptionID uuid.UUID) (*models.Subscription, error) {
	sub, err := s.repo.GetSubscription(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	if !sub.Status.CanTransitionTo(enums.SubscriptionStatusActive) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot approve a %s subscription", sub.Status))
	}
	plan, err := s.plans.GetByID(ctx, sub.PlanID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	start := now
	expiry := expiryFor(plan, now)

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		payment, err := repo.GetPaymentBySubscription(ctx, sub.ID)
		if err != nil {
			return err
		}
		payment.Status = enums.PaymentStatusApproved
		payment.ApprovedAt = &now
		if err := repo.UpdatePayment(ctx, payment); err != nil {
			return err
		}

		sub.StartDate = &start
		sub.ExpiryDate = expiry
		return s.planTransition(ctx, tx, sub, enums.SubscriptionStatusActive, &sub.PlanID)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "approve subscription")
	}

	if shop, shopErr := s.shops.GetByID(ctx, sub.ShopID); shopErr == nil {
		s.dispatcher.SubscriptionApproved(ctx, shop, plan, sub.ExpiryDate)
	}
	return sub, nil
}

// ApproveByPayment resolves the admin review-queue payment id and approves
// its subscription.
func (s *service) ApproveByPayment(ctx context.Context, paymentID uuid.UUID) (*models.Subscription, error) {
	payment, err := s.repo.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	return s.Approve(ctx, payment.SubscriptionID)
}

// RejectByPayment resolves the admin review-queue payment id and rejects
// its subscription.
func (s *service) RejectByPayment(ctx context.Context, paymentID uuid.UUID, notes *string) (*models.Subscription, error) {
	payment, err := s.repo.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	return s.Reject(ctx, payment.SubscriptionID, notes)
}

// Reject marks the payment rejected and cancels the subscription. The shop
// keeps whatever plan it already had.
func (s *service) Reject(ctx context.Context, subscriptionID uuid.UUID, notes *string) (*models.Subscription, error) {
	sub, err := s.repo.GetSubscription(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	if sub.Status != enums.SubscriptionStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot reject a %s subscription", sub.Status))
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		payment, err := repo.GetPaymentBySubscription(ctx, sub.ID)
		if err != nil {
			return err
		}
		payment.Status = enums.PaymentStatusRejected
		payment.Notes = notes
		if err := repo.UpdatePayment(ctx, payment); err != nil {
			return err
		}
		return s.planTransition(ctx, tx, sub, enums.SubscriptionStatusCancelled, nil)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reject subscription")
	}
	return sub, nil
}

// Cancel ends an active subscription and downgrades the shop to the free
// plan.
func (s *service) Cancel(ctx context.Context, subscriptionID uuid.UUID) (*models.Subscription, error) {
	sub, err := s.repo.GetSubscription(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	if sub.Status != enums.SubscriptionStatusActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot cancel a %s subscription", sub.Status))
	}
	free, err := s.plans.GetBySlug(ctx, enums.PlanSlugFree)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.planTransition(ctx, tx, sub, enums.SubscriptionStatusCancelled, &free.ID)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel subscription")
	}
	return sub, nil
}

// Reactivate restarts an expired or still-pending subscription with a fresh
// term. Moving out of expired is an administrative override; cancelled rows
// stay closed and require a new submission.
func (s *service) Reactivate(ctx context.Context, subscriptionID uuid.UUID) (*models.Subscription, error) {
	sub, err := s.repo.GetSubscription(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	if sub.Status == enums.SubscriptionStatusActive || sub.Status == enums.SubscriptionStatusCancelled {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot reactivate a %s subscription", sub.Status))
	}
	plan, err := s.plans.GetByID(ctx, sub.PlanID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	sub.StartDate = &now
	sub.ExpiryDate = expiryFor(plan, now)

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.planTransition(ctx, tx, sub, enums.SubscriptionStatusActive, &sub.PlanID)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reactivate subscription")
	}
	return sub, nil
}

// ExpirySweep expires every active subscription past its expiry date and
// downgrades the shop to the free plan, one transaction per row so a bad
// row never blocks the rest. Running it twice is a no-op the second time.
func (s *service) ExpirySweep(ctx context.Context) (SweepResult, error) {
	free, err := s.plans.GetBySlug(ctx, enums.PlanSlugFree)
	if err != nil {
		return SweepResult{}, err
	}
	expired, err := s.repo.ListExpired(ctx, s.now().UTC())
	if err != nil {
		return SweepResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list expired subscriptions")
	}

	var result SweepResult
	var sweepErr error
	for i := range expired {
		sub := expired[i]
		err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			return s.planTransition(ctx, tx, &sub, enums.SubscriptionStatusExpired, &free.ID)
		})
		if err != nil {
			result.Failed++
			sweepErr = multierr.Append(sweepErr, fmt.Errorf("expire subscription %s: %w", sub.ID, err))
			continue
		}
		result.Processed++
		if shop, shopErr := s.shops.GetByID(ctx, sub.ShopID); shopErr == nil {
			s.dispatcher.SubscriptionExpired(ctx, shop)
		}
	}
	return result, sweepErr
}

// WarningSweep notifies owners whose active subscription expires within the
// warning window. No state changes.
func (s *service) WarningSweep(ctx context.Context) (int, error) {
	now := s.now().UTC()
	expiring, err := s.repo.ListExpiring(ctx, now, now.Add(s.warnWindow))
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list expiring subscriptions")
	}

	warned := 0
	for _, sub := range expiring {
		if sub.ExpiryDate == nil {
			continue
		}
		shop, err := s.shops.GetByID(ctx, sub.ShopID)
		if err != nil {
			s.log.Error(ctx, "warning sweep shop lookup failed", err)
			continue
		}
		s.dispatcher.SubscriptionExpiring(ctx, shop, *sub.ExpiryDate)
		warned++
	}
	return warned, nil
}

// planTransition is the single place a subscription status and the
// denormalized shop.plan_id are written, always inside the caller's
// transaction. A nil planID leaves the shop untouched.
func (s *service) planTransition(ctx context.Context, tx *gorm.DB, sub *models.Subscription, status enums.SubscriptionStatus, planID *uuid.UUID) error {
	repo := s.repo.WithTx(tx)
	sub.Status = status
	if err := repo.UpdateSubscription(ctx, sub); err != nil {
		return err
	}
	if planID == nil {
		return nil
	}
	return s.shops.WithTx(tx).SetPlan(ctx, sub.ShopID, *planID)
}

func expiryFor(plan *models.Plan, from time.Time) *time.Time {
	if plan.DurationDays <= 0 {
		return nil
	}
	expiry := from.AddDate(0, 0, plan.DurationDays)
	return &expiry
}

func cardLast4(cardNumber string) (string, error) {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, cardNumber)
	if len(digits) < 12 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "card number looks too short")
	}
	return digits[len(digits)-4:], nil
}
