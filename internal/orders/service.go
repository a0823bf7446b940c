package orders

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/bloomstack/bloomstack-backend/internal/shops"
	"github.com/bloomstack/bloomstack-backend/pkg/db/models"
	"github.com/bloomstack/bloomstack-backend/pkg/enums"
	pkgerrors "github.com/bloomstack/bloomstack-backend/pkg/errors"
	"github.com/bloomstack/bloomstack-backend/pkg/pagination"
)

// Dispatcher fans an order event out to the shop owner. Implementations
// must swallow delivery failures; an unreachable channel never fails the
// order mutation that triggered it.
type Dispatcher interface {
	OrderReceived(ctx context.Context, shop *models.Shop, order *models.Order)
	OrderStatusChanged(ctx context.Context, shop *models.Shop, order *models.Order, previous enums.OrderStatus)
}

// Service defines order ledger operations.
type Service interface {
	CreateInquiry(ctx context.Context, shopSlug string, input CreateInquiryInput) (*models.Order, error)
	List(ctx context.Context, shopID uuid.UUID, input ListInput) ([]models.Order, *pagination.Cursor, error)
	Get(ctx context.Context, shopID, id uuid.UUID) (*models.Order, error)
	UpdateStatus(ctx context.Context, shopID, id uuid.UUID, to enums.OrderStatus) (*models.Order, error)
}

type service struct {
	repo       Repository
	shops      shops.Repository
	dispatcher Dispatcher
}

// NewService wires order dependencies.
func NewService(repo Repository, shopRepo shops.Repository, dispatcher Dispatcher) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "orders repository required")
	}
	if shopRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "shops repository required")
	}
	if dispatcher == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "dispatcher required")
	}
	return &service{repo: repo, shops: shopRepo, dispatcher: dispatcher}, nil
}

// CreateInquiry records a plain inquiry order against the storefront
// identified by slug. Suspended storefronts do not accept orders.
func (s *service) CreateInquiry(ctx context.Context, shopSlug string, input CreateInquiryInput) (*models.Order, error) {
	shop, err := s.shops.GetBySlug(ctx, shopSlug)
	if err != nil {
		return nil, err
	}
	if shop.Suspended {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shop not found")
	}
	if !input.DeliveryMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid delivery method")
	}
	if input.DeliveryMethod == enums.DeliveryMethodDelivery && input.DeliveryAddress == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery address required for delivery orders")
	}

	order := &models.Order{
		ShopID:         shop.ID,
		CustomerName:   input.CustomerName,
		CustomerPhone:  input.CustomerPhone,
		CustomerEmail:  input.CustomerEmail,
		Message:        input.Message,
		OrderType:      enums.OrderTypeInquiry,
		DeliveryMethod: input.DeliveryMethod,
		Status:         enums.OrderStatusPending,
	}
	if input.DeliveryAddress != nil {
		raw, err := json.Marshal(input.DeliveryAddress)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "encode delivery address")
		}
		order.DeliveryAddress = raw
	}

	if err := s.repo.Create(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}

	s.dispatcher.OrderReceived(ctx, shop, order)
	return order, nil
}

func (s *service) List(ctx context.Context, shopID uuid.UUID, input ListInput) ([]models.Order, *pagination.Cursor, error) {
	if shopID == uuid.Nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "shop id required")
	}
	if input.Status != nil && !input.Status.IsValid() {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
	}
	items, next, err := s.repo.List(ctx, ListOrdersParams{
		ShopID: shopID,
		Limit:  input.Limit,
		Cursor: input.Cursor,
		Status: input.Status,
	})
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return items, next, nil
}

func (s *service) Get(ctx context.Context, shopID, id uuid.UUID) (*models.Order, error) {
	if shopID == uuid.Nil || id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop id and order id required")
	}
	return s.repo.Get(ctx, shopID, id)
}

// UpdateStatus moves an order through the ledger state machine. Invalid
// transitions are rejected before touching the row; the write itself is a
// compare-and-set so two racing updates cannot both apply.
func (s *service) UpdateStatus(ctx context.Context, shopID, id uuid.UUID, to enums.OrderStatus) (*models.Order, error) {
	if !to.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status")
	}

	order, err := s.repo.Get(ctx, shopID, id)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanTransitionTo(to) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot move order from %s to %s", order.Status, to))
	}

	previous := order.Status
	applied, err := s.repo.UpdateStatus(ctx, shopID, id, previous, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}
	if !applied {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order status changed concurrently")
	}
	order.Status = to

	if shop, shopErr := s.shops.GetByID(ctx, shopID); shopErr == nil {
		s.dispatcher.OrderStatusChanged(ctx, shop, order, previous)
	}
	return order, nil
}
