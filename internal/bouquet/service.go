package bouquet

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bloomstack/bloomstack-backend/internal/inventory"
	"github.com/bloomstack/bloomstack-backend/internal/orders"
	"github.com/bloomstack/bloomstack-backend/internal/shops"
	"github.com/bloomstack/bloomstack-backend/pkg/db/models"
	"github.com/bloomstack/bloomstack-backend/pkg/enums"
	pkgerrors "github.com/bloomstack/bloomstack-backend/pkg/errors"
)

// Service is the public bouquet composer surface.
type Service interface {
	ComposerData(ctx context.Context, shopSlug string) (*ComposerData, error)
	Submit(ctx context.Context, shopSlug string, input SubmitInput) (*models.Order, error)
}

type service struct {
	orders     orders.Repository
	shops      shops.Repository
	inventory  inventory.Repository
	dispatcher orders.Dispatcher
}

// NewService wires composer dependencies.
func NewService(orderRepo orders.Repository, shopRepo shops.Repository, inventoryRepo inventory.Repository, dispatcher orders.Dispatcher) (Service, error) {
	if orderRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "orders repository required")
	}
	if shopRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "shops repository required")
	}
	if inventoryRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "inventory repository required")
	}
	if dispatcher == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "dispatcher required")
	}
	return &service{
		orders:     orderRepo,
		shops:      shopRepo,
		inventory:  inventoryRepo,
		dispatcher: dispatcher,
	}, nil
}

// ComposerData returns stock flowers with stems on hand, available
// wrappings and the size tiers for the storefront identified by slug.
func (s *service) ComposerData(ctx context.Context, shopSlug string) (*ComposerData, error) {
	shop, err := s.visibleShop(ctx, shopSlug)
	if err != nil {
		return nil, err
	}

	flowers, err := s.inventory.ListAvailableStockFlowers(ctx, shop.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stock flowers")
	}
	wrappings, err := s.inventory.ListAvailableWrappings(ctx, shop.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list wrappings")
	}

	return &ComposerData{
		StockFlowers: flowers,
		Wrappings:    wrappings,
		Tiers:        Tiers(),
	}, nil
}

// Submit validates the composition against live inventory, re-derives the
// total server-side and records the order. The customer's quoted total is
// kept verbatim in the snapshot; when it disagrees with the server figure
// the snapshot is flagged for owner review instead of rejecting the order.
// Stock counts are not decremented here, the owner reconciles manually.
func (s *service) Submit(ctx context.Context, shopSlug string, input SubmitInput) (*models.Order, error) {
	shop, err := s.visibleShop(ctx, shopSlug)
	if err != nil {
		return nil, err
	}

	tier, err := TierFor(input.Size)
	if err != nil {
		return nil, err
	}
	if !input.DeliveryMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid delivery method")
	}
	if input.DeliveryMethod == enums.DeliveryMethodDelivery && input.DeliveryAddress == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery address required for delivery orders")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one stem required")
	}

	// Quantities are aggregated per flower so a selection split across
	// duplicate lines is checked against stock as one total.
	ids := make([]uuid.UUID, 0, len(input.Items))
	qtyByFlower := make(map[uuid.UUID]int, len(input.Items))
	totalStems := 0
	for _, item := range input.Items {
		if item.Quantity < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be at least 1")
		}
		if _, seen := qtyByFlower[item.StockFlowerID]; !seen {
			ids = append(ids, item.StockFlowerID)
		}
		qtyByFlower[item.StockFlowerID] += item.Quantity
		totalStems += item.Quantity
	}
	if totalStems < tier.MinStems || totalStems > tier.MaxStems {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("%s bouquets take %d to %d stems", tier.Size, tier.MinStems, tier.MaxStems))
	}

	flowers, err := s.inventory.GetStockFlowers(ctx, shop.ID, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load stock flowers")
	}
	byID := make(map[uuid.UUID]models.StockFlower, len(flowers))
	for _, flower := range flowers {
		byID[flower.ID] = flower
	}

	lines := make([]QuoteLine, 0, len(ids))
	snapshotItems := make([]SnapshotItem, 0, len(ids))
	for _, id := range ids {
		flower, ok := byID[id]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown stock flower in selection")
		}
		quantity := qtyByFlower[id]
		if quantity > flower.StockCount {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("only %d stems of %s in stock", flower.StockCount, flower.Name))
		}
		lines = append(lines, QuoteLine{PricePerStem: flower.PricePerStem, Quantity: quantity})
		snapshotItems = append(snapshotItems, SnapshotItem{
			StockFlowerID: flower.ID,
			Name:          flower.Name,
			Quantity:      quantity,
			PricePerStem:  flower.PricePerStem,
		})
	}

	wrappingPrice := decimal.Zero
	var snapshotWrapping *SnapshotWrapping
	if input.WrappingID != nil {
		wrapping, err := s.inventory.GetWrapping(ctx, shop.ID, *input.WrappingID)
		if err != nil {
			return nil, err
		}
		if !wrapping.Available {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "wrapping option unavailable")
		}
		wrappingPrice = wrapping.Price
		snapshotWrapping = &SnapshotWrapping{ID: wrapping.ID, Name: wrapping.Name, Price: wrapping.Price}
	}

	serverTotal := Quote(lines, wrappingPrice)
	snapshot := Snapshot{
		Size:           input.Size,
		Items:          snapshotItems,
		Wrapping:       snapshotWrapping,
		QuotedTotal:    input.QuotedTotal,
		ServerTotal:    serverTotal,
		RequiresReview: !input.QuotedTotal.Equal(serverTotal),
	}
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode bouquet snapshot")
	}

	order := &models.Order{
		ShopID:         shop.ID,
		CustomerName:   input.CustomerName,
		CustomerPhone:  input.CustomerPhone,
		CustomerEmail:  input.CustomerEmail,
		Message:        input.Message,
		OrderType:      enums.OrderTypeCustomBouquet,
		DeliveryMethod: input.DeliveryMethod,
		CustomBouquet:  raw,
		Status:         enums.OrderStatusPending,
		TotalAmount:    &serverTotal,
	}
	if input.DeliveryAddress != nil {
		addr, err := json.Marshal(input.DeliveryAddress)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "encode delivery address")
		}
		order.DeliveryAddress = addr
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}

	s.dispatcher.OrderReceived(ctx, shop, order)
	return order, nil
}

func (s *service) visibleShop(ctx context.Context, slug string) (*models.Shop, error) {
	shop, err := s.shops.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if shop.Suspended {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shop not found")
	}
	return shop, nil
}
