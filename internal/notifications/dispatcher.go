package notifications

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bloomstack/bloomstack-backend/pkg/db/models"
	"github.com/bloomstack/bloomstack-backend/pkg/enums"
	pkgerrors "github.com/bloomstack/bloomstack-backend/pkg/errors"
	"github.com/bloomstack/bloomstack-backend/pkg/logger"
	"github.com/bloomstack/bloomstack-backend/pkg/mailer"
	"github.com/bloomstack/bloomstack-backend/pkg/telegram"
)

const orderCallbackPrefix = "order"

// OrderCallbackData encodes a status button for a telegram order message.
func OrderCallbackData(orderID uuid.UUID, status enums.OrderStatus) string {
	return fmt.Sprintf("%s:%s:%s", orderCallbackPrefix, orderID, status)
}

// ParseOrderCallback decodes callback button data back into an order
// mutation.
func ParseOrderCallback(data string) (uuid.UUID, enums.OrderStatus, error) {
	parts := strings.Split(data, ":")
	if len(parts) != 3 || parts[0] != orderCallbackPrefix {
		return uuid.Nil, "", pkgerrors.New(pkgerrors.CodeValidation, "unknown callback data")
	}
	orderID, err := uuid.Parse(parts[1])
	if err != nil {
		return uuid.Nil, "", pkgerrors.New(pkgerrors.CodeValidation, "invalid order id in callback data")
	}
	status, err := enums.ParseOrderStatus(parts[2])
	if err != nil {
		return uuid.Nil, "", pkgerrors.New(pkgerrors.CodeValidation, "invalid status in callback data")
	}
	return orderID, status, nil
}

// Dispatcher writes in-app feed rows and fans the event out over email and
// telegram. Outbound channels are best-effort: failures are logged and the
// triggering write is never rolled back.
type Dispatcher struct {
	repo     Repository
	mailer   mailer.Sender
	telegram telegram.Notifier
	log      *logger.Logger
}

// NewDispatcher wires the fan-out dependencies.
func NewDispatcher(repo Repository, sender mailer.Sender, notifier telegram.Notifier, log *logger.Logger) (*Dispatcher, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	if sender == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "mail sender required")
	}
	if notifier == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "telegram notifier required")
	}
	if log == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &Dispatcher{repo: repo, mailer: sender, telegram: notifier, log: log}, nil
}

func (d *Dispatcher) OrderReceived(ctx context.Context, shop *models.Shop, order *models.Order) {
	title := "New order received"
	body := fmt.Sprintf("%s placed a %s order", order.CustomerName, order.OrderType)
	if order.TotalAmount != nil {
		body = fmt.Sprintf("%s for %s %s", body, order.TotalAmount.StringFixed(2), shop.Currency)
	}

	d.record(ctx, shop.ID, enums.NotificationKindOrderReceived, title, body)
	d.email(ctx, shop, title, body)

	var keyboard *telegram.InlineKeyboard
	if order.Status == enums.OrderStatusPending {
		keyboard = &telegram.InlineKeyboard{InlineKeyboard: [][]telegram.InlineButton{{
			{Text: "Confirm", CallbackData: OrderCallbackData(order.ID, enums.OrderStatusConfirmed)},
			{Text: "Cancel", CallbackData: OrderCallbackData(order.ID, enums.OrderStatusCancelled)},
		}}}
	}
	d.telegramMessage(ctx, shop, fmt.Sprintf("%s\n%s\nPhone: %s", title, body, order.CustomerPhone), keyboard)
}

func (d *Dispatcher) OrderStatusChanged(ctx context.Context, shop *models.Shop, order *models.Order, previous enums.OrderStatus) {
	title := "Order status updated"
	body := fmt.Sprintf("Order from %s moved from %s to %s", order.CustomerName, previous, order.Status)

	d.record(ctx, shop.ID, enums.NotificationKindOrderStatusChanged, title, body)
	d.telegramMessage(ctx, shop, body, nil)
}

func (d *Dispatcher) SubscriptionApproved(ctx context.Context, shop *models.Shop, plan *models.Plan, expiry *time.Time) {
	title := "Subscription activated"
	body := fmt.Sprintf("Your %s plan is now active", plan.Name)
	if expiry != nil {
		body = fmt.Sprintf("%s until %s", body, expiry.Format("2 Jan 2006"))
	}

	d.record(ctx, shop.ID, enums.NotificationKindSubscriptionApproved, title, body)
	d.email(ctx, shop, title, body)
}

func (d *Dispatcher) SubscriptionExpiring(ctx context.Context, shop *models.Shop, expiry time.Time) {
	title := "Subscription expiring soon"
	body := fmt.Sprintf("Your plan expires on %s. Renew to keep your current features.", expiry.Format("2 Jan 2006"))

	d.record(ctx, shop.ID, enums.NotificationKindSubscriptionExpiring, title, body)
	d.email(ctx, shop, title, body)
}

func (d *Dispatcher) SubscriptionExpired(ctx context.Context, shop *models.Shop) {
	title := "Subscription expired"
	body := "Your plan has expired and the shop was moved to the free plan."

	d.record(ctx, shop.ID, enums.NotificationKindSubscriptionExpired, title, body)
	d.email(ctx, shop, title, body)
}

func (d *Dispatcher) record(ctx context.Context, shopID uuid.UUID, kind enums.NotificationKind, title, body string) {
	err := d.repo.Create(ctx, &models.Notification{
		ShopID: shopID,
		Kind:   kind,
		Title:  title,
		Body:   body,
	})
	if err != nil {
		d.log.Error(d.log.WithField(ctx, "kind", kind.String()), "notification row write failed", err)
	}
}

func (d *Dispatcher) email(ctx context.Context, shop *models.Shop, subject, body string) {
	if shop.Email == nil || *shop.Email == "" {
		return
	}
	err := d.mailer.Send(ctx, mailer.Message{To: *shop.Email, Subject: subject, Body: body})
	if err != nil {
		d.log.Error(d.log.WithShopID(ctx, shop.ID.String()), "notification email failed", err)
	}
}

func (d *Dispatcher) telegramMessage(ctx context.Context, shop *models.Shop, text string, keyboard *telegram.InlineKeyboard) {
	if shop.TelegramChatID == nil {
		return
	}
	if err := d.telegram.SendMessage(ctx, *shop.TelegramChatID, text, keyboard); err != nil {
		d.log.Error(d.log.WithShopID(ctx, shop.ID.String()), "telegram notification failed", err)
	}
}
