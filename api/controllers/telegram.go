package controllers

import (
	"net/http"

	"github.com/bloomstack/bloomstack-backend/api/responses"
	"github.com/bloomstack/bloomstack-backend/api/validators"
	"github.com/bloomstack/bloomstack-backend/internal/notifications"
	"github.com/bloomstack/bloomstack-backend/internal/orders"
	"github.com/bloomstack/bloomstack-backend/internal/shops"
	"github.com/bloomstack/bloomstack-backend/pkg/config"
	pkgerrors "github.com/bloomstack/bloomstack-backend/pkg/errors"
	"github.com/bloomstack/bloomstack-backend/pkg/logger"
	"github.com/bloomstack/bloomstack-backend/pkg/telegram"
)

const telegramSecretHeader = "X-Telegram-Bot-Api-Secret-Token"

// TelegramWebhook handles bot platform updates. Callback button presses on
// order messages mutate the order through the same transition rules as the
// dashboard. The handler always replies 200 once the secret checks out so
// the platform never retries a poison update.
func TelegramWebhook(cfg config.TelegramConfig, ordersSvc orders.Service, shopRepo shops.Repository, notifier telegram.Notifier, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cfg.WebhookSecret == "" || r.Header.Get(telegramSecretHeader) != cfg.WebhookSecret {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid webhook secret"))
			return
		}

		var update telegram.Update
		if err := validators.DecodeJSONBody(r, &update); err != nil {
			logg.Warn(r.Context(), "telegram.webhook.decode_failed")
			responses.WriteSuccess(w, map[string]bool{"ok": true})
			return
		}

		if update.CallbackQuery != nil {
			handleOrderCallback(r, update.CallbackQuery, ordersSvc, shopRepo, notifier, logg)
		}

		responses.WriteSuccess(w, map[string]bool{"ok": true})
	}
}

func handleOrderCallback(r *http.Request, cq *telegram.CallbackQuery, ordersSvc orders.Service, shopRepo shops.Repository, notifier telegram.Notifier, logg *logger.Logger) {
	ctx := r.Context()

	orderID, status, err := notifications.ParseOrderCallback(cq.Data)
	if err != nil {
		logg.Warn(logg.WithField(ctx, "callback_data", cq.Data), "telegram.webhook.bad_callback")
		answerCallback(r, cq.ID, "Unrecognized action", notifier, logg)
		return
	}

	if cq.Message == nil {
		logg.Warn(ctx, "telegram.webhook.callback_without_message")
		answerCallback(r, cq.ID, "Unrecognized action", notifier, logg)
		return
	}

	// Only the chat bound to a shop may drive its orders. The chat id is
	// what proves tenancy here, not the callback payload.
	shop, err := shopRepo.GetByTelegramChat(ctx, cq.Message.Chat.ID)
	if err != nil {
		logg.Warn(logg.WithField(ctx, "chat_id", cq.Message.Chat.ID), "telegram.webhook.unknown_chat")
		answerCallback(r, cq.ID, "Chat is not linked to a shop", notifier, logg)
		return
	}

	if _, err := ordersSvc.UpdateStatus(ctx, shop.ID, orderID, status); err != nil {
		fields := map[string]any{"order_id": orderID.String(), "status": string(status)}
		logg.Error(logg.WithFields(ctx, fields), "telegram.webhook.update_failed", err)
		answerCallback(r, cq.ID, "Could not update the order", notifier, logg)
		return
	}

	answerCallback(r, cq.ID, "Order marked "+string(status), notifier, logg)
}

func answerCallback(r *http.Request, callbackID, text string, notifier telegram.Notifier, logg *logger.Logger) {
	if notifier == nil {
		return
	}
	if err := notifier.AnswerCallbackQuery(r.Context(), callbackID, text); err != nil {
		logg.Error(r.Context(), "telegram.webhook.answer_failed", err)
	}
}
