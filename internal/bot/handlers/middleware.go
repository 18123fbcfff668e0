// Package handlers contains Telegram bot command and message handlers,
// along with their registration logic and middleware.
package handlers

import (
	"context"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/lingobot/internal/locales"
)

// SubscribersOnly creates a middleware that lets the update through only when
// the sender is subscribed to the gate channel. Otherwise it replies with the
// join instructions and stops processing. With the gate disabled every user
// passes.
func SubscribersOnly(deps HandlerDeps) tgbot.Middleware {
	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
			if update.Message == nil || update.Message.From == nil {
				next(ctx, bot, update)
				return
			}

			userID := update.Message.From.ID
			if deps.Subscription.IsSubscribed(ctx, userID) {
				next(ctx, bot, update)
				return
			}

			chatID := update.Message.Chat.ID
			log := deps.Logger.With("middleware", "SubscribersOnly")
			log.InfoContext(ctx, "Blocked update from unsubscribed user", "user_id", userID, "chat_id", chatID)

			lang := userLanguage(ctx, deps, userID)
			text := message(deps, lang.Code, locales.MsgGateRequired, nil)
			if err := sendMessage(ctx, deps, &tgbot.SendMessageParams{ChatID: chatID, Text: text}); err != nil {
				log.ErrorContext(ctx, "Failed to send gate message", "error", err, "chat_id", chatID)
			}
		}
	}
}
