package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/lingobot/internal/locales"
)

// NewRefreshHandler returns a handler for the /refresh command.
func NewRefreshHandler(deps HandlerDeps) bot.HandlerFunc {
	return refreshHandler{deps}.Handle
}

// refreshHandler re-runs the membership check after a user joined the channel.
type refreshHandler struct {
	deps HandlerDeps
}

func (h refreshHandler) Handle(ctx context.Context, _ *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "refresh")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Refresh handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID
	log.InfoContext(ctx, "Handling /refresh command", "chat_id", chatID, "user_id", userID)

	msgID := locales.MsgRefreshNotSubscribed
	subscribed := h.deps.Subscription.IsSubscribed(ctx, userID)
	if subscribed {
		msgID = locales.MsgRefreshVerified
	}
	log.InfoContext(ctx, "Subscription re-checked", "user_id", userID, "subscribed", subscribed)

	lang := userLanguage(ctx, h.deps, userID)
	sendText(ctx, h.deps, chatID, message(h.deps, lang.Code, msgID, nil))
}
