package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/lingobot/internal/locales"
)

// NewStartHandler returns a handler for the /start command.
func NewStartHandler(deps HandlerDeps) bot.HandlerFunc {
	return startHandler{deps}.Handle
}

// startHandler resets the sender to the default language and greets them.
type startHandler struct {
	deps HandlerDeps
}

func (h startHandler) Handle(ctx context.Context, _ *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "start")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Start handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID
	log.InfoContext(ctx, "Handling /start command", "chat_id", chatID, "user_id", userID)

	def := h.deps.Languages.Default()
	if err := h.deps.Sessions.SetLanguage(ctx, userID, def.Code); err != nil {
		log.ErrorContext(ctx, "Failed to reset session language", "error", err, "user_id", userID)
	}

	greeting := message(h.deps, def.Code, locales.MsgGreeting, nil)
	if err := sendMessage(ctx, h.deps, &bot.SendMessageParams{ChatID: chatID, Text: greeting}); err != nil {
		log.ErrorContext(ctx, "Failed to send greeting", "error", err, "chat_id", chatID)
	} else {
		log.DebugContext(ctx, "Successfully sent greeting", "chat_id", chatID)
	}
}
