package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/lingobot/internal/locales"
)

// NewLanguageHandler returns a handler for the /language command.
func NewLanguageHandler(deps HandlerDeps) bot.HandlerFunc {
	return languageHandler{deps}.Handle
}

// languageHandler shows the language keyboard. Selection itself happens in
// the text handler when a label comes back.
type languageHandler struct {
	deps HandlerDeps
}

func (h languageHandler) Handle(ctx context.Context, _ *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "language")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Language handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	chatID := update.Message.Chat.ID
	log.InfoContext(ctx, "Handling /language command", "chat_id", chatID, "user_id", update.Message.From.ID)

	lang := userLanguage(ctx, h.deps, update.Message.From.ID)
	err := sendMessage(ctx, h.deps, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        message(h.deps, lang.Code, locales.MsgLanguageMenu, nil),
		ReplyMarkup: languageKeyboard(h.deps),
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send language menu", "error", err, "chat_id", chatID)
	}
}

// languageKeyboard lays out the first label of every language on one row.
func languageKeyboard(deps HandlerDeps) *models.ReplyKeyboardMarkup {
	all := deps.Languages.All()
	row := make([]models.KeyboardButton, 0, len(all))
	for _, l := range all {
		row = append(row, models.KeyboardButton{Text: l.Label()})
	}
	return &models.ReplyKeyboardMarkup{
		Keyboard:        [][]models.KeyboardButton{row},
		ResizeKeyboard:  true,
		OneTimeKeyboard: true,
	}
}
