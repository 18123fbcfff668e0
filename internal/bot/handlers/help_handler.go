package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/lingobot/internal/locales"
)

// NewHelpHandler returns a handler for the /help command.
func NewHelpHandler(deps HandlerDeps) bot.HandlerFunc {
	return staticHandler{deps: deps, name: "help", msgID: locales.MsgHelp, html: true}.Handle
}

// NewAboutHandler returns a handler for the /about command.
func NewAboutHandler(deps HandlerDeps) bot.HandlerFunc {
	return staticHandler{deps: deps, name: "about", msgID: locales.MsgAbout}.Handle
}

// NewCreatorHandler returns a handler for the /creator command.
func NewCreatorHandler(deps HandlerDeps) bot.HandlerFunc {
	return staticHandler{deps: deps, name: "creator", msgID: locales.MsgCreator, html: true}.Handle
}

// staticHandler answers a command with one localized message.
type staticHandler struct {
	deps  HandlerDeps
	name  string
	msgID string
	html  bool
}

func (h staticHandler) Handle(ctx context.Context, _ *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", h.name)

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	chatID := update.Message.Chat.ID
	log.InfoContext(ctx, "Handling /"+h.name+" command", "chat_id", chatID, "user_id", update.Message.From.ID)

	lang := userLanguage(ctx, h.deps, update.Message.From.ID)
	if h.html {
		sendHTML(ctx, h.deps, chatID, htmlMessage(h.deps, lang.Code, h.msgID))
		return
	}
	sendText(ctx, h.deps, chatID, message(h.deps, lang.Code, h.msgID, nil))
}
