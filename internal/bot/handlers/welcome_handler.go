package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/lingobot/internal/locales"
)

// NewWelcomeHandler returns a handler greeting users who join a group.
func NewWelcomeHandler(deps HandlerDeps) bot.HandlerFunc {
	return welcomeHandler{deps}.Handle
}

// HasNewMembers matches service messages announcing new group members.
func HasNewMembers(update *models.Update) bool {
	return update.Message != nil && len(update.Message.NewChatMembers) > 0
}

type welcomeHandler struct {
	deps HandlerDeps
}

func (h welcomeHandler) Handle(ctx context.Context, _ *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "welcome")

	if !HasNewMembers(update) {
		log.DebugContext(ctx, "Welcome handler received update without new members", "update_id", update.ID)
		return
	}

	chatID := update.Message.Chat.ID
	msgID := locales.MsgWelcomeMember
	if h.deps.Subscription.Enabled() {
		msgID = locales.MsgWelcomeMemberGate
	}
	def := h.deps.Languages.Default().Code

	for _, member := range update.Message.NewChatMembers {
		if h.isSelf(member) {
			log.DebugContext(ctx, "Skipping welcome for the bot itself", "chat_id", chatID)
			continue
		}

		log.InfoContext(ctx, "Welcoming new member", "chat_id", chatID, "user_id", member.ID)
		sendText(ctx, h.deps, chatID, message(h.deps, def, msgID, map[string]any{"Name": displayName(member)}))
	}
}

func (h welcomeHandler) isSelf(member models.User) bool {
	info := h.deps.Config.Telegram.BotInfo
	return info != nil && member.ID == info.ID
}

func displayName(u models.User) string {
	switch {
	case u.FirstName != "":
		return u.FirstName
	case u.Username != "":
		return "@" + u.Username
	default:
		return "friend"
	}
}
