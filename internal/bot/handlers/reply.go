package handlers

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/lingobot/internal/completion"
	"github.com/edgard/lingobot/internal/language"
	"github.com/edgard/lingobot/internal/render"
	"github.com/edgard/lingobot/internal/session"
)

// withTimeout bounds ctx by d when d is positive.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// sendMessage sends params under the configured request timeout.
func sendMessage(ctx context.Context, deps HandlerDeps, params *bot.SendMessageParams) error {
	sendCtx, cancel := withTimeout(ctx, deps.Config.Telegram.RequestTimeout)
	defer cancel()
	_, err := deps.Messenger.SendMessage(sendCtx, params)
	return err
}

// sendText sends a plain-text message and logs a failure.
func sendText(ctx context.Context, deps HandlerDeps, chatID int64, text string) {
	if err := sendMessage(ctx, deps, &bot.SendMessageParams{ChatID: chatID, Text: text}); err != nil {
		deps.Logger.ErrorContext(ctx, "Failed to send message", "error", err, "chat_id", chatID)
	}
}

// sendHTML sends a message with HTML parse mode and logs a failure.
func sendHTML(ctx context.Context, deps HandlerDeps, chatID int64, text string) {
	err := sendMessage(ctx, deps, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		deps.Logger.ErrorContext(ctx, "Failed to send HTML message", "error", err, "chat_id", chatID)
	}
}

// sendTyping shows the typing indicator. Failures only matter for debugging.
func sendTyping(ctx context.Context, deps HandlerDeps, chatID int64) {
	typingCtx, cancel := withTimeout(ctx, deps.Config.Telegram.TypingTimeout)
	defer cancel()
	if _, err := deps.Messenger.SendChatAction(typingCtx, &bot.SendChatActionParams{
		ChatID: chatID,
		Action: models.ChatActionTyping,
	}); err != nil {
		deps.Logger.DebugContext(ctx, "Failed to send typing action", "error", err, "chat_id", chatID)
	}
}

// userLanguage returns the session language of userID, or the default when
// the user has none or the store fails.
func userLanguage(ctx context.Context, deps HandlerDeps, userID int64) language.Language {
	def := deps.Languages.Default()
	code, err := session.LanguageOf(ctx, deps.Sessions, userID, def.Code)
	if err != nil {
		deps.Logger.WarnContext(ctx, "Failed to read session, using default language", "error", err, "user_id", userID)
	}
	return deps.Languages.Resolve(code)
}

// ackSymbol picks one acknowledgment symbol at random.
func ackSymbol(deps HandlerDeps) string {
	symbols := deps.Config.Bot.AckSymbols
	if len(symbols) == 0 {
		return ""
	}
	pick := deps.Rand
	if pick == nil {
		pick = rand.IntN
	}
	return symbols[pick(len(symbols))]
}

// templateData holds the values every message template may reference.
// With escape set the values are HTML-escaped.
func templateData(deps HandlerDeps, escape bool) map[string]any {
	data := map[string]string{
		"Provider":        completion.DisplayName(deps.Config.Completion.Provider),
		"CreatorName":     deps.Config.Bot.CreatorName,
		"CreatorUsername": deps.Config.Bot.CreatorUsername,
		"Channel":         deps.Subscription.JoinLink(),
	}

	out := make(map[string]any, len(data))
	for k, v := range data {
		if escape {
			v = render.EscapeHTML(v)
		}
		out[k] = v
	}
	return out
}

// message renders msgID in lang with the common template data plus extra.
func message(deps HandlerDeps, lang, msgID string, extra map[string]any) string {
	data := templateData(deps, false)
	for k, v := range extra {
		data[k] = v
	}
	return deps.Catalog.Message(lang, msgID, data)
}

// htmlMessage is message for templates sent with HTML parse mode.
func htmlMessage(deps HandlerDeps, lang, msgID string) string {
	return deps.Catalog.Message(lang, msgID, templateData(deps, true))
}
