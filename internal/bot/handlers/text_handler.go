package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/lingobot/internal/completion"
	"github.com/edgard/lingobot/internal/language"
	"github.com/edgard/lingobot/internal/locales"
	"github.com/edgard/lingobot/internal/logger"
	"github.com/edgard/lingobot/internal/render"
)

type textHandler struct {
	deps HandlerDeps
}

// NewTextHandler creates the handler for free text. A text equal to a
// language label switches the sender's language; anything else is answered
// by the completion provider.
func NewTextHandler(deps HandlerDeps) bot.HandlerFunc {
	return textHandler{deps}.Handle
}

// IsFreeText matches text messages that are not commands.
func IsFreeText(update *models.Update) bool {
	msg := update.Message
	return msg != nil && msg.From != nil && msg.Text != "" && !strings.HasPrefix(msg.Text, "/")
}

func (h textHandler) Handle(ctx context.Context, _ *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "text")

	msg := update.Message
	if msg == nil || msg.From == nil || strings.TrimSpace(msg.Text) == "" {
		log.DebugContext(ctx, "Ignoring update with nil message, empty text, or nil sender", "update_id", update.ID)
		return
	}
	if strings.HasPrefix(msg.Text, "/") {
		log.DebugContext(ctx, "Ignoring unknown command", "command", strings.Fields(msg.Text)[0])
		return
	}

	chatID := msg.Chat.ID
	userID := msg.From.ID

	if lang, ok := h.deps.Languages.Match(msg.Text); ok {
		h.selectLanguage(ctx, chatID, userID, lang)
		return
	}

	lang := userLanguage(ctx, h.deps, userID)

	if !h.deps.Flood.Allow(userID) {
		log.InfoContext(ctx, "Flood limit reached, skipping completion", "user_id", userID, "chat_id", chatID)
		sendText(ctx, h.deps, chatID, message(h.deps, lang.Code, locales.MsgSlowDown, nil))
		return
	}

	h.acknowledge(ctx, chatID)

	prompt := completion.BuildPrompt(msg.Text, lang.Name, h.deps.Config.Completion.AnnotateLanguage)
	log.InfoContext(ctx, "Requesting completion", "chat_id", chatID, "user_id", userID, "language", lang.Code)

	start := time.Now()
	reply, err := h.deps.Completion.Complete(ctx, prompt)
	if err != nil {
		kind := completion.KindOf(err)
		log.ErrorContext(ctx, "Completion failed",
			"error_kind", kind.String(),
			"error", err,
			"chat_id", chatID,
			"duration", time.Since(start),
		)
		logger.CaptureError(ctx, err, map[string]string{
			"error_kind": kind.String(),
			"provider":   h.deps.Config.Completion.Provider,
		})
		h.reply(ctx, chatID, msg.ID, message(h.deps, lang.Code, locales.MsgCompletionFailed, nil), "")
		return
	}

	log.InfoContext(ctx, "Completion received", "chat_id", chatID, "duration", time.Since(start), "length", len(reply))
	h.sendCompletion(ctx, chatID, msg.ID, lang, reply)
}

func (h textHandler) selectLanguage(ctx context.Context, chatID, userID int64, lang language.Language) {
	log := h.deps.Logger.With("handler", "text")

	if err := h.deps.Sessions.SetLanguage(ctx, userID, lang.Code); err != nil {
		log.ErrorContext(ctx, "Failed to store language selection", "error", err, "user_id", userID, "language", lang.Code)
		sendText(ctx, h.deps, chatID, message(h.deps, userLanguage(ctx, h.deps, userID).Code, locales.MsgCompletionFailed, nil))
		return
	}

	log.InfoContext(ctx, "Language selected", "user_id", userID, "language", lang.Code)
	sendText(ctx, h.deps, chatID, message(h.deps, lang.Code, locales.MsgLanguageSet, map[string]any{"Label": lang.Label()}))
}

// acknowledge sends a random symbol and the typing indicator before the
// completion call.
func (h textHandler) acknowledge(ctx context.Context, chatID int64) {
	if symbol := ackSymbol(h.deps); symbol != "" {
		sendText(ctx, h.deps, chatID, symbol)
	}
	sendTyping(ctx, h.deps, chatID)
}

// sendCompletion sends the rendered completion with the attribution footer.
// When Telegram rejects the HTML, the raw text goes out without a parse mode.
func (h textHandler) sendCompletion(ctx context.Context, chatID int64, replyTo int, lang language.Language, reply string) {
	log := h.deps.Logger.With("handler", "text")
	footer := message(h.deps, lang.Code, locales.MsgAttribution, nil)

	formatted := render.TelegramHTML(reply) + "\n\n<i>" + render.EscapeHTML(footer) + "</i>"
	if h.reply(ctx, chatID, replyTo, formatted, models.ParseModeHTML) {
		return
	}

	log.WarnContext(ctx, "Resending completion as plain text", "chat_id", chatID)
	h.reply(ctx, chatID, replyTo, reply+"\n\n"+footer, "")
}

// reply answers the user's message and reports whether Telegram accepted it.
func (h textHandler) reply(ctx context.Context, chatID int64, replyTo int, text string, mode models.ParseMode) bool {
	err := sendMessage(ctx, h.deps, &bot.SendMessageParams{
		ChatID:          chatID,
		Text:            text,
		ParseMode:       mode,
		ReplyParameters: &models.ReplyParameters{MessageID: replyTo, AllowSendingWithoutReply: true},
	})
	if err != nil {
		h.deps.Logger.ErrorContext(ctx, "Failed to send reply", "error", err, "chat_id", chatID, "parse_mode", mode)
		return false
	}
	return true
}
