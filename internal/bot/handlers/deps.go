package handlers

import (
	"context"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/lingobot/internal/completion"
	"github.com/edgard/lingobot/internal/config"
	"github.com/edgard/lingobot/internal/flood"
	"github.com/edgard/lingobot/internal/language"
	"github.com/edgard/lingobot/internal/locales"
	"github.com/edgard/lingobot/internal/session"
	"github.com/edgard/lingobot/internal/subscription"
)

// Messenger is the subset of the Bot API the handlers call.
type Messenger interface {
	subscription.MemberGetter
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	SendChatAction(ctx context.Context, params *bot.SendChatActionParams) (bool, error)
	SetMyCommands(ctx context.Context, params *bot.SetMyCommandsParams) (bool, error)
}

var _ Messenger = (*bot.Bot)(nil)

// HandlerDeps provides dependencies for Telegram command handlers.
type HandlerDeps struct {
	Logger       *slog.Logger
	Config       *config.Config
	Messenger    Messenger
	Sessions     session.Store
	Languages    *language.Registry
	Catalog      *locales.Catalog
	Completion   completion.Client
	Subscription *subscription.Checker
	Flood        *flood.Guard

	// Rand returns a number in [0, n). Defaults to math/rand/v2.IntN.
	Rand func(n int) int
}
