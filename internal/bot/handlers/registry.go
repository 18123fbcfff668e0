package handlers

import (
	"context"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/lingobot/internal/locales"
)

// RegisteredHandler represents a command handler with its description and middleware.
// It encapsulates all information needed to register and document a command.
// A non-nil MatchFunc registers the handler by predicate instead of pattern.
type RegisteredHandler struct {
	HandlerType tgbot.HandlerType
	Pattern     string
	Handler     tgbot.HandlerFunc
	Middleware  []tgbot.Middleware
	MatchType   tgbot.MatchType
	MatchFunc   tgbot.MatchFunc
}

// RegisterAllCommands initializes and returns a map of all available bot handlers.
// It configures each command with appropriate handlers and middleware.
func RegisterAllCommands(deps HandlerDeps) map[string]RegisteredHandler {
	handlers := make(map[string]RegisteredHandler)
	gated := []tgbot.Middleware{SubscribersOnly(deps)}

	command := func(name string, h tgbot.HandlerFunc, mw []tgbot.Middleware) {
		handlers["/"+name] = RegisteredHandler{
			HandlerType: tgbot.HandlerTypeMessageText,
			Pattern:     name,
			Handler:     h,
			MatchType:   tgbot.MatchTypeCommandStartOnly,
			Middleware:  mw,
		}
	}

	command("start", NewStartHandler(deps), gated)
	command("help", NewHelpHandler(deps), nil)
	command("about", NewAboutHandler(deps), nil)
	command("creator", NewCreatorHandler(deps), nil)
	command("language", NewLanguageHandler(deps), nil)
	command("refresh", NewRefreshHandler(deps), nil)

	handlers["text"] = RegisteredHandler{
		Handler:    NewTextHandler(deps),
		MatchFunc:  IsFreeText,
		Middleware: gated,
	}
	handlers["welcome"] = RegisteredHandler{
		Handler:   NewWelcomeHandler(deps),
		MatchFunc: HasNewMembers,
	}

	return handlers
}

// NewDefaultHandler handles updates no registered handler matched, such as
// unknown commands. They are logged and otherwise ignored.
func NewDefaultHandler(deps HandlerDeps) tgbot.HandlerFunc {
	log := deps.Logger.With("handler", "default")
	return func(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
		log.DebugContext(ctx, "Ignoring unhandled update", "update_id", update.ID)
	}
}

// menuCommands lists the commands shown in the client menu, in display order.
var menuCommands = []struct {
	command string
	msgID   string
	gated   bool
}{
	{command: "start", msgID: locales.MsgCommandStart},
	{command: "help", msgID: locales.MsgCommandHelp},
	{command: "language", msgID: locales.MsgCommandLanguage},
	{command: "about", msgID: locales.MsgCommandAbout},
	{command: "creator", msgID: locales.MsgCommandCreator},
	{command: "refresh", msgID: locales.MsgCommandRefresh, gated: true},
}

// CommandMenus returns the command menu per language code. The "" key holds
// the menu for clients whose language has no translation.
func CommandMenus(deps HandlerDeps) map[string][]models.BotCommand {
	menus := make(map[string][]models.BotCommand)
	menus[""] = commandMenu(deps, deps.Languages.Default().Code)
	for _, l := range deps.Languages.All() {
		menus[l.Code] = commandMenu(deps, l.Code)
	}
	return menus
}

func commandMenu(deps HandlerDeps, lang string) []models.BotCommand {
	cmds := make([]models.BotCommand, 0, len(menuCommands))
	for _, c := range menuCommands {
		if c.gated && !deps.Subscription.Enabled() {
			continue
		}
		cmds = append(cmds, models.BotCommand{
			Command:     c.command,
			Description: deps.Catalog.Message(lang, c.msgID, nil),
		})
	}
	return cmds
}
