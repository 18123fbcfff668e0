package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/spf13/cobra"

	"github.com/edgard/lingobot/internal/bot"
	"github.com/edgard/lingobot/internal/bot/handlers"
	"github.com/edgard/lingobot/internal/bot/tasks"
	"github.com/edgard/lingobot/internal/completion"
	"github.com/edgard/lingobot/internal/config"
	"github.com/edgard/lingobot/internal/database"
	"github.com/edgard/lingobot/internal/flood"
	"github.com/edgard/lingobot/internal/language"
	"github.com/edgard/lingobot/internal/locales"
	"github.com/edgard/lingobot/internal/logger"
	"github.com/edgard/lingobot/internal/session"
	"github.com/edgard/lingobot/internal/subscription"
	"github.com/edgard/lingobot/internal/telegram"
)

const defaultConfigPath = "./config.yaml"

// Execute runs the CLI and returns the process exit code.
func Execute(ctx context.Context) int {
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "lingobot",
		Short:         "Multilingual Telegram chat bot",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := cmd.Flags().GetString("config")
			if err != nil {
				return err
			}
			return run(cmd.Context(), path)
		},
	}

	cmd.PersistentFlags().String("config", defaultConfigPath, "Path to configuration file")

	cmd.AddCommand(newCheckCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// run initializes every component, runs the bot until ctx is cancelled and
// tears everything down again.
func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", configPath, "error", err)
		return err
	}

	log := logger.NewLogger(cfg.Logger.Level, cfg.Logger.JSON)
	slog.SetDefault(log)
	log.Info("Logger initialized", "level", cfg.Logger.Level, "json", cfg.Logger.JSON, "version", version)

	flush, err := logger.InitSentry(cfg.Sentry.DSN, cfg.Sentry.Environment, version)
	if err != nil {
		log.Warn("Sentry disabled", "error", err)
	}
	defer flush()

	sessions, db, closeStore, err := openSessionStore(cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	languages, err := language.NewRegistry(cfg.Language.Available, cfg.Language.Default)
	if err != nil {
		log.Error("Failed to build language registry", "error", err)
		return err
	}

	catalog, err := locales.NewCatalog(cfg.Language.Default, log)
	if err != nil {
		log.Error("Failed to load message catalog", "error", err)
		return err
	}

	completer, err := completion.New(ctx, cfg.Completion, log)
	if err != nil {
		log.Error("Failed to initialize completion client", "provider", cfg.Completion.Provider, "error", err)
		return err
	}

	hDeps := handlers.HandlerDeps{
		Logger:     log,
		Config:     cfg,
		Sessions:   sessions,
		Languages:  languages,
		Catalog:    catalog,
		Completion: completer,
		Flood:      flood.NewGuard(cfg.Bot.Flood),
	}

	botOpts := []tgbot.Option{
		tgbot.WithMiddlewares(logger.Middlewares(log)...),
		tgbot.WithDefaultHandler(handlers.NewDefaultHandler(hDeps)),
	}
	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log, botOpts...)
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return err
	}

	hDeps.Messenger = tg
	hDeps.Subscription = subscription.NewChecker(tg, cfg.Gate, cfg.Telegram.RequestTimeout, log)

	meCtx, cancel := context.WithTimeout(ctx, cfg.Telegram.RequestTimeout)
	cfg.Telegram.BotInfo, err = tg.GetMe(meCtx)
	cancel()
	if err != nil {
		log.Error("Failed to get bot info", "error", err)
		return err
	}
	log.Info("Retrieved bot info", "bot_id", cfg.Telegram.BotInfo.ID, "bot_username", cfg.Telegram.BotInfo.Username)

	if err := telegram.RegisterHandlers(tg, log, handlers.RegisterAllCommands(hDeps)); err != nil {
		log.Error("Failed to register Telegram handlers", "error", err)
		return err
	}

	if err := telegram.PublishCommands(ctx, tg, handlers.CommandMenus(hDeps), cfg.Telegram.RequestTimeout, log); err != nil {
		log.Warn("Failed to publish command menu", "error", err)
	}

	tDeps := tasks.TaskDeps{
		Logger:   log,
		Sessions: sessions,
		DB:       db,
		Flood:    hDeps.Flood,
		Config:   cfg,
	}
	sched, err := bot.NewScheduler(log, &cfg.Scheduler, tasks.RegisterAllTasks(tDeps))
	if err != nil {
		return err
	}

	log.Info("Starting bot...")
	runErr := bot.NewBot(log, cfg, tg, sched).Run(ctx)
	log.Info("Bot run loop finished. Initiating shutdown...")

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Bot stopped due to error", "error", runErr)
		return runErr
	}

	log.Info("Bot stopped gracefully.")
	return nil
}

// openSessionStore returns the SQLite store when a database path is
// configured and the in-memory store otherwise. db is nil in memory mode.
func openSessionStore(cfg *config.Config, log *slog.Logger) (session.Store, database.Store, func(), error) {
	if cfg.Database.Path == "" {
		log.Info("Keeping sessions in memory")
		return session.NewMemoryStore(), nil, func() {}, nil
	}

	conn, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		log.Error("Failed to connect to database", "path", cfg.Database.Path, "error", err)
		return nil, nil, nil, fmt.Errorf("failed to open session database: %w", err)
	}
	store := database.NewStore(conn, log)

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := store.Ping(pingCtx); err != nil {
		database.CloseDB(conn)
		return nil, nil, nil, fmt.Errorf("failed to reach session database: %w", err)
	}

	log.Info("Session database ready", "path", cfg.Database.Path)
	return store, store, func() { database.CloseDB(conn) }, nil
}
