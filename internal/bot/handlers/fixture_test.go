package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/edgard/lingobot/internal/config"
	"github.com/edgard/lingobot/internal/flood"
	"github.com/edgard/lingobot/internal/language"
	"github.com/edgard/lingobot/internal/locales"
	"github.com/edgard/lingobot/internal/logger"
	"github.com/edgard/lingobot/internal/session"
	"github.com/edgard/lingobot/internal/subscription"
)

const botUserID = 999

type mockMessenger struct {
	mock.Mock
}

func (m *mockMessenger) SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error) {
	args := m.Called(ctx, params)
	msg, _ := args.Get(0).(*models.Message)
	return msg, args.Error(1)
}

func (m *mockMessenger) SendChatAction(ctx context.Context, params *bot.SendChatActionParams) (bool, error) {
	args := m.Called(ctx, params)
	return args.Bool(0), args.Error(1)
}

func (m *mockMessenger) SetMyCommands(ctx context.Context, params *bot.SetMyCommandsParams) (bool, error) {
	args := m.Called(ctx, params)
	return args.Bool(0), args.Error(1)
}

func (m *mockMessenger) GetChatMember(ctx context.Context, params *bot.GetChatMemberParams) (*models.ChatMember, error) {
	args := m.Called(ctx, params)
	member, _ := args.Get(0).(*models.ChatMember)
	return member, args.Error(1)
}

// sent returns the parameters of every SendMessage call in order.
func (m *mockMessenger) sent() []*bot.SendMessageParams {
	var out []*bot.SendMessageParams
	for _, call := range m.Calls {
		if call.Method == "SendMessage" {
			out = append(out, call.Arguments.Get(1).(*bot.SendMessageParams))
		}
	}
	return out
}

func (m *mockMessenger) sentTexts() []string {
	var out []string
	for _, p := range m.sent() {
		out = append(out, p.Text)
	}
	return out
}

type mockCompletion struct {
	mock.Mock
}

func (m *mockCompletion) Complete(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

type fixture struct {
	deps     HandlerDeps
	tg       *mockMessenger
	llm      *mockCompletion
	sessions *session.MemoryStore
}

type fixtureOption func(cfg *config.Config, tg *mockMessenger)

// withGate enables the gate and answers membership checks with status.
func withGate(status models.ChatMemberType) fixtureOption {
	return func(cfg *config.Config, tg *mockMessenger) {
		cfg.Gate.Enabled = true
		tg.On("GetChatMember", mock.Anything, mock.Anything).Return(&models.ChatMember{Type: status}, nil)
	}
}

func testLanguages() []config.LanguageOption {
	return []config.LanguageOption{
		{Code: "en", Name: "English", Labels: []string{"🇬🇧 English", "English"}},
		{Code: "hi", Name: "Hindi", Labels: []string{"🇮🇳 Hindi", "हिन्दी", "Hindi"}},
		{Code: "bn", Name: "Bengali", Labels: []string{"🇧🇩 Bangla", "বাংলা", "Bangla"}},
	}
}

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()

	cfg := &config.Config{
		Telegram: config.TelegramConfig{
			Token:          "test-token",
			RequestTimeout: time.Second,
			TypingTimeout:  time.Second,
			BotInfo:        &models.User{ID: botUserID, IsBot: true, Username: "lingo_bot"},
		},
		Completion: config.CompletionConfig{
			Provider:         config.ProviderDeepSeek,
			AnnotateLanguage: true,
		},
		Gate: config.GateConfig{Channel: "@lingo_news"},
		Bot: config.BotConfig{
			AckSymbols:      []string{"🤖", "✨"},
			CreatorName:     "Rajdev",
			CreatorUsername: "raj_dev_01",
		},
		Language: config.LanguageConfig{Default: "en", Available: testLanguages()},
	}

	tg := new(mockMessenger)
	for _, opt := range opts {
		opt(cfg, tg)
	}
	tg.On("SendMessage", mock.Anything, mock.Anything).Return(&models.Message{ID: 100}, nil).Maybe()
	tg.On("SendChatAction", mock.Anything, mock.Anything).Return(true, nil).Maybe()

	log := logger.Discard()
	registry, err := language.NewRegistry(cfg.Language.Available, cfg.Language.Default)
	require.NoError(t, err)
	catalog, err := locales.NewCatalog(cfg.Language.Default, log)
	require.NoError(t, err)

	sessions := session.NewMemoryStore()
	llm := new(mockCompletion)

	return &fixture{
		deps: HandlerDeps{
			Logger:       log,
			Config:       cfg,
			Messenger:    tg,
			Sessions:     sessions,
			Languages:    registry,
			Catalog:      catalog,
			Completion:   llm,
			Subscription: subscription.NewChecker(tg, cfg.Gate, time.Second, log),
			Flood:        flood.NewGuard(cfg.Bot.Flood),
			Rand:         func(int) int { return 0 },
		},
		tg:       tg,
		llm:      llm,
		sessions: sessions,
	}
}

// msg renders msgID the way handlers do, for building expectations.
func (f *fixture) msg(lang, msgID string, extra map[string]any) string {
	return message(f.deps, lang, msgID, extra)
}

func (f *fixture) language(t *testing.T, userID int64) string {
	t.Helper()
	s, err := f.sessions.Get(context.Background(), userID)
	require.NoError(t, err)
	return s.Language
}

func textUpdate(userID int64, text string) *models.Update {
	return &models.Update{
		ID: 1,
		Message: &models.Message{
			ID:   10,
			From: &models.User{ID: userID, FirstName: "Asha"},
			Chat: models.Chat{ID: userID},
			Text: text,
		},
	}
}

func commandUpdate(userID int64, command string) *models.Update {
	return textUpdate(userID, "/"+command)
}
