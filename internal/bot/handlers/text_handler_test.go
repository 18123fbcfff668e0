package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/edgard/lingobot/internal/completion"
	"github.com/edgard/lingobot/internal/config"
	"github.com/edgard/lingobot/internal/locales"
	"github.com/edgard/lingobot/internal/logger"
)

func TestTextHandlerHindiScenario(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	h := NewTextHandler(f.deps)
	ctx := context.Background()

	h(ctx, nil, textUpdate(42, "हिन्दी"))

	assert.Equal(t, "hi", f.language(t, 42))
	require.Len(t, f.tg.sent(), 1)
	assert.Equal(t, "✅ भाषा सेट की गई: 🇮🇳 Hindi", f.tg.sent()[0].Text)

	f.llm.On("Complete", mock.Anything, "Reply to this message in Hindi:\nHow are you?").
		Return("मैं **ठीक** हूँ", nil).Once()

	h(ctx, nil, textUpdate(42, "How are you?"))

	f.llm.AssertExpectations(t)
	sent := f.tg.sent()
	require.Len(t, sent, 3)
	assert.Equal(t, "🤖", sent[1].Text, "acknowledgment symbol")

	reply := sent[2]
	assert.Equal(t, models.ParseModeHTML, reply.ParseMode)
	assert.Equal(t, "मैं <b>ठीक</b> हूँ\n\n<i>🔖 @raj_dev_01 द्वारा संचालित</i>", reply.Text)
	require.NotNil(t, reply.ReplyParameters)
	assert.Equal(t, 10, reply.ReplyParameters.MessageID)

	f.tg.AssertCalled(t, "SendChatAction", mock.Anything, &bot.SendChatActionParams{ChatID: int64(42), Action: models.ChatActionTyping})
}

func TestTextHandlerDefaultLanguageWithoutSession(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.llm.On("Complete", mock.Anything, "Reply to this message in English:\nHello").Return("Hi!", nil).Once()

	NewTextHandler(f.deps)(context.Background(), nil, textUpdate(7, "Hello"))

	f.llm.AssertExpectations(t)
	texts := f.tg.sentTexts()
	require.NotEmpty(t, texts)
	assert.Equal(t, "Hi!\n\n<i>🔖 Powered by @raj_dev_01</i>", texts[len(texts)-1])
}

func TestTextHandlerRawPromptWithoutAnnotation(t *testing.T) {
	t.Parallel()

	f := newFixture(t, func(cfg *config.Config, _ *mockMessenger) {
		cfg.Completion.Provider = config.ProviderOpenAI
		cfg.Completion.AnnotateLanguage = false
	})
	require.NoError(t, f.sessions.SetLanguage(context.Background(), 7, "bn"))
	f.llm.On("Complete", mock.Anything, "Hello").Return("Hi!", nil).Once()

	NewTextHandler(f.deps)(context.Background(), nil, textUpdate(7, "Hello"))

	f.llm.AssertExpectations(t)
}

func TestTextHandlerLanguageStaysUntilChanged(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	h := NewTextHandler(f.deps)
	ctx := context.Background()

	h(ctx, nil, textUpdate(5, "  বাংলা "))
	f.llm.On("Complete", mock.Anything, "Reply to this message in Bengali:\nfirst").Return("one", nil).Once()
	f.llm.On("Complete", mock.Anything, "Reply to this message in Bengali:\nsecond").Return("two", nil).Once()
	h(ctx, nil, textUpdate(5, "first"))
	h(ctx, nil, textUpdate(5, "second"))

	h(ctx, nil, textUpdate(5, "🇬🇧 English"))
	f.llm.On("Complete", mock.Anything, "Reply to this message in English:\nthird").Return("three", nil).Once()
	h(ctx, nil, textUpdate(5, "third"))

	f.llm.AssertExpectations(t)
	assert.Equal(t, "en", f.language(t, 5))
	assert.Contains(t, f.tg.sentTexts(), "✅ Language set to: 🇬🇧 English")
}

func TestTextHandlerCompletionFailureSendsOnlyFallback(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
	}{
		{name: "auth", err: &completion.Error{Kind: completion.AuthFailure, Provider: "deepseek", StatusCode: 401, Err: errors.New("bad key")}},
		{name: "network", err: &completion.Error{Kind: completion.NetworkFailure, Provider: "deepseek", Err: context.DeadlineExceeded}},
		{name: "malformed", err: &completion.Error{Kind: completion.MalformedResponse, Provider: "deepseek", Err: errors.New("no choices")}},
		{name: "foreign error", err: errors.New("boom")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t)
			f.llm.On("Complete", mock.Anything, mock.Anything).Return("", tt.err).Once()

			NewTextHandler(f.deps)(context.Background(), nil, textUpdate(8, "Hello"))

			sent := f.tg.sent()
			require.Len(t, sent, 2)
			assert.Equal(t, f.msg("en", locales.MsgCompletionFailed, nil), sent[1].Text)
			assert.Empty(t, sent[1].ParseMode)
			assert.NotContains(t, sent[1].Text, "Powered by")
		})
	}
}

func TestTextHandlerProviderHTTPFailureEndToEnd(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `{"error":{"message":"boom"}}`},
		{name: "malformed json", status: http.StatusOK, body: `{"choices": [`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			f := newFixture(t)
			client, err := completion.New(context.Background(), config.CompletionConfig{
				Provider:       config.ProviderDeepSeek,
				DeepSeekAPIKey: "sk-test",
				BaseURL:        srv.URL,
				Model:          config.DefaultDeepSeekModel,
				MaxTokens:      100,
				Timeout:        2 * time.Second,
			}, logger.Discard())
			require.NoError(t, err)
			f.deps.Completion = client

			NewTextHandler(f.deps)(context.Background(), nil, textUpdate(8, "Hello"))

			texts := f.tg.sentTexts()
			require.NotEmpty(t, texts)
			assert.Equal(t, "❌ Sorry, I couldn't get an answer right now. Please try again later.", texts[len(texts)-1])
		})
	}
}

func TestTextHandlerFallsBackToPlainTextWhenHTMLRejected(t *testing.T) {
	t.Parallel()

	f := newFixture(t, func(_ *config.Config, tg *mockMessenger) {
		tg.On("SendMessage", mock.Anything, mock.MatchedBy(func(p *bot.SendMessageParams) bool {
			return p.ParseMode == models.ParseModeHTML
		})).Return(nil, errors.New("Bad Request: can't parse entities"))
	})
	f.llm.On("Complete", mock.Anything, mock.Anything).Return("a <b> c", nil).Once()

	NewTextHandler(f.deps)(context.Background(), nil, textUpdate(9, "Hello"))

	sent := f.tg.sent()
	require.Len(t, sent, 3)
	assert.Equal(t, models.ParseModeHTML, sent[1].ParseMode)
	assert.Empty(t, sent[2].ParseMode)
	assert.Equal(t, "a <b> c\n\n🔖 Powered by @raj_dev_01", sent[2].Text)
}

func TestTextHandlerIgnoresCommandsAndEmptyText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		update *models.Update
	}{
		{name: "unknown command", update: textUpdate(1, "/unknown arg")},
		{name: "blank text", update: textUpdate(1, "   ")},
		{name: "no message", update: &models.Update{ID: 3}},
		{name: "no sender", update: &models.Update{ID: 4, Message: &models.Message{Text: "hi", Chat: models.Chat{ID: 1}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t)
			NewTextHandler(f.deps)(context.Background(), nil, tt.update)

			assert.Empty(t, f.tg.sent())
			f.llm.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
		})
	}
}

func TestTextHandlerFloodGuard(t *testing.T) {
	t.Parallel()

	f := newFixture(t, func(cfg *config.Config, _ *mockMessenger) {
		cfg.Bot.Flood = config.FloodConfig{Rate: 0.001, Burst: 1}
	})
	f.llm.On("Complete", mock.Anything, mock.Anything).Return("ok", nil).Once()

	h := NewTextHandler(f.deps)
	h(context.Background(), nil, textUpdate(3, "one"))
	h(context.Background(), nil, textUpdate(3, "two"))

	f.llm.AssertNumberOfCalls(t, "Complete", 1)
	texts := f.tg.sentTexts()
	assert.Equal(t, f.msg("en", locales.MsgSlowDown, nil), texts[len(texts)-1])

	// Language selection is never throttled.
	h(context.Background(), nil, textUpdate(3, "Hindi"))
	assert.Equal(t, "hi", f.language(t, 3))
}

func TestTextHandlerDefaultConfigAnswersEveryMessage(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123456:telegram-token")
	t.Setenv("DEEPSEEK_API_KEY", "sk-deepseek")
	t.Setenv("LINGOBOT_BOT_FLOOD_RATE", "")

	defaults, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	f := newFixture(t, func(cfg *config.Config, _ *mockMessenger) {
		cfg.Bot.Flood = defaults.Bot.Flood
	})
	f.llm.On("Complete", mock.Anything, mock.Anything).Return("ok", nil)

	h := NewTextHandler(f.deps)
	const messages = 5
	for range messages {
		h(context.Background(), nil, textUpdate(8, "How are you?"))
	}

	f.llm.AssertNumberOfCalls(t, "Complete", messages)
	assert.NotContains(t, f.tg.sentTexts(), f.msg("en", locales.MsgSlowDown, nil))
}

func TestIsFreeText(t *testing.T) {
	t.Parallel()

	assert.True(t, IsFreeText(textUpdate(1, "hello")))
	assert.True(t, IsFreeText(textUpdate(1, "हिन्दी")))
	assert.False(t, IsFreeText(textUpdate(1, "/start")))
	assert.False(t, IsFreeText(textUpdate(1, "")))
	assert.False(t, IsFreeText(&models.Update{}))
}
