// Package completion sends a single prompt to a chat-completion provider and
// returns the text of the first choice.
package completion

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/edgard/lingobot/internal/config"
)

// Client produces one completion for one user prompt.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// BuildPrompt returns the text sent to the provider. With annotate set, the
// user text is prefixed with an instruction naming the reply language.
func BuildPrompt(text, languageName string, annotate bool) string {
	if !annotate || languageName == "" {
		return text
	}
	return fmt.Sprintf("Reply to this message in %s:\n%s", languageName, text)
}

// DisplayName is the provider name shown to users.
func DisplayName(provider string) string {
	switch provider {
	case config.ProviderDeepSeek:
		return "DeepSeek"
	case config.ProviderOpenAI:
		return "OpenAI"
	case config.ProviderGemini:
		return "Gemini"
	default:
		return provider
	}
}

// New builds the configured provider client wrapped with pacing and retries.
func New(ctx context.Context, cfg config.CompletionConfig, log *slog.Logger) (Client, error) {
	if log == nil {
		log = slog.Default()
	}

	var (
		base Client
		err  error
	)
	switch cfg.Provider {
	case config.ProviderDeepSeek, config.ProviderOpenAI:
		base, err = NewOpenAIClient(cfg, log)
	case config.ProviderGemini:
		base, err = NewGeminiClient(ctx, cfg, log)
	default:
		err = fmt.Errorf("unsupported completion provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	paced := NewPacedClient(base, cfg.RequestsPerSecond)
	return NewRetryingClient(paced, cfg.MaxRetries, cfg.RetryDelay, log), nil
}

// cleanReply trims the provider text and rejects empty answers.
func cleanReply(provider, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", newError(provider, MalformedResponse, 0, fmt.Errorf("empty completion content"))
	}
	return text, nil
}
