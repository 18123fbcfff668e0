package completion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/edgard/lingobot/internal/config"
)

// OpenAIClient talks to any OpenAI-compatible chat completions endpoint,
// which covers both OpenAI and DeepSeek.
type OpenAIClient struct {
	client      *openai.Client
	provider    string
	model       string
	maxTokens   int
	temperature float32
	timeout     time.Duration
	log         *slog.Logger
}

// NewOpenAIClient creates a client for the provider, endpoint and model in cfg.
func NewOpenAIClient(cfg config.CompletionConfig, log *slog.Logger) (*OpenAIClient, error) {
	apiKey := cfg.APIKey()
	if apiKey == "" {
		return nil, fmt.Errorf("%s API key is required", cfg.Provider)
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("%s model is required", cfg.Provider)
	}
	if log == nil {
		log = slog.Default()
	}

	oc := openai.DefaultConfig(apiKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}

	logger := log.With("component", "completion_client", "provider", cfg.Provider)
	logger.Info("Completion client initialized", "model", cfg.Model, "base_url", oc.BaseURL)

	return &OpenAIClient{
		client:      openai.NewClientWithConfig(oc),
		provider:    cfg.Provider,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
		log:         logger,
	}, nil
}

// Complete sends prompt as a single user message and returns the first choice.
func (c *OpenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", c.classify(err)
	}

	if len(resp.Choices) == 0 {
		return "", newError(c.provider, MalformedResponse, 0, errors.New("response has no choices"))
	}

	c.log.DebugContext(ctx, "Completion received",
		"duration", time.Since(start),
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
	)
	return cleanReply(c.provider, resp.Choices[0].Message.Content)
}

func (c *OpenAIClient) classify(err error) *Error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode > 0 {
		return newError(c.provider, kindForStatus(apiErr.HTTPStatusCode), apiErr.HTTPStatusCode, err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode > 0 {
		return newError(c.provider, kindForStatus(reqErr.HTTPStatusCode), reqErr.HTTPStatusCode, err)
	}

	if isTransportError(err) {
		return newError(c.provider, NetworkFailure, 0, err)
	}
	return newError(c.provider, MalformedResponse, 0, err)
}
