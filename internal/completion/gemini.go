package completion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/edgard/lingobot/internal/config"
)

// GeminiClient produces completions with the Gemini API.
type GeminiClient struct {
	genaiClient   *genai.Client
	model         string
	contentConfig *genai.GenerateContentConfig
	timeout       time.Duration
	log           *slog.Logger
}

// NewGeminiClient creates a Gemini client from cfg.
func NewGeminiClient(ctx context.Context, cfg config.CompletionConfig, log *slog.Logger) (*GeminiClient, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if log == nil {
		log = slog.Default()
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions.BaseURL = cfg.BaseURL
	}

	gi, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	temperature := cfg.Temperature
	contentConfig := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: int32(cfg.MaxTokens),
	}

	logger := log.With("component", "completion_client", "provider", config.ProviderGemini)
	logger.Info("Completion client initialized", "model", cfg.Model)

	return &GeminiClient{
		genaiClient:   gi,
		model:         cfg.Model,
		contentConfig: contentConfig,
		timeout:       cfg.Timeout,
		log:           logger,
	}, nil
}

// Complete sends prompt as a single user turn and returns the text of the
// first candidate.
func (c *GeminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}
	resp, err := c.genaiClient.Models.GenerateContent(ctx, c.model, contents, c.contentConfig)
	if err != nil {
		return "", c.classify(err)
	}

	text, err := extractText(resp)
	if err != nil {
		return "", newError(config.ProviderGemini, MalformedResponse, 0, err)
	}
	return cleanReply(config.ProviderGemini, text)
}

func (c *GeminiClient) classify(err error) *Error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code > 0 {
		return newError(config.ProviderGemini, kindForStatus(apiErr.Code), apiErr.Code, err)
	}
	if isTransportError(err) {
		return newError(config.ProviderGemini, NetworkFailure, 0, err)
	}
	return newError(config.ProviderGemini, MalformedResponse, 0, err)
}

func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", errors.New("response has no candidates")
	}
	candidate := resp.Candidates[0]
	if candidate == nil || candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", errors.New("first candidate has no content")
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil && part.Text != "" && !part.Thought {
			sb.WriteString(part.Text)
		}
	}
	return sb.String(), nil
}
