package completion

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/lingobot/internal/config"
	"github.com/edgard/lingobot/internal/logger"
)

func deepseekConfig(baseURL string) config.CompletionConfig {
	return config.CompletionConfig{
		Provider:       config.ProviderDeepSeek,
		DeepSeekAPIKey: "sk-test",
		BaseURL:        baseURL,
		Model:          config.DefaultDeepSeekModel,
		MaxTokens:      100,
		Temperature:    0.7,
		Timeout:        2 * time.Second,
		RetryDelay:     time.Millisecond,
	}
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestOpenAIClientComplete(t *testing.T) {
	t.Parallel()

	var got struct {
		Model       string  `json:"model"`
		MaxTokens   int     `json:"max_tokens"`
		Temperature float32 `json:"temperature"`
		Messages    []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeJSON(w, http.StatusOK, `{"choices":[{"index":0,"message":{"role":"assistant","content":"  नमस्ते! मैं ठीक हूँ।  "}}]}`)
	}))
	defer srv.Close()

	client, err := NewOpenAIClient(deepseekConfig(srv.URL), logger.Discard())
	require.NoError(t, err)

	prompt := BuildPrompt("How are you?", "Hindi", true)
	reply, err := client.Complete(context.Background(), prompt)
	require.NoError(t, err)

	assert.Equal(t, "नमस्ते! मैं ठीक हूँ।", reply)
	assert.Equal(t, "deepseek-chat", got.Model)
	assert.Equal(t, 100, got.MaxTokens)
	assert.InDelta(t, 0.7, got.Temperature, 0.0001)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, "Reply to this message in Hindi:\nHow are you?", got.Messages[0].Content)
}

func TestOpenAIClientErrorKinds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		status   int
		body     string
		wantKind Kind
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"error":{"message":"bad key","type":"auth"}}`, wantKind: AuthFailure},
		{name: "forbidden plain body", status: http.StatusForbidden, body: `forbidden`, wantKind: AuthFailure},
		{name: "server error", status: http.StatusInternalServerError, body: `{"error":{"message":"boom","type":"server"}}`, wantKind: NetworkFailure},
		{name: "bad gateway html", status: http.StatusBadGateway, body: `<html>bad gateway</html>`, wantKind: NetworkFailure},
		{name: "rate limited", status: http.StatusTooManyRequests, body: `{"error":{"message":"slow down","type":"rate"}}`, wantKind: NetworkFailure},
		{name: "bad request", status: http.StatusBadRequest, body: `{"error":{"message":"bad","type":"invalid"}}`, wantKind: MalformedResponse},
		{name: "malformed json", status: http.StatusOK, body: `{"choices": [`, wantKind: MalformedResponse},
		{name: "no choices", status: http.StatusOK, body: `{"choices":[]}`, wantKind: MalformedResponse},
		{name: "empty content", status: http.StatusOK, body: `{"choices":[{"message":{"role":"assistant","content":"   "}}]}`, wantKind: MalformedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, tt.status, tt.body)
			}))
			defer srv.Close()

			client, err := NewOpenAIClient(deepseekConfig(srv.URL), logger.Discard())
			require.NoError(t, err)

			_, err = client.Complete(context.Background(), "hello")
			require.Error(t, err)

			var cErr *Error
			require.ErrorAs(t, err, &cErr)
			assert.Equal(t, tt.wantKind, cErr.Kind)
			assert.Equal(t, config.ProviderDeepSeek, cErr.Provider)
		})
	}
}

func TestOpenAIClientTimeoutIsNetworkFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
		writeJSON(w, http.StatusOK, `{"choices":[{"message":{"content":"late"}}]}`)
	}))
	defer srv.Close()

	cfg := deepseekConfig(srv.URL)
	cfg.Timeout = 50 * time.Millisecond
	client, err := NewOpenAIClient(cfg, logger.Discard())
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), "hello")
	assert.Equal(t, NetworkFailure, KindOf(err))
}

func TestOpenAIClientUnreachableIsNetworkFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client, err := NewOpenAIClient(deepseekConfig(url), logger.Discard())
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), "hello")
	assert.Equal(t, NetworkFailure, KindOf(err))
}

func TestNewOpenAIClientRequiresKey(t *testing.T) {
	t.Parallel()

	cfg := deepseekConfig("http://localhost")
	cfg.DeepSeekAPIKey = ""
	_, err := NewOpenAIClient(cfg, logger.Discard())
	assert.Error(t, err)
}

func TestNewRetriesServerErrorsEndToEnd(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			writeJSON(w, http.StatusServiceUnavailable, `{"error":{"message":"overloaded"}}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"choices":[{"message":{"role":"assistant","content":"finally"}}]}`)
	}))
	defer srv.Close()

	cfg := deepseekConfig(srv.URL)
	cfg.MaxRetries = 2
	client, err := New(context.Background(), cfg, logger.Discard())
	require.NoError(t, err)

	reply, err := client.Complete(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "finally", reply)
	assert.Equal(t, int32(3), calls.Load())
}

func TestNewDoesNotRetryAuthFailure(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusUnauthorized, `{"error":{"message":"invalid api key"}}`)
	}))
	defer srv.Close()

	cfg := deepseekConfig(srv.URL)
	cfg.MaxRetries = 3
	client, err := New(context.Background(), cfg, logger.Discard())
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), "hello")
	assert.Equal(t, AuthFailure, KindOf(err))
	assert.Equal(t, int32(1), calls.Load())
}

func TestNewRejectsUnknownProvider(t *testing.T) {
	t.Parallel()

	cfg := deepseekConfig("http://localhost")
	cfg.Provider = "llama"
	_, err := New(context.Background(), cfg, logger.Discard())
	assert.Error(t, err)
}
