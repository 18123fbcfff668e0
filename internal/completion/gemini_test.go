package completion

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/edgard/lingobot/internal/config"
	"github.com/edgard/lingobot/internal/logger"
)

func geminiConfig(baseURL string) config.CompletionConfig {
	return config.CompletionConfig{
		Provider:     config.ProviderGemini,
		GeminiAPIKey: "gm-test",
		BaseURL:      baseURL,
		Model:        config.DefaultGeminiModel,
		MaxTokens:    100,
		Temperature:  0.7,
		Timeout:      2 * time.Second,
	}
}

func TestGeminiClientComplete(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/models/"+config.DefaultGeminiModel+":generateContent"), r.URL.Path)
		writeJSON(w, http.StatusOK, `{"candidates":[{"content":{"role":"model","parts":[{"text":"thinking...","thought":true},{"text":" Hola, "},{"text":"amigo "}]}}]}`)
	}))
	defer srv.Close()

	client, err := NewGeminiClient(context.Background(), geminiConfig(srv.URL), logger.Discard())
	require.NoError(t, err)

	reply, err := client.Complete(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "Hola, amigo", reply)
}

func TestGeminiClientErrorKinds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		status   int
		body     string
		wantKind Kind
	}{
		{name: "unauthenticated", status: http.StatusUnauthorized, body: `{"error":{"code":401,"message":"bad key","status":"UNAUTHENTICATED"}}`, wantKind: AuthFailure},
		{name: "permission denied", status: http.StatusForbidden, body: `{"error":{"code":403,"message":"denied","status":"PERMISSION_DENIED"}}`, wantKind: AuthFailure},
		{name: "bad request", status: http.StatusBadRequest, body: `{"error":{"code":400,"message":"bad","status":"INVALID_ARGUMENT"}}`, wantKind: MalformedResponse},
		{name: "no candidates", status: http.StatusOK, body: `{"candidates":[]}`, wantKind: MalformedResponse},
		{name: "only thoughts", status: http.StatusOK, body: `{"candidates":[{"content":{"role":"model","parts":[{"text":"hmm","thought":true}]}}]}`, wantKind: MalformedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, tt.status, tt.body)
			}))
			defer srv.Close()

			client, err := NewGeminiClient(context.Background(), geminiConfig(srv.URL), logger.Discard())
			require.NoError(t, err)

			_, err = client.Complete(context.Background(), "hi")
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, KindOf(err))
		})
	}
}

func TestNewGeminiClientRequiresKey(t *testing.T) {
	t.Parallel()

	cfg := geminiConfig("")
	cfg.GeminiAPIKey = ""
	_, err := NewGeminiClient(context.Background(), cfg, logger.Discard())
	assert.Error(t, err)
}

func TestExtractText(t *testing.T) {
	t.Parallel()

	_, err := extractText(nil)
	assert.Error(t, err)

	_, err = extractText(&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}})
	assert.Error(t, err)

	text, err := extractText(&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		Content: &genai.Content{Parts: []*genai.Part{{Text: "a"}, nil, {Text: "b"}}},
	}}})
	require.NoError(t, err)
	assert.Equal(t, "ab", text)
}
