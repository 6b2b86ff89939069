package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/korag/internal/domain"
)

// chatCompletionRequest captures the fields of the outgoing request the
// deterministic decoding policy depends on.
type chatCompletionRequest struct {
	Model       string  `json:"model"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
	Seed        *int    `json:"seed"`
	N           int     `json:"n"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func chatServer(t *testing.T, text string, captured *chatCompletionRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		if captured != nil {
			if err := json.Unmarshal(body, captured); err != nil {
				t.Errorf("failed to decode request body: %v", err)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"model": "test-model",
			"choices": [{
				"index": 0,
				"message": {"role": "assistant", "content": ` + mustJSON(text) + `},
				"finish_reason": "stop"
			}],
			"usage": {"prompt_tokens": 50, "completion_tokens": 12, "total_tokens": 62}
		}`))
	}))
}

func mustJSON(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func TestGenerator_Generate(t *testing.T) {
	var captured chatCompletionRequest
	server := chatServer(t, "유엔은 1945년에 창설되었다.", &captured)
	defer server.Close()

	gen := NewGenerator(&GeneratorConfig{
		APIKey:       "test-key",
		BaseURL:      server.URL,
		Model:        "test-model",
		MaxNewTokens: 512,
		Seed:         42,
		Logger:       zap.NewNop(),
	})

	result, err := gen.Generate(context.Background(), "## 최종 질문: 유엔은 언제 창설되었나요?")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if result.Text != "유엔은 1945년에 창설되었다." {
		t.Errorf("unexpected text: %q", result.Text)
	}
	if result.PromptTokens != 50 || result.CompletionTokens != 12 {
		t.Errorf("unexpected usage: prompt=%d completion=%d", result.PromptTokens, result.CompletionTokens)
	}
}

func TestGenerator_DeterministicDecodingParams(t *testing.T) {
	var captured chatCompletionRequest
	server := chatServer(t, "답변", &captured)
	defer server.Close()

	gen := NewGenerator(&GeneratorConfig{
		APIKey:       "test-key",
		BaseURL:      server.URL,
		Model:        "test-model",
		MaxNewTokens: 256,
		Seed:         42,
		Logger:       zap.NewNop(),
	})

	if _, err := gen.Generate(context.Background(), "질문"); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if captured.Model != "test-model" {
		t.Errorf("model = %q, expected test-model", captured.Model)
	}
	if captured.MaxTokens != 256 {
		t.Errorf("max_tokens = %d, expected 256", captured.MaxTokens)
	}
	if captured.Seed == nil || *captured.Seed != 42 {
		t.Errorf("seed = %v, expected 42", captured.Seed)
	}
	if captured.N != 1 {
		t.Errorf("n = %d, expected 1", captured.N)
	}
	// A literal zero temperature would be dropped by omitempty and fall
	// back to the server default; the request must carry an explicit
	// near-zero value instead.
	if captured.Temperature <= 0 || captured.Temperature > 1e-6 {
		t.Errorf("temperature = %g, expected a tiny positive value", captured.Temperature)
	}
	if len(captured.Messages) != 1 || captured.Messages[0].Role != "user" {
		t.Fatalf("unexpected messages: %+v", captured.Messages)
	}
	if captured.Messages[0].Content != "질문" {
		t.Errorf("prompt = %q, expected 질문", captured.Messages[0].Content)
	}
}

func TestGenerator_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"chatcmpl-1","object":"chat.completion","model":"test-model","choices":[]}`))
	}))
	defer server.Close()

	gen := NewGenerator(&GeneratorConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "test-model",
		Logger:  zap.NewNop(),
	})

	_, err := gen.Generate(context.Background(), "질문")
	if !errors.Is(err, domain.ErrGenerationFailure) {
		t.Fatalf("expected ErrGenerationFailure, got %v", err)
	}
}

func TestGenerator_ProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"message":"model is loading"}}`))
	}))
	defer server.Close()

	gen := NewGenerator(&GeneratorConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "test-model",
		Logger:  zap.NewNop(),
	})

	_, err := gen.Generate(context.Background(), "질문")
	if !errors.Is(err, domain.ErrGenerationFailure) {
		t.Fatalf("expected ErrGenerationFailure, got %v", err)
	}
}
