package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func openAIServer(t *testing.T, handler func(w http.ResponseWriter, body map[string]any)) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %q, want /v1/chat/completions", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("Authorization = %q", r.Header.Get("Authorization"))
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		handler(w, body)
	}))
	t.Cleanup(server.Close)
	return server
}

const openAIReply = `{"id":"x","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"{\"has_changes\":true}"},"finish_reason":"stop"}],"usage":{"prompt_tokens":40,"completion_tokens":2,"total_tokens":42}}`

func TestOpenAI_Analyze(t *testing.T) {
	server := openAIServer(t, func(w http.ResponseWriter, body map[string]any) {
		if body["model"] != "gpt-4o" {
			t.Errorf("model = %v", body["model"])
		}
		if body["max_tokens"] != float64(4096) {
			t.Errorf("max_tokens = %v, want 4096", body["max_tokens"])
		}
		msgs := body["messages"].([]any)
		parts := msgs[0].(map[string]any)["content"].([]any)
		if len(parts) != 3 {
			t.Fatalf("expected text and two images, got %d parts", len(parts))
		}
		img := parts[1].(map[string]any)["image_url"].(map[string]any)
		if url, _ := img["url"].(string); !strings.HasPrefix(url, "data:image/png;base64,") {
			t.Errorf("image url = %q, want a PNG data URL", url)
		}
		w.Write([]byte(openAIReply))
	})

	o := newOpenAIClient("test-key", server.URL+"/v1", "gpt-4o", server.Client())
	resp, err := o.Analyze(context.Background(), VisionRequest{
		Prompt: "compare",
		Images: []Image{{Data: pngMagic}, {Data: pngMagic}},
	})
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}
	if resp.Content != `{"has_changes":true}` {
		t.Errorf("Content = %q", resp.Content)
	}
	if resp.TokensUsed != 42 {
		t.Errorf("TokensUsed = %d, want 42", resp.TokensUsed)
	}
}

func TestOpenAI_ReasoningModelUsesCompletionTokens(t *testing.T) {
	server := openAIServer(t, func(w http.ResponseWriter, body map[string]any) {
		if _, ok := body["max_tokens"]; ok {
			t.Error("reasoning models must not receive max_tokens")
		}
		if body["max_completion_tokens"] != float64(1000) {
			t.Errorf("max_completion_tokens = %v", body["max_completion_tokens"])
		}
		w.Write([]byte(openAIReply))
	})

	o := newOpenAIClient("test-key", server.URL+"/v1", "o4-mini", server.Client())
	if _, err := o.Analyze(context.Background(), VisionRequest{Prompt: "p", MaxTokens: 1000}); err != nil {
		t.Fatalf("Analyze error: %v", err)
	}
}

func TestOpenAI_AuthError(t *testing.T) {
	server := openAIServer(t, func(w http.ResponseWriter, body map[string]any) {
		w.WriteHeader(401)
		w.Write([]byte(`{"error":{"message":"Incorrect API key","type":"invalid_request_error"}}`))
	})

	o := newOpenAIClient("test-key", server.URL+"/v1", "gpt-4o", server.Client())
	_, err := o.Analyze(context.Background(), VisionRequest{Prompt: "p"})
	if !IsAuthError(err) {
		t.Fatalf("expected auth error, got %v", err)
	}
}

func TestOpenAI_RateLimitRetry(t *testing.T) {
	fastBackoff(t)
	attempts := 0
	server := openAIServer(t, func(w http.ResponseWriter, body map[string]any) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(429)
			w.Write([]byte(`{"error":{"message":"slow down","type":"rate_limit_error"}}`))
			return
		}
		w.Write([]byte(openAIReply))
	})

	o := newOpenAIClient("test-key", server.URL+"/v1", "gpt-4o", server.Client())
	if _, err := o.Analyze(context.Background(), VisionRequest{Prompt: "p"}); err != nil {
		t.Fatalf("Analyze error: %v", err)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
}

func TestIsReasoningModel(t *testing.T) {
	tests := map[string]bool{
		"gpt-4o":      false,
		"gpt-4.1":     false,
		"o1-preview":  true,
		"o3":          true,
		"o4-mini":     true,
		"gpt-5-mini":  true,
		"llava:13b":   false,
		"claude-opus": false,
	}
	for model, want := range tests {
		if got := isReasoningModel(model); got != want {
			t.Errorf("isReasoningModel(%q) = %v, want %v", model, got, want)
		}
	}
}
