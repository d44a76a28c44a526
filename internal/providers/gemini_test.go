package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGemini_Analyze(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/gemini-2.5-flash:generateContent" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") != "gkey" {
			t.Error("missing API key header")
		}
		if r.URL.RawQuery != "" {
			t.Error("API key must not be sent in the query string")
		}
		var body geminiRequest
		json.NewDecoder(r.Body).Decode(&body)
		parts := body.Contents[0].Parts
		if len(parts) != 3 || parts[1].InlineData == nil || parts[1].InlineData.MimeType != "image/png" {
			t.Fatalf("unexpected parts: %+v", parts)
		}
		json.NewEncoder(w).Encode(geminiResponse{
			Candidates:    []geminiCandidate{{Content: geminiContent{Parts: []geminiPart{{Text: "{}"}}}}},
			UsageMetadata: geminiUsage{TotalTokenCount: 7},
		})
	}))
	defer server.Close()

	g := &Gemini{apiKey: "gkey", model: "gemini-2.5-flash", baseURL: server.URL, client: server.Client()}
	resp, err := g.Analyze(context.Background(), VisionRequest{
		Prompt: "p",
		Images: []Image{{Data: pngMagic}, {Data: pngMagic}},
	})
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}
	if resp.Content != "{}" || resp.TokensUsed != 7 {
		t.Errorf("resp = %+v", resp)
	}
}

func TestGemini_NoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	g := &Gemini{apiKey: "k", model: "m", baseURL: server.URL, client: server.Client()}
	if _, err := g.Analyze(context.Background(), VisionRequest{Prompt: "p"}); err == nil {
		t.Fatal("expected error for empty candidates")
	}
}
