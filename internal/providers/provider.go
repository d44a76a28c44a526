package providers

import (
	"context"
	"fmt"
	"strings"
)

// Image is one image attached to a vision request.
type Image struct {
	MediaType string
	Data      []byte
}

// VisionRequest contains the prompt and images sent to a vision model.
type VisionRequest struct {
	Prompt      string
	Images      []Image
	MaxTokens   int
	Temperature float64
}

// VisionResponse contains the raw text reply of a vision model.
type VisionResponse struct {
	Content    string
	TokensUsed int
	Model      string
}

// Vision is the provider abstraction interface.
type Vision interface {
	Analyze(ctx context.Context, req VisionRequest) (VisionResponse, error)
	Name() string
}

// New creates a provider by name. Each model ID gets its own client; with
// more than one ID the clients are tried in order by a Fallback.
func New(provider string, modelIDs []string) (Vision, error) {
	ids := make([]string, 0, len(modelIDs))
	for _, id := range modelIDs {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("no model configured for provider %s", provider)
	}

	chain := make([]Vision, 0, len(ids))
	for _, id := range ids {
		v, err := newSingle(provider, id)
		if err != nil {
			return nil, err
		}
		chain = append(chain, v)
	}
	if len(chain) == 1 {
		return chain[0], nil
	}
	return NewFallback(chain, nil), nil
}

func newSingle(provider, model string) (Vision, error) {
	switch provider {
	case "anthropic":
		return NewAnthropic(model)
	case "openai":
		return NewOpenAI(model)
	case "gemini", "google":
		return NewGemini(model)
	case "ollama", "lmstudio":
		return NewOllama(model)
	default:
		return nil, fmt.Errorf("unknown provider: %s", provider)
	}
}
