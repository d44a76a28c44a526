package providers

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// OpenAI implements the Vision interface on top of go-openai's chat
// completion client.
type OpenAI struct {
	model  string
	client *openai.Client
}

// NewOpenAI creates a new OpenAI provider.
func NewOpenAI(model string) (*OpenAI, error) {
	key := os.Getenv("OPENAI_API_KEY")
	if key == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable is not set")
	}
	return newOpenAIClient(key, os.Getenv("SITEWATCH_OPENAI_BASE_URL"), model, &http.Client{Timeout: 180 * time.Second}), nil
}

func newOpenAIClient(apiKey, baseURL, model string, hc *http.Client) *OpenAI {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	if hc != nil {
		cfg.HTTPClient = hc
	}
	return &OpenAI{model: model, client: openai.NewClientWithConfig(cfg)}
}

func (o *OpenAI) Name() string { return "openai" }

func (o *OpenAI) Analyze(ctx context.Context, req VisionRequest) (VisionResponse, error) {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 4096
	}

	parts := []openai.ChatMessagePart{{Type: openai.ChatMessagePartTypeText, Text: req.Prompt}}
	for _, img := range req.Images {
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL:    dataURL(img),
				Detail: openai.ImageURLDetailHigh,
			},
		})
	}

	creq := openai.ChatCompletionRequest{
		Model: o.model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, MultiContent: parts},
		},
	}
	// Reasoning models reject max_tokens and a custom temperature.
	if isReasoningModel(o.model) {
		creq.MaxCompletionTokens = maxTokens
	} else {
		creq.MaxTokens = maxTokens
		creq.Temperature = float32(req.Temperature)
	}

	var resp VisionResponse
	err := retryWithBackoff(ctx, 3, func() error {
		result, err := o.client.CreateChatCompletion(ctx, creq)
		if err != nil {
			return classifyOpenAIError(err)
		}
		if len(result.Choices) == 0 {
			return fmt.Errorf("no choices in response")
		}
		if result.Choices[0].Message.Content == "" {
			return fmt.Errorf("empty text content in API response")
		}
		resp = VisionResponse{
			Content:    result.Choices[0].Message.Content,
			TokensUsed: result.Usage.TotalTokens,
			Model:      o.model,
		}
		return nil
	})

	return resp, err
}

func isReasoningModel(model string) bool {
	for _, p := range []string{"o1", "o3", "o4", "gpt-5"} {
		if strings.HasPrefix(model, p) {
			return true
		}
	}
	return false
}

func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if cerr := classifyStatus(apiErr.HTTPStatusCode, apiErr.Message); cerr != nil {
			return cerr
		}
		return fmt.Errorf("API error (status %d): %s", apiErr.HTTPStatusCode, apiErr.Message)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if cerr := classifyStatus(reqErr.HTTPStatusCode, reqErr.Error()); cerr != nil {
			return cerr
		}
	}
	return fmt.Errorf("creating chat completion: %w", err)
}

func dataURL(img Image) string {
	return "data:" + mediaType(img) + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}
