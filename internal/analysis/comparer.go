package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/dshills/sitewatch/internal/cache"
	"github.com/dshills/sitewatch/internal/providers"
)

const (
	visionMaxTokens   = 4000
	visionTemperature = 0.1
)

// VisionComparer implements Comparer by asking a vision model to compare
// the two images.
type VisionComparer struct {
	Provider providers.Vision
	// Model is recorded in the cache key; it names the catalog entry rather
	// than whichever fallback ID answered.
	Model  string
	Cache  *cache.Cache
	Logger *slog.Logger
}

func (v *VisionComparer) logger() *slog.Logger {
	if v.Logger != nil {
		return v.Logger
	}
	return slog.Default()
}

// Compare sends both images with the monitoring prompt and parses the reply.
// Provider failures are returned as errors; an unparseable reply is not an
// error but an unknown-severity result.
func (v *VisionComparer) Compare(ctx context.Context, baselinePath, currentPath string, target Target) (Result, error) {
	baseline, err := os.ReadFile(baselinePath)
	if err != nil {
		return Result{}, fmt.Errorf("reading baseline image: %w", err)
	}
	current, err := os.ReadFile(currentPath)
	if err != nil {
		return Result{}, fmt.Errorf("reading current image: %w", err)
	}

	prompt := BuildPrompt(target)
	log := v.logger().With("provider", v.Provider.Name(), "model", v.Model)
	if target.Section != nil {
		log = log.With("tile", target.Section.Index)
	}

	key := cache.BuildCacheKey(v.Provider.Name(), v.Model, prompt, baseline, current)
	if content, ok := v.Cache.Get(key); ok {
		log.Debug("using cached response")
		return ParseResult(content), nil
	}

	start := time.Now()
	resp, err := v.Provider.Analyze(ctx, providers.VisionRequest{
		Prompt: prompt,
		Images: []providers.Image{
			{MediaType: http.DetectContentType(baseline), Data: baseline},
			{MediaType: http.DetectContentType(current), Data: current},
		},
		MaxTokens:   visionMaxTokens,
		Temperature: visionTemperature,
	})
	if err != nil {
		return Result{}, fmt.Errorf("%s analysis: %w", v.Provider.Name(), err)
	}
	log.Debug("model responded", "answeredBy", resp.Model, "tokens", resp.TokensUsed, "ms", time.Since(start).Milliseconds())

	r := ParseResult(resp.Content)
	if r.RawResponse == "" {
		if err := v.Cache.Put(key, resp.Content); err != nil {
			log.Warn("failed to write cache entry", "error", err)
		}
	}
	return r, nil
}
