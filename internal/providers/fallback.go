package providers

import (
	"context"
	"errors"
	"log/slog"
)

// Fallback tries each provider in order until one answers. An auth error
// stops the walk since every model shares the same credentials.
type Fallback struct {
	chain  []Vision
	logger *slog.Logger
}

// NewFallback returns a Fallback over chain.
func NewFallback(chain []Vision, logger *slog.Logger) *Fallback {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fallback{chain: chain, logger: logger}
}

func (f *Fallback) Name() string {
	if len(f.chain) == 0 {
		return "fallback"
	}
	return f.chain[0].Name()
}

func (f *Fallback) Analyze(ctx context.Context, req VisionRequest) (VisionResponse, error) {
	if len(f.chain) == 0 {
		return VisionResponse{}, errors.New("no providers configured")
	}
	var lastErr error
	for i, v := range f.chain {
		resp, err := v.Analyze(ctx, req)
		if err == nil {
			if i > 0 {
				f.logger.Info("fallback model succeeded", "provider", v.Name(), "model", resp.Model)
			}
			return resp, nil
		}
		lastErr = err
		if IsAuthError(err) || ctx.Err() != nil {
			return VisionResponse{}, err
		}
		f.logger.Warn("model failed, trying next", "provider", v.Name(), "attempt", i+1, "error", err)
	}
	return VisionResponse{}, lastErr
}
