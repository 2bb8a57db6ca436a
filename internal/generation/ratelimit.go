package generation

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// RateLimited throttles calls to an underlying generator with a token bucket.
type RateLimited struct {
	inner   Generator
	limiter *rate.Limiter
}

// NewRateLimited allows rps requests per second with the given burst (at least 1).
func NewRateLimited(inner Generator, rps float64, burst int) *RateLimited {
	if burst < 1 {
		burst = 1
	}
	return &RateLimited{inner: inner, limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

// Generate waits for a token, then delegates. A cancelled wait returns the context error.
func (r *RateLimited) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}
	return r.inner.Generate(ctx, prompt, opts)
}

// Model returns the underlying model name.
func (r *RateLimited) Model() string { return r.inner.Model() }

// Close closes the underlying generator.
func (r *RateLimited) Close() error { return r.inner.Close() }
