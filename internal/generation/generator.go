// Package generation provides the text generation gateway over Ollama and Gemini.
package generation

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/hyperjump/docquiz/internal/config"
	"go.uber.org/zap"
)

// Options bound a single completion.
type Options struct {
	// MaxTokens caps the generated length; 0 leaves the backend default.
	MaxTokens int
	// Stop ends generation at the first occurrence of any sequence. The sequence itself
	// is not part of the returned text.
	Stop        []string
	Temperature float64
}

// Generator produces a completion for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts Options) (string, error)
	Model() string
	Close() error
}

// Provider names accepted in generation.provider.
const (
	ProviderOllama = "ollama"
	ProviderGemini = "gemini"
)

// New builds the generator selected by cfg.Provider, wrapped in a rate limiter when
// cfg.RequestsPerSecond is positive.
func New(ctx context.Context, cfg config.GenerationConfig, logger *zap.Logger) (Generator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var (
		gen Generator
		err error
	)
	switch strings.ToLower(cfg.Provider) {
	case ProviderOllama, "":
		gen = NewOllamaGenerator(OllamaConfig{
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Timeout:     cfg.Timeout,
			Temperature: cfg.Temperature,
		})
	case ProviderGemini:
		keyEnv := cfg.APIKeyEnv
		if keyEnv == "" {
			keyEnv = "GEMINI_API_KEY"
		}
		gen, err = NewGeminiGenerator(ctx, GeminiConfig{
			APIKey:      os.Getenv(keyEnv),
			Model:       cfg.Model,
			Timeout:     cfg.Timeout,
			Temperature: cfg.Temperature,
		})
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown generation provider: %s (supported: ollama, gemini)", cfg.Provider)
	}
	logger.Info("generator ready",
		zap.String("provider", cfg.Provider),
		zap.String("model", gen.Model()),
	)
	if cfg.RequestsPerSecond > 0 {
		gen = NewRateLimited(gen, cfg.RequestsPerSecond, cfg.Burst)
	}
	return gen, nil
}
