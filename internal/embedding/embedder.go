// Package embedding provides the embedding gateway: Ollama, ONNX, and a deterministic
// mock, plus an LRU-cached decorator.
package embedding

import (
	"context"
	"fmt"
	"strings"

	"github.com/hyperjump/docquiz/internal/config"
	"go.uber.org/zap"
)

// Embedder produces vector embeddings for text.
// EmbedBatch returns one vector per input, in input order.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}

// Provider names accepted in embedding.provider.
const (
	ProviderOllama = "ollama"
	ProviderONNX   = "onnx"
	ProviderMock   = "mock"
)

// New builds the embedder selected by cfg.Provider and wraps it in a cache when
// cfg.CacheSize is positive. A provider that cannot start falls back to the mock
// embedder with a warning so the service still runs offline.
func New(cfg config.EmbeddingConfig, logger *zap.Logger) (Embedder, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var (
		emb Embedder
		err error
	)
	switch strings.ToLower(cfg.Provider) {
	case ProviderOllama, "":
		emb = NewOllamaEmbedder(OllamaConfig{
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
			Timeout:    cfg.Timeout,
		})
	case ProviderONNX:
		emb, err = NewONNXEmbedder(cfg.ModelPath, cfg.Dimensions, cfg.MaxTokens)
		if err != nil {
			logger.Warn("onnx embedder unavailable, using mock embeddings",
				zap.String("model_path", cfg.ModelPath),
				zap.Error(err),
			)
			emb = NewMockEmbedder(cfg.Dimensions)
		}
	case ProviderMock:
		emb = NewMockEmbedder(cfg.Dimensions)
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s (supported: ollama, onnx, mock)", cfg.Provider)
	}
	logger.Info("embedder ready",
		zap.String("provider", cfg.Provider),
		zap.Int("dimensions", emb.Dimensions()),
	)
	if cfg.CacheSize > 0 {
		emb = NewCachedEmbedder(emb, cfg.CacheSize)
	}
	return emb, nil
}
