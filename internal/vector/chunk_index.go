package vector

import (
	"context"
	"fmt"

	"github.com/hyperjump/docquiz/internal/models"
)

// Embedder is the subset of the embedding gateway the chunk index needs.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
}

// ChunkIndex is the per-document semantic index: vector i is the embedding of chunk i.
// It is built once per document and never updated.
type ChunkIndex struct {
	embedder Embedder
	index    VectorIndex
	count    int
}

// Build embeds every chunk with one batch call and indexes the vectors in chunk order.
func Build(ctx context.Context, embedder Embedder, chunks []models.Chunk, indexType string) (*ChunkIndex, error) {
	if len(chunks) == 0 {
		return nil, fmt.Errorf("no chunks to index")
	}
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	dim := embedder.Dimensions()
	if len(vectors[0]) > 0 {
		dim = len(vectors[0])
	}
	idx, err := NewVectorIndex(indexType, dim)
	if err != nil {
		return nil, err
	}
	if err := idx.Add(ctx, vectors); err != nil {
		_ = idx.Close()
		return nil, fmt.Errorf("add vectors: %w", err)
	}
	return &ChunkIndex{embedder: embedder, index: idx, count: len(chunks)}, nil
}

// Query returns up to k chunk positions nearest to text, nearest first. k is clamped to
// the number of indexed chunks and any position outside [0, count) is dropped.
func (c *ChunkIndex) Query(ctx context.Context, text string, k int) ([]int, error) {
	if c == nil || c.index == nil {
		return nil, models.ErrIndexNotReady
	}
	if k <= 0 {
		return nil, nil
	}
	if k > c.count {
		k = c.count
	}
	q, err := c.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	hits, err := c.index.Search(ctx, q, k)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	positions := make([]int, 0, len(hits))
	for _, h := range hits {
		if h.Position < 0 || h.Position >= c.count {
			continue
		}
		positions = append(positions, h.Position)
	}
	return positions, nil
}

// Size returns the number of indexed chunks, or 0 for a nil index.
func (c *ChunkIndex) Size() int {
	if c == nil || c.index == nil {
		return 0
	}
	return c.index.Size()
}

// Dimensions returns the vector dimension, or 0 for a nil index.
func (c *ChunkIndex) Dimensions() int {
	if c == nil || c.index == nil {
		return 0
	}
	return c.index.Dimensions()
}

// Type returns the backing index type.
func (c *ChunkIndex) Type() string {
	if c == nil || c.index == nil {
		return ""
	}
	return c.index.Type()
}

// Close releases the backing index.
func (c *ChunkIndex) Close() error {
	if c == nil || c.index == nil {
		return nil
	}
	return c.index.Close()
}
