// Package indexer provides paragraph-aware document chunking.
package indexer

import (
	"strings"

	"github.com/hyperjump/docquiz/internal/models"
)

// DefaultMaxChars is the chunk length limit used when none is configured.
const DefaultMaxChars = 800

// Chunker splits text on blank lines into paragraphs and cuts any paragraph longer than
// maxChars into consecutive maxChars-sized segments plus a remainder. Lengths are in runes.
// No sentence or word boundaries are considered.
type Chunker struct {
	maxChars int
}

// NewChunker creates a chunker with the given maximum chunk length.
// A non-positive maxChars falls back to DefaultMaxChars.
func NewChunker(maxChars int) *Chunker {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	return &Chunker{maxChars: maxChars}
}

// MaxChars returns the chunk length limit.
func (c *Chunker) MaxChars() int {
	return c.maxChars
}

// Split returns the chunk texts in document order. Blank paragraphs are dropped and
// every returned chunk is non-empty and at most maxChars runes long.
func (c *Chunker) Split(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var chunks []string
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		runes := []rune(para)
		for len(runes) > c.maxChars {
			chunks = append(chunks, string(runes[:c.maxChars]))
			runes = runes[c.maxChars:]
		}
		if rest := string(runes); strings.TrimSpace(rest) != "" {
			chunks = append(chunks, rest)
		}
	}
	return chunks
}

// Chunk splits text and assigns each chunk its position.
func (c *Chunker) Chunk(text string) []models.Chunk {
	texts := c.Split(text)
	if len(texts) == 0 {
		return nil
	}
	chunks := make([]models.Chunk, len(texts))
	for i, t := range texts {
		chunks[i] = models.Chunk{Index: i, Text: t}
	}
	return chunks
}
