// Package session owns the single live document: its text, chunks, vector index and
// the outstanding quiz round.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hyperjump/docquiz/internal/config"
	"github.com/hyperjump/docquiz/internal/generation"
	"github.com/hyperjump/docquiz/internal/indexer"
	"github.com/hyperjump/docquiz/internal/models"
	"github.com/hyperjump/docquiz/internal/prompt"
	"github.com/hyperjump/docquiz/internal/vector"
	"github.com/hyperjump/docquiz/pkg/utils"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// TextExtractor turns uploaded bytes into text.
type TextExtractor interface {
	ExtractBytes(content []byte, filename string) (string, error)
}

// State is an immutable view of the live document and its index.
type State struct {
	Document *models.Document
	Index    *vector.ChunkIndex
}

// Session serialises ingestions and swaps each new document in atomically, so readers
// observe either the previous document or the new one, never a mix.
type Session struct {
	extractor TextExtractor
	embedder  vector.Embedder
	generator generation.Generator
	templates *prompt.Templates
	chunker   *indexer.Chunker
	cfg       config.SessionConfig
	indexType string
	logger    *zap.Logger

	ingestMu sync.Mutex

	mu    sync.RWMutex
	state *State
	quiz  models.QuizState
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithIndexType selects the vector index backend ("memory" or "faiss").
func WithIndexType(t string) Option {
	return func(s *Session) {
		s.indexType = t
	}
}

// New creates an empty session.
func New(
	extractor TextExtractor,
	embedder vector.Embedder,
	generator generation.Generator,
	templates *prompt.Templates,
	cfg config.SessionConfig,
	opts ...Option,
) *Session {
	if templates == nil {
		templates = prompt.Defaults()
	}
	s := &Session{
		extractor: extractor,
		embedder:  embedder,
		generator: generator,
		templates: templates,
		chunker:   indexer.NewChunker(cfg.ChunkMaxChars),
		cfg:       cfg,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ingest replaces the live document with the one in content. Extraction or indexing
// failure leaves the session empty. Summaries of the leading chunks are best effort:
// a chunk whose summary fails is logged and left out.
func (s *Session) Ingest(ctx context.Context, content []byte, filename string) (*models.IngestResult, error) {
	s.ingestMu.Lock()
	defer s.ingestMu.Unlock()

	start := time.Now()
	s.mu.Lock()
	s.quiz = models.QuizState{}
	s.mu.Unlock()

	doc, idx, err := s.build(ctx, content, filename)
	if err != nil {
		s.clear()
		s.logger.Warn("ingestion failed", zap.String("filename", filename), zap.Error(err))
		return nil, err
	}

	summary := s.summarize(ctx, doc.Chunks)

	s.mu.Lock()
	s.state = &State{Document: doc, Index: idx}
	s.quiz = models.QuizState{}
	s.mu.Unlock()

	s.logger.Info("document ingested",
		zap.String("document_id", doc.ID),
		zap.String("filename", filename),
		zap.Int("chunks", len(doc.Chunks)),
		zap.Int("chunk_max_chars", s.chunker.MaxChars()),
		zap.Int("text_chars", len([]rune(doc.RawText))),
		zap.Duration("took", time.Since(start)),
	)
	return &models.IngestResult{
		DocumentID: doc.ID,
		Filename:   filename,
		Chunks:     len(doc.Chunks),
		Summary:    summary,
	}, nil
}

func (s *Session) build(ctx context.Context, content []byte, filename string) (*models.Document, *vector.ChunkIndex, error) {
	text, err := s.extractor.ExtractBytes(content, filename)
	if err != nil {
		if !errors.Is(err, models.ErrExtractionFailure) {
			err = fmt.Errorf("%w: %v", models.ErrExtractionFailure, err)
		}
		return nil, nil, err
	}
	chunks := s.chunker.Chunk(text)
	if len(chunks) == 0 {
		return nil, nil, fmt.Errorf("%w: document contains no text", models.ErrExtractionFailure)
	}
	idx, err := vector.Build(ctx, s.embedder, chunks, s.indexType)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", models.ErrIndexBuild, err)
	}
	doc := &models.Document{
		ID:         uuid.NewString(),
		Filename:   filename,
		RawText:    text,
		Chunks:     chunks,
		IngestedAt: time.Now().UTC(),
	}
	return doc, idx, nil
}

// summarize generates one line per leading chunk, concurrently, keeping chunk order.
func (s *Session) summarize(ctx context.Context, chunks []models.Chunk) string {
	n := s.cfg.SummaryChunks
	if n > len(chunks) {
		n = len(chunks)
	}
	if n <= 0 || s.generator == nil {
		return ""
	}
	lines := make([]string, n)
	ok := make([]bool, n)

	var g errgroup.Group
	if s.cfg.SummaryConcurrency > 0 {
		g.SetLimit(s.cfg.SummaryConcurrency)
	}
	for i := 0; i < n; i++ {
		g.Go(func() error {
			p, err := s.templates.Summary(utils.PrefixRunes(chunks[i].Text, s.cfg.SummaryChunkChars))
			if err == nil {
				var out string
				out, err = s.generator.Generate(ctx, p, generation.Options{
					MaxTokens: s.cfg.SummaryMaxTokens,
					Stop:      []string{"\n"},
				})
				if err == nil {
					lines[i] = "- " + strings.TrimSpace(out)
					ok[i] = true
					return nil
				}
			}
			s.logger.Warn("chunk summary failed", zap.Int("chunk", i+1), zap.Error(err))
			return nil
		})
	}
	_ = g.Wait()

	kept := lines[:0]
	for i, line := range lines {
		if ok[i] {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

func (s *Session) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = nil
	s.quiz = models.QuizState{}
}

// Snapshot returns the live document and index, or ErrNoDocumentLoaded.
func (s *Session) Snapshot() (*State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state == nil {
		return nil, models.ErrNoDocumentLoaded
	}
	return s.state, nil
}

// Quiz returns the outstanding quiz round (the zero value when none).
func (s *Session) Quiz() models.QuizState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.quiz
}

// StoreQuiz records q as the outstanding round if docID is still the live document.
// It reports false when the document was replaced while the question was generated.
func (s *Session) StoreQuiz(docID string, q models.QuizState) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil || s.state.Document.ID != docID {
		return false
	}
	s.quiz = q
	return true
}

// Status describes the live session.
func (s *Session) Status() models.Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := models.Status{QuizReady: s.quiz.Ready()}
	if s.state == nil {
		return st
	}
	doc := s.state.Document
	st.Loaded = true
	st.DocumentID = doc.ID
	st.Filename = doc.Filename
	st.Chunks = len(doc.Chunks)
	st.IngestedAt = doc.IngestedAt
	st.VectorIndexSize = s.state.Index.Size()
	st.VectorIndexType = s.state.Index.Type()
	st.Dimensions = s.state.Index.Dimensions()
	return st
}

// Close releases the live index.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return nil
	}
	return s.state.Index.Close()
}
