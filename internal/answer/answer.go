// Package answer answers free-form questions grounded in the live document.
package answer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hyperjump/docquiz/internal/config"
	"github.com/hyperjump/docquiz/internal/generation"
	"github.com/hyperjump/docquiz/internal/models"
	"github.com/hyperjump/docquiz/internal/prompt"
	"github.com/hyperjump/docquiz/internal/session"
	"github.com/hyperjump/docquiz/pkg/utils"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// UnavailableText replaces the answer when the generation gateway fails.
const UnavailableText = "[LLM error: unable to generate response]"

// contextSeparator joins retrieved chunks in the prompt context.
const contextSeparator = "\n---\n"

// Snapshotter exposes the live document.
type Snapshotter interface {
	Snapshot() (*session.State, error)
}

// Service answers questions from the top-k nearest chunks.
type Service struct {
	sessions  Snapshotter
	generator generation.Generator
	templates *prompt.Templates
	cfg       config.AnswerConfig
	cache     *cache.Cache
	logger    *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService creates an answering service. A negative cfg.CacheTTL disables the answer cache.
func NewService(sessions Snapshotter, generator generation.Generator, templates *prompt.Templates, cfg config.AnswerConfig, opts ...Option) *Service {
	if templates == nil {
		templates = prompt.Defaults()
	}
	if cfg.TopK <= 0 {
		cfg.TopK = 3
	}
	if cfg.MaxContextChars <= 0 {
		cfg.MaxContextChars = 1500
	}
	if cfg.CitationChars <= 0 {
		cfg.CitationChars = 80
	}
	s := &Service{
		sessions:  sessions,
		generator: generator,
		templates: templates,
		cfg:       cfg,
		logger:    zap.NewNop(),
	}
	if cfg.CacheTTL >= 0 {
		ttl := cfg.CacheTTL
		if ttl == 0 {
			ttl = cache.NoExpiration
		}
		s.cache = cache.New(ttl, 2*maxDuration(ttl, time.Minute))
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Answer retrieves the chunks nearest to question and asks the generator for an answer
// using only that context. A generation failure is not an error: the result is marked
// Unavailable and carries a fallback text.
func (s *Service) Answer(ctx context.Context, question string) (*models.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: question is empty", models.ErrInvalidInput)
	}
	st, err := s.sessions.Snapshot()
	if err != nil {
		return nil, err
	}
	key := st.Document.ID + "\x00" + question
	if s.cache != nil {
		if v, ok := s.cache.Get(key); ok {
			return v.(*models.Answer), nil
		}
	}

	positions, err := st.Index.Query(ctx, question, s.cfg.TopK)
	if err != nil {
		return nil, fmt.Errorf("retrieve chunks: %w", err)
	}
	if len(positions) == 0 {
		return nil, models.ErrIndexNotReady
	}
	texts := make([]string, len(positions))
	for i, p := range positions {
		texts[i] = st.Document.Chunks[p].Text
	}
	ctxText := utils.PrefixRunes(strings.Join(texts, contextSeparator), s.cfg.MaxContextChars)

	ans := &models.Answer{
		Citation: utils.Excerpt(texts[0], s.cfg.CitationChars),
		Chunks:   positions,
	}
	p, err := s.templates.Answer(ctxText, question)
	if err != nil {
		return nil, err
	}
	out, err := s.generator.Generate(ctx, p, generation.Options{
		MaxTokens: s.cfg.MaxTokens,
		Stop:      []string{"\n"},
	})
	if err != nil {
		s.logger.Warn("answer generation failed",
			zap.String("document_id", st.Document.ID),
			zap.Error(err),
		)
		ans.Text = UnavailableText
		ans.Unavailable = true
		return ans, nil
	}
	ans.Text = strings.TrimSpace(out)
	if s.cache != nil {
		s.cache.SetDefault(key, ans)
	}
	s.logger.Debug("question answered",
		zap.String("document_id", st.Document.ID),
		zap.Ints("chunks", positions),
	)
	return ans, nil
}

func maxDuration(a, b time.Duration) time.Duration {
	if a > b {
		return a
	}
	return b
}
