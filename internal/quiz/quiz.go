// Package quiz generates one logic question per round from the live document and
// checks submitted answers against it.
package quiz

import (
	"context"
	"fmt"
	"strings"

	"github.com/hyperjump/docquiz/internal/config"
	"github.com/hyperjump/docquiz/internal/generation"
	"github.com/hyperjump/docquiz/internal/models"
	"github.com/hyperjump/docquiz/internal/prompt"
	"github.com/hyperjump/docquiz/internal/session"
	"github.com/hyperjump/docquiz/pkg/utils"
	"go.uber.org/zap"
)

// Store is the part of the session the quiz service reads and writes.
type Store interface {
	Snapshot() (*session.State, error)
	Quiz() models.QuizState
	StoreQuiz(docID string, q models.QuizState) bool
}

// Service runs quiz rounds.
type Service struct {
	store     Store
	generator generation.Generator
	templates *prompt.Templates
	cfg       config.QuizConfig
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

// NewService creates a quiz service.
func NewService(store Store, generator generation.Generator, templates *prompt.Templates, cfg config.QuizConfig, opts ...Option) *Service {
	if templates == nil {
		templates = prompt.Defaults()
	}
	if cfg.ContextChars <= 0 {
		cfg.ContextChars = 1000
	}
	s := &Service{
		store:     store,
		generator: generator,
		templates: templates,
		cfg:       cfg,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generate starts a new round and returns its question. Output that does not follow the
// two-line format yields a degraded round rather than an error. A gateway failure
// returns ErrGenerationUnavailable and keeps the previous round.
func (s *Service) Generate(ctx context.Context) (string, error) {
	st, err := s.store.Snapshot()
	if err != nil {
		return "", err
	}
	p, err := s.templates.Quiz(utils.PrefixRunes(st.Document.RawText, s.cfg.ContextChars))
	if err != nil {
		return "", err
	}
	out, err := s.generator.Generate(ctx, p, generation.Options{
		MaxTokens: s.cfg.MaxTokens,
		Stop:      []string{prompt.QuestionLabel, prompt.AnswerLabel},
	})
	if err != nil {
		s.logger.Warn("quiz generation failed", zap.String("document_id", st.Document.ID), zap.Error(err))
		return "", fmt.Errorf("%w: %v", models.ErrGenerationUnavailable, err)
	}

	round := Parse(out)
	if round.Degraded {
		s.logger.Warn("quiz output not in question/answer format",
			zap.String("document_id", st.Document.ID),
			zap.String("output", utils.Truncate(out, 200)),
		)
	}
	if !s.store.StoreQuiz(st.Document.ID, round) {
		return "", fmt.Errorf("%w: document replaced while generating, retry", models.ErrGenerationUnavailable)
	}
	return round.Question, nil
}

// Parse extracts a round from generated text. Both labels must be present; the question
// is the text before the first answer label without the question label, and the answer
// is the text after it up to any further answer label.
func Parse(text string) models.QuizState {
	text = strings.TrimSpace(text)
	if !strings.Contains(text, prompt.QuestionLabel) || !strings.Contains(text, prompt.AnswerLabel) {
		return degraded()
	}
	parts := strings.SplitN(text, prompt.AnswerLabel, 3)
	question := strings.TrimSpace(strings.ReplaceAll(parts[0], prompt.QuestionLabel, ""))
	answer := strings.TrimSpace(parts[1])
	if question == "" || answer == "" {
		return degraded()
	}
	return models.QuizState{Question: question, Answer: answer}
}

func degraded() models.QuizState {
	return models.QuizState{
		Question: models.UnparsedQuestion,
		Answer:   models.UnknownAnswer,
		Degraded: true,
	}
}

// Evaluate compares userAnswer with the stored answer after trimming and lower-casing.
// A degraded round is never answered correctly. The round is left unchanged.
func (s *Service) Evaluate(userAnswer string) (*models.Verdict, error) {
	round := s.store.Quiz()
	if !round.Ready() {
		return nil, models.ErrNoQuestionGenerated
	}
	if strings.TrimSpace(userAnswer) == "" {
		return nil, fmt.Errorf("%w: answer is empty", models.ErrInvalidInput)
	}
	correct := !round.Degraded && models.NormalizeAnswer(userAnswer) == models.NormalizeAnswer(round.Answer)
	return &models.Verdict{Correct: correct, CorrectAnswer: round.Answer}, nil
}
