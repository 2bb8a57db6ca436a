package answer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/hyperjump/docquiz/internal/config"
	"github.com/hyperjump/docquiz/internal/embedding"
	"github.com/hyperjump/docquiz/internal/extract"
	"github.com/hyperjump/docquiz/internal/generation"
	"github.com/hyperjump/docquiz/internal/models"
	"github.com/hyperjump/docquiz/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	calls   int
	prompts []string
	opts    []generation.Options
	out     string
	err     error
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string, opts generation.Options) (string, error) {
	f.calls++
	f.prompts = append(f.prompts, prompt)
	f.opts = append(f.opts, opts)
	return f.out, f.err
}
func (f *fakeGenerator) Model() string { return "fake" }
func (f *fakeGenerator) Close() error  { return nil }

func answerConfig() config.AnswerConfig {
	return config.AnswerConfig{TopK: 3, MaxContextChars: 1500, MaxTokens: 128, CitationChars: 80, CacheTTL: -1}
}

// loadedSession ingests text with summaries disabled.
func loadedSession(t *testing.T, text string) *session.Session {
	t.Helper()
	s := session.New(extract.NewExtractor(), embedding.NewMockEmbedder(32), &fakeGenerator{}, nil, config.SessionConfig{ChunkMaxChars: 800})
	_, err := s.Ingest(context.Background(), []byte(text), "doc.txt")
	require.NoError(t, err)
	return s
}

func TestAnswer_InvalidInput(t *testing.T) {
	svc := NewService(loadedSession(t, "text"), &fakeGenerator{out: "x"}, nil, answerConfig())
	for _, q := range []string{"", "   ", "\n\t"} {
		_, err := svc.Answer(context.Background(), q)
		assert.ErrorIs(t, err, models.ErrInvalidInput)
	}
}

func TestAnswer_NoDocument(t *testing.T) {
	empty := session.New(extract.NewExtractor(), embedding.NewMockEmbedder(8), &fakeGenerator{}, nil, config.SessionConfig{})
	gen := &fakeGenerator{out: "x"}
	_, err := NewService(empty, gen, nil, answerConfig()).Answer(context.Background(), "What?")
	assert.ErrorIs(t, err, models.ErrNoDocumentLoaded)
	assert.Zero(t, gen.calls)
}

func TestAnswer_GroundedPromptAndCitation(t *testing.T) {
	text := "Alpha paragraph\nwith a line break.\n\nBeta paragraph.\n\nGamma paragraph.\n\nDelta paragraph."
	gen := &fakeGenerator{out: "  It is alpha.  "}
	svc := NewService(loadedSession(t, text), gen, nil, answerConfig())

	ans, err := svc.Answer(context.Background(), "Alpha paragraph\nwith a line break.")
	require.NoError(t, err)
	assert.Equal(t, "It is alpha.", ans.Text)
	assert.False(t, ans.Unavailable)
	require.Len(t, ans.Chunks, 3)
	// The mock embedder maps identical text to identical vectors, so the chunk equal
	// to the question is nearest.
	assert.Equal(t, 0, ans.Chunks[0])
	assert.Equal(t, "Alpha paragraph with a line break....", ans.Citation)

	require.Len(t, gen.prompts, 1)
	p := gen.prompts[0]
	assert.True(t, strings.HasPrefix(p, "Context:\nAlpha paragraph\nwith a line break.\n---\n"))
	assert.Contains(t, p, "\n\nQuestion: Alpha paragraph\nwith a line break.\n")
	assert.True(t, strings.HasSuffix(p, "Answer using only the context and cite the part used."))
	assert.Equal(t, 128, gen.opts[0].MaxTokens)
	assert.Equal(t, []string{"\n"}, gen.opts[0].Stop)
	assert.Equal(t, `It is alpha. (Source: "Alpha paragraph with a line break....")`, ans.Formatted())
}

func TestAnswer_ContextTruncatedAfterJoin(t *testing.T) {
	text := strings.Repeat("a", 800) + "\n\n" + strings.Repeat("b", 800) + "\n\n" + strings.Repeat("c", 800)
	gen := &fakeGenerator{out: "ok"}
	svc := NewService(loadedSession(t, text), gen, nil, answerConfig())

	_, err := svc.Answer(context.Background(), "letters")
	require.NoError(t, err)
	p := gen.prompts[0]
	ctxText := strings.TrimPrefix(p[:strings.Index(p, "\n\nQuestion:")], "Context:\n")
	assert.Equal(t, 1500, len([]rune(ctxText)))
	assert.Contains(t, ctxText, "\n---\n")
}

func TestAnswer_FewerChunksThanTopK(t *testing.T) {
	gen := &fakeGenerator{out: "ok"}
	svc := NewService(loadedSession(t, "only one paragraph"), gen, nil, answerConfig())
	ans, err := svc.Answer(context.Background(), "anything")
	require.NoError(t, err)
	assert.Equal(t, []int{0}, ans.Chunks)
	assert.NotContains(t, gen.prompts[0], "---")
}

func TestAnswer_GenerationFailureIsUnavailable(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("timeout")}
	svc := NewService(loadedSession(t, "The sky is blue."), gen, nil, answerConfig())
	ans, err := svc.Answer(context.Background(), "What colour is the sky?")
	require.NoError(t, err)
	assert.True(t, ans.Unavailable)
	assert.Equal(t, UnavailableText, ans.Text)
	assert.Equal(t, "The sky is blue....", ans.Citation)
}

func TestAnswer_Cache(t *testing.T) {
	cfg := answerConfig()
	cfg.CacheTTL = 0
	gen := &fakeGenerator{out: "cached"}
	svc := NewService(loadedSession(t, "Some document."), gen, nil, cfg)
	ctx := context.Background()

	_, err := svc.Answer(ctx, "What is it?")
	require.NoError(t, err)
	ans, err := svc.Answer(ctx, "  What is it?  ")
	require.NoError(t, err)
	assert.Equal(t, "cached", ans.Text)
	assert.Equal(t, 1, gen.calls)

	// Unavailable answers are not cached.
	gen.err = errors.New("down")
	_, _ = svc.Answer(ctx, "other question")
	_, _ = svc.Answer(ctx, "other question")
	assert.Equal(t, 3, gen.calls)
}

func TestAnswer_CacheKeepsCase(t *testing.T) {
	cfg := answerConfig()
	cfg.CacheTTL = 0
	gen := &fakeGenerator{out: "answer"}
	svc := NewService(loadedSession(t, "ALPHA is a protocol. Alpha is a letter."), gen, nil, cfg)
	ctx := context.Background()

	_, err := svc.Answer(ctx, "What is ALPHA?")
	require.NoError(t, err)
	_, err = svc.Answer(ctx, "what is alpha?")
	require.NoError(t, err)
	assert.Equal(t, 2, gen.calls)

	_, err = svc.Answer(ctx, "What is ALPHA?")
	require.NoError(t, err)
	assert.Equal(t, 2, gen.calls)
}

func TestAnswer_CacheDisabled(t *testing.T) {
	gen := &fakeGenerator{out: "fresh"}
	svc := NewService(loadedSession(t, "Some document."), gen, nil, answerConfig())
	for i := 0; i < 2; i++ {
		_, err := svc.Answer(context.Background(), "q")
		require.NoError(t, err)
	}
	assert.Equal(t, 2, gen.calls)
}
