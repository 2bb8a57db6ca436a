package generation

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"
)

// DefaultGeminiModel is used when generation.model is empty.
const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiConfig configures GeminiGenerator.
type GeminiConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
	// Temperature applies when a request leaves Options.Temperature unset.
	Temperature float64
}

// GeminiGenerator generates through the Gemini API.
type GeminiGenerator struct {
	client      *genai.Client
	model       string
	timeout     time.Duration
	temperature float64
}

// NewGeminiGenerator creates a Gemini client. An empty API key is a startup error.
func NewGeminiGenerator(ctx context.Context, cfg GeminiConfig) (*GeminiGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: API key is not set")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultGeminiModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return &GeminiGenerator{
		client:      client,
		model:       cfg.Model,
		timeout:     cfg.Timeout,
		temperature: cfg.Temperature,
	}, nil
}

// Generate returns the text of the first candidate.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	genCfg := &genai.GenerateContentConfig{StopSequences: opts.Stop}
	if opts.MaxTokens > 0 {
		genCfg.MaxOutputTokens = int32(opts.MaxTokens)
	}
	if opts.Temperature <= 0 {
		opts.Temperature = g.temperature
	}
	if opts.Temperature > 0 {
		genCfg.Temperature = genai.Ptr(float32(opts.Temperature))
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), genCfg)
	if err != nil {
		return "", fmt.Errorf("gemini: generate: %w", err)
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("gemini: empty response")
	}
	return resp.Text(), nil
}

// Model returns the Gemini model name.
func (g *GeminiGenerator) Model() string {
	return g.model
}

// Close is a no-op; the genai client has nothing to release.
func (g *GeminiGenerator) Close() error {
	return nil
}
