package config

import "time"

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Log.File != "" {
		if cfg.Log.MaxSizeMB == 0 {
			cfg.Log.MaxSizeMB = 10
		}
		if cfg.Log.MaxBackups == 0 {
			cfg.Log.MaxBackups = 5
		}
		if cfg.Log.MaxAgeDays == 0 {
			cfg.Log.MaxAgeDays = 30
		}
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "127.0.0.1"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 5000
	}
	if cfg.Server.MaxUploadBytes == 0 {
		cfg.Server.MaxUploadBytes = 32 << 20
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = 5 * time.Minute
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = "ollama"
	}
	if cfg.Embedding.BaseURL == "" {
		cfg.Embedding.BaseURL = "http://localhost:11434"
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "all-minilm"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 384
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 256
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 10000
	}
	if cfg.Embedding.Timeout == 0 {
		cfg.Embedding.Timeout = 30 * time.Second
	}
	if cfg.Generation.Provider == "" {
		cfg.Generation.Provider = "ollama"
	}
	if cfg.Generation.BaseURL == "" {
		cfg.Generation.BaseURL = "http://localhost:11434"
	}
	if cfg.Generation.Model == "" {
		if cfg.Generation.Provider == "gemini" {
			cfg.Generation.Model = "gemini-2.5-flash"
		} else {
			cfg.Generation.Model = "llama2:7b"
		}
	}
	if cfg.Generation.APIKeyEnv == "" {
		cfg.Generation.APIKeyEnv = "GEMINI_API_KEY"
	}
	if cfg.Generation.Timeout == 0 {
		cfg.Generation.Timeout = 120 * time.Second
	}
	if cfg.Generation.RequestsPerSecond > 0 && cfg.Generation.Burst == 0 {
		cfg.Generation.Burst = 1
	}
	if cfg.Vector.IndexType == "" {
		cfg.Vector.IndexType = "memory"
	}
	if cfg.Session.ChunkMaxChars == 0 {
		cfg.Session.ChunkMaxChars = 800
	}
	if cfg.Session.SummaryChunks == 0 {
		cfg.Session.SummaryChunks = 5
	}
	if cfg.Session.SummaryChunkChars == 0 {
		cfg.Session.SummaryChunkChars = 800
	}
	if cfg.Session.SummaryMaxTokens == 0 {
		cfg.Session.SummaryMaxTokens = 128
	}
	if cfg.Session.SummaryConcurrency == 0 {
		cfg.Session.SummaryConcurrency = 1
	}
	if cfg.Answer.TopK == 0 {
		cfg.Answer.TopK = 3
	}
	if cfg.Answer.MaxContextChars == 0 {
		cfg.Answer.MaxContextChars = 1500
	}
	if cfg.Answer.MaxTokens == 0 {
		cfg.Answer.MaxTokens = 128
	}
	if cfg.Answer.CitationChars == 0 {
		cfg.Answer.CitationChars = 80
	}
	if cfg.Answer.CacheTTL == 0 {
		cfg.Answer.CacheTTL = 10 * time.Minute
	}
	if cfg.Quiz.ContextChars == 0 {
		cfg.Quiz.ContextChars = 1000
	}
	if cfg.Quiz.MaxTokens == 0 {
		cfg.Quiz.MaxTokens = 150
	}
	if cfg.Watch.Extensions == nil {
		cfg.Watch.Extensions = []string{".pdf", ".txt", ".md", ".docx", ".xlsx"}
	}
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 400 * time.Millisecond
	}
}
