// Package config provides configuration loading and structs for the docquiz server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug      bool             `yaml:"debug"`
	Log        LogConfig        `yaml:"log"`
	Server     ServerConfig     `yaml:"server"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Generation GenerationConfig `yaml:"generation"`
	Vector     VectorConfig     `yaml:"vector"`
	Session    SessionConfig    `yaml:"session"`
	Answer     AnswerConfig     `yaml:"answer"`
	Quiz       QuizConfig       `yaml:"quiz"`
	Prompts    PromptsConfig    `yaml:"prompts"`
	Watch      WatchConfig      `yaml:"watch"`
}

// LogConfig holds optional rotated log file settings.
type LogConfig struct {
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// EmbeddingConfig selects and configures the embedding gateway.
type EmbeddingConfig struct {
	// Provider is one of "ollama", "onnx", "mock".
	Provider   string        `yaml:"provider"`
	BaseURL    string        `yaml:"base_url"`
	Model      string        `yaml:"model"`
	ModelPath  string        `yaml:"model_path"`
	Dimensions int           `yaml:"dimensions"`
	MaxTokens  int           `yaml:"max_tokens"`
	CacheSize  int           `yaml:"cache_size"`
	Timeout    time.Duration `yaml:"timeout"`
}

// GenerationConfig selects and configures the generation gateway.
type GenerationConfig struct {
	// Provider is one of "ollama", "gemini".
	Provider    string        `yaml:"provider"`
	BaseURL     string        `yaml:"base_url"`
	Model       string        `yaml:"model"`
	APIKeyEnv   string        `yaml:"api_key_env"`
	Temperature float64       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
	// RequestsPerSecond limits outbound generation calls; 0 disables limiting.
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// VectorConfig holds vector index settings.
type VectorConfig struct {
	// IndexType is "memory" (default) or "faiss".
	IndexType string `yaml:"index_type"`
}

// SessionConfig holds ingestion settings.
type SessionConfig struct {
	ChunkMaxChars      int `yaml:"chunk_max_chars"`
	SummaryChunks      int `yaml:"summary_chunks"`
	SummaryChunkChars  int `yaml:"summary_chunk_chars"`
	SummaryMaxTokens   int `yaml:"summary_max_tokens"`
	SummaryConcurrency int `yaml:"summary_concurrency"`
}

// AnswerConfig holds answering settings.
type AnswerConfig struct {
	TopK            int `yaml:"top_k"`
	MaxContextChars int `yaml:"max_context_chars"`
	MaxTokens       int `yaml:"max_tokens"`
	CitationChars   int `yaml:"citation_chars"`
	// CacheTTL bounds how long answers are reused for a repeated question; negative disables caching.
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// QuizConfig holds quiz generation settings.
type QuizConfig struct {
	ContextChars int `yaml:"context_chars"`
	MaxTokens    int `yaml:"max_tokens"`
}

// PromptsConfig holds optional template override files. Empty paths use built-in templates.
type PromptsConfig struct {
	Summary string `yaml:"summary"`
	Answer  string `yaml:"answer"`
	Quiz    string `yaml:"quiz"`
}

// WatchConfig holds the auto-ingest directory settings.
type WatchConfig struct {
	Directory  string        `yaml:"directory"`
	Extensions []string      `yaml:"extensions"`
	Debounce   time.Duration `yaml:"debounce"`
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Log.File = expandPath(cfg.Log.File, configDir)
	cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, configDir)
	cfg.Prompts.Summary = expandPath(cfg.Prompts.Summary, configDir)
	cfg.Prompts.Answer = expandPath(cfg.Prompts.Answer, configDir)
	cfg.Prompts.Quiz = expandPath(cfg.Prompts.Quiz, configDir)
	cfg.Watch.Directory = expandPath(cfg.Watch.Directory, configDir)

	return &cfg, nil
}

// Default returns a config with every default applied, for running without a config file.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyEnv overrides selected settings from DOCQUIZ_* environment variables
// (typically populated from a .env file).
func ApplyEnv(cfg *Config) {
	if v := os.Getenv("DOCQUIZ_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Debug = b
		}
	}
	if v := os.Getenv("DOCQUIZ_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = p
		}
	}
	if v := os.Getenv("DOCQUIZ_OLLAMA_URL"); v != "" {
		if cfg.Embedding.Provider == "ollama" {
			cfg.Embedding.BaseURL = v
		}
		if cfg.Generation.Provider == "ollama" {
			cfg.Generation.BaseURL = v
		}
	}
	if v := os.Getenv("DOCQUIZ_GENERATION_PROVIDER"); v != "" && v != cfg.Generation.Provider {
		cfg.Generation.Provider = v
		// the previous provider's model name means nothing to the new one
		cfg.Generation.Model = ""
	}
	if v := os.Getenv("DOCQUIZ_GENERATION_MODEL"); v != "" {
		cfg.Generation.Model = v
	}
	if v := os.Getenv("DOCQUIZ_EMBEDDING_PROVIDER"); v != "" {
		cfg.Embedding.Provider = v
	}
	ApplyDefaults(cfg)
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory. Empty paths stay empty.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
