package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/hyperjump/docquiz/internal/answer"
	"github.com/hyperjump/docquiz/internal/config"
	"github.com/hyperjump/docquiz/internal/embedding"
	"github.com/hyperjump/docquiz/internal/extract"
	"github.com/hyperjump/docquiz/internal/fileid"
	"github.com/hyperjump/docquiz/internal/generation"
	"github.com/hyperjump/docquiz/internal/prompt"
	"github.com/hyperjump/docquiz/internal/quiz"
	"github.com/hyperjump/docquiz/internal/server"
	"github.com/hyperjump/docquiz/internal/session"
	"github.com/hyperjump/docquiz/internal/vector"
	"github.com/hyperjump/docquiz/internal/watcher"
	"github.com/hyperjump/docquiz/pkg/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServerCmd(opts *rootOptions) *cobra.Command {
	var watchDir string
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Run the HTTP API",
		Long: `Runs the HTTP API that owns the live document session.
With --watch (or watch.directory in the config), documents created or modified in that
directory are ingested automatically, replacing the live document.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, path, err := loadConfig(opts.configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if watchDir != "" {
				cfg.Watch.Directory = watchDir
			}
			return runServer(cfg, path, opts.debug)
		},
	}
	cmd.Flags().StringVar(&watchDir, "watch", "", "directory to auto-ingest documents from")
	return cmd
}

func runServer(cfg *config.Config, configPath string, debugFlag bool) error {
	debugMode := cfg.Debug || debugFlag
	logger, err := utils.NewLoggerWithFile(debugMode, utils.LogFileConfig{
		Path:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("config loaded",
		zap.String("config_path", configPath),
		zap.Bool("debug", debugMode),
		zap.String("embedding_provider", cfg.Embedding.Provider),
		zap.String("generation_provider", cfg.Generation.Provider),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	components, err := initializeComponents(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize components: %w", err)
	}
	defer components.Close()

	if cfg.Watch.Directory != "" {
		w := watcher.NewWatcher(
			cfg.Watch.Directory,
			cfg.Watch.Extensions,
			(&watchIngestor{session: components.Session, logger: logger}).ingest(ctx),
			watcher.WithDebounce(cfg.Watch.Debounce),
			watcher.WithLogger(logger),
		)
		if err := w.Start(ctx); err != nil {
			return fmt.Errorf("failed to start watcher: %w", err)
		}
		defer w.Stop()
		logger.Info("watching for documents", zap.String("dir", w.Dir()))
	}

	srv := server.NewServer(components.Session, components.Answers, components.Quiz, &cfg.Server, logger)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Stop(shutdownCtx)
}

// watchIngestor replaces the live document with files reported by the watcher,
// skipping a file whose path and content match the last one ingested.
type watchIngestor struct {
	session *session.Session
	logger  *zap.Logger

	mu   sync.Mutex
	last string
}

func (w *watchIngestor) ingest(ctx context.Context) func(path string) {
	return func(path string) {
		content, err := os.ReadFile(path)
		if err != nil {
			w.logger.Warn("watch read failed", zap.String("path", path), zap.Error(err))
			return
		}
		w.mu.Lock()
		defer w.mu.Unlock()
		id := fileid.Fingerprint(path, content)
		if id == w.last {
			w.logger.Debug("watch skipped unchanged file", zap.String("path", path))
			return
		}
		if _, err := w.session.Ingest(ctx, content, filepath.Base(path)); err != nil {
			w.logger.Warn("watch ingest failed", zap.String("path", path), zap.Error(err))
			w.last = ""
			return
		}
		w.last = id
	}
}

// Components holds the wired services of a running server.
type Components struct {
	Embedder  embedding.Embedder
	Generator generation.Generator
	Session   *session.Session
	Answers   *answer.Service
	Quiz      *quiz.Service
}

// Close releases the session index and the gateway clients.
func (c *Components) Close() {
	if c.Session != nil {
		_ = c.Session.Close()
	}
	if c.Generator != nil {
		_ = c.Generator.Close()
	}
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
}

func initializeComponents(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Components, error) {
	templates, err := prompt.Load(cfg.Prompts)
	if err != nil {
		return nil, err
	}

	indexType := cfg.Vector.IndexType
	if indexType == "faiss" && !vector.IsFAISSAvailable() {
		logger.Warn("FAISS not available in this build, using memory index")
		indexType = "memory"
	}

	embedder, err := embedding.New(cfg.Embedding, logger)
	if err != nil {
		return nil, err
	}
	generator, err := generation.New(ctx, cfg.Generation, logger)
	if err != nil {
		_ = embedder.Close()
		return nil, err
	}

	sess := session.New(extract.NewExtractor(), embedder, generator, templates, cfg.Session,
		session.WithLogger(logger),
		session.WithIndexType(indexType),
	)
	return &Components{
		Embedder:  embedder,
		Generator: generator,
		Session:   sess,
		Answers:   answer.NewService(sess, generator, templates, cfg.Answer, answer.WithLogger(logger)),
		Quiz:      quiz.NewService(sess, generator, templates, cfg.Quiz, quiz.WithLogger(logger)),
	}, nil
}
