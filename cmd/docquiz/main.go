// Package main is the docquiz CLI entry point.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/hyperjump/docquiz/internal/cli"
	"github.com/hyperjump/docquiz/internal/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var version = "dev"

const (
	defaultConfigPath = "/usr/local/etc/docquiz/config.yaml"
	defaultServerURL  = "http://127.0.0.1:5000"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	debug      bool
	serverURL  string
	output     string
}

func main() {
	// .env is optional; it only supplies API keys and DOCQUIZ_* overrides.
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "docquiz",
		Short: "Ask questions about a document and quiz yourself on it",
		Long: `docquiz ingests one document (PDF, DOCX, XLSX or text), answers questions
grounded in its content, and generates logic questions to test comprehension.

Run "docquiz server" to start the API; the other commands talk to it.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", defaultConfigPath, "config file path")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")
	root.PersistentFlags().StringVar(&opts.serverURL, "server", defaultServerURL, "server URL for client commands")
	root.PersistentFlags().StringVarP(&opts.output, "output", "o", "text", "output format: text or json")

	root.AddCommand(
		newServerCmd(opts),
		newUploadCmd(opts),
		newAskCmd(opts),
		newQuizCmd(opts),
		newStatusCmd(opts),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("docquiz version %s\n", version)
		},
	}
}

// loadConfig loads config from path. When path is the default, config.yaml in the current
// directory takes precedence if present; when neither exists, built-in defaults are used.
// Environment overrides are applied last. Returns the config and the path actually loaded
// ("" for defaults).
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, err := os.Getwd(); err == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, err := os.Stat(fallback); err == nil {
				path = fallback
			}
		}
	}
	cfg, err := config.Load(path)
	switch {
	case err == nil:
	case path == defaultConfigPath && errors.Is(err, fs.ErrNotExist):
		cfg, path = config.Default(), ""
	default:
		return nil, "", err
	}
	config.ApplyEnv(cfg)
	return cfg, path, nil
}

func outputFormat(opts *rootOptions) (cli.OutputFormat, error) {
	f, err := cli.ParseOutputFormat(opts.output)
	if err != nil {
		return "", fmt.Errorf("--output: %w", err)
	}
	return f, nil
}
