package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/hyperjump/docquiz/internal/cli"
	"github.com/spf13/cobra"
)

// Generation on a local model can take minutes.
const clientTimeout = 5 * time.Minute

func newClient(opts *rootOptions) *cli.Client {
	return cli.NewClient(opts.serverURL, clientTimeout)
}

func newUploadCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a document, replacing the loaded one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat(opts)
			if err != nil {
				return err
			}
			res, err := newClient(opts).Upload(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("upload failed: %w", err)
			}
			return cli.WriteIngestResult(cmd.OutOrStdout(), res, format)
		},
	}
}

func newAskCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question...>",
		Short: "Ask a question about the loaded document",
		Long:  "Asks a question about the loaded document. Multi-word questions work with or without quotes.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat(opts)
			if err != nil {
				return err
			}
			question := cli.JoinArgs(args)
			if question == "" {
				return errors.New("question must not be empty")
			}
			res, err := newClient(opts).Ask(cmd.Context(), question)
			if res != nil {
				if werr := cli.WriteAnswer(cmd.OutOrStdout(), res, format); werr != nil {
					return werr
				}
			}
			if err != nil {
				return fmt.Errorf("ask failed: %w", err)
			}
			return nil
		},
	}
}

func newQuizCmd(opts *rootOptions) *cobra.Command {
	quizCmd := &cobra.Command{
		Use:   "quiz",
		Short: "Generate and answer logic questions about the loaded document",
	}
	quizCmd.AddCommand(
		&cobra.Command{
			Use:   "question",
			Short: "Generate a new question, replacing any outstanding one",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				format, err := outputFormat(opts)
				if err != nil {
					return err
				}
				q, err := newClient(opts).QuizQuestion(cmd.Context())
				if err != nil {
					return fmt.Errorf("quiz question failed: %w", err)
				}
				return cli.WriteQuestion(cmd.OutOrStdout(), q, format)
			},
		},
		&cobra.Command{
			Use:   "answer <answer...>",
			Short: "Answer the outstanding question",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				format, err := outputFormat(opts)
				if err != nil {
					return err
				}
				v, err := newClient(opts).Evaluate(cmd.Context(), cli.JoinArgs(args))
				if err != nil {
					return fmt.Errorf("quiz answer failed: %w", err)
				}
				return cli.WriteVerdict(cmd.OutOrStdout(), v, format)
			},
		},
	)
	return quizCmd
}

func newStatusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the loaded document and index status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := outputFormat(opts)
			if err != nil {
				return err
			}
			s, err := newClient(opts).Status(cmd.Context())
			if err != nil {
				return fmt.Errorf("status failed: %w", err)
			}
			return cli.WriteStatus(cmd.OutOrStdout(), s, format)
		},
	}
}
