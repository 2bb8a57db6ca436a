// Package cli provides the HTTP client and output formatting used by the docquiz CLI.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/docquiz/internal/models"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat validates a --output flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(strings.TrimSpace(s))) {
	case OutputText, "":
		return OutputText, nil
	case OutputJSON:
		return OutputJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q; use text or json", s)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteIngestResult writes the result of an upload.
func WriteIngestResult(w io.Writer, res *models.IngestResult, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, res)
	}
	fmt.Fprintf(w, "Loaded %s (%d chunks, id %s)\n", res.Filename, res.Chunks, res.DocumentID)
	if res.Summary != "" {
		fmt.Fprintf(w, "\nSummary:\n%s\n", res.Summary)
	}
	return nil
}

// WriteAnswer writes an answer with its source excerpt.
func WriteAnswer(w io.Writer, ans *AnswerResult, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, ans)
	}
	if ans.Formatted != "" {
		fmt.Fprintln(w, ans.Formatted)
		return nil
	}
	fmt.Fprintln(w, ans.Answer)
	return nil
}

// WriteQuestion writes a generated quiz question.
func WriteQuestion(w io.Writer, question string, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, map[string]string{"question": question})
	}
	fmt.Fprintf(w, "Question: %s\n", question)
	return nil
}

// WriteVerdict writes the evaluation of a quiz answer.
func WriteVerdict(w io.Writer, v *models.Verdict, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, v)
	}
	if v.Correct {
		fmt.Fprintln(w, "Correct!")
		return nil
	}
	fmt.Fprintf(w, "Incorrect. Expected: %s\n", v.CorrectAnswer)
	return nil
}

// WriteStatus writes the server's session status.
func WriteStatus(w io.Writer, s *models.Status, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, s)
	}
	if !s.Loaded {
		fmt.Fprintln(w, "No document loaded.")
		return nil
	}
	fmt.Fprintf(w, "Document:     %s (%s)\n", s.Filename, s.DocumentID)
	fmt.Fprintf(w, "Ingested:     %s\n", s.IngestedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Chunks:       %d\n", s.Chunks)
	fmt.Fprintf(w, "Vector index: %s, %d vectors, %d dims\n", s.VectorIndexType, s.VectorIndexSize, s.Dimensions)
	fmt.Fprintf(w, "Quiz ready:   %t\n", s.QuizReady)
	return nil
}

// JoinArgs joins positional args with spaces so multi-word input works with or without quoting.
func JoinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
