package models

import "strings"

// Sentinel values stored when the generated quiz text could not be parsed.
const (
	UnparsedQuestion = "[could not extract logic question]"
	UnknownAnswer    = "unknown"
)

// QuizState holds the single outstanding quiz round. The zero value is the Empty state.
type QuizState struct {
	Question string `json:"question,omitempty"`
	Answer   string `json:"-"`
	// Degraded marks a round whose generation output could not be parsed.
	// Evaluating a degraded round is always incorrect.
	Degraded bool `json:"degraded,omitempty"`
}

// Ready reports whether a question has been generated.
func (q QuizState) Ready() bool {
	return q.Answer != ""
}

// Verdict is the result of evaluating a submitted answer.
type Verdict struct {
	Correct       bool   `json:"correct"`
	CorrectAnswer string `json:"correct_answer"`
}

// NormalizeAnswer trims surrounding whitespace and lower-cases s for comparison.
func NormalizeAnswer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
