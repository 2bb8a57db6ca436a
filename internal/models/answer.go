package models

import "fmt"

// Answer is a grounded answer with a citation of the nearest retrieved chunk.
type Answer struct {
	Text     string `json:"answer"`
	Citation string `json:"citation"`
	// Chunks are the retrieved chunk indices, nearest first.
	Chunks []int `json:"chunks"`
	// Unavailable is set when the generation gateway failed; Text then holds a fallback message.
	Unavailable bool `json:"unavailable,omitempty"`
}

// Formatted renders the answer followed by its source excerpt.
func (a *Answer) Formatted() string {
	if a.Citation == "" {
		return a.Text
	}
	return fmt.Sprintf("%s (Source: %q)", a.Text, a.Citation)
}
