// Package utils provides shared utilities for text, math, and logging.
package utils

import "strings"

// Truncate returns s truncated to maxLen characters, with "..." appended if truncated.
// If maxLen is 0 or negative, returns s unchanged. Lengths are counted in runes.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}

// PrefixRunes returns the first n runes of s (all of s when it is shorter).
func PrefixRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// Excerpt returns the first n runes of s with newlines flattened to spaces and "..."
// always appended, marking it as a fragment of a longer text.
func Excerpt(s string, n int) string {
	return strings.ReplaceAll(PrefixRunes(s, n), "\n", " ") + "..."
}
