package usecase

import (
	"regexp"
	"strings"
)

const (
	maxCleanTextLen  = 1000
	truncationMarker = "..."
)

var controlChars = regexp.MustCompile(`[\x00-\x1f\x7f-\x9f]`)

// CleanText normalizes free text before it reaches the database. All
// persistence goes through parameterized queries; this is defense-in-depth
// normalization, not the injection barrier.
//
// Quotes are doubled, newlines/carriage-returns/tabs collapse to spaces,
// remaining control characters are stripped, and the result is capped at 1000
// characters plus a truncation marker. Never fails; empty in, empty out.
func CleanText(text string) string {
	if text == "" {
		return ""
	}

	text = strings.ReplaceAll(text, "'", "''")
	text = strings.ReplaceAll(text, `"`, `""`)
	text = strings.ReplaceAll(text, "\n", " ")
	text = strings.ReplaceAll(text, "\r", " ")
	text = strings.ReplaceAll(text, "\t", " ")

	text = controlChars.ReplaceAllString(text, "")

	if runes := []rune(text); len(runes) > maxCleanTextLen {
		text = string(runes[:maxCleanTextLen]) + truncationMarker
	}

	return strings.TrimSpace(text)
}
