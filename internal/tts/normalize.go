// Package tts provides the HTTP client for the external text-to-speech API.
package tts

import (
	"strings"
	"unicode"
)

// NormalizeText prepares raw input text for the TTS API: control characters
// are dropped, all runs of whitespace collapse to a single space, and leading
// and trailing whitespace is removed. The API charges per character and reads
// newlines as pauses, so normalization keeps output predictable across inputs
// that arrive with arbitrary formatting.
func NormalizeText(text string) string {
	var builder strings.Builder

	builder.Grow(len(text))

	for _, r := range text {
		switch {
		case unicode.IsControl(r):
			builder.WriteRune(' ')
		default:
			builder.WriteRune(r)
		}
	}

	return strings.Join(strings.Fields(builder.String()), " ")
}
