package tts_test

import (
	"testing"

	"github.com/book-expert/speech-stitcher/internal/tts"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeText(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain text unchanged",
			input:    "hello world",
			expected: "hello world",
		},
		{
			name:     "collapses whitespace runs",
			input:    "hello \t  world",
			expected: "hello world",
		},
		{
			name:     "newlines become single spaces",
			input:    "line one\nline two\r\nline three",
			expected: "line one line two line three",
		},
		{
			name:     "trims surrounding whitespace",
			input:    "  padded  ",
			expected: "padded",
		},
		{
			name:     "whitespace only becomes empty",
			input:    " \n\t ",
			expected: "",
		},
		{
			name:     "empty stays empty",
			input:    "",
			expected: "",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, testCase.expected, tts.NormalizeText(testCase.input))
		})
	}
}
