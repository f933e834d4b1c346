// Package core_test tests request validation for the speech-stitcher.
package core_test

import (
	"testing"

	"github.com/book-expert/speech-stitcher/internal/core"
	"github.com/stretchr/testify/require"
)

func TestStitchRequest_Validate_EmptyTexts(t *testing.T) {
	t.Parallel()

	req := core.StitchRequest{
		Texts:      nil,
		GapSeconds: core.DefaultGapSeconds,
		VoiceID:    "",
		OutputKey:  "",
	}

	err := req.Validate()
	require.ErrorIs(t, err, core.ErrNoTexts)
}

func TestStitchRequest_Validate_NegativeGap(t *testing.T) {
	t.Parallel()

	req := core.StitchRequest{
		Texts:      []string{"hello"},
		GapSeconds: -0.5,
		VoiceID:    "",
		OutputKey:  "",
	}

	err := req.Validate()
	require.ErrorIs(t, err, core.ErrNegativeGap)
}

func TestStitchRequest_Validate_OK(t *testing.T) {
	t.Parallel()

	req := core.StitchRequest{
		Texts:      []string{"hello", "world"},
		GapSeconds: 0,
		VoiceID:    "narrator",
		OutputKey:  "out.mp3",
	}

	require.NoError(t, req.Validate())
}
