// Package core defines the core business logic and interfaces for the speech-stitcher.
package core

import (
	"context"
	"errors"
)

// DefaultGapSeconds is the silence gap used when a request omits one.
const DefaultGapSeconds = 1.0

// Validation errors for stitch requests.
var (
	// ErrNoTexts indicates that the request carried no texts to synthesize.
	ErrNoTexts = errors.New("texts cannot be empty")
	// ErrNegativeGap indicates that the requested gap duration is negative.
	ErrNegativeGap = errors.New("gap seconds cannot be negative")
)

// StitchRequest describes a single batch of texts to convert into one
// concatenated speech file. Texts are synthesized in order; a silence gap of
// GapSeconds is inserted between consecutive clips.
type StitchRequest struct {
	Texts      []string
	GapSeconds float64
	VoiceID    string
	OutputKey  string
}

// Validate checks the request before any external call is made. Defaults for
// voice and output key are resolved later by the pipeline; the only hard
// requirements are a non-empty text list and a non-negative gap.
func (r *StitchRequest) Validate() error {
	if len(r.Texts) == 0 {
		return ErrNoTexts
	}

	if r.GapSeconds < 0 {
		return ErrNegativeGap
	}

	return nil
}

// StitchResult reports where the assembled audio landed and how it was built.
type StitchResult struct {
	Bucket     string
	Key        string
	ClipCount  int
	GapSeconds float64
}

// ObjectStore defines the interface for interacting with a key-value blob store.
type ObjectStore interface {
	Download(ctx context.Context, key string) ([]byte, error)
	Upload(ctx context.Context, key string, data []byte) error
}

// Synthesizer defines the interface for fetching speech audio for a single text.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voiceID string) ([]byte, error)
}

// AudioTool defines the interface to the external audio executable used for
// silence generation and clip concatenation.
type AudioTool interface {
	Silence(ctx context.Context, outputPath string, seconds float64) error
	Concat(ctx context.Context, inputPaths []string, outputPath string) error
}

// Stitcher defines the interface for the stitch pipeline, implemented by
// internal/stitch and consumed by the HTTP and NATS surfaces.
type Stitcher interface {
	Stitch(ctx context.Context, req StitchRequest) (StitchResult, error)
}
