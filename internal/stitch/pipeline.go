// Package stitch implements the speech assembly pipeline: fetch a clip per
// text, synthesize one silence gap, interleave, concatenate, and upload.
package stitch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/book-expert/logger"
	"github.com/book-expert/speech-stitcher/internal/core"
	"github.com/book-expert/speech-stitcher/internal/stitchutil"
	"github.com/google/uuid"
)

// Default number of concurrent TTS fetches when configuration omits one.
const defaultWorkers = 8

// File permissions for clips written to scratch storage.
const filePermissions = 0o600

// File name patterns inside the scratch directory.
const (
	clipFileFormat    = "clip_%04d%s"
	gapFileName       = "gap%s"
	stitchedName      = "stitched%s"
	scratchDirPattern = "stitch-"
)

// Log formats.
const (
	logFmtFetchedClip    = "Fetched clip %d/%d (%s)"
	logFmtUploaded       = "Uploaded %s to bucket %s (%s)"
	logFmtScratchCleanup = "Failed to remove scratch directory %s: %v"
	errFmtClipFailed     = "clip %d failed: %w"
)

// Config holds the pipeline settings that do not vary per request.
type Config struct {
	Bucket          string
	DefaultVoiceID  string
	Workers         int
	ScratchDir      string
	OutputExtension string
}

// Pipeline implements core.Stitcher. One Stitch call is one complete
// request/response operation; the pipeline keeps no state between calls
// beyond its collaborators.
type Pipeline struct {
	synthesizer core.Synthesizer
	tool        core.AudioTool
	store       core.ObjectStore
	cfg         Config
	log         *logger.Logger
}

// New creates a Pipeline from its collaborators.
func New(
	synthesizer core.Synthesizer,
	tool core.AudioTool,
	store core.ObjectStore,
	cfg Config,
	log *logger.Logger,
) (*Pipeline, error) {
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}

	if cfg.OutputExtension == "" {
		cfg.OutputExtension = ".mp3"
	}

	return &Pipeline{
		synthesizer: synthesizer,
		tool:        tool,
		store:       store,
		cfg:         cfg,
		log:         log,
	}, nil
}

// Stitch runs the five-step pipeline for one request: fan out one TTS fetch
// per text into scratch storage, synthesize the silence gap, build the
// ordered clip/gap/…/clip list, concatenate, and upload the result.
// Failures past validation propagate to the caller unretried.
func (p *Pipeline) Stitch(ctx context.Context, req core.StitchRequest) (core.StitchResult, error) {
	err := req.Validate()
	if err != nil {
		return core.StitchResult{}, err
	}

	voiceID := req.VoiceID
	if voiceID == "" {
		voiceID = p.cfg.DefaultVoiceID
	}

	outputKey := p.resolveOutputKey(req.OutputKey)

	scratchDir, err := p.createScratchDir()
	if err != nil {
		return core.StitchResult{}, err
	}

	defer func() {
		removeErr := os.RemoveAll(scratchDir)
		if removeErr != nil {
			p.log.Warn(logFmtScratchCleanup, scratchDir, removeErr)
		}
	}()

	clipPaths, err := p.fetchClips(ctx, req.Texts, voiceID, scratchDir)
	if err != nil {
		return core.StitchResult{}, err
	}

	inputPaths, err := p.insertGaps(ctx, clipPaths, req.GapSeconds, scratchDir)
	if err != nil {
		return core.StitchResult{}, err
	}

	stitchedPath := filepath.Join(
		scratchDir,
		fmt.Sprintf(stitchedName, p.cfg.OutputExtension),
	)

	err = p.tool.Concat(ctx, inputPaths, stitchedPath)
	if err != nil {
		return core.StitchResult{}, fmt.Errorf("failed to concatenate clips: %w", err)
	}

	err = p.uploadStitched(ctx, stitchedPath, outputKey)
	if err != nil {
		return core.StitchResult{}, err
	}

	return core.StitchResult{
		Bucket:     p.cfg.Bucket,
		Key:        outputKey,
		ClipCount:  len(req.Texts),
		GapSeconds: req.GapSeconds,
	}, nil
}

// resolveOutputKey sanitizes a caller-provided key or generates one. Keys are
// single object names in the bucket, so path separators get replaced, and a
// missing audio extension is filled in from the output format.
func (p *Pipeline) resolveOutputKey(requested string) string {
	if requested == "" {
		return uuid.NewString() + p.cfg.OutputExtension
	}

	key := stitchutil.SanitizeFilename(requested)
	if !stitchutil.IsValidAudioFile(key) {
		key += p.cfg.OutputExtension
	}

	return key
}

func (p *Pipeline) createScratchDir() (string, error) {
	if p.cfg.ScratchDir != "" {
		err := stitchutil.EnsureDir(p.cfg.ScratchDir)
		if err != nil {
			return "", err
		}
	}

	scratchDir, err := os.MkdirTemp(p.cfg.ScratchDir, scratchDirPattern)
	if err != nil {
		return "", fmt.Errorf("failed to create scratch directory: %w", err)
	}

	return scratchDir, nil
}

// fetchClips fetches speech audio for every text concurrently and persists
// each clip under a sequential name so ordering survives the fan-out. The
// worker pool bounds concurrency; the join happens before any assembly step.
// The last captured error is returned after all fetches settle.
func (p *Pipeline) fetchClips(
	ctx context.Context,
	texts []string,
	voiceID, scratchDir string,
) ([]string, error) {
	var (
		waitGroup sync.WaitGroup
		mutex     sync.Mutex
		lastError error
	)

	clipPaths := make([]string, len(texts))
	workerPool := make(chan struct{}, p.cfg.Workers)

	for clipIndex, clipText := range texts {
		waitGroup.Add(1)

		go func(index int, text string) {
			defer waitGroup.Done()

			workerPool <- struct{}{}

			defer func() { <-workerPool }()

			clipPath := filepath.Join(
				scratchDir,
				fmt.Sprintf(clipFileFormat, index+1, p.cfg.OutputExtension),
			)

			err := p.fetchSingleClip(ctx, text, voiceID, clipPath)
			if err != nil {
				mutex.Lock()

				lastError = fmt.Errorf(errFmtClipFailed, index+1, err)

				mutex.Unlock()

				return
			}

			clipPaths[index] = clipPath

			p.log.Info(logFmtFetchedClip, index+1, len(texts), clipPath)
		}(clipIndex, clipText)
	}

	waitGroup.Wait()
	close(workerPool)

	if lastError != nil {
		return nil, lastError
	}

	return clipPaths, nil
}

func (p *Pipeline) fetchSingleClip(
	ctx context.Context,
	text, voiceID, clipPath string,
) error {
	audioData, err := p.synthesizer.Synthesize(ctx, text, voiceID)
	if err != nil {
		return fmt.Errorf("failed to synthesize speech: %w", err)
	}

	err = os.WriteFile(clipPath, audioData, filePermissions)
	if err != nil {
		return fmt.Errorf("failed to write clip file: %w", err)
	}

	return nil
}

// insertGaps synthesizes one silence clip sized to the gap and builds the
// ordered clip/gap/clip/…/clip list. A zero gap skips silence synthesis and
// returns the clips as-is.
func (p *Pipeline) insertGaps(
	ctx context.Context,
	clipPaths []string,
	gapSeconds float64,
	scratchDir string,
) ([]string, error) {
	if gapSeconds == 0 || len(clipPaths) == 1 {
		return clipPaths, nil
	}

	gapPath := filepath.Join(
		scratchDir,
		fmt.Sprintf(gapFileName, p.cfg.OutputExtension),
	)

	err := p.tool.Silence(ctx, gapPath, gapSeconds)
	if err != nil {
		return nil, fmt.Errorf("failed to synthesize silence gap: %w", err)
	}

	interleaved := make([]string, 0, 2*len(clipPaths)-1)

	for clipIndex, clipPath := range clipPaths {
		if clipIndex > 0 {
			interleaved = append(interleaved, gapPath)
		}

		interleaved = append(interleaved, clipPath)
	}

	return interleaved, nil
}

func (p *Pipeline) uploadStitched(ctx context.Context, stitchedPath, outputKey string) error {
	stitchedData, err := os.ReadFile(stitchedPath)
	if err != nil {
		return fmt.Errorf("failed to read stitched file: %w", err)
	}

	err = p.store.Upload(ctx, outputKey, stitchedData)
	if err != nil {
		return fmt.Errorf("failed to upload stitched audio '%s': %w", outputKey, err)
	}

	p.log.Info(
		logFmtUploaded,
		outputKey,
		p.cfg.Bucket,
		stitchutil.FormatFileSize(int64(len(stitchedData))),
	)

	return nil
}
