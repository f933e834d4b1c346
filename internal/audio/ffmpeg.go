package audio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/book-expert/logger"
)

// File permissions for generated concat list files.
const listFilePermissions = 0o600

const defaultBinaryName = "ffmpeg"

// Static errors.
var (
	// ErrNoInputPaths indicates that concatenation was requested with no inputs.
	ErrNoInputPaths = errors.New("no input paths to concatenate")
	// ErrNonPositiveDuration indicates a silence request with a zero or
	// negative duration.
	ErrNonPositiveDuration = errors.New("silence duration must be positive")
)

// FFmpeg implements the core.AudioTool interface by invoking the configured
// ffmpeg binary.
type FFmpeg struct {
	binaryPath string
	settings   Settings
	log        *logger.Logger
}

// NewFFmpeg creates an FFmpeg tool using the given binary path and output
// settings. An empty binary path falls back to resolving "ffmpeg" on PATH.
func NewFFmpeg(binaryPath string, settings Settings, log *logger.Logger) (*FFmpeg, error) {
	if binaryPath == "" {
		binaryPath = defaultBinaryName
	}

	err := settings.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid output settings: %w", err)
	}

	return &FFmpeg{
		binaryPath: binaryPath,
		settings:   settings,
		log:        log,
	}, nil
}

// Settings returns the output settings the tool encodes with.
func (f *FFmpeg) Settings() Settings {
	return f.settings
}

// Silence synthesizes a silent clip of the given duration at outputPath,
// using the same sample rate, layout, and codec as the speech clips so the
// concat step can join them without re-encoding surprises.
func (f *FFmpeg) Silence(ctx context.Context, outputPath string, seconds float64) error {
	if seconds <= 0 {
		return ErrNonPositiveDuration
	}

	args := silenceArgs(f.settings, outputPath, seconds)

	return f.run(ctx, args)
}

// Concat joins the input clips, in order, into a single file at outputPath
// via the concat demuxer. The demuxer's list file is written next to the
// output and left for the caller's scratch-directory cleanup.
func (f *FFmpeg) Concat(ctx context.Context, inputPaths []string, outputPath string) error {
	if len(inputPaths) == 0 {
		return ErrNoInputPaths
	}

	listPath := outputPath + ".list"

	err := writeConcatList(listPath, inputPaths)
	if err != nil {
		return err
	}

	args := concatArgs(f.settings, listPath, outputPath)

	return f.run(ctx, args)
}

func (f *FFmpeg) run(ctx context.Context, args []string) error {
	f.log.Info("Running %s %s", f.binaryPath, strings.Join(args, " "))

	// #nosec G204 -- the binary path comes from validated configuration and
	// all arguments are built internally.
	cmd := exec.CommandContext(ctx, f.binaryPath, args...)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf(
			"%s execution failed: %w - output: %s",
			f.binaryPath,
			err,
			string(output),
		)
	}

	return nil
}

// silenceArgs builds the argument list for synthesizing a silent clip from
// the null audio source.
func silenceArgs(settings Settings, outputPath string, seconds float64) []string {
	source := fmt.Sprintf(
		"anullsrc=r=%d:cl=%s",
		settings.SampleRate,
		settings.channelLayout(),
	)

	args := []string{
		"-y",
		"-f", "lavfi",
		"-i", source,
		"-t", fmt.Sprintf("%.3f", seconds),
	}
	args = append(args, settings.codecArgs()...)

	return append(args, outputPath)
}

// concatArgs builds the argument list for joining clips via the concat
// demuxer.
func concatArgs(settings Settings, listPath, outputPath string) []string {
	args := []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
	}
	args = append(args, settings.codecArgs()...)

	return append(args, outputPath)
}

// writeConcatList writes the concat demuxer list file: one "file '<path>'"
// line per input, with single quotes escaped the way the demuxer expects.
func writeConcatList(listPath string, inputPaths []string) error {
	var builder strings.Builder

	for _, inputPath := range inputPaths {
		escaped := strings.ReplaceAll(inputPath, "'", `'\''`)
		builder.WriteString("file '" + escaped + "'\n")
	}

	err := os.WriteFile(listPath, []byte(builder.String()), listFilePermissions)
	if err != nil {
		return fmt.Errorf("failed to write concat list %s: %w", listPath, err)
	}

	return nil
}
