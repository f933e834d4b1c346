// Package audio provides the boundary to the external audio executable used
// for silence synthesis and clip concatenation, plus the validated output
// settings those invocations share.
package audio

import (
	"errors"
	"fmt"
)

// Default output settings.
const (
	DefaultSampleRate = 44100
	DefaultChannels   = 2
	DefaultFormat     = FormatMP3
	DefaultBitrate    = "192k"
)

// Validation limits.
const (
	maxSampleRate = 192000
	maxChannels   = 2
)

// Supported output formats.
const (
	FormatMP3 = "mp3"
	FormatWAV = "wav"
)

// Error formats.
const (
	errFmtSampleRateRange = "%w: sample rate must be between 1 and %d Hz"
	errFmtChannelsRange   = "%w: channels must be between 1 and %d"
	errFmtFormatValues    = "%w: format must be %q or %q"
)

// ErrInvalidSettings is returned when output settings are out of range.
var ErrInvalidSettings = errors.New("invalid audio settings")

// Settings describes the audio output produced by silence synthesis and
// concatenation. Every clip in one batch shares these settings so the concat
// step never has to re-sample mid-stream.
type Settings struct {
	SampleRate int
	Channels   int
	Format     string
	Bitrate    string
}

// NewDefaultSettings provides sensible default output settings.
func NewDefaultSettings() Settings {
	return Settings{
		SampleRate: DefaultSampleRate,
		Channels:   DefaultChannels,
		Format:     DefaultFormat,
		Bitrate:    DefaultBitrate,
	}
}

// Validate checks that the settings are within supported bounds.
func (s *Settings) Validate() error {
	if s.SampleRate <= 0 || s.SampleRate > maxSampleRate {
		return fmt.Errorf(errFmtSampleRateRange, ErrInvalidSettings, maxSampleRate)
	}

	if s.Channels <= 0 || s.Channels > maxChannels {
		return fmt.Errorf(errFmtChannelsRange, ErrInvalidSettings, maxChannels)
	}

	if s.Format != FormatMP3 && s.Format != FormatWAV {
		return fmt.Errorf(errFmtFormatValues, ErrInvalidSettings, FormatMP3, FormatWAV)
	}

	return nil
}

// Extension returns the file extension for the configured format, including
// the leading dot.
func (s *Settings) Extension() string {
	return "." + s.Format
}

// channelLayout maps the channel count to the layout name the silence source
// filter expects.
func (s *Settings) channelLayout() string {
	if s.Channels == 1 {
		return "mono"
	}

	return "stereo"
}

// codecArgs returns the encoder arguments for the configured format.
func (s *Settings) codecArgs() []string {
	if s.Format == FormatWAV {
		return []string{"-codec:a", "pcm_s16le"}
	}

	return []string{"-codec:a", "libmp3lame", "-b:a", s.Bitrate}
}
