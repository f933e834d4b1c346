// Package config provides the configuration structure for the speech-stitcher.
package config

import (
	"fmt"

	"github.com/book-expert/configurator"
	"github.com/book-expert/logger"
)

// NATSConfig holds the configuration for NATS.
type NATSConfig struct {
	URL                    string `toml:"url"`
	StitchRequestSubject   string `toml:"stitch_request_subject"`
	AudioObjectStoreBucket string `toml:"audio_object_store_bucket"`
}

// TTSConfig holds the configuration for the external text-to-speech API.
// The API credential is deliberately absent here; it is read from the
// TTS_API_KEY environment variable so it never lands in a checked-in TOML.
type TTSConfig struct {
	APIBaseURL     string `toml:"api_base_url"`
	ModelID        string `toml:"model_id"`
	DefaultVoiceID string `toml:"default_voice_id"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	Workers        int    `toml:"workers"`
}

// AudioConfig holds the configuration for the external audio executable.
type AudioConfig struct {
	FFmpegPath string `toml:"ffmpeg_path"`
	SampleRate int    `toml:"sample_rate"`
	Channels   int    `toml:"channels"`
	Format     string `toml:"format"`
	Bitrate    string `toml:"bitrate"`
}

// HTTPConfig holds the configuration for the HTTP surface.
type HTTPConfig struct {
	ListenAddress string `toml:"listen_address"`
}

// PathsConfig holds the configuration for file paths.
type PathsConfig struct {
	BaseLogsDir string `toml:"base_logs_dir"`
	ScratchDir  string `toml:"scratch_dir"`
}

// Config is the root configuration structure.
type Config struct {
	NATS  NATSConfig  `toml:"nats"`
	TTS   TTSConfig   `toml:"tts"`
	Audio AudioConfig `toml:"audio"`
	HTTP  HTTPConfig  `toml:"http"`
	Paths PathsConfig `toml:"paths"`
}

// Load loads the configuration for the speech-stitcher.
func Load(log *logger.Logger) (*Config, error) {
	var cfg Config

	err := configurator.Load(&cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration from configurator: %w", err)
	}

	return &cfg, nil
}
