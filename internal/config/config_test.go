// Package config_test tests the configuration loading for the speech-stitcher.
package config_test

import (
	"testing"

	"github.com/book-expert/speech-stitcher/internal/config"
	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	tomlData := `
[nats]
url = "nats://127.0.0.1:4222"
stitch_request_subject = "speech.stitch.request"
audio_object_store_bucket = "STITCHED_AUDIO"

[tts]
api_base_url = "https://api.speech.example.com"
model_id = "multilingual_v2"
default_voice_id = "narrator"
timeout_seconds = 120
workers = 8

[audio]
ffmpeg_path = "/usr/bin/ffmpeg"
sample_rate = 44100
channels = 2
format = "mp3"
bitrate = "192k"

[http]
listen_address = ":8080"

[paths]
base_logs_dir = "/var/log/speech-stitcher"
scratch_dir = "/tmp/speech-stitcher"
`

	var cfg config.Config

	err := toml.Unmarshal([]byte(tomlData), &cfg)
	require.NoError(t, err)

	assert.Equal(t, "nats://127.0.0.1:4222", cfg.NATS.URL)
	assert.Equal(t, "speech.stitch.request", cfg.NATS.StitchRequestSubject)
	assert.Equal(t, "STITCHED_AUDIO", cfg.NATS.AudioObjectStoreBucket)
	assert.Equal(t, "https://api.speech.example.com", cfg.TTS.APIBaseURL)
	assert.Equal(t, "multilingual_v2", cfg.TTS.ModelID)
	assert.Equal(t, "narrator", cfg.TTS.DefaultVoiceID)
	assert.Equal(t, 120, cfg.TTS.TimeoutSeconds)
	assert.Equal(t, 8, cfg.TTS.Workers)
	assert.Equal(t, "/usr/bin/ffmpeg", cfg.Audio.FFmpegPath)
	assert.Equal(t, 44100, cfg.Audio.SampleRate)
	assert.Equal(t, 2, cfg.Audio.Channels)
	assert.Equal(t, "mp3", cfg.Audio.Format)
	assert.Equal(t, "192k", cfg.Audio.Bitrate)
	assert.Equal(t, ":8080", cfg.HTTP.ListenAddress)
	assert.Equal(t, "/var/log/speech-stitcher", cfg.Paths.BaseLogsDir)
	assert.Equal(t, "/tmp/speech-stitcher", cfg.Paths.ScratchDir)
}
