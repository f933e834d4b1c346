// Package tts_test tests the TTS API client.
package tts_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/book-expert/speech-stitcher/internal/tts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTimeout = 5 * time.Second

func TestClient_Synthesize_Success(t *testing.T) {
	t.Parallel()

	sampleAudio := []byte("fake-mpeg-frames")

	server := httptest.NewServer(http.HandlerFunc(
		func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, http.MethodPost, request.Method)
			assert.Equal(t, "/v1/text-to-speech/narrator", request.URL.Path)
			assert.Equal(t, "secret-key", request.Header.Get("xi-api-key"))
			assert.Equal(t, "application/json", request.Header.Get("Content-Type"))

			var payload map[string]any

			err := json.NewDecoder(request.Body).Decode(&payload)
			require.NoError(t, err)
			assert.Equal(t, "hello world", payload["text"])
			assert.Equal(t, "multilingual_v2", payload["model_id"])

			writer.Header().Set("Content-Type", "audio/mpeg")

			_, err = writer.Write(sampleAudio)
			require.NoError(t, err)
		},
	))
	defer server.Close()

	client := tts.NewClient(server.URL, "secret-key", "multilingual_v2", testTimeout)

	audio, err := client.Synthesize(context.Background(), "hello   world", "narrator")
	require.NoError(t, err)
	assert.Equal(t, sampleAudio, audio)
}

func TestClient_Synthesize_EmptyText(t *testing.T) {
	t.Parallel()

	client := tts.NewClient("http://localhost:1", "key", "", testTimeout)

	_, err := client.Synthesize(context.Background(), "   \n\t ", "narrator")
	require.ErrorIs(t, err, tts.ErrTextEmpty)
}

func TestClient_Synthesize_EmptyVoice(t *testing.T) {
	t.Parallel()

	client := tts.NewClient("http://localhost:1", "key", "", testTimeout)

	_, err := client.Synthesize(context.Background(), "hello", "")
	require.ErrorIs(t, err, tts.ErrVoiceEmpty)
}

func TestClient_Synthesize_ServiceError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(
		func(writer http.ResponseWriter, _ *http.Request) {
			writer.Header().Set("Content-Type", "application/json")
			writer.WriteHeader(http.StatusUnauthorized)

			_, _ = writer.Write([]byte(`{"detail":"invalid api key","error_code":"unauthorized"}`))
		},
	))
	defer server.Close()

	client := tts.NewClient(server.URL, "bad-key", "", testTimeout)

	_, err := client.Synthesize(context.Background(), "hello", "narrator")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid api key")
}

func TestClient_Synthesize_WrongContentType(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(
		func(writer http.ResponseWriter, _ *http.Request) {
			writer.Header().Set("Content-Type", "text/html")

			_, _ = writer.Write([]byte("<html>not audio</html>"))
		},
	))
	defer server.Close()

	client := tts.NewClient(server.URL, "key", "", testTimeout)

	_, err := client.Synthesize(context.Background(), "hello", "narrator")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected content type")
}

func TestClient_Synthesize_EmptyAudio(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(
		func(writer http.ResponseWriter, _ *http.Request) {
			writer.Header().Set("Content-Type", "audio/mpeg")
		},
	))
	defer server.Close()

	client := tts.NewClient(server.URL, "key", "", testTimeout)

	_, err := client.Synthesize(context.Background(), "hello", "narrator")
	require.ErrorIs(t, err, tts.ErrEmptyAudio)
}

func TestClient_HealthCheck(t *testing.T) {
	t.Parallel()

	healthy := httptest.NewServer(http.HandlerFunc(
		func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "/health", request.URL.Path)
			writer.WriteHeader(http.StatusOK)
		},
	))
	defer healthy.Close()

	client := tts.NewClient(healthy.URL, "key", "", testTimeout)
	require.NoError(t, client.HealthCheck(context.Background()))

	unhealthy := httptest.NewServer(http.HandlerFunc(
		func(writer http.ResponseWriter, _ *http.Request) {
			writer.WriteHeader(http.StatusServiceUnavailable)
		},
	))
	defer unhealthy.Close()

	client = tts.NewClient(unhealthy.URL, "key", "", testTimeout)
	require.Error(t, client.HealthCheck(context.Background()))
}
