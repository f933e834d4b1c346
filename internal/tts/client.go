// Package tts provides the HTTP client for the external text-to-speech API.
//
// The API follows the common hosted-TTS contract: one POST per text with the
// voice identifier in the URL path, an API key header, and raw audio bytes in
// the response body.
package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// API endpoints and paths.
const (
	apiTextToSpeech = "/v1/text-to-speech/"
	apiHealth       = "/health"
)

// HTTP headers.
const (
	headerContentType = "Content-Type"
	headerAccept      = "Accept"
	headerAPIKey      = "xi-api-key"
	contentTypeJSON   = "application/json"
	contentTypeAudio  = "audio/"
)

// Default voice settings sent with every request.
const (
	defaultStability       = 0.75
	defaultSimilarityBoost = 0.7
)

// Error messages.
const (
	errTextCannotBeEmpty       = "text cannot be empty"
	errVoiceCannotBeEmpty      = "voice id cannot be empty"
	errUnexpectedContentType   = "unexpected content type: expected audio, got %s"
	errReceivedEmptyAudio      = "received empty audio data"
	errFmtServiceErrorWithCode = "TTS service error (%s): %s (code: %s)"
	errFmtServiceNonOKStatus   = "TTS service returned non-OK status: %s, body: %s"
)

// Static errors.
var (
	ErrTextEmpty  = errors.New(errTextCannotBeEmpty)
	ErrVoiceEmpty = errors.New(errVoiceCannotBeEmpty)
	ErrEmptyAudio = errors.New(errReceivedEmptyAudio)
)

// Client is an HTTP client for the text-to-speech API. It encapsulates the
// base URL, credential, and model choice, and provides speech synthesis and
// health monitoring.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	modelID    string
}

// synthesisRequest defines the JSON payload for a synthesis call.
type synthesisRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id,omitempty"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

// errorResponse represents a structured error from the TTS API.
type errorResponse struct {
	Detail    string `json:"detail"`
	ErrorCode string `json:"error_code,omitempty"`
}

// NewClient creates and configures a client for the TTS API. The baseURL
// should include protocol and host; the timeout applies to every request.
func NewClient(baseURL, apiKey, modelID string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		modelID: modelID,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Synthesize sends one text to the API and returns the raw audio bytes for it.
// Input text is normalized before dispatch; callers are responsible for
// persisting the returned bytes.
func (c *Client) Synthesize(ctx context.Context, text, voiceID string) ([]byte, error) {
	text = NormalizeText(text)
	if text == "" {
		return nil, ErrTextEmpty
	}

	if voiceID == "" {
		return nil, ErrVoiceEmpty
	}

	requestBody, err := json.Marshal(synthesisRequest{
		Text:    text,
		ModelID: c.modelID,
		VoiceSettings: voiceSettings{
			Stability:       defaultStability,
			SimilarityBoost: defaultSimilarityBoost,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := c.baseURL + apiTextToSpeech + voiceID

	httpReq, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		url,
		bytes.NewBuffer(requestBody),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set(headerContentType, contentTypeJSON)
	httpReq.Header.Set(headerAccept, "audio/mpeg")
	httpReq.Header.Set(headerAPIKey, c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf(
			"failed to send request to TTS service at %s: %w",
			c.baseURL,
			err,
		)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseErrorResponse(resp)
	}

	contentType := resp.Header.Get(headerContentType)
	if !strings.HasPrefix(contentType, contentTypeAudio) {
		return nil, fmt.Errorf(errUnexpectedContentType, contentType)
	}

	audioData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio data: %w", err)
	}

	if len(audioData) == 0 {
		return nil, ErrEmptyAudio
	}

	return audioData, nil
}

// HealthCheck verifies that the TTS API is reachable and reports healthy.
// It should be performed before processing a batch to fail fast when the
// service is unavailable.
func (c *Client) HealthCheck(ctx context.Context) error {
	url := c.baseURL + apiHealth

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create health check request: %w", err)
	}

	req.Header.Set(headerAPIKey, c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf(
			"health check failed for service at %s: %w",
			c.baseURL,
			err,
		)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed with status: %s", resp.Status)
	}

	return nil
}

// parseErrorResponse attempts to decode a structured JSON error from the API.
// If structured parsing fails, it falls back to the raw response body so
// diagnostic information is preserved.
func (c *Client) parseErrorResponse(resp *http.Response) error {
	var errorResp errorResponse

	err := json.NewDecoder(resp.Body).Decode(&errorResp)
	if err == nil && errorResp.Detail != "" {
		return fmt.Errorf(errFmtServiceErrorWithCode,
			resp.Status, errorResp.Detail, errorResp.ErrorCode)
	}

	body, _ := io.ReadAll(resp.Body)

	return fmt.Errorf(
		errFmtServiceNonOKStatus,
		resp.Status,
		string(body),
	)
}
