package audio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"relayforge/internal/domain"
	"relayforge/internal/providers"
)

// ElevenLabsOptions configures the narration provider.
type ElevenLabsOptions struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// ElevenLabs synthesizes narration audio through the ElevenLabs text-to-speech
// API. The call is synchronous: the response body is the encoded audio.
type ElevenLabs struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

type ttsRequest struct {
	Text          string          `json:"text"`
	ModelID       string          `json:"model_id,omitempty"`
	VoiceSettings json.RawMessage `json:"voice_settings,omitempty"`
}

type ttsErrorResponse struct {
	Detail struct {
		Status  string `json:"status,omitempty"`
		Message string `json:"message,omitempty"`
	} `json:"detail"`
}

func NewElevenLabs(opts ElevenLabsOptions) *ElevenLabs {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.elevenlabs.io"
	}
	return &ElevenLabs{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		httpClient: client,
	}
}

func (e *ElevenLabs) Name() string {
	return "elevenlabs"
}

// Generate renders in.Script with the voice passed on the input. The voice id
// travels per call; the provider itself carries no mutable voice state.
func (e *ElevenLabs) Generate(ctx context.Context, in providers.Input) (*providers.Payload, error) {
	if e.apiKey == "" {
		return nil, domain.ErrNotConfigured
	}
	voice := strings.TrimSpace(in.Voice)
	if voice == "" {
		return nil, fmt.Errorf("elevenlabs: voice id is required")
	}

	payload := ttsRequest{
		Text:    in.Script,
		ModelID: "eleven_multilingual_v2",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1/text-to-speech/%s", e.baseURL, url.PathEscape(voice))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("xi-api-key", e.apiKey)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: invoke: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr ttsErrorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Detail.Message != "" {
			return nil, fmt.Errorf("elevenlabs: status %d: %s", resp.StatusCode, apiErr.Detail.Message)
		}
		return nil, fmt.Errorf("elevenlabs: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: read audio: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("elevenlabs: empty audio response")
	}

	return &providers.Payload{
		Data:        data,
		ContentType: "audio/mpeg",
		Ext:         ".mp3",
		Seconds:     EstimateNarrationSeconds(in.Script),
	}, nil
}

var _ providers.Generator = (*ElevenLabs)(nil)
