package thumbnail

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"relayforge/internal/domain"
	"relayforge/internal/providers"
)

// StabilityOptions configures the remote thumbnail provider.
type StabilityOptions struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// Stability generates a thumbnail through the Stability image API. The call
// is synchronous: the response carries the image as a base64 payload.
type Stability struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

type stabilityRequest struct {
	Prompt       string `json:"prompt"`
	OutputFormat string `json:"output_format"`
	AspectRatio  string `json:"aspect_ratio"`
}

type stabilityResponse struct {
	Image        string `json:"image"`
	FinishReason string `json:"finish_reason,omitempty"`
}

type stabilityError struct {
	Name   string   `json:"name,omitempty"`
	Errors []string `json:"errors,omitempty"`
}

func NewStability(opts StabilityOptions) *Stability {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.stability.ai"
	}
	return &Stability{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		httpClient: client,
	}
}

func (s *Stability) Name() string {
	return "stability"
}

func (s *Stability) Generate(ctx context.Context, in providers.Input) (*providers.Payload, error) {
	if s.apiKey == "" {
		return nil, domain.ErrNotConfigured
	}

	payload := stabilityRequest{
		Prompt:       buildThumbnailPrompt(in),
		OutputFormat: "png",
		AspectRatio:  "16:9",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("stability: marshal request: %w", err)
	}

	endpoint := s.baseURL + "/v2beta/stable-image/generate/core"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("stability: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("stability: invoke: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr stabilityError
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && len(apiErr.Errors) > 0 {
			return nil, fmt.Errorf("stability: status %d: %s", resp.StatusCode, strings.Join(apiErr.Errors, "; "))
		}
		return nil, fmt.Errorf("stability: status %d", resp.StatusCode)
	}

	var out stabilityResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 32<<20)).Decode(&out); err != nil {
		return nil, fmt.Errorf("stability: decode response: %w", err)
	}
	data, err := base64.StdEncoding.DecodeString(out.Image)
	if err != nil {
		return nil, fmt.Errorf("stability: decode image: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("stability: empty image response")
	}

	return &providers.Payload{
		Data:        data,
		ContentType: "image/png",
		Ext:         ".png",
		Width:       cardWidth,
		Height:      cardHeight,
	}, nil
}

func buildThumbnailPrompt(in providers.Input) string {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return "Bold editorial thumbnail card"
	}
	return fmt.Sprintf("Bold editorial thumbnail card for the story %q, high contrast, no text artifacts", title)
}

var _ providers.Generator = (*Stability)(nil)
