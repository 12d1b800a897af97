package video

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"relayforge/internal/domain"
	"relayforge/internal/providers"
	"relayforge/internal/providers/polling"
)

// ReplicateOptions configures the asynchronous video provider.
type ReplicateOptions struct {
	APIToken   string
	BaseURL    string
	Version    string
	HTTPClient *http.Client
	Poll       polling.Config
}

// Replicate generates video through a prediction API that completes
// asynchronously: a submitted prediction is polled until it settles, then the
// output bytes are downloaded. Remote output URLs are not assumed to be
// long-lived, so the bytes always come home before upload.
type Replicate struct {
	apiToken   string
	baseURL    string
	version    string
	httpClient *http.Client
	poll       polling.Config
}

type predictionRequest struct {
	Version string          `json:"version"`
	Input   predictionInput `json:"input"`
}

type predictionInput struct {
	Prompt string `json:"prompt"`
}

type prediction struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Output json.RawMessage `json:"output,omitempty"`
	Error  string          `json:"error,omitempty"`
}

func NewReplicate(opts ReplicateOptions) *Replicate {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.replicate.com"
	}
	poll := opts.Poll
	if poll.Interval <= 0 {
		poll.Interval = 5 * time.Second
	}
	if poll.MaxAttempts <= 0 {
		poll.MaxAttempts = 60
	}
	return &Replicate{
		apiToken:   strings.TrimSpace(opts.APIToken),
		baseURL:    baseURL,
		version:    strings.TrimSpace(opts.Version),
		httpClient: client,
		poll:       poll,
	}
}

func (r *Replicate) Name() string {
	return "replicate"
}

func (r *Replicate) Generate(ctx context.Context, in providers.Input) (*providers.Payload, error) {
	if r.apiToken == "" || r.version == "" {
		return nil, domain.ErrNotConfigured
	}

	submitted, err := r.submit(ctx, in)
	if err != nil {
		return nil, err
	}

	location, err := polling.Await(ctx, r.poll, func(ctx context.Context) (polling.Status, string, error) {
		return r.check(ctx, submitted.ID)
	})
	if err != nil {
		return nil, fmt.Errorf("replicate: prediction %s: %w", submitted.ID, err)
	}

	data, err := r.download(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("replicate: prediction %s: %w", submitted.ID, err)
	}

	return &providers.Payload{
		Data:        data,
		ContentType: "video/mp4",
		Ext:         ".mp4",
		Width:       1280,
		Height:      720,
	}, nil
}

func (r *Replicate) submit(ctx context.Context, in providers.Input) (*prediction, error) {
	payload := predictionRequest{
		Version: r.version,
		Input:   predictionInput{Prompt: buildVideoPrompt(in)},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("replicate: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/v1/predictions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("replicate: create request: %w", err)
	}
	r.setHeaders(req)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("replicate: submit: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("replicate: submit status %d", resp.StatusCode)
	}

	var out prediction
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("replicate: decode submit response: %w", err)
	}
	if out.ID == "" {
		return nil, fmt.Errorf("replicate: submit returned no prediction id")
	}
	return &out, nil
}

func (r *Replicate) check(ctx context.Context, id string) (polling.Status, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/v1/predictions/"+id, nil)
	if err != nil {
		return polling.StatusFailed, "", fmt.Errorf("create poll request: %w", err)
	}
	r.setHeaders(req)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return polling.StatusFailed, "", fmt.Errorf("poll: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return polling.StatusFailed, "", fmt.Errorf("poll status %d", resp.StatusCode)
	}

	var out prediction
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return polling.StatusFailed, "", fmt.Errorf("decode poll response: %w", err)
	}

	switch out.Status {
	case "succeeded":
		location := firstOutputURL(out.Output)
		if location == "" {
			return polling.StatusFailed, "", fmt.Errorf("prediction succeeded without output")
		}
		return polling.StatusCompleted, location, nil
	case "failed", "canceled":
		if out.Error != "" {
			return polling.StatusFailed, "", fmt.Errorf("remote: %s", out.Error)
		}
		return polling.StatusFailed, "", nil
	default:
		return polling.StatusPending, "", nil
	}
}

func (r *Replicate) download(ctx context.Context, location string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("create download request: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("download status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read output: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty output")
	}
	return data, nil
}

func (r *Replicate) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.apiToken)
}

// firstOutputURL handles both output shapes the API emits: a single URL
// string or a list of URLs.
func firstOutputURL(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return single
	}
	var many []string
	if err := json.Unmarshal(raw, &many); err == nil && len(many) > 0 {
		return many[0]
	}
	return ""
}

func buildVideoPrompt(in providers.Input) string {
	var b strings.Builder
	if title := strings.TrimSpace(in.Title); title != "" {
		b.WriteString(title)
	}
	if script := strings.TrimSpace(in.Script); script != "" {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(script)
	}
	if b.Len() == 0 {
		b.WriteString("Create a short news-style clip")
	}
	return b.String()
}

var _ providers.Generator = (*Replicate)(nil)
