package thumbnail

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"relayforge/internal/domain"
	"relayforge/internal/providers"
)

func TestStabilityGenerate(t *testing.T) {
	imageBytes := []byte("fake png payload")
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Fatalf("unexpected auth header: %s", got)
		}
		if r.URL.Path != "/v2beta/stable-image/generate/core" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		var payload stabilityRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if !strings.Contains(payload.Prompt, "Breaking News") {
			t.Fatalf("prompt missing title: %s", payload.Prompt)
		}
		_ = json.NewEncoder(w).Encode(stabilityResponse{
			Image: base64.StdEncoding.EncodeToString(imageBytes),
		})
	}))
	defer ts.Close()

	provider := NewStability(StabilityOptions{APIKey: "test-key", BaseURL: ts.URL})
	payload, err := provider.Generate(context.Background(), providers.Input{JobID: "abc", Title: "Breaking News"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !bytes.Equal(payload.Data, imageBytes) {
		t.Fatal("image bytes mismatch")
	}
}

func TestStabilityUnconfigured(t *testing.T) {
	_, err := NewStability(StabilityOptions{}).Generate(context.Background(), providers.Input{Title: "x"})
	if !errors.Is(err, domain.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestStabilityRemoteError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(stabilityError{Name: "server_error", Errors: []string{"backend unavailable"}})
	}))
	defer ts.Close()

	_, err := NewStability(StabilityOptions{APIKey: "k", BaseURL: ts.URL}).
		Generate(context.Background(), providers.Input{Title: "x"})
	if err == nil || !strings.Contains(err.Error(), "backend unavailable") {
		t.Fatalf("expected propagated remote error, got %v", err)
	}
}
