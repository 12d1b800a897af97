package video

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"relayforge/internal/domain"
	"relayforge/internal/providers"
	"relayforge/internal/providers/polling"
)

func fastPoll(max int) polling.Config {
	return polling.Config{Interval: time.Millisecond, MaxAttempts: max}
}

func TestReplicateGenerateWithPolling(t *testing.T) {
	videoBytes := []byte("fake mp4 payload")
	var polls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/predictions", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Fatalf("unexpected auth header: %s", got)
		}
		var payload predictionRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if payload.Version != "model-v1" {
			t.Fatalf("unexpected version: %s", payload.Version)
		}
		_ = json.NewEncoder(w).Encode(prediction{ID: "pred-1", Status: "starting"})
	})
	var ts *httptest.Server
	mux.HandleFunc("GET /v1/predictions/pred-1", func(w http.ResponseWriter, r *http.Request) {
		if polls.Add(1) < 3 {
			_ = json.NewEncoder(w).Encode(prediction{ID: "pred-1", Status: "processing"})
			return
		}
		out, _ := json.Marshal(ts.URL + "/outputs/pred-1.mp4")
		_ = json.NewEncoder(w).Encode(prediction{ID: "pred-1", Status: "succeeded", Output: out})
	})
	mux.HandleFunc("GET /outputs/pred-1.mp4", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(videoBytes)
	})
	ts = httptest.NewServer(mux)
	defer ts.Close()

	provider := NewReplicate(ReplicateOptions{
		APIToken: "test-token",
		BaseURL:  ts.URL,
		Version:  "model-v1",
		Poll:     fastPoll(10),
	})
	payload, err := provider.Generate(context.Background(), providers.Input{JobID: "abc", Script: "a script"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !bytes.Equal(payload.Data, videoBytes) {
		t.Fatal("video bytes mismatch")
	}
	if got := polls.Load(); got != 3 {
		t.Fatalf("expected 3 polls, got %d", got)
	}
}

func TestReplicateAbandonsAfterMaxAttempts(t *testing.T) {
	var polls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/predictions", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(prediction{ID: "pred-2", Status: "starting"})
	})
	mux.HandleFunc("GET /v1/predictions/pred-2", func(w http.ResponseWriter, r *http.Request) {
		polls.Add(1)
		_ = json.NewEncoder(w).Encode(prediction{ID: "pred-2", Status: "processing"})
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	provider := NewReplicate(ReplicateOptions{
		APIToken: "t",
		BaseURL:  ts.URL,
		Version:  "model-v1",
		Poll:     fastPoll(4),
	})
	_, err := provider.Generate(context.Background(), providers.Input{JobID: "abc"})
	if !errors.Is(err, polling.ErrTimedOut) {
		t.Fatalf("expected ErrTimedOut, got %v", err)
	}
	if got := polls.Load(); got != 4 {
		t.Fatalf("expected exactly 4 polls, got %d", got)
	}
}

func TestReplicateRemoteFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/predictions", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(prediction{ID: "pred-3", Status: "starting"})
	})
	mux.HandleFunc("GET /v1/predictions/pred-3", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(prediction{ID: "pred-3", Status: "failed", Error: "NSFW content detected"})
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	provider := NewReplicate(ReplicateOptions{APIToken: "t", BaseURL: ts.URL, Version: "v", Poll: fastPoll(10)})
	_, err := provider.Generate(context.Background(), providers.Input{JobID: "abc"})
	if !errors.Is(err, polling.ErrRemoteFailed) {
		t.Fatalf("expected ErrRemoteFailed, got %v", err)
	}
}

func TestReplicateUnconfigured(t *testing.T) {
	_, err := NewReplicate(ReplicateOptions{}).Generate(context.Background(), providers.Input{JobID: "abc"})
	if !errors.Is(err, domain.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestFirstOutputURL(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"single string", `"https://a/x.mp4"`, "https://a/x.mp4"},
		{"list", `["https://a/1.mp4","https://a/2.mp4"]`, "https://a/1.mp4"},
		{"empty list", `[]`, ""},
		{"null", `null`, ""},
		{"missing", ``, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := firstOutputURL(json.RawMessage(tc.raw)); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}
