package storage

import (
	"testing"

	"relayforge/internal/domain"
)

func TestAssetKey(t *testing.T) {
	got := AssetKey("abc", domain.CategoryAudio, "fallback", ".wav")
	if got != "jobs/abc/audio_fallback.wav" {
		t.Fatalf("unexpected key: %s", got)
	}
}

func TestVariantKey(t *testing.T) {
	got := VariantKey("abc", "portrait", ".mp4")
	if got != "jobs/abc/portrait.mp4" {
		t.Fatalf("unexpected key: %s", got)
	}
}

func TestSanitizeKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		want    string
		wantErr bool
	}{
		{"clean", "jobs/abc/audio_fallback.wav", "jobs/abc/audio_fallback.wav", false},
		{"leading slash", "/jobs/abc/a.png", "jobs/abc/a.png", false},
		{"dot slash", "./jobs/abc/a.png", "jobs/abc/a.png", false},
		{"traversal", "../etc/passwd", "", true},
		{"nested traversal", "jobs/../../etc/passwd", "", true},
		{"empty", "", "", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := sanitizeKey(tc.key)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}
