package video

import (
	"bytes"
	"context"
	"image/gif"
	"testing"

	"relayforge/internal/providers"
)

func TestFallbackRendersAnimatedClip(t *testing.T) {
	payload, err := NewFallback().Generate(context.Background(), providers.Input{
		JobID: "abc",
		Title: "Breaking News",
	})
	if err != nil {
		t.Fatalf("fallback must not fail: %v", err)
	}
	anim, err := gif.DecodeAll(bytes.NewReader(payload.Data))
	if err != nil {
		t.Fatalf("decode gif: %v", err)
	}
	if len(anim.Image) != clipFrames {
		t.Fatalf("expected %d frames, got %d", clipFrames, len(anim.Image))
	}
	b := anim.Image[0].Bounds()
	if b.Dx() != clipWidth || b.Dy() != clipHeight {
		t.Fatalf("unexpected dimensions: %dx%d", b.Dx(), b.Dy())
	}
}

func TestFallbackIsDeterministic(t *testing.T) {
	in := providers.Input{JobID: "abc", Title: "Breaking News"}
	first, _ := NewFallback().Generate(context.Background(), in)
	second, _ := NewFallback().Generate(context.Background(), in)
	if !bytes.Equal(first.Data, second.Data) {
		t.Fatal("fallback output must be deterministic")
	}
}
