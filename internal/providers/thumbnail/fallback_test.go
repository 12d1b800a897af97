package thumbnail

import (
	"bytes"
	"context"
	"image/png"
	"testing"

	"relayforge/internal/providers"
)

func TestFallbackRendersDecodablePNG(t *testing.T) {
	payload, err := NewFallback().Generate(context.Background(), providers.Input{
		JobID: "abc",
		Title: "Breaking News",
	})
	if err != nil {
		t.Fatalf("fallback must not fail: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(payload.Data))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != cardWidth || b.Dy() != cardHeight {
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

	other, _ := NewFallback().Generate(context.Background(), providers.Input{JobID: "xyz", Title: "Breaking News"})
	if bytes.Equal(first.Data, other.Data) {
		t.Fatal("different jobs should render different cards")
	}
}

func TestFallbackHandlesLongTitles(t *testing.T) {
	long := "An Extremely Long Headline That Keeps Going And Going And Needs To Be Wrapped Across Several Lines To Stay Legible"
	payload, err := NewFallback().Generate(context.Background(), providers.Input{JobID: "abc", Title: long})
	if err != nil {
		t.Fatalf("fallback must not fail on long titles: %v", err)
	}
	if _, err := png.Decode(bytes.NewReader(payload.Data)); err != nil {
		t.Fatalf("decode png: %v", err)
	}
}
