package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"strings"
	"testing"

	"relayforge/internal/providers"
)

func TestFallbackProducesValidWAV(t *testing.T) {
	payload, err := NewFallback().Generate(context.Background(), providers.Input{
		JobID:  "abc",
		Script: "ten short words spoken slowly over a quiet news desk",
	})
	if err != nil {
		t.Fatalf("fallback must not fail: %v", err)
	}
	if payload.ContentType != "audio/wav" || payload.Ext != ".wav" {
		t.Fatalf("unexpected payload shape: %s %s", payload.ContentType, payload.Ext)
	}

	data := payload.Data
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		t.Fatalf("not a RIFF/WAVE file: %q %q", data[0:4], data[8:12])
	}
	var rate uint32
	if err := binary.Read(bytes.NewReader(data[24:28]), binary.LittleEndian, &rate); err != nil {
		t.Fatalf("read sample rate: %v", err)
	}
	if rate != 16000 {
		t.Fatalf("unexpected sample rate: %d", rate)
	}
	for _, b := range data[44:] {
		if b != 0 {
			t.Fatal("expected silence in data chunk")
		}
	}
}

func TestFallbackIsDeterministic(t *testing.T) {
	in := providers.Input{JobID: "abc", Script: "same words every time"}
	first, err := NewFallback().Generate(context.Background(), in)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := NewFallback().Generate(context.Background(), in)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !bytes.Equal(first.Data, second.Data) {
		t.Fatal("fallback output must be deterministic")
	}
}

func TestEstimateNarrationSeconds(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   int
	}{
		{"empty", "", 1},
		{"one word", "hello", 1},
		{"ten words", strings.Repeat("word ", 10), 4},
		{"long script clamps", strings.Repeat("word ", 10000), 600},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := EstimateNarrationSeconds(tc.script); got != tc.want {
				t.Fatalf("got %d, want %d", got, tc.want)
			}
		})
	}
}
