package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"strings"

	"relayforge/internal/providers"
)

const (
	sampleRate     = 16000
	bytesPerSample = 2
)

// Fallback synthesizes a silent WAV track sized to the estimated narration
// length of the script. It is the terminal link of the audio chain and cannot
// fail for well-formed input.
type Fallback struct{}

func NewFallback() *Fallback {
	return &Fallback{}
}

func (f *Fallback) Name() string {
	return "fallback"
}

func (f *Fallback) Generate(ctx context.Context, in providers.Input) (*providers.Payload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	seconds := EstimateNarrationSeconds(in.Script)
	data := renderSilentWAV(seconds)

	return &providers.Payload{
		Data:        data,
		ContentType: "audio/wav",
		Ext:         ".wav",
		Seconds:     seconds,
	}, nil
}

// EstimateNarrationSeconds approximates how long the script would take to
// narrate, assuming roughly 2.5 spoken words per second.
func EstimateNarrationSeconds(script string) int {
	words := len(strings.Fields(script))
	if words == 0 {
		return 1
	}
	seconds := words * 2 / 5
	if seconds < 1 {
		return 1
	}
	if seconds > 600 {
		return 600
	}
	return seconds
}

// renderSilentWAV produces a minimal valid 16 kHz mono 16-bit PCM file of the
// given duration.
func renderSilentWAV(seconds int) []byte {
	frames := sampleRate * seconds
	dataLen := uint32(frames * bytesPerSample)

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataLen))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // mono
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*bytesPerSample))
	binary.Write(&buf, binary.LittleEndian, uint16(bytesPerSample))
	binary.Write(&buf, binary.LittleEndian, uint16(16))

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, dataLen)
	buf.Write(make([]byte, dataLen))

	return buf.Bytes()
}

var _ providers.Generator = (*Fallback)(nil)
