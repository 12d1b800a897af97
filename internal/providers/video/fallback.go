package video

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/gif"

	"relayforge/internal/providers"
)

const (
	clipWidth   = 640
	clipHeight  = 360
	clipFrames  = 8
	frameDelay  = 50 // hundredths of a second
	paletteSize = 16
)

// Fallback renders a deterministic color-graded animated clip with the job
// title overlaid. It is the terminal link of the video chain and cannot fail
// for well-formed input.
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

	data, err := renderClip(in.JobID, in.Title)
	if err != nil {
		return nil, err
	}

	return &providers.Payload{
		Data:        data,
		ContentType: "image/gif",
		Ext:         ".gif",
		Width:       clipWidth,
		Height:      clipHeight,
		Seconds:     clipFrames * frameDelay / 100,
	}, nil
}

func renderClip(jobID, title string) ([]byte, error) {
	seed := providers.Seed(jobID, title)
	base := providers.ColorFromSeed(seed, 0)
	accent := providers.ColorFromSeed(seed, 2)
	palette := buildPalette(base, accent)

	anim := &gif.GIF{LoopCount: 0}
	lines := providers.WrapText(title, 40)

	for frame := 0; frame < clipFrames; frame++ {
		img := image.NewPaletted(image.Rect(0, 0, clipWidth, clipHeight), palette)
		shade(img, frame)
		providers.DrawLines(img, lines, 32, clipHeight/2, color.White)
		anim.Image = append(anim.Image, img)
		anim.Delay = append(anim.Delay, frameDelay)
	}

	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, anim); err != nil {
		return nil, fmt.Errorf("video: encode clip: %w", err)
	}
	return buf.Bytes(), nil
}

// shade fills the frame with a diagonal grade that drifts per frame, so the
// clip visibly animates while staying deterministic.
func shade(img *image.Paletted, frame int) {
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			idx := ((x + y + frame*24) / 48) % (paletteSize - 1)
			img.SetColorIndex(x, y, uint8(idx))
		}
	}
}

// buildPalette grades between the two seeded colors and reserves the final
// slot for white so the title overlay is always legible.
func buildPalette(from, to color.RGBA) color.Palette {
	palette := make(color.Palette, 0, paletteSize)
	steps := paletteSize - 1
	for i := 0; i < steps; i++ {
		t := float64(i) / float64(steps-1)
		lerp := func(a, b uint8) uint8 {
			return uint8(float64(a) + (float64(b)-float64(a))*t)
		}
		palette = append(palette, color.RGBA{
			R: lerp(from.R, to.R),
			G: lerp(from.G, to.G),
			B: lerp(from.B, to.B),
			A: 255,
		})
	}
	return append(palette, color.White)
}

var _ providers.Generator = (*Fallback)(nil)
