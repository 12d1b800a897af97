package thumbnail

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"relayforge/internal/providers"
)

const (
	cardWidth  = 1280
	cardHeight = 720
)

// Fallback renders a deterministic gradient card with the wrapped job title.
// It is the terminal link of the thumbnail chain and cannot fail for
// well-formed input.
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

	data, err := renderCard(in.JobID, in.Title)
	if err != nil {
		return nil, err
	}

	return &providers.Payload{
		Data:        data,
		ContentType: "image/png",
		Ext:         ".png",
		Width:       cardWidth,
		Height:      cardHeight,
	}, nil
}

func renderCard(jobID, title string) ([]byte, error) {
	seed := providers.Seed(jobID, title)
	top := providers.ColorFromSeed(seed, 0)
	bottom := providers.ColorFromSeed(seed, 1)

	img := image.NewRGBA(image.Rect(0, 0, cardWidth, cardHeight))
	for y := 0; y < cardHeight; y++ {
		blend := blendColors(top, bottom, float64(y)/float64(cardHeight-1))
		row := image.Rect(0, y, cardWidth, y+1)
		draw.Draw(img, row, &image.Uniform{blend}, image.Point{}, draw.Src)
	}

	lines := providers.WrapText(title, 32)
	startY := cardHeight/2 - (len(lines)-1)*9
	providers.DrawLines(img, lines, 64, startY, color.White)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("thumbnail: encode card: %w", err)
	}
	return buf.Bytes(), nil
}

func blendColors(a, b color.RGBA, t float64) color.RGBA {
	lerp := func(x, y uint8) uint8 {
		return uint8(float64(x) + (float64(y)-float64(x))*t)
	}
	return color.RGBA{R: lerp(a.R, b.R), G: lerp(a.G, b.G), B: lerp(a.B, b.B), A: 255}
}

var _ providers.Generator = (*Fallback)(nil)
