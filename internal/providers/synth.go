package providers

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strconv"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Helpers shared by the local fallback generators. Everything here is
// deterministic: the same inputs always render the same bytes, which keeps
// reprocessed jobs byte-identical in storage.

// Seed derives a short stable hex seed from the given parts.
func Seed(parts ...any) string {
	hasher := sha256.New()
	for _, part := range parts {
		hasher.Write([]byte(fmt.Sprintf("%v", part)))
		hasher.Write([]byte{'|'})
	}
	return hex.EncodeToString(hasher.Sum(nil))[:16]
}

// ColorFromSeed picks a stable color out of a hex seed. Different shifts give
// different but related colors for the same seed.
func ColorFromSeed(seed string, shift int) color.RGBA {
	if seed == "" {
		seed = "000000"
	}
	doubled := seed + seed
	start := (shift * 6) % len(seed)
	segment := doubled[start : start+6]
	r := parseHexByte(segment[0:2])
	g := parseHexByte(segment[2:4])
	b := parseHexByte(segment[4:6])
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

func parseHexByte(s string) uint8 {
	v, err := strconv.ParseUint(s, 16, 8)
	if err != nil {
		return 0
	}
	return uint8(v)
}

// WrapText splits text into lines of at most maxChars characters, breaking on
// word boundaries. Words longer than maxChars get a line of their own.
func WrapText(text string, maxChars int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		if len(current)+1+len(word) <= maxChars {
			current += " " + word
			continue
		}
		lines = append(lines, current)
		current = word
	}
	return append(lines, current)
}

// DrawLines renders lines of text onto dst starting at (x, y), one line per
// row using the fixed-size basic font.
func DrawLines(dst draw.Image, lines []string, x, y int, c color.Color) {
	face := basicfont.Face7x13
	lineHeight := face.Metrics().Height.Ceil() + 4
	drawer := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
	}
	for i, line := range lines {
		drawer.Dot = fixed.P(x, y+i*lineHeight)
		drawer.DrawString(line)
	}
}
