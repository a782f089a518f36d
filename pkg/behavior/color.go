package behavior

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// RGB is a color with channels normalized to [0, 1].
type RGB struct {
	colorful.Color
}

// White is the release highlight.
var White = RGB{colorful.Color{R: 1, G: 1, B: 1}}

// Gray returns a neutral color with all channels set to v/255.
func Gray(v uint8) RGB {
	f := float64(v) / 255
	return RGB{colorful.Color{R: f, G: f, B: f}}
}

// ParseHex decodes "#rrggbb" (the leading '#' is optional).
func ParseHex(s string) (RGB, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) != 6 {
		return RGB{}, fmt.Errorf("invalid hex color %q: want 6 hex digits", s)
	}
	c, err := colorful.Hex("#" + h)
	if err != nil {
		return RGB{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	return RGB{c}, nil
}

// MustParsePalette is ParseHex over a list, panicking on bad input.
// Use it for compiled-in palettes only.
func MustParsePalette(hex ...string) []RGB {
	out := make([]RGB, len(hex))
	for i, h := range hex {
		c, err := ParseHex(h)
		if err != nil {
			panic(err)
		}
		out[i] = c
	}
	return out
}

// Lerp moves c toward target by fraction t on every channel.
func (c RGB) Lerp(target RGB, t float64) RGB {
	return RGB{c.BlendRgb(target.Color, t)}
}

// RGBA8 converts to 8-bit channels, clamping out of range values.
func (c RGB) RGBA8() (r, g, b uint8) {
	return c.Clamped().RGB255()
}

// DefaultPaletteHex is the ten-color palette free boids fade into.
var DefaultPaletteHex = []string{
	"#f94144", "#f3722c", "#f8961e", "#f9844a", "#f9c74f",
	"#90be6d", "#43aa8b", "#4d908e", "#577590", "#277da1",
}

// DefaultPalette is DefaultPaletteHex decoded.
var DefaultPalette = MustParsePalette(DefaultPaletteHex...)
