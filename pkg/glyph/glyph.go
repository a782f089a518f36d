// Package glyph turns a word into seed points: the word is drawn one
// character per line into an alpha mask, and a triangular grid is sampled
// over the lit pixels.
package glyph

import (
	"fmt"
	"image"
	"math"
	"sync"
	"unicode/utf8"

	"github.com/lao-tseu-is-alive/go-glyph-swarm/pkg/geometry"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// ReferenceSide is the screen side length at which the scale factor is 1.
const ReferenceSide = 1600.0

// GapFactor is the seed spacing in units of the scale factor.
const GapFactor = 10.0

var boldFont = sync.OnceValues(func() (*opentype.Font, error) {
	return opentype.Parse(gobold.TTF)
})

// Mask is a rendered word. Any non-zero pixel is lit.
type Mask struct {
	img *image.Alpha
}

// NewMask wraps an existing alpha image.
func NewMask(img *image.Alpha) *Mask {
	return &Mask{img: img}
}

// Width of the mask in pixels.
func (m *Mask) Width() int { return m.img.Rect.Dx() }

// Height of the mask in pixels.
func (m *Mask) Height() int { return m.img.Rect.Dy() }

// Image exposes the underlying alpha image.
func (m *Mask) Image() *image.Alpha { return m.img }

// Bright reports whether the pixel containing (x, y) is lit. Points outside
// the mask are dark.
func (m *Mask) Bright(x, y float64) bool {
	if math.IsNaN(x) || math.IsNaN(y) {
		return false
	}
	px, py := int(math.Floor(x)), int(math.Floor(y))
	if !(image.Point{X: px, Y: py}).In(m.img.Rect) {
		return false
	}
	return m.img.AlphaAt(px, py).A > 0
}

// Scale returns the display scale factor for a canvas: ReferenceSide over
// the shorter side.
func Scale(width, height int) float64 {
	short := min(width, height)
	if short <= 0 {
		return 1
	}
	return ReferenceSide / float64(short)
}

// FontSize picks the size that fits n stacked characters on the canvas.
func FontSize(width, height, n int) float64 {
	if n < 1 {
		n = 1
	}
	vertical := width < height
	short, long := float64(min(width, height)), float64(max(width, height))
	if !vertical {
		return short / float64(n)
	}
	size := short * 0.5
	if size*float64(n) > long {
		size = long / float64(n)
	}
	return size
}

// Rasterize draws text centered on a width x height canvas, one character
// per line. Runes missing from the bundled font leave a blank line.
func Rasterize(text string, width, height int) (*Mask, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("glyph: invalid canvas %dx%d", width, height)
	}
	img := image.NewAlpha(image.Rect(0, 0, width, height))
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return &Mask{img: img}, nil
	}

	f, err := boldFont()
	if err != nil {
		return nil, fmt.Errorf("glyph: failed to parse font: %w", err)
	}
	size := FontSize(width, height, n)
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("glyph: failed to create face of size %.1f: %w", size, err)
	}
	defer face.Close()

	metrics := face.Metrics()
	// baseline offset that puts the middle of the ascent/descent box on
	// the line center
	mid := (metrics.Ascent - metrics.Descent) / 2
	lineHeight := size
	startY := float64(height)/2 - float64(n-1)*lineHeight/2

	d := &font.Drawer{Dst: img, Src: image.Opaque, Face: face}
	i := 0
	for _, r := range text {
		line := string(r)
		adv := d.MeasureString(line)
		cy := startY + float64(i)*lineHeight
		d.Dot = fixed.Point26_6{
			X: (fixed.I(width) - adv) / 2,
			Y: fixed.Int26_6(cy*64) + mid,
		}
		d.DrawString(line)
		i++
	}
	return &Mask{img: img}, nil
}

// TriangularGrid calls fn for every vertex of a triangular lattice covering
// [0, width] x [0, height]. Rows are sqrt(3)/2*gap apart and odd rows are
// shifted by half a gap.
func TriangularGrid(width, height, gap float64, fn func(x, y float64)) {
	if !(gap > 0) || math.IsInf(gap, 0) {
		return
	}
	rowGap := math.Sqrt(3) / 2 * gap
	for row := 0; ; row++ {
		y := float64(row) * rowGap
		if y > height {
			return
		}
		offset := 0.0
		if row%2 == 1 {
			offset = gap / 2
		}
		for col := 0; ; col++ {
			x := float64(col) * gap
			if x > width {
				break
			}
			fn(x+offset, y)
		}
	}
}

// Seeds samples the lattice with the given gap over the mask and keeps the
// lit points inside it.
func Seeds(m *Mask, gap float64) []geometry.Vector2D {
	w, h := float64(m.Width()), float64(m.Height())
	var out []geometry.Vector2D
	TriangularGrid(w, h, gap, func(x, y float64) {
		if x >= 0 && x < w && y >= 0 && y < h && m.Bright(x, y) {
			out = append(out, geometry.Vector2D{X: x, Y: y})
		}
	})
	return out
}

// WordSeeds rasterizes word on the canvas and samples it at the gap that
// matches the canvas scale.
func WordSeeds(word string, width, height int) ([]geometry.Vector2D, float64, error) {
	mask, err := Rasterize(word, width, height)
	if err != nil {
		return nil, 0, err
	}
	scale := Scale(width, height)
	return Seeds(mask, GapFactor*scale), scale, nil
}
