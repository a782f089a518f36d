package glyph

import (
	"image"
	"image/color"
	"math"
	"testing"
)

func filledMask(w, h int, lit image.Rectangle) *Mask {
	img := image.NewAlpha(image.Rect(0, 0, w, h))
	for y := lit.Min.Y; y < lit.Max.Y; y++ {
		for x := lit.Min.X; x < lit.Max.X; x++ {
			img.SetAlpha(x, y, color.Alpha{A: 255})
		}
	}
	return NewMask(img)
}

func TestScale(t *testing.T) {
	tests := []struct {
		w, h int
		want float64
	}{
		{1600, 900, 1600.0 / 900},
		{800, 1600, 2},
		{1600, 1600, 1},
		{0, 100, 1},
	}
	for _, tt := range tests {
		if got := Scale(tt.w, tt.h); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("Scale(%d, %d) = %v; want %v", tt.w, tt.h, got, tt.want)
		}
	}
}

func TestFontSize(t *testing.T) {
	tests := []struct {
		name    string
		w, h, n int
		want    float64
	}{
		{"landscape divides the short side", 1600, 900, 3, 300},
		{"portrait half the short side", 600, 1600, 2, 300},
		{"portrait clamps long words", 600, 1600, 8, 200},
		{"empty word", 600, 1600, 0, 300},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FontSize(tt.w, tt.h, tt.n); got != tt.want {
				t.Errorf("FontSize(%d, %d, %d) = %v; want %v", tt.w, tt.h, tt.n, got, tt.want)
			}
		})
	}
}

func TestMask_Bright(t *testing.T) {
	m := filledMask(10, 10, image.Rect(2, 2, 4, 4))
	tests := []struct {
		x, y float64
		want bool
	}{
		{2, 2, true},
		{3.9, 3.9, true},
		{4, 3, false},
		{1.99, 2, false},
		{-1, -1, false},
		{20, 5, false},
		{math.NaN(), 2, false},
	}
	for _, tt := range tests {
		if got := m.Bright(tt.x, tt.y); got != tt.want {
			t.Errorf("Bright(%v, %v) = %v; want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestTriangularGrid(t *testing.T) {
	type pt struct{ x, y float64 }
	var pts []pt
	TriangularGrid(20, 20, 10, func(x, y float64) { pts = append(pts, pt{x, y}) })

	rowGap := math.Sqrt(3) / 2 * 10
	// rows at 0, 8.66, 17.32; three columns each
	if len(pts) != 9 {
		t.Fatalf("got %d points; want 9", len(pts))
	}
	want := []pt{
		{0, 0}, {10, 0}, {20, 0},
		{5, rowGap}, {15, rowGap}, {25, rowGap},
		{0, 2 * rowGap}, {10, 2 * rowGap}, {20, 2 * rowGap},
	}
	for i := range want {
		if math.Abs(pts[i].x-want[i].x) > 1e-9 || math.Abs(pts[i].y-want[i].y) > 1e-9 {
			t.Errorf("point %d = %v; want %v", i, pts[i], want[i])
		}
	}

	calls := 0
	TriangularGrid(20, 20, 0, func(_, _ float64) { calls++ })
	TriangularGrid(20, 20, -3, func(_, _ float64) { calls++ })
	if calls != 0 {
		t.Errorf("non-positive gap produced %d points", calls)
	}
}

func TestSeeds(t *testing.T) {
	m := filledMask(100, 100, image.Rect(0, 0, 100, 100))
	all := Seeds(m, 10)
	for _, p := range all {
		if p.X < 0 || p.X >= 100 || p.Y < 0 || p.Y >= 100 {
			t.Fatalf("seed %v outside the mask", p)
		}
	}
	// even rows have x = 0..90 (10 points), odd rows 5..95 (10 points)
	rows := int(math.Floor(99.999/(math.Sqrt(3)/2*10))) + 1
	if len(all) != rows*10 {
		t.Errorf("got %d seeds on a full mask; want %d", len(all), rows*10)
	}

	dark := filledMask(100, 100, image.Rectangle{})
	if got := Seeds(dark, 10); len(got) != 0 {
		t.Errorf("got %d seeds on a dark mask; want 0", len(got))
	}

	partial := filledMask(100, 100, image.Rect(40, 0, 60, 100))
	for _, p := range Seeds(partial, 10) {
		if p.X < 40 || p.X >= 60 {
			t.Errorf("seed %v outside the lit band", p)
		}
	}
}

func TestRasterize(t *testing.T) {
	t.Run("invalid canvas", func(t *testing.T) {
		if _, err := Rasterize("A", 0, 10); err == nil {
			t.Error("Rasterize on an empty canvas succeeded")
		}
	})

	t.Run("empty text is dark", func(t *testing.T) {
		m, err := Rasterize("", 64, 64)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := Seeds(m, 4); len(got) != 0 {
			t.Errorf("blank mask produced %d seeds", len(got))
		}
	})

	t.Run("word is centered", func(t *testing.T) {
		const w, h = 400, 800
		m, err := Rasterize("HI", w, h)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if m.Width() != w || m.Height() != h {
			t.Fatalf("mask is %dx%d; want %dx%d", m.Width(), m.Height(), w, h)
		}
		var lit, sumX int
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				if m.Bright(float64(x), float64(y)) {
					lit++
					sumX += x
				}
			}
		}
		if lit == 0 {
			t.Fatal("no pixel lit")
		}
		if cx := float64(sumX) / float64(lit); math.Abs(cx-w/2) > w/8 {
			t.Errorf("ink centroid x = %.1f; want near %d", cx, w/2)
		}
	})
}

func TestWordSeeds(t *testing.T) {
	seeds, scale, err := WordSeeds("GO", 800, 1600)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if scale != 2 {
		t.Errorf("scale = %v; want 2", scale)
	}
	if len(seeds) == 0 {
		t.Error("no seeds for a non-empty word")
	}
}
