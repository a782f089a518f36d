package ui

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Slider is a simple UI widget
type Slider struct {
	Label    string
	Value    float64
	Min, Max float64
	X, Y     float64
	W, H     float64
}

func NewSlider(width float64, label string, min, max, value float64) *Slider {
	s := &Slider{Label: label, Min: min, Max: max, W: width, H: 10}
	s.Set(value)
	return s
}

// Set stores v clamped to [Min, Max].
func (s *Slider) Set(v float64) {
	s.Value = max(s.Min, min(s.Max, v))
}

// Update follows the pointer while it is pressed inside the bar.
func (s *Slider) Update(in Input) {
	if in.Pressed && in.Over(s.X, s.Y, s.W, s.H) && s.W > 0 {
		p := (in.X - s.X) / s.W
		s.Set(s.Min + p*(s.Max-s.Min))
	}
}

func (s *Slider) Draw(screen *ebiten.Image) {
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%s: %.2f", s.Label, s.Value), int(s.X), int(s.Y-16))
	vector.FillRect(screen, float32(s.X), float32(s.Y), float32(s.W), float32(s.H), color.RGBA{R: 80, G: 80, B: 80, A: 255}, true)

	ratio := 0.0
	if s.Max > s.Min {
		ratio = (s.Value - s.Min) / (s.Max - s.Min)
	}
	vector.FillRect(screen, float32(s.X), float32(s.Y), float32(s.W*ratio), float32(s.H), color.RGBA{R: 200, G: 200, B: 200, A: 255}, true)
}

// SetPosition places the bar below its label.
func (s *Slider) SetPosition(x, y float64) { s.X, s.Y = x, y+16 }

func (s *Slider) GetHeight() float64 { return s.H + 25 }
