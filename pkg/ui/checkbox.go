package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Checkbox is a simple UI widget for boolean values
type Checkbox struct {
	Label   string
	Value   bool
	X, Y    float64
	Size    float64
	clicked bool // Track if already clicked this press
}

// NewCheckbox creates a new checkbox instance
func NewCheckbox(label string, value bool) *Checkbox {
	return &Checkbox{
		Label: label,
		Value: value,
		Size:  16, // Default size
	}
}

// Update toggles the value once per press over the box or its label.
func (c *Checkbox) Update(in Input) {
	isOver := in.Over(c.X, c.Y, c.Size+8+float64(len(c.Label))*6, c.Size)
	if isOver && in.Pressed {
		if !c.clicked {
			c.Value = !c.Value
			c.clicked = true
		}
	} else if !in.Pressed {
		c.clicked = false
	}
}

func (c *Checkbox) Draw(screen *ebiten.Image) {
	vector.StrokeRect(screen,
		float32(c.X), float32(c.Y),
		float32(c.Size), float32(c.Size),
		2,
		color.RGBA{R: 200, G: 200, B: 200, A: 255},
		true)

	if c.Value {
		vector.FillRect(screen,
			float32(c.X+2), float32(c.Y+2),
			float32(c.Size-4), float32(c.Size-4),
			color.RGBA{R: 100, G: 200, B: 100, A: 255},
			true)
	}
	ebitenutil.DebugPrintAt(screen, c.Label, int(c.X+c.Size+8), int(c.Y))
}

func (c *Checkbox) SetPosition(x, y float64) { c.X, c.Y = x, y }

func (c *Checkbox) GetHeight() float64 { return c.Size + 5 }
