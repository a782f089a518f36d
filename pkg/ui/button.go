package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Button is a clickable UI button
type Button struct {
	Label   string
	X, Y    float64
	Width   float64
	Height  float64
	OnClick func()

	held  bool // pointer was down last frame
	hover bool

	// Styling
	BGColor    color.RGBA
	HoverColor color.RGBA
}

// NewButton creates a new button instance
func NewButton(width, height float64, label string, onClick func()) *Button {
	return &Button{
		Label:      label,
		Width:      width,
		Height:     height,
		OnClick:    onClick,
		BGColor:    color.RGBA{R: 80, G: 120, B: 180, A: 255},
		HoverColor: color.RGBA{R: 100, G: 150, B: 220, A: 255},
	}
}

// Update fires OnClick once per press that starts over the button.
func (b *Button) Update(in Input) {
	b.hover = in.Over(b.X, b.Y, b.Width, b.Height)
	if in.Pressed && !b.held && b.hover && b.OnClick != nil {
		b.OnClick()
	}
	b.held = in.Pressed
}

func (b *Button) Draw(screen *ebiten.Image) {
	bgColor := b.BGColor
	if b.hover {
		bgColor = b.HoverColor
	}
	vector.FillRect(screen,
		float32(b.X), float32(b.Y),
		float32(b.Width), float32(b.Height),
		bgColor, true)
	vector.StrokeRect(screen,
		float32(b.X), float32(b.Y),
		float32(b.Width), float32(b.Height),
		2, color.RGBA{R: 200, G: 200, B: 200, A: 255}, true)
	ebitenutil.DebugPrintAt(screen, b.Label, int(b.X+6), int(b.Y+b.Height/2-8))
}

func (b *Button) SetPosition(x, y float64) { b.X, b.Y = x, y }

func (b *Button) GetHeight() float64 { return b.Height + 5 }
