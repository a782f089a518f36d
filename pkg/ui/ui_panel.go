package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// UIWidget is an interface for all UI widgets
type UIWidget interface {
	Update(in Input)
	Draw(screen *ebiten.Image)
	SetPosition(x, y float64)
	GetHeight() float64
}

// focuser is implemented by widgets that keep the panel open while they
// hold the keyboard.
type focuser interface {
	Focused() bool
}

// UIPanel stacks widgets vertically in a box that only shows while the
// pointer hovers its reveal area or a widget has focus.
type UIPanel struct {
	Title         string
	X, Y          float64 // Panel position
	Width, Height float64 // Panel dimensions
	// RevealW, RevealH size the hover area from the panel origin.
	RevealW, RevealH float64
	Widgets          []UIWidget

	// Styling
	BGColor     color.RGBA
	BorderColor color.RGBA

	sections []PanelSection
	visible  bool
	lastY    float64
}

// PanelSection is a titled run of widgets.
type PanelSection struct {
	Title      string
	StartIndex int // Widget index where this section starts
}

// NewUIPanel creates a new UI panel
func NewUIPanel(title string, x, y, width, height float64) *UIPanel {
	return &UIPanel{
		Title:       title,
		X:           x,
		Y:           y,
		Width:       width,
		Height:      height,
		RevealW:     width,
		RevealH:     height,
		BGColor:     color.RGBA{R: 40, G: 40, B: 45, A: 230},
		BorderColor: color.RGBA{R: 100, G: 100, B: 110, A: 255},
		lastY:       y + 25,
	}
}

// AddSection starts a titled section; later widgets belong to it.
func (p *UIPanel) AddSection(title string) {
	p.sections = append(p.sections, PanelSection{Title: title, StartIndex: len(p.Widgets)})
	p.lastY += 25
}

// Add appends a widget at the bottom of the panel and returns it.
func (p *UIPanel) Add(w UIWidget) UIWidget {
	w.SetPosition(p.X+10, p.lastY)
	p.lastY += w.GetHeight()
	p.Widgets = append(p.Widgets, w)
	return w
}

func (p *UIPanel) AddTextInput(text string, maxRunes int, onSubmit func(string)) *TextInput {
	t := NewTextInput(p.Width-20, text, maxRunes, onSubmit)
	p.Add(t)
	return t
}

func (p *UIPanel) AddButton(label string, onClick func()) *Button {
	b := NewButton(80, 20, label, onClick)
	p.Add(b)
	return b
}

func (p *UIPanel) AddCheckbox(label string, value bool) *Checkbox {
	c := NewCheckbox(label, value)
	p.Add(c)
	return c
}

func (p *UIPanel) AddSlider(label string, min, max, value float64) *Slider {
	s := NewSlider(p.Width-20, label, min, max, value)
	p.Add(s)
	return s
}

// Visible reports whether the last Update left the panel open.
func (p *UIPanel) Visible() bool { return p.visible }

// Captures reports whether the panel owns the pointer, in which case the
// simulation should ignore it.
func (p *UIPanel) Captures(in Input) bool {
	return p.visible && in.Over(p.X, p.Y, p.Width, p.Height)
}

// Update opens or closes the panel and routes input to the widgets while
// it is open.
func (p *UIPanel) Update(in Input) {
	// once open, the whole panel box keeps it open
	p.visible = in.Over(p.X, p.Y, p.RevealW, p.RevealH) ||
		(p.visible && in.Over(p.X, p.Y, p.Width, p.Height)) ||
		p.hasFocus()
	if !p.visible {
		return
	}
	for _, widget := range p.Widgets {
		widget.Update(in)
	}
}

func (p *UIPanel) hasFocus() bool {
	for _, w := range p.Widgets {
		if f, ok := w.(focuser); ok && f.Focused() {
			return true
		}
	}
	return false
}

func (p *UIPanel) Draw(screen *ebiten.Image) {
	if !p.visible {
		return
	}
	vector.FillRect(screen,
		float32(p.X), float32(p.Y),
		float32(p.Width), float32(p.Height),
		p.BGColor, true)
	vector.StrokeRect(screen,
		float32(p.X), float32(p.Y),
		float32(p.Width), float32(p.Height),
		2, p.BorderColor, true)
	ebitenutil.DebugPrintAt(screen, p.Title, int(p.X+10), int(p.Y+5))

	y := p.Y + 25
	next := 0
	for i, widget := range p.Widgets {
		for next < len(p.sections) && p.sections[next].StartIndex == i {
			sectionBG := color.RGBA{R: 60, G: 60, B: 70, A: 255}
			vector.FillRect(screen, float32(p.X+5), float32(y), float32(p.Width-10), 20, sectionBG, true)
			ebitenutil.DebugPrintAt(screen, p.sections[next].Title, int(p.X+10), int(y+3))
			y += 25
			next++
		}
		widget.Draw(screen)
		y += widget.GetHeight()
	}
}
