package ui

import (
	"image/color"
	"unicode"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// TextInput is a single line text field. It takes keyboard input while
// focused; a press inside focuses it, a press elsewhere blurs it.
type TextInput struct {
	Text     string
	MaxRunes int
	X, Y     float64
	W, H     float64
	OnSubmit func(text string)

	focused bool
	blink   int
}

func NewTextInput(width float64, text string, maxRunes int, onSubmit func(string)) *TextInput {
	return &TextInput{Text: text, MaxRunes: maxRunes, W: width, H: 20, OnSubmit: onSubmit}
}

func (t *TextInput) Focused() bool { return t.focused }

func (t *TextInput) Focus() { t.focused = true }

func (t *TextInput) Update(in Input) {
	t.blink++
	if in.Pressed {
		t.focused = in.Over(t.X, t.Y, t.W, t.H)
	}
	if !t.focused {
		return
	}

	runes := []rune(t.Text)
	for _, r := range in.Chars {
		if !unicode.IsPrint(r) {
			continue
		}
		if t.MaxRunes > 0 && len(runes) >= t.MaxRunes {
			break
		}
		runes = append(runes, r)
	}
	if in.Backspace && len(runes) > 0 {
		runes = runes[:len(runes)-1]
	}
	t.Text = string(runes)

	if in.Enter && t.OnSubmit != nil {
		t.OnSubmit(t.Text)
	}
}

func (t *TextInput) Draw(screen *ebiten.Image) {
	border := color.RGBA{R: 120, G: 120, B: 130, A: 255}
	if t.focused {
		border = color.RGBA{R: 180, G: 200, B: 255, A: 255}
	}
	vector.FillRect(screen, float32(t.X), float32(t.Y), float32(t.W), float32(t.H), color.RGBA{R: 20, G: 20, B: 24, A: 255}, true)
	vector.StrokeRect(screen, float32(t.X), float32(t.Y), float32(t.W), float32(t.H), 1, border, true)

	text := t.Text
	if t.focused && t.blink/30%2 == 0 {
		text += "_"
	}
	ebitenutil.DebugPrintAt(screen, text, int(t.X+4), int(t.Y+2))
}

func (t *TextInput) SetPosition(x, y float64) { t.X, t.Y = x, y }

func (t *TextInput) GetHeight() float64 { return t.H + 5 }
