package ui

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Input is the pointer and keyboard state of one frame. Widgets read it
// instead of polling ebiten, so they can be driven from tests.
type Input struct {
	X, Y    float64
	Pressed bool // left button or a touch is down

	Chars     []rune // text typed this frame
	Backspace bool
	Enter     bool
}

// PollInput reads the current frame's input from ebiten. The first active
// touch wins over the mouse.
func PollInput(chars []rune) Input {
	mx, my := ebiten.CursorPosition()
	bs := inpututil.KeyPressDuration(ebiten.KeyBackspace)
	in := Input{
		X:         float64(mx),
		Y:         float64(my),
		Pressed:   ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft),
		Chars:     ebiten.AppendInputChars(chars[:0]),
		Backspace: bs == 1 || (bs > 30 && bs%3 == 0), // key repeat after half a second
		Enter:     inpututil.IsKeyJustPressed(ebiten.KeyEnter) || inpututil.IsKeyJustPressed(ebiten.KeyNumpadEnter),
	}
	if ids := ebiten.AppendTouchIDs(nil); len(ids) > 0 {
		tx, ty := ebiten.TouchPosition(ids[0])
		in.X, in.Y = float64(tx), float64(ty)
		in.Pressed = true
	}
	return in
}

// Over reports whether the pointer is inside the rectangle.
func (in Input) Over(x, y, w, h float64) bool {
	return in.X >= x && in.X <= x+w && in.Y >= y && in.Y <= y+h
}
