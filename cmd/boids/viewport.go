package main

import "github.com/lao-tseu-is-alive/go-glyph-swarm/pkg/geometry"

// viewport maps the fixed world rectangle onto a grid of terminal cells.
type viewport struct {
	worldW, worldH float64
	cols, rows     int
}

func (v viewport) cellSize() (float64, float64) {
	if v.cols < 1 || v.rows < 1 {
		return 0, 0
	}
	return v.worldW / float64(v.cols), v.worldH / float64(v.rows)
}

// cell returns the cell holding p, and false when p is off screen.
func (v viewport) cell(p geometry.Vector2D) (int, int, bool) {
	cw, ch := v.cellSize()
	if cw == 0 || p.X < 0 || p.Y < 0 {
		return 0, 0, false
	}
	x, y := int(p.X/cw), int(p.Y/ch)
	if x >= v.cols || y >= v.rows {
		return 0, 0, false
	}
	return x, y, true
}

// world returns the world point at the center of a cell.
func (v viewport) world(x, y int) geometry.Vector2D {
	cw, ch := v.cellSize()
	return geometry.Vector2D{X: (float64(x) + 0.5) * cw, Y: (float64(y) + 0.5) * ch}
}
