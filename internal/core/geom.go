// Package core provides the platform types shared by the game and the
// terminal frontends. It has no external dependencies (especially no Bubble
// Tea) so game logic stays pure and testable.
package core

import "math"

// CellAspect is the height-to-width ratio of a terminal cell.
const CellAspect = 2.0

// Rect is an area of the screen measured in cells.
type Rect struct {
	X, Y int
	W, H int
}

// NewRect creates a rectangle with top-left corner (x, y).
func NewRect(x, y, w, h int) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Right returns the first column past the rectangle.
func (r Rect) Right() int {
	return r.X + r.W
}

// Bottom returns the first row below the rectangle.
func (r Rect) Bottom() int {
	return r.Y + r.H
}

// Inset shrinks the rectangle by n cells on every side.
// Width and height never go below zero.
func (r Rect) Inset(n int) Rect {
	return Rect{
		X: r.X + n,
		Y: r.Y + n,
		W: max(0, r.W-2*n),
		H: max(0, r.H-2*n),
	}
}

// FitScale returns the horizontal scale, in cells per world unit, at which
// a w by h world area fits inside the rectangle. Rows are CellAspect times
// taller than columns, so the matching vertical scale is
// FitScale / CellAspect. Degenerate extents count as one unit.
func (r Rect) FitScale(w, h float64) float64 {
	w = math.Max(w, 1)
	h = math.Max(h, 1)
	sx := float64(max(r.W-1, 1)) / w
	sy := float64(max(r.H-1, 1)) / h
	return math.Min(sx, sy*CellAspect)
}

// Abs returns the absolute value of an integer.
func Abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
