package main

import (
	"math"

	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/flock"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/geometry"
)

// octant arrows, counter-clockwise from +X
var arrows = [8]rune{'→', '↗', '↑', '↖', '←', '↙', '↓', '↘'}

const restingGlyph = '·'

// glyphFor picks the arrow closest to the direction of travel.
// offset is the flock HeadingOffset.
func glyphFor(a flock.Agent, offset float64) rune {
	if a.Velocity.IsZero() {
		return restingGlyph
	}
	angle := math.Mod(a.Heading-offset, 2*math.Pi)
	if angle < 0 {
		angle += 2 * math.Pi
	}
	return arrows[int(math.Round(angle/(math.Pi/4)))%8]
}

// cellFor maps a world position onto a cols x rows grid, row 0 at the top.
func cellFor(p geometry.Vector2D, bounds geometry.Rect, cols, rows int) (int, int) {
	col := int((p.X - bounds.XMin) / bounds.Width() * float64(cols))
	row := int((bounds.YMax - p.Y) / bounds.Height() * float64(rows))
	return clampInt(col, 0, cols-1), clampInt(row, 0, rows-1)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
