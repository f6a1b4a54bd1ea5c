package geometry

import (
	"errors"
	"fmt"
	"math"
)

// ErrDegenerateRect is returned by Validate for empty, inverted or non-finite rectangles.
var ErrDegenerateRect = errors.New("degenerate rectangle")

// Rect is an axis-aligned rectangle used as world bounds.
type Rect struct {
	XMin float64 `json:"xMin" toml:"xMin"`
	XMax float64 `json:"xMax" toml:"xMax"`
	YMin float64 `json:"yMin" toml:"yMin"`
	YMax float64 `json:"yMax" toml:"yMax"`
}

// NewRect builds a Rect from its four edges.
func NewRect(xMin, xMax, yMin, yMax float64) Rect {
	return Rect{XMin: xMin, XMax: xMax, YMin: yMin, YMax: yMax}
}

// Validate fails when the rectangle has no area or an edge is NaN/Inf.
func (r Rect) Validate() error {
	for _, edge := range []float64{r.XMin, r.XMax, r.YMin, r.YMax} {
		if math.IsNaN(edge) || math.IsInf(edge, 0) {
			return fmt.Errorf("%w: non-finite edge in %s", ErrDegenerateRect, r)
		}
	}
	if r.XMin >= r.XMax {
		return fmt.Errorf("%w: xMin %.2f >= xMax %.2f", ErrDegenerateRect, r.XMin, r.XMax)
	}
	if r.YMin >= r.YMax {
		return fmt.Errorf("%w: yMin %.2f >= yMax %.2f", ErrDegenerateRect, r.YMin, r.YMax)
	}
	return nil
}

// Width returns XMax - XMin.
func (r Rect) Width() float64 { return r.XMax - r.XMin }

// Height returns YMax - YMin.
func (r Rect) Height() float64 { return r.YMax - r.YMin }

// Center returns the middle point of the rectangle.
func (r Rect) Center() Vector2D {
	return Vector2D{X: (r.XMin + r.XMax) / 2, Y: (r.YMin + r.YMax) / 2}
}

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Vector2D) bool {
	return p.X >= r.XMin && p.X <= r.XMax && p.Y >= r.YMin && p.Y <= r.YMax
}

// Wrap teleports a point that left the rectangle to the opposite edge.
// Comparisons are strict: a coordinate equal to an edge stays where it is.
func (r Rect) Wrap(p Vector2D) Vector2D {
	if p.X < r.XMin {
		p.X = r.XMax
	} else if p.X > r.XMax {
		p.X = r.XMin
	}
	if p.Y < r.YMin {
		p.Y = r.YMax
	} else if p.Y > r.YMax {
		p.Y = r.YMin
	}
	return p
}

// String implements fmt.Stringer.
func (r Rect) String() string {
	return fmt.Sprintf("[%.2f..%.2f]x[%.2f..%.2f]", r.XMin, r.XMax, r.YMin, r.YMax)
}
