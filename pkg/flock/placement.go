package flock

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/aquilax/go-perlin"

	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/geometry"
)

// Placement draws initial positions inside the world bounds.
type Placement interface {
	// Position returns one point inside bounds. rng is the flock's seeded source.
	Position(rng *rand.Rand, bounds geometry.Rect) geometry.Vector2D
}

// UniformPlacement draws every coordinate uniformly within the bounds.
type UniformPlacement struct{}

// Position implements Placement.
func (UniformPlacement) Position(rng *rand.Rand, bounds geometry.Rect) geometry.Vector2D {
	return geometry.Vector2D{
		X: bounds.XMin + rng.Float64()*bounds.Width(),
		Y: bounds.YMin + rng.Float64()*bounds.Height(),
	}
}

// perlin generator settings, same as the go-perlin README defaults
const (
	noiseAlpha       = 2.0
	noiseBeta        = 2.0
	noiseOctaves     = 3
	noiseMaxAttempts = 64
)

// NoisePlacement spawns agents in clumps: uniform candidates are accepted with
// a probability given by Perlin noise sampled at the candidate.
type NoisePlacement struct {
	noise *perlin.Perlin
	// Scale is the number of noise periods across the larger world side.
	Scale float64
	// Contrast sharpens the clumps, 1 is linear.
	Contrast float64
}

// NewNoisePlacement seeds the noise field. scale and contrast must be > 0.
func NewNoisePlacement(seed int64, scale, contrast float64) (*NoisePlacement, error) {
	if !(scale > 0) || math.IsInf(scale, 0) {
		return nil, fmt.Errorf("%w: noise scale must be > 0, got %v", ErrInvalidConfig, scale)
	}
	if !(contrast > 0) || math.IsInf(contrast, 0) {
		return nil, fmt.Errorf("%w: noise contrast must be > 0, got %v", ErrInvalidConfig, contrast)
	}
	return &NoisePlacement{
		noise:    perlin.NewPerlin(noiseAlpha, noiseBeta, noiseOctaves, seed),
		Scale:    scale,
		Contrast: contrast,
	}, nil
}

// Position implements Placement. After noiseMaxAttempts rejections the last
// candidate is kept, so the call always terminates inside bounds.
func (n *NoisePlacement) Position(rng *rand.Rand, bounds geometry.Rect) geometry.Vector2D {
	side := math.Max(bounds.Width(), bounds.Height())
	var candidate geometry.Vector2D
	for attempt := 0; attempt < noiseMaxAttempts; attempt++ {
		candidate = UniformPlacement{}.Position(rng, bounds)
		u := (candidate.X - bounds.XMin) / side * n.Scale
		v := (candidate.Y - bounds.YMin) / side * n.Scale
		density := math.Pow(clamp01((n.noise.Noise2D(u, v)+1)/2), n.Contrast)
		if rng.Float64() < density {
			return candidate
		}
	}
	return candidate
}

func clamp01(x float64) float64 {
	return math.Min(1, math.Max(0, x))
}
