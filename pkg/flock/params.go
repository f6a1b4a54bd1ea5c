package flock

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidConfig is wrapped by every construction or parameter validation failure.
	ErrInvalidConfig = errors.New("invalid flock configuration")
	// ErrInvalidInput is wrapped when Tick receives an unusable delta time.
	ErrInvalidInput = errors.New("invalid tick input")
)

// Params controls the steering rules shared by every agent of a flock.
type Params struct {
	MaxSpeed float64 `json:"maxSpeed" toml:"maxSpeed"`
	// RotationSpeed is reserved: headings snap to the velocity direction each tick.
	RotationSpeed float64 `json:"rotationSpeed" toml:"rotationSpeed"`

	NeighborDistance   float64 `json:"neighborDistance" toml:"neighborDistance"`     // alignment and cohesion range
	SeparationDistance float64 `json:"separationDistance" toml:"separationDistance"` // personal space radius

	SeparationWeight float64 `json:"separationWeight" toml:"separationWeight"`
	AlignmentWeight  float64 `json:"alignmentWeight" toml:"alignmentWeight"`
	CohesionWeight   float64 `json:"cohesionWeight" toml:"cohesionWeight"`
	MaxSteerForce    float64 `json:"maxSteerForce" toml:"maxSteerForce"`

	// HeadingOffset is added to atan2(vy, vx). The default -Pi/2 matches a
	// sprite whose nose points along +Y; use 0 when drawing along +X.
	HeadingOffset float64 `json:"headingOffset" toml:"headingOffset"`
	// InitialSpeed is the magnitude of the velocity each agent starts with.
	InitialSpeed float64 `json:"initialSpeed" toml:"initialSpeed"`
}

// DefaultParams returns the tuning of the reference scene.
func DefaultParams() Params {
	return Params{
		MaxSpeed:           2.0,
		RotationSpeed:      5.0,
		NeighborDistance:   5.0,
		SeparationDistance: 2.0,
		SeparationWeight:   1.0,
		AlignmentWeight:    1.0,
		CohesionWeight:     1.5,
		MaxSteerForce:      1.0,
		HeadingOffset:      -math.Pi / 2,
		InitialSpeed:       0,
	}
}

// Validate rejects negative or non-finite speeds, radii, weights and forces.
// It does not require SeparationDistance < NeighborDistance.
func (p Params) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"maxSpeed", p.MaxSpeed},
		{"rotationSpeed", p.RotationSpeed},
		{"neighborDistance", p.NeighborDistance},
		{"separationDistance", p.SeparationDistance},
		{"separationWeight", p.SeparationWeight},
		{"alignmentWeight", p.AlignmentWeight},
		{"cohesionWeight", p.CohesionWeight},
		{"maxSteerForce", p.MaxSteerForce},
		{"initialSpeed", p.InitialSpeed},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return fmt.Errorf("%w: %s is not finite", ErrInvalidConfig, f.name)
		}
		if f.value < 0 {
			return fmt.Errorf("%w: %s must be >= 0, got %v", ErrInvalidConfig, f.name, f.value)
		}
	}
	if math.IsNaN(p.HeadingOffset) || math.IsInf(p.HeadingOffset, 0) {
		return fmt.Errorf("%w: headingOffset is not finite", ErrInvalidConfig)
	}
	if p.InitialSpeed > p.MaxSpeed {
		return fmt.Errorf("%w: initialSpeed %v exceeds maxSpeed %v", ErrInvalidConfig, p.InitialSpeed, p.MaxSpeed)
	}
	return nil
}

// CheckDeltaTime validates a tick duration.
func CheckDeltaTime(dt float64) error {
	if math.IsNaN(dt) || math.IsInf(dt, 0) {
		return fmt.Errorf("%w: delta time is not finite", ErrInvalidInput)
	}
	if dt < 0 {
		return fmt.Errorf("%w: delta time must be >= 0, got %v", ErrInvalidInput, dt)
	}
	return nil
}
