package flock

import (
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/geometry"
)

// Agent is one boid. Heading is derived from Velocity after every update and
// keeps its previous value while the agent is at rest.
type Agent struct {
	Position geometry.Vector2D `json:"position"`
	Velocity geometry.Vector2D `json:"velocity"`
	Heading  float64           `json:"heading"` // radians
}

// Steering holds the weighted-sum inputs of one agent and the clamped result.
type Steering struct {
	Separation geometry.Vector2D
	Alignment  geometry.Vector2D
	Cohesion   geometry.Vector2D
	Total      geometry.Vector2D
}

// Separation steers self away from the agents closer than SeparationDistance.
// Each contribution is the unit direction away from the neighbor divided by
// the distance, so the closest neighbors dominate.
func Separation(self int, agents []Agent, p *Params) geometry.Vector2D {
	me := agents[self]
	steer := geometry.Zero
	count := 0

	for i := range agents {
		if i == self {
			continue
		}
		distance := me.Position.DistanceTo(agents[i].Position)
		if distance >= p.SeparationDistance {
			continue
		}
		count++
		// a coincident neighbor has no direction to flee from
		if distance == 0 {
			continue
		}
		away := me.Position.Sub(agents[i].Position).Normalize()
		steer = steer.Add(away.Mul(1 / distance))
	}

	if count > 0 {
		steer = steer.Mul(1 / float64(count))
	}
	if steer.IsZero() {
		return geometry.Zero
	}
	return steer.Normalize().Mul(p.MaxSpeed).Sub(me.Velocity).ClampMagnitude(p.MaxSteerForce)
}

// Alignment steers self toward the mean velocity of the agents within NeighborDistance.
func Alignment(self int, agents []Agent, p *Params) geometry.Vector2D {
	me := agents[self]
	average := geometry.Zero
	count := 0

	for i := range agents {
		if i == self {
			continue
		}
		if me.Position.DistanceTo(agents[i].Position) < p.NeighborDistance {
			average = average.Add(agents[i].Velocity)
			count++
		}
	}

	if count == 0 {
		return geometry.Zero
	}
	average = average.Mul(1 / float64(count))
	return average.Normalize().Mul(p.MaxSpeed).Sub(me.Velocity).ClampMagnitude(p.MaxSteerForce)
}

// Cohesion seeks the center of mass of the agents within NeighborDistance.
func Cohesion(self int, agents []Agent, p *Params) geometry.Vector2D {
	me := agents[self]
	center := geometry.Zero
	count := 0

	for i := range agents {
		if i == self {
			continue
		}
		if me.Position.DistanceTo(agents[i].Position) < p.NeighborDistance {
			center = center.Add(agents[i].Position)
			count++
		}
	}

	if count == 0 {
		return geometry.Zero
	}
	return Seek(center.Mul(1/float64(count)), me, p)
}

// Seek returns the steering that turns a toward target at full speed.
func Seek(target geometry.Vector2D, a Agent, p *Params) geometry.Vector2D {
	desired := target.Sub(a.Position).Normalize().Mul(p.MaxSpeed)
	return desired.Sub(a.Velocity).ClampMagnitude(p.MaxSteerForce)
}

// ComputeSteering evaluates the three rules for self and combines them.
func ComputeSteering(self int, agents []Agent, p *Params) Steering {
	s := Steering{
		Separation: Separation(self, agents, p),
		Alignment:  Alignment(self, agents, p),
		Cohesion:   Cohesion(self, agents, p),
	}
	s.Total = s.Separation.Mul(p.SeparationWeight).
		Add(s.Alignment.Mul(p.AlignmentWeight)).
		Add(s.Cohesion.Mul(p.CohesionWeight)).
		ClampMagnitude(p.MaxSteerForce)
	return s
}

// Advance returns the state of agents[self] after dt seconds. agents is only read.
func Advance(self int, agents []Agent, dt float64, p *Params, bounds geometry.Rect) Agent {
	next := agents[self]
	steer := ComputeSteering(self, agents, p)

	next.Velocity = next.Velocity.Add(steer.Total.Mul(dt)).ClampMagnitude(p.MaxSpeed)
	if !next.Velocity.IsZero() {
		next.Heading = next.Velocity.Angle() + p.HeadingOffset
	}
	next.Position = bounds.Wrap(next.Position.Add(next.Velocity.Mul(dt)))
	return next
}
