package flock

import (
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/geometry"
)

// Stats summarizes the population for hosts and logs.
type Stats struct {
	Count     int
	MeanSpeed float64
	MaxSpeed  float64
	// Order is |mean unit velocity| in [0, 1]: 1 when every moving agent
	// flies the same way. Agents at rest are left out.
	Order    float64
	Centroid geometry.Vector2D
}

// Stats computes a Stats over the current population.
func (f *Flock) Stats() Stats {
	return Summarize(f.agents)
}

// Summarize computes a Stats over any population snapshot.
func Summarize(agents []Agent) Stats {
	s := Stats{Count: len(agents)}
	if len(agents) == 0 {
		return s
	}

	var heading, centroid geometry.Vector2D
	moving := 0
	for _, a := range agents {
		speed := a.Velocity.Len()
		s.MeanSpeed += speed
		s.MaxSpeed = max(s.MaxSpeed, speed)
		centroid = centroid.Add(a.Position)
		if speed > 0 {
			heading = heading.Add(a.Velocity.Mul(1 / speed))
			moving++
		}
	}

	n := float64(len(agents))
	s.MeanSpeed /= n
	s.Centroid = centroid.Mul(1 / n)
	if moving > 0 {
		s.Order = heading.Len() / float64(moving)
	}
	return s
}
