package flock

import (
	"errors"
	"testing"

	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/geometry"
)

func TestNewNoisePlacement_Invalid(t *testing.T) {
	for _, tt := range []struct{ scale, contrast float64 }{{0, 1}, {-1, 1}, {4, 0}} {
		if _, err := NewNoisePlacement(1, tt.scale, tt.contrast); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("NewNoisePlacement(scale=%v, contrast=%v) error = %v; want ErrInvalidConfig", tt.scale, tt.contrast, err)
		}
	}
}

func TestNoisePlacement_InsideBoundsAndDeterministic(t *testing.T) {
	bounds := geometry.NewRect(-50, 50, -20, 20)
	build := func() *Flock {
		pl, err := NewNoisePlacement(11, 3, 2)
		if err != nil {
			t.Fatalf("NewNoisePlacement() error = %v", err)
		}
		f, err := New(300, bounds, testParams(), 11, WithPlacement(pl))
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		return f
	}

	a, b := build(), build()
	for i := 0; i < a.Len(); i++ {
		if !bounds.Contains(a.Agent(i).Position) {
			t.Errorf("agent %d spawned outside bounds at %v", i, a.Agent(i).Position)
		}
		if a.Agent(i) != b.Agent(i) {
			t.Fatalf("agent %d differs between identically seeded runs", i)
		}
	}
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name      string
		agents    []Agent
		wantOrder float64
		wantMean  float64
	}{
		{"empty", nil, 0, 0},
		{
			name: "aligned",
			agents: []Agent{
				{Velocity: geometry.Vector2D{X: 1, Y: 0}},
				{Velocity: geometry.Vector2D{X: 3, Y: 0}},
			},
			wantOrder: 1,
			wantMean:  2,
		},
		{
			name: "opposed",
			agents: []Agent{
				{Velocity: geometry.Vector2D{X: 0, Y: 1}},
				{Velocity: geometry.Vector2D{X: 0, Y: -1}},
			},
			wantOrder: 0,
			wantMean:  1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Summarize(tt.agents)
			if s.Count != len(tt.agents) {
				t.Errorf("Count = %d; want %d", s.Count, len(tt.agents))
			}
			if diff := s.Order - tt.wantOrder; diff > tolerance || diff < -tolerance {
				t.Errorf("Order = %v; want %v", s.Order, tt.wantOrder)
			}
			if diff := s.MeanSpeed - tt.wantMean; diff > tolerance || diff < -tolerance {
				t.Errorf("MeanSpeed = %v; want %v", s.MeanSpeed, tt.wantMean)
			}
		})
	}
}
