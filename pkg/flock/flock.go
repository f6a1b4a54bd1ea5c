package flock

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/tochemey/goakt/v3/log"
	"golang.org/x/sync/errgroup"

	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/geometry"
)

// Policy selects how agents observe each other during a tick.
type Policy int

const (
	// DoubleBuffered makes every agent read the same prior-tick snapshot.
	// Result does not depend on agent order or on the number of workers.
	DoubleBuffered Policy = iota
	// Sequential updates agents in list order and in place: agent i sees the
	// post-update state of agents 0..i-1 and the prior state of the others.
	// This reproduces the reference scene and is never run in parallel.
	Sequential
)

// String implements fmt.Stringer.
func (p Policy) String() string {
	switch p {
	case DoubleBuffered:
		return "double-buffered"
	case Sequential:
		return "sequential"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// ParsePolicy is the inverse of Policy.String.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "double-buffered":
		return DoubleBuffered, nil
	case "sequential":
		return Sequential, nil
	default:
		return 0, fmt.Errorf("%w: unknown update policy %q", ErrInvalidConfig, s)
	}
}

// Flock owns the population and the world bounds.
type Flock struct {
	agents []Agent
	next   []Agent // write buffer of the double-buffered policy

	bounds  geometry.Rect
	params  Params
	policy  Policy
	workers int
	ticks   uint64

	placement Placement
	logger    log.Logger
}

// Option customizes a Flock at construction.
type Option func(*Flock)

// WithPolicy sets the update policy. The default is DoubleBuffered.
func WithPolicy(p Policy) Option {
	return func(f *Flock) { f.policy = p }
}

// WithWorkers sets how many goroutines share a double-buffered tick.
// Values below 2 update inline. Ignored by the Sequential policy.
func WithWorkers(n int) Option {
	return func(f *Flock) { f.workers = n }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l log.Logger) Option {
	return func(f *Flock) {
		if l != nil {
			f.logger = l
		}
	}
}

// WithPlacement sets how New draws initial positions. The default is UniformPlacement.
func WithPlacement(pl Placement) Option {
	return func(f *Flock) {
		if pl != nil {
			f.placement = pl
		}
	}
}

func newFlock(bounds geometry.Rect, params Params, opts []Option) (*Flock, error) {
	if err := bounds.Validate(); err != nil {
		return nil, fmt.Errorf("%w: world bounds: %w", ErrInvalidConfig, err)
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	f := &Flock{
		bounds:    bounds,
		params:    params,
		policy:    DoubleBuffered,
		workers:   1,
		placement: UniformPlacement{},
		logger:    log.DiscardLogger,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.policy != DoubleBuffered && f.policy != Sequential {
		return nil, fmt.Errorf("%w: unknown update policy %d", ErrInvalidConfig, int(f.policy))
	}
	if f.workers < 1 {
		f.workers = 1
	}
	return f, nil
}

// New creates count agents placed inside bounds with a uniformly random
// initial direction, all drawn from a generator seeded with seed.
func New(count int, bounds geometry.Rect, params Params, seed int64, opts ...Option) (*Flock, error) {
	if count < 0 {
		return nil, fmt.Errorf("%w: population count must be >= 0, got %d", ErrInvalidConfig, count)
	}
	f, err := newFlock(bounds, params, opts)
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewPCG(uint64(seed), 0))
	f.agents = make([]Agent, count)
	for i := range f.agents {
		pos := f.placement.Position(rng, bounds)
		direction := rng.Float64() * 2 * math.Pi
		f.agents[i] = Agent{
			Position: pos,
			Velocity: geometry.NewVectorPolar(params.InitialSpeed, direction),
			Heading:  direction + params.HeadingOffset,
		}
	}
	f.next = make([]Agent, count)

	f.logger.Debugf("flock created: %d agents in %s, policy %s, %d workers, seed %d",
		count, bounds, f.policy, f.workers, seed)
	return f, nil
}

// FromAgents creates a flock from a host-supplied initial population.
// The slice is copied. Every agent must be finite and inside bounds.
func FromAgents(agents []Agent, bounds geometry.Rect, params Params, opts ...Option) (*Flock, error) {
	f, err := newFlock(bounds, params, opts)
	if err != nil {
		return nil, err
	}
	for i, a := range agents {
		if !a.Position.IsFinite() || !a.Velocity.IsFinite() || math.IsNaN(a.Heading) || math.IsInf(a.Heading, 0) {
			return nil, fmt.Errorf("%w: agent %d has a non-finite state", ErrInvalidConfig, i)
		}
		if !bounds.Contains(a.Position) {
			return nil, fmt.Errorf("%w: agent %d at %s is outside %s", ErrInvalidConfig, i, a.Position, bounds)
		}
	}
	f.agents = append([]Agent(nil), agents...)
	f.next = make([]Agent, len(agents))
	f.logger.Debugf("flock created from %d agents in %s, policy %s", len(agents), bounds, f.policy)
	return f, nil
}

// Tick advances every agent by dt seconds.
func (f *Flock) Tick(dt float64) error {
	if err := CheckDeltaTime(dt); err != nil {
		return err
	}

	switch f.policy {
	case Sequential:
		for i := range f.agents {
			f.agents[i] = Advance(i, f.agents, dt, &f.params, f.bounds)
		}
	default:
		if err := f.tickDoubleBuffered(dt); err != nil {
			return err
		}
		f.agents, f.next = f.next, f.agents
	}

	f.ticks++
	return nil
}

// tickDoubleBuffered fills f.next from the frozen f.agents.
// Workers own disjoint index ranges, so no locking is needed.
func (f *Flock) tickDoubleBuffered(dt float64) error {
	n := len(f.agents)
	workers := min(f.workers, n)
	if workers <= 1 {
		for i := range f.agents {
			f.next[i] = Advance(i, f.agents, dt, &f.params, f.bounds)
		}
		return nil
	}

	var g errgroup.Group
	chunk := (n + workers - 1) / workers
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		g.Go(func() error {
			for i := start; i < end; i++ {
				f.next[i] = Advance(i, f.agents, dt, &f.params, f.bounds)
			}
			return nil
		})
	}
	return g.Wait()
}

// SetParams replaces the shared params from the next tick on.
func (f *Flock) SetParams(p Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	f.params = p
	f.logger.Debugf("flock params updated: %+v", p)
	return nil
}

// Len returns the population size.
func (f *Flock) Len() int { return len(f.agents) }

// Agent returns a copy of agent i.
func (f *Flock) Agent(i int) Agent { return f.agents[i] }

// Agents returns a copy of the current population, in creation order.
func (f *Flock) Agents() []Agent { return append([]Agent(nil), f.agents...) }

// Bounds returns the world bounds.
func (f *Flock) Bounds() geometry.Rect { return f.bounds }

// Params returns the shared steering params.
func (f *Flock) Params() Params { return f.params }

// Policy returns the update policy.
func (f *Flock) Policy() Policy { return f.policy }

// Ticks returns how many ticks have completed.
func (f *Flock) Ticks() uint64 { return f.ticks }
