package simulation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/log"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/flock"
)

// ErrWorld wraps failures reported by the world actor.
var ErrWorld = errors.New("world actor")

const (
	askTimeout     = 5 * time.Second
	snapshotBuffer = 10 // avoid blocking the world when the UI is slow
)

// Engine runs a flock inside a goakt actor system.
type Engine struct {
	System     actor.ActorSystem
	worldPID   *actor.PID
	snapshotCh chan *Snapshot
	logger     log.Logger
}

// NewEngine validates cfg, builds the flock and spawns the world actor.
// Configuration errors wrap flock.ErrInvalidConfig.
func NewEngine(ctx context.Context, cfg *Config, logger log.Logger) (*Engine, error) {
	if logger == nil {
		logger = log.DiscardLogger
	}
	f, err := cfg.NewFlock(logger)
	if err != nil {
		return nil, err
	}

	system, err := actor.NewActorSystem("flock-engine", actor.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create actor system: %w", err)
	}
	if err := system.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start actor system: %w", err)
	}

	snapshotCh := make(chan *Snapshot, snapshotBuffer)
	worldPID, err := system.Spawn(ctx, "world", NewWorldActor(f, snapshotCh))
	if err != nil {
		_ = system.Stop(ctx)
		return nil, fmt.Errorf("failed to spawn world: %w", err)
	}

	return &Engine{
		System:     system,
		worldPID:   worldPID,
		snapshotCh: snapshotCh,
		logger:     logger,
	}, nil
}

// Step advances the flock by dt seconds and returns the resulting state.
func (e *Engine) Step(ctx context.Context, dt float64) (*Snapshot, error) {
	if err := flock.CheckDeltaTime(dt); err != nil {
		return nil, err
	}
	return e.askSnapshot(ctx, wrapperspb.Double(dt))
}

// Tick advances the flock by elapsed without waiting. The resulting state is
// delivered on Snapshots, dropped if nobody reads it.
func (e *Engine) Tick(ctx context.Context, elapsed time.Duration) error {
	if err := flock.CheckDeltaTime(elapsed.Seconds()); err != nil {
		return err
	}
	return actor.Tell(ctx, e.worldPID, durationpb.New(elapsed))
}

// Snapshots delivers the state produced by Tick.
func (e *Engine) Snapshots() <-chan *Snapshot {
	return e.snapshotCh
}

// State returns the current state without advancing.
func (e *Engine) State(ctx context.Context) (*Snapshot, error) {
	return e.askSnapshot(ctx, &emptypb.Empty{})
}

// UpdateParams replaces the steering params from the next tick on.
func (e *Engine) UpdateParams(ctx context.Context, p flock.Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	msg, err := ParamsToStruct(p)
	if err != nil {
		return fmt.Errorf("failed to encode params: %w", err)
	}
	resp, err := e.ask(ctx, msg)
	if err != nil {
		return err
	}
	if _, ok := resp.(*emptypb.Empty); !ok {
		return fmt.Errorf("%w: unexpected reply %T", ErrWorld, resp)
	}
	return nil
}

// Stop shuts the actor system down.
func (e *Engine) Stop(ctx context.Context) error {
	return e.System.Stop(ctx)
}

func (e *Engine) askSnapshot(ctx context.Context, msg proto.Message) (*Snapshot, error) {
	resp, err := e.ask(ctx, msg)
	if err != nil {
		return nil, err
	}
	b, ok := resp.(*wrapperspb.BytesValue)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected reply %T", ErrWorld, resp)
	}
	return UnmarshalSnapshot(b.GetValue())
}

// ask sends msg and turns a StringValue reply into an error.
func (e *Engine) ask(ctx context.Context, msg proto.Message) (proto.Message, error) {
	resp, err := actor.Ask(ctx, e.worldPID, msg, askTimeout)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWorld, err)
	}
	if failure, ok := resp.(*wrapperspb.StringValue); ok {
		e.logger.Debugf("world replied with failure: %s", failure.GetValue())
		return nil, fmt.Errorf("%w: %s", ErrWorld, failure.GetValue())
	}
	return resp, nil
}
