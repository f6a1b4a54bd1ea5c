package simulation

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/goaktpb"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/flock"
)

// WorldActor owns the flock. Its mailbox serializes every access, so hosts
// can drive it from any goroutine.
//
// Messages:
//
//	*wrapperspb.DoubleValue  step by dt seconds, replies *wrapperspb.BytesValue (encoded Snapshot)
//	*durationpb.Duration     step by the elapsed frame time, pushes the Snapshot on the channel, no reply
//	*emptypb.Empty           replies the current encoded Snapshot
//	*structpb.Struct         replaces flock params (json field names), replies *emptypb.Empty
//
// Failures are replied as *wrapperspb.StringValue.
type WorldActor struct {
	flock *flock.Flock
	// Communication with UI, may be nil
	snapshotCh chan<- *Snapshot

	// --- Benchmark Stats ---
	tickCount   int
	lastLogTime time.Time
}

var _ actor.Actor = (*WorldActor)(nil)

// NewWorldActor wraps f. snapshotCh receives a snapshot after every
// Duration tick and may be nil.
func NewWorldActor(f *flock.Flock, snapshotCh chan<- *Snapshot) *WorldActor {
	return &WorldActor{
		flock:       f,
		snapshotCh:  snapshotCh,
		lastLogTime: time.Now(),
	}
}

func (w *WorldActor) PreStart(ctx *actor.Context) error {
	ctx.ActorSystem().Logger().Infof("World is starting with %d agents in %s (%s)",
		w.flock.Len(), w.flock.Bounds(), w.flock.Policy())
	return nil
}

func (w *WorldActor) Receive(ctx *actor.ReceiveContext) {
	switch msg := ctx.Message().(type) {
	case *goaktpb.PostStart:
		ctx.Logger().Info("World started")

	case *wrapperspb.DoubleValue:
		if err := w.step(ctx, msg.GetValue()); err != nil {
			ctx.Response(wrapperspb.String(err.Error()))
			return
		}
		ctx.Response(wrapperspb.Bytes(SnapshotFromFlock(w.flock).Marshal()))

	case *durationpb.Duration:
		if err := msg.CheckValid(); err != nil {
			ctx.Logger().Warnf("World dropped tick: %v", err)
			return
		}
		if err := w.step(ctx, msg.AsDuration().Seconds()); err != nil {
			ctx.Logger().Warnf("World dropped tick: %v", err)
			return
		}
		w.pushSnapshot()

	case *emptypb.Empty:
		ctx.Response(wrapperspb.Bytes(SnapshotFromFlock(w.flock).Marshal()))

	case *structpb.Struct:
		if err := w.updateParams(msg); err != nil {
			ctx.Logger().Warnf("World rejected params: %v", err)
			ctx.Response(wrapperspb.String(err.Error()))
			return
		}
		ctx.Logger().Debugf("World params updated: %+v", w.flock.Params())
		ctx.Response(&emptypb.Empty{})

	default:
		ctx.Unhandled()
	}
}

func (w *WorldActor) PostStop(ctx *actor.Context) error {
	ctx.ActorSystem().Logger().Infof("World is shutdown after %d ticks", w.flock.Ticks())
	return nil
}

func (w *WorldActor) step(ctx *actor.ReceiveContext, dt float64) error {
	if err := w.flock.Tick(dt); err != nil {
		return err
	}
	w.tickCount++
	w.logBenchmarks(ctx)
	return nil
}

func (w *WorldActor) logBenchmarks(ctx *actor.ReceiveContext) {
	if time.Since(w.lastLogTime) >= time.Second {
		stats := w.flock.Stats()
		ctx.Logger().Infof("📊 TICK RATE: %d/sec | Agents: %d | mean speed %.2f | order %.3f",
			w.tickCount, stats.Count, stats.MeanSpeed, stats.Order)
		w.tickCount = 0
		w.lastLogTime = time.Now()
	}
}

func (w *WorldActor) pushSnapshot() {
	if w.snapshotCh == nil {
		return
	}
	select {
	case w.snapshotCh <- SnapshotFromFlock(w.flock):
	default:
		// UI busy, skip frame
	}
}

// updateParams overlays the struct fields on the current params.
func (w *WorldActor) updateParams(msg *structpb.Struct) error {
	b, err := json.Marshal(msg.AsMap())
	if err != nil {
		return fmt.Errorf("failed to encode params: %w", err)
	}
	params := w.flock.Params()
	if err := json.Unmarshal(b, &params); err != nil {
		return fmt.Errorf("%w: failed to decode params: %w", flock.ErrInvalidConfig, err)
	}
	return w.flock.SetParams(params)
}

// ParamsToStruct builds the UpdateParams message understood by WorldActor.
func ParamsToStruct(p flock.Params) (*structpb.Struct, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	var m map[string]interface{}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return structpb.NewStruct(m)
}
