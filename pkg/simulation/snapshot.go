package simulation

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/flock"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/geometry"
)

// Snapshot is the read-only view a renderer draws from.
//
// On the wire it is a protobuf message:
//
//	message Snapshot { uint64 tick = 1; Rect bounds = 2; repeated AgentState agents = 3; }
//	message Rect { double x_min = 1; double x_max = 2; double y_min = 3; double y_max = 4; }
//	message AgentState {
//	  double position_x = 1; double position_y = 2;
//	  double velocity_x = 3; double velocity_y = 4;
//	  double heading = 5;
//	}
type Snapshot struct {
	Tick   uint64
	Bounds geometry.Rect
	Agents []flock.Agent
}

// SnapshotFromFlock copies the current state of f.
func SnapshotFromFlock(f *flock.Flock) *Snapshot {
	return &Snapshot{
		Tick:   f.Ticks(),
		Bounds: f.Bounds(),
		Agents: f.Agents(),
	}
}

// Stats summarizes the agents of the snapshot.
func (s *Snapshot) Stats() flock.Stats {
	return flock.Summarize(s.Agents)
}

// Marshal encodes the snapshot in protobuf wire format.
func (s *Snapshot) Marshal() []byte {
	b := make([]byte, 0, 48+len(s.Agents)*47)
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, s.Tick)

	b = protowire.AppendTag(b, 2, protowire.BytesType)
	b = protowire.AppendBytes(b, appendDoubles(nil, s.Bounds.XMin, s.Bounds.XMax, s.Bounds.YMin, s.Bounds.YMax))

	var agent []byte
	for _, a := range s.Agents {
		agent = appendDoubles(agent[:0], a.Position.X, a.Position.Y, a.Velocity.X, a.Velocity.Y, a.Heading)
		b = protowire.AppendTag(b, 3, protowire.BytesType)
		b = protowire.AppendBytes(b, agent)
	}
	return b
}

// UnmarshalSnapshot decodes a Marshal output. Unknown fields are skipped.
func UnmarshalSnapshot(b []byte) (*Snapshot, error) {
	s := &Snapshot{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("snapshot tag: %w", protowire.ParseError(n))
		}
		b = b[n:]

		switch {
		case num == 1 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, fmt.Errorf("snapshot tick: %w", protowire.ParseError(n))
			}
			s.Tick = v
			b = b[n:]
		case num == 2 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("snapshot bounds: %w", protowire.ParseError(n))
			}
			d, err := consumeDoubles(v, 4)
			if err != nil {
				return nil, fmt.Errorf("snapshot bounds: %w", err)
			}
			s.Bounds = geometry.NewRect(d[0], d[1], d[2], d[3])
			b = b[n:]
		case num == 3 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("snapshot agent: %w", protowire.ParseError(n))
			}
			d, err := consumeDoubles(v, 5)
			if err != nil {
				return nil, fmt.Errorf("snapshot agent %d: %w", len(s.Agents), err)
			}
			s.Agents = append(s.Agents, flock.Agent{
				Position: geometry.Vector2D{X: d[0], Y: d[1]},
				Velocity: geometry.Vector2D{X: d[2], Y: d[3]},
				Heading:  d[4],
			})
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, fmt.Errorf("snapshot field %d: %w", num, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	return s, nil
}

// appendDoubles writes values as fields 1..len(values) of type double.
func appendDoubles(b []byte, values ...float64) []byte {
	for i, v := range values {
		b = protowire.AppendTag(b, protowire.Number(i+1), protowire.Fixed64Type)
		b = protowire.AppendFixed64(b, math.Float64bits(v))
	}
	return b
}

// consumeDoubles reads double fields 1..count, skipping anything else.
// Missing fields stay zero, as proto3 would decode them.
func consumeDoubles(b []byte, count int) ([]float64, error) {
	out := make([]float64, count)
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		b = b[n:]
		if typ == protowire.Fixed64Type && num >= 1 && int(num) <= count {
			v, n := protowire.ConsumeFixed64(b)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			out[num-1] = math.Float64frombits(v)
			b = b[n:]
			continue
		}
		n = protowire.ConsumeFieldValue(num, typ, b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		b = b[n:]
	}
	return out, nil
}
