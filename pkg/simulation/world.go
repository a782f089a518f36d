package simulation

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/lao-tseu-is-alive/go-glyph-swarm/pkg/behavior"
	"github.com/lao-tseu-is-alive/go-glyph-swarm/pkg/geometry"
	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/goaktpb"
	"github.com/tochemey/goakt/v3/log"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// ErrInvalidMessage is returned when a pointer or seed message is malformed.
var ErrInvalidMessage = errors.New("invalid world message")

// WorldSnapshot is what the World pushes to the UI after each frame that
// ran at least one tick.
type WorldSnapshot struct {
	Tick     uint64
	Boids    []BoidView
	Free     int
	Released int // boids released during the frame
	Report   StepReport
}

// WorldStats is the reply to a stats request.
type WorldStats struct {
	Boids int
	Free  int
	Ticks uint64
}

type pointerState struct {
	pos    geometry.Vector2D
	active bool
}

// WorldActor owns the swarm and its clock. The UI drives it with frame
// deltas and pointer events and reads snapshots back from a channel.
type WorldActor struct {
	cfg    *Config
	swarm  *Swarm
	clock  *FixedStep
	noise  behavior.NoiseSource
	bounds behavior.Bounds
	seeds  []geometry.Vector2D

	// latched until the next pointer message
	pointer pointerState

	// Communication with UI
	snapshotCh chan<- *WorldSnapshot

	// --- Benchmark Stats ---
	tickCount     int
	releasedCount int
	droppedFrames int
	lastLogTime   time.Time
}

// NewWorldActor creates the world logic unit. The seeds are planted when the
// actor starts.
func NewWorldActor(snapshotCh chan<- *WorldSnapshot, cfg *Config, seeds []geometry.Vector2D, scale float64, logger log.Logger) (*WorldActor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	sc, err := SwarmConfigFrom(cfg, scale)
	if err != nil {
		return nil, err
	}
	swarm, err := NewSwarm(sc, logger)
	if err != nil {
		return nil, err
	}
	return &WorldActor{
		cfg:         cfg,
		swarm:       swarm,
		clock:       NewFixedStep(TickDuration(cfg.TickRate), cfg.MaxTicksPerFrame),
		noise:       cfg.NewNoise(int64(cfg.Seed)),
		bounds:      behavior.Bounds{Width: float64(cfg.WorldWidth), Height: float64(cfg.WorldHeight)},
		seeds:       seeds,
		snapshotCh:  snapshotCh,
		lastLogTime: time.Now(),
	}, nil
}

func (w *WorldActor) PreStart(ctx *actor.Context) error {
	ctx.ActorSystem().Logger().Infof("World is planting %d seeds...", len(w.seeds))
	return nil
}

func (w *WorldActor) Receive(ctx *actor.ReceiveContext) {
	switch msg := ctx.Message().(type) {

	case *goaktpb.PostStart:
		if err := w.reset(w.seeds); err != nil {
			ctx.Logger().Errorf("World failed to plant seeds: %v", err)
		}

	// 1. Frame delta from the game loop
	case *durationpb.Duration:
		if err := msg.CheckValid(); err != nil {
			ctx.Logger().Warnf("World ignored frame: %v", err)
			return
		}
		if snap := w.advance(msg.AsDuration()); snap != nil {
			w.pushSnapshot(snap)
		}
		w.logBenchmarks(ctx.Logger())

	// 2. Pointer moved, pressed or released
	case *structpb.Struct:
		if err := w.setPointer(msg); err != nil {
			ctx.Logger().Warnf("World ignored pointer: %v", err)
		}

	// 3. New word
	case *structpb.ListValue:
		seeds, err := DecodeSeeds(msg)
		if err == nil {
			err = w.reset(seeds)
		}
		if err != nil {
			ctx.Logger().Warnf("World ignored reset: %v", err)
		}

	case *emptypb.Empty:
		ctx.Response(EncodeStats(w.stats()))

	default:
		ctx.Unhandled()
	}
}

func (w *WorldActor) PostStop(ctx *actor.Context) error {
	ctx.ActorSystem().Logger().Info("World is shutdown...")
	return nil
}

// advance runs every tick due for dt and returns the resulting snapshot, or
// nil when no tick was due.
func (w *WorldActor) advance(dt time.Duration) *WorldSnapshot {
	n := w.clock.Advance(dt)
	if n == 0 {
		return nil
	}
	first := w.clock.Tick() - uint64(n) + 1

	// the pointer is read once and holds for the whole burst
	var stimulus *geometry.Vector2D
	if w.pointer.active {
		p := w.pointer.pos
		stimulus = &p
	}

	released := 0
	var report StepReport
	for i := 0; i < n; i++ {
		if stimulus != nil {
			released += len(w.swarm.DispatchTouch(*stimulus))
		}
		report = w.swarm.Step(w.bounds, first+uint64(i), w.noise, stimulus)
	}
	w.tickCount += n
	w.releasedCount += released

	return &WorldSnapshot{
		Tick:     report.Tick,
		Boids:    w.swarm.Snapshot(make([]BoidView, 0, w.swarm.Len())),
		Free:     report.Free,
		Released: released,
		Report:   report,
	}
}

func (w *WorldActor) pushSnapshot(snap *WorldSnapshot) {
	select {
	case w.snapshotCh <- snap:
	default:
		// UI busy, skip frame
		w.droppedFrames++
	}
}

func (w *WorldActor) reset(seeds []geometry.Vector2D) error {
	if err := w.swarm.Reset(seeds); err != nil {
		return err
	}
	w.seeds = seeds
	w.clock.Reset()
	return nil
}

func (w *WorldActor) setPointer(msg *structpb.Struct) error {
	p, active, err := DecodePointer(msg)
	if err != nil {
		return err
	}
	w.pointer = pointerState{pos: p, active: active}
	return nil
}

func (w *WorldActor) stats() WorldStats {
	return WorldStats{Boids: w.swarm.Len(), Free: w.swarm.FreeCount(), Ticks: w.clock.Tick()}
}

func (w *WorldActor) logBenchmarks(logger log.Logger) {
	if time.Since(w.lastLogTime) >= time.Second {
		logger.Debugf("📊 TICK RATE: %d/sec | Released: %d | Dropped frames: %d | Boids: %d (free %d)",
			w.tickCount, w.releasedCount, w.droppedFrames, w.swarm.Len(), w.swarm.FreeCount())
		w.tickCount = 0
		w.releasedCount = 0
		w.droppedFrames = 0
		w.lastLogTime = time.Now()
	}
}

// EncodePointer builds the pointer message sent by the UI.
func EncodePointer(pos geometry.Vector2D, active bool) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"x":      structpb.NewNumberValue(pos.X),
		"y":      structpb.NewNumberValue(pos.Y),
		"active": structpb.NewBoolValue(active),
	}}
}

// DecodePointer is the inverse of EncodePointer. A missing "active" field
// means released.
func DecodePointer(msg *structpb.Struct) (geometry.Vector2D, bool, error) {
	fields := msg.GetFields()
	x, okX := fields["x"].GetKind().(*structpb.Value_NumberValue)
	y, okY := fields["y"].GetKind().(*structpb.Value_NumberValue)
	if !okX || !okY {
		return geometry.Vector2D{}, false, fmt.Errorf("%w: pointer needs numeric x and y", ErrInvalidMessage)
	}
	p := geometry.Vector2D{X: x.NumberValue, Y: y.NumberValue}
	if !p.IsFinite() {
		return geometry.Vector2D{}, false, fmt.Errorf("%w: pointer at %v", ErrInvalidMessage, p)
	}
	return p, fields["active"].GetBoolValue(), nil
}

// EncodeSeeds packs seed points as a list of [x, y] pairs.
func EncodeSeeds(seeds []geometry.Vector2D) *structpb.ListValue {
	values := make([]*structpb.Value, len(seeds))
	for i, p := range seeds {
		values[i] = structpb.NewListValue(&structpb.ListValue{Values: []*structpb.Value{
			structpb.NewNumberValue(p.X),
			structpb.NewNumberValue(p.Y),
		}})
	}
	return &structpb.ListValue{Values: values}
}

// DecodeSeeds is the inverse of EncodeSeeds.
func DecodeSeeds(msg *structpb.ListValue) ([]geometry.Vector2D, error) {
	seeds := make([]geometry.Vector2D, 0, len(msg.GetValues()))
	for i, v := range msg.GetValues() {
		pair := v.GetListValue().GetValues()
		if len(pair) != 2 {
			return nil, fmt.Errorf("%w: seed %d has %d coordinates", ErrInvalidMessage, i, len(pair))
		}
		x, okX := pair[0].GetKind().(*structpb.Value_NumberValue)
		y, okY := pair[1].GetKind().(*structpb.Value_NumberValue)
		if !okX || !okY {
			return nil, fmt.Errorf("%w: seed %d is not numeric", ErrInvalidMessage, i)
		}
		seeds = append(seeds, geometry.Vector2D{X: x.NumberValue, Y: y.NumberValue})
	}
	return seeds, nil
}

// EncodeStats builds the stats reply.
func EncodeStats(s WorldStats) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"boids": structpb.NewNumberValue(float64(s.Boids)),
		"free":  structpb.NewNumberValue(float64(s.Free)),
		"ticks": structpb.NewNumberValue(float64(s.Ticks)),
	}}
}

// DecodeStats reads a stats reply.
func DecodeStats(msg *structpb.Struct) WorldStats {
	f := msg.GetFields()
	return WorldStats{
		Boids: int(math.Round(f["boids"].GetNumberValue())),
		Free:  int(math.Round(f["free"].GetNumberValue())),
		Ticks: uint64(math.Round(f["ticks"].GetNumberValue())),
	}
}
