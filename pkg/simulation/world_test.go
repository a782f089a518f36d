package simulation

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/lao-tseu-is-alive/go-glyph-swarm/pkg/behavior"
	"github.com/lao-tseu-is-alive/go-glyph-swarm/pkg/geometry"
	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/log"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func newTestWorld(t *testing.T, ch chan *WorldSnapshot, seeds []geometry.Vector2D) *WorldActor {
	t.Helper()
	cfg := DefaultConfig()
	cfg.WorldWidth, cfg.WorldHeight = 400, 300
	cfg.TickRate = 100
	cfg.MaxTicksPerFrame = 3
	cfg.Seed = 11
	cfg.Noise.Enabled = false
	w, err := NewWorldActor(ch, cfg, seeds, 1, nil)
	if err != nil {
		t.Fatalf("NewWorldActor unexpected error: %v", err)
	}
	if err := w.reset(seeds); err != nil {
		t.Fatalf("reset unexpected error: %v", err)
	}
	return w
}

func TestNewWorldActor_RejectsBadConfig(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"bad palette", func(c *Config) { c.Palette = []string{"nope"} }},
		{"tick rate too fast", func(c *Config) { c.TickRate = 2_000_000_000 }},
		{"zero tick rate", func(c *Config) { c.TickRate = 0 }},
		{"blank word", func(c *Config) { c.Word = " " }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			w, err := NewWorldActor(nil, cfg, nil, 1, nil)
			if !errors.Is(err, ErrInvalidConfig) || w != nil {
				t.Errorf("NewWorldActor = %v, %v; want ErrInvalidConfig", w, err)
			}
		})
	}
}

func TestWorldActor_ThroughActorSystem(t *testing.T) {
	ctx := context.Background()
	system, err := actor.NewActorSystem("WorldTest", actor.WithLogger(log.DiscardLogger))
	if err != nil {
		t.Fatalf("NewActorSystem unexpected error: %v", err)
	}
	if err := system.Start(ctx); err != nil {
		t.Fatalf("Start unexpected error: %v", err)
	}
	t.Cleanup(func() { _ = system.Stop(ctx) })

	cfg := DefaultConfig()
	cfg.WorldWidth, cfg.WorldHeight = 400, 300
	cfg.TickRate = 100
	cfg.MaxTicksPerFrame = 3
	cfg.Seed = 11
	cfg.Noise.Enabled = false
	seeds := []geometry.Vector2D{{X: 100, Y: 100}, {X: 110, Y: 100}, {X: 120, Y: 100}, {X: 300, Y: 200}}
	snaps := make(chan *WorldSnapshot, 1)
	world, err := NewWorldActor(snaps, cfg, seeds, 1, log.DiscardLogger)
	if err != nil {
		t.Fatalf("NewWorldActor unexpected error: %v", err)
	}
	pid, err := system.Spawn(ctx, "world", world)
	if err != nil {
		t.Fatalf("Spawn unexpected error: %v", err)
	}

	ask := func(t *testing.T) WorldStats {
		t.Helper()
		reply, err := actor.Ask(ctx, pid, &emptypb.Empty{}, time.Second)
		if err != nil {
			t.Fatalf("Ask unexpected error: %v", err)
		}
		s, ok := reply.(*structpb.Struct)
		if !ok {
			t.Fatalf("reply is %T; want *structpb.Struct", reply)
		}
		return DecodeStats(s)
	}
	tell := func(t *testing.T, msg proto.Message) {
		t.Helper()
		if err := actor.Tell(ctx, pid, msg); err != nil {
			t.Fatalf("Tell(%T) unexpected error: %v", msg, err)
		}
	}

	// seeds are planted on start
	if got := ask(t); got != (WorldStats{Boids: 4}) {
		t.Fatalf("after start stats = %+v; want 4 fixed boids, no ticks", got)
	}

	// the pointer covers the first three seeds only
	tell(t, EncodePointer(geometry.Vector2D{X: 110, Y: 100}, true))
	for i := 0; i < 30; i++ {
		tell(t, durationpb.New(17*time.Millisecond))
	}
	if got := ask(t); got != (WorldStats{Boids: 4, Free: 3, Ticks: 51}) {
		t.Errorf("after 30 frames stats = %+v; want 3 of 4 free after 51 ticks", got)
	}
	select {
	case snap := <-snaps:
		if snap == nil || len(snap.Boids) != 4 {
			t.Errorf("snapshot = %+v; want 4 boids", snap)
		}
	default:
		t.Error("no snapshot was pushed")
	}

	// malformed messages are ignored
	tell(t, &structpb.Struct{})
	tell(t, &durationpb.Duration{Seconds: 1, Nanos: -1})
	if got := ask(t).Ticks; got != 51 {
		t.Errorf("invalid frame advanced the clock to %d", got)
	}

	// unknown messages go unanswered and leave the world running
	if _, err := actor.Ask(ctx, pid, wrapperspb.String("hello"), 200*time.Millisecond); err == nil {
		t.Error("Ask with an unknown message got a reply")
	}

	// a new word re-fixes every boid and restarts the clock
	tell(t, EncodeSeeds([]geometry.Vector2D{{X: 50, Y: 50}, {X: 60, Y: 50}}))
	if got := ask(t); got != (WorldStats{Boids: 2}) {
		t.Errorf("after reseed stats = %+v; want 2 fixed boids, no ticks", got)
	}
}

func TestWorldActor_Advance(t *testing.T) {
	w := newTestWorld(t, nil, gridSeeds(5, 5, 15))

	if snap := w.advance(5 * time.Millisecond); snap != nil {
		t.Fatalf("advance before a whole tick returned %+v", snap)
	}
	snap := w.advance(5 * time.Millisecond)
	if snap == nil || snap.Tick != 1 || len(snap.Boids) != 25 {
		t.Fatalf("first tick snapshot = %+v", snap)
	}

	// a stall runs at most MaxTicksPerFrame ticks
	snap = w.advance(time.Second)
	if snap.Tick != 4 {
		t.Errorf("after stall Tick = %d; want 4", snap.Tick)
	}
	if got := w.stats(); got.Ticks != 4 || got.Boids != 25 || got.Free != 0 {
		t.Errorf("stats = %+v", got)
	}
}

func TestWorldActor_PointerReleasesBoids(t *testing.T) {
	seeds := []geometry.Vector2D{{X: 100, Y: 100}, {X: 300, Y: 200}}
	w := newTestWorld(t, nil, seeds)

	if err := w.setPointer(EncodePointer(seeds[0], true)); err != nil {
		t.Fatalf("setPointer unexpected error: %v", err)
	}
	released := 0
	for i := 0; i < 10; i++ {
		released += w.advance(10 * time.Millisecond).Released
	}
	if released != 1 {
		t.Errorf("released %d boids; want 1", released)
	}
	if got := w.stats().Free; got != 1 {
		t.Errorf("Free = %d; want 1", got)
	}

	// releasing the pointer stops the probe
	if err := w.setPointer(EncodePointer(seeds[1], false)); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		w.advance(10 * time.Millisecond)
	}
	if got := w.stats().Free; got != 1 {
		t.Errorf("inactive pointer released boids: Free = %d", got)
	}
}

func TestWorldActor_PushSnapshotDoesNotBlock(t *testing.T) {
	ch := make(chan *WorldSnapshot, 1)
	w := newTestWorld(t, ch, gridSeeds(2, 2, 20))

	w.pushSnapshot(w.advance(10 * time.Millisecond))
	w.pushSnapshot(w.advance(10 * time.Millisecond))
	if w.droppedFrames != 1 {
		t.Errorf("droppedFrames = %d; want 1", w.droppedFrames)
	}
	if snap := <-ch; snap.Tick != 1 {
		t.Errorf("queued snapshot Tick = %d; want 1", snap.Tick)
	}
}

func TestWorldActor_ResetRestartsClock(t *testing.T) {
	w := newTestWorld(t, nil, gridSeeds(3, 3, 20))
	w.advance(30 * time.Millisecond)

	next := []geometry.Vector2D{{X: 10, Y: 10}}
	if err := w.reset(next); err != nil {
		t.Fatal(err)
	}
	if got := w.stats(); got.Boids != 1 || got.Ticks != 0 {
		t.Errorf("stats after reset = %+v", got)
	}
	if snap := w.advance(10 * time.Millisecond); snap.Tick != 1 {
		t.Errorf("first tick after reset = %d; want 1", snap.Tick)
	}
}

func TestPointerCodec(t *testing.T) {
	pos := geometry.Vector2D{X: 12.5, Y: -3}
	got, active, err := DecodePointer(EncodePointer(pos, true))
	if err != nil || got != pos || !active {
		t.Errorf("DecodePointer = %v, %v, %v; want %v, true, nil", got, active, err, pos)
	}

	tests := []struct {
		name string
		msg  *structpb.Struct
	}{
		{"nil", nil},
		{"missing y", &structpb.Struct{Fields: map[string]*structpb.Value{"x": structpb.NewNumberValue(1)}}},
		{"string x", &structpb.Struct{Fields: map[string]*structpb.Value{
			"x": structpb.NewStringValue("1"), "y": structpb.NewNumberValue(1),
		}}},
		{"infinite", EncodePointer(geometry.Vector2D{X: math.Inf(1)}, true)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := DecodePointer(tt.msg); !errors.Is(err, ErrInvalidMessage) {
				t.Errorf("err = %v; want ErrInvalidMessage", err)
			}
		})
	}
}

func TestSeedsCodec(t *testing.T) {
	seeds := gridSeeds(3, 2, 7)
	got, err := DecodeSeeds(EncodeSeeds(seeds))
	if err != nil {
		t.Fatalf("DecodeSeeds unexpected error: %v", err)
	}
	if len(got) != len(seeds) {
		t.Fatalf("decoded %d seeds; want %d", len(got), len(seeds))
	}
	for i := range seeds {
		if got[i] != seeds[i] {
			t.Errorf("seed %d = %v; want %v", i, got[i], seeds[i])
		}
	}

	bad := &structpb.ListValue{Values: []*structpb.Value{
		structpb.NewListValue(&structpb.ListValue{Values: []*structpb.Value{structpb.NewNumberValue(1)}}),
	}}
	if _, err := DecodeSeeds(bad); !errors.Is(err, ErrInvalidMessage) {
		t.Errorf("short pair err = %v; want ErrInvalidMessage", err)
	}
}

func TestStatsCodec(t *testing.T) {
	want := WorldStats{Boids: 120, Free: 7, Ticks: 9000}
	if got := DecodeStats(EncodeStats(want)); got != want {
		t.Errorf("DecodeStats = %+v; want %+v", got, want)
	}
}

func TestWorldSnapshot_LayerOrder(t *testing.T) {
	seeds := []geometry.Vector2D{{X: 50, Y: 50}, {X: 200, Y: 150}}
	w := newTestWorld(t, nil, seeds)
	_ = w.setPointer(EncodePointer(seeds[0], true))
	var snap *WorldSnapshot
	for i := 0; i < 10; i++ {
		snap = w.advance(10 * time.Millisecond)
	}
	if snap.Boids[0].Layer != behavior.Background || snap.Boids[1].Layer != behavior.Foreground {
		t.Errorf("layers %v, %v; want fixed boid drawn first", snap.Boids[0].Layer, snap.Boids[1].Layer)
	}
	if snap.Boids[1].Anchor != seeds[0] {
		t.Errorf("foreground boid anchored at %v; want %v", snap.Boids[1].Anchor, seeds[0])
	}
}
