package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/lao-tseu-is-alive/go-glyph-swarm/internal/cli"
	"github.com/lao-tseu-is-alive/go-glyph-swarm/pkg/behavior"
	"github.com/lao-tseu-is-alive/go-glyph-swarm/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-glyph-swarm/pkg/glyph"
	"github.com/lao-tseu-is-alive/go-glyph-swarm/pkg/simulation"
	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/log"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const frameInterval = 16 * time.Millisecond // ~60 FPS

type terminal struct {
	ctx      context.Context
	cfg      *simulation.Config
	logger   log.Logger
	screen   tcell.Screen
	worldPID *actor.PID
	snaps    chan *simulation.WorldSnapshot
	last     *simulation.WorldSnapshot
	view     viewport
	chime    *chime

	pointer geometry.Vector2D
	pressed bool
}

func main() {
	var sound bool
	// logs would corrupt the screen, so they only go to --log-file
	root := cli.NewRootCommand("boids", "Glyph swarm in the terminal", nil,
		func(ctx context.Context, cfg *simulation.Config, logger log.Logger) error {
			return run(ctx, cfg, logger, sound)
		})
	root.Flags().BoolVar(&sound, "sound", false, "chime when boids are released")
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *simulation.Config, logger log.Logger, sound bool) error {
	seeds, scale, err := glyph.WordSeeds(cfg.Word, cfg.WorldWidth, cfg.WorldHeight)
	if err != nil {
		return fmt.Errorf("failed to seed word %q: %w", cfg.Word, err)
	}

	system, err := actor.NewActorSystem("GlyphSwarmTerm",
		actor.WithLogger(logger),
		actor.WithActorInitMaxRetries(3))
	if err != nil {
		return fmt.Errorf("failed to create actor system: %w", err)
	}
	if err := system.Start(ctx); err != nil {
		return fmt.Errorf("failed to start actor system: %w", err)
	}
	defer func() { _ = system.Stop(ctx) }()

	snaps := make(chan *simulation.WorldSnapshot, 1)
	world, err := simulation.NewWorldActor(snaps, cfg, seeds, scale, logger)
	if err != nil {
		return err
	}
	pid, err := system.Spawn(ctx, "world", world)
	if err != nil {
		return fmt.Errorf("failed to spawn world: %w", err)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()
	screen.EnableMouse()
	screen.HideCursor()

	t := &terminal{
		ctx:      ctx,
		cfg:      cfg,
		logger:   logger,
		screen:   screen,
		worldPID: pid,
		snaps:    snaps,
		last:     &simulation.WorldSnapshot{},
		chime:    &chime{},
	}
	t.resize()
	if sound {
		if t.chime, err = newChime(); err != nil {
			// Non-fatal, the swarm runs without sound
			logger.Warnf("Audio initialization failed: %v", err)
		}
		defer t.chime.close()
	}

	err = t.loop()
	t.logStats()
	return err
}

func (t *terminal) loop() error {
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	done := make(chan struct{})
	defer close(done)
	go pumpEvents(t.screen.PollEvent, events, done)

	lastFrame := time.Now()
	for {
		select {
		case ev := <-events:
			more, err := t.handle(ev)
			if err != nil || !more {
				return err
			}

		case now := <-ticker.C:
			if err := actor.Tell(t.ctx, t.worldPID, durationpb.New(now.Sub(lastFrame))); err != nil {
				return fmt.Errorf("failed to send frame: %w", err)
			}
			lastFrame = now
			select {
			case snap := <-t.snaps:
				t.last = snap
				t.chime.play(snap.Released)
			default:
			}
			t.draw()

		case <-t.ctx.Done():
			return nil
		}
	}
}

// pumpEvents forwards polled events until poll returns nil, which tcell does
// once the screen is finalized, or until done is closed.
func pumpEvents(poll func() tcell.Event, events chan<- tcell.Event, done <-chan struct{}) {
	for ev := poll(); ev != nil; ev = poll() {
		select {
		case events <- ev:
		case <-done:
			return
		}
	}
}

// handle returns false when the user asked to quit.
func (t *terminal) handle(ev tcell.Event) (bool, error) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyEscape, ev.Key() == tcell.KeyCtrlC:
			return false, nil
		case ev.Key() == tcell.KeyRune && ev.Rune() == 'q':
			return false, nil
		case ev.Key() == tcell.KeyRune && ev.Rune() == 'r':
			return true, t.reseed()
		}

	case *tcell.EventMouse:
		x, y := ev.Position()
		pressed := ev.Buttons()&tcell.Button1 != 0
		p := t.view.world(x, y)
		if pressed != t.pressed || (pressed && p != t.pointer) {
			t.pointer, t.pressed = p, pressed
			return true, t.tell(simulation.EncodePointer(p, pressed))
		}

	case *tcell.EventResize:
		t.resize()
		t.screen.Sync()
	}
	return true, nil
}

func (t *terminal) tell(msg *structpb.Struct) error {
	if err := actor.Tell(t.ctx, t.worldPID, msg); err != nil {
		return fmt.Errorf("failed to send pointer: %w", err)
	}
	return nil
}

// reseed plants the word again, re-fixing every boid.
func (t *terminal) reseed() error {
	seeds, _, err := glyph.WordSeeds(t.cfg.Word, t.cfg.WorldWidth, t.cfg.WorldHeight)
	if err != nil {
		return err
	}
	return actor.Tell(t.ctx, t.worldPID, simulation.EncodeSeeds(seeds))
}

func (t *terminal) resize() {
	cols, rows := t.screen.Size()
	t.view = viewport{
		worldW: float64(t.cfg.WorldWidth),
		worldH: float64(t.cfg.WorldHeight),
		cols:   cols,
		rows:   rows - 1, // status line
	}
}

func (t *terminal) draw() {
	t.screen.Clear()

	if t.cfg.DisplayAnchors {
		anchor := tcell.StyleDefault.Foreground(tcell.NewRGBColor(0x33, 0x33, 0x33))
		for i := range t.last.Boids {
			b := &t.last.Boids[i]
			if b.State != behavior.Free {
				continue
			}
			if x, y, ok := t.view.cell(b.Anchor); ok {
				t.screen.SetContent(x, y, '+', nil, anchor)
			}
		}
	}

	// background layer arrives first, so free boids overwrite fixed ones
	for i := range t.last.Boids {
		b := &t.last.Boids[i]
		r, g, bl := b.Color.RGBA8()
		style := tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(r), int32(g), int32(bl)))
		for _, p := range b.Trail {
			if x, y, ok := t.view.cell(p); ok {
				t.screen.SetContent(x, y, '█', nil, style)
			}
		}
	}

	status := fmt.Sprintf(" %s | boids %d free %d | tick %d | drag to release, r reseed, q quit",
		t.cfg.Word, len(t.last.Boids), t.last.Free, t.last.Tick)
	dim := tcell.StyleDefault.Foreground(tcell.ColorGray)
	for i, r := range []rune(status) {
		t.screen.SetContent(i, t.view.rows, r, nil, dim)
	}
	t.screen.Show()
}

func (t *terminal) logStats() {
	reply, err := actor.Ask(t.ctx, t.worldPID, &emptypb.Empty{}, time.Second)
	if err != nil {
		t.logger.Warnf("World stats unavailable: %v", err)
		return
	}
	if s, ok := reply.(*structpb.Struct); ok {
		stats := simulation.DecodeStats(s)
		t.logger.Infof("World stopped after %d ticks, %d of %d boids released", stats.Ticks, stats.Free, stats.Boids)
	}
}
