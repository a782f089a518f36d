package simulation

import (
	"context"
	"fmt"
	"image/color"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/lao-tseu-is-alive/go-glyph-swarm/pkg/behavior"
	"github.com/lao-tseu-is-alive/go-glyph-swarm/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-glyph-swarm/pkg/glyph"
	"github.com/lao-tseu-is-alive/go-glyph-swarm/pkg/ui"
	"github.com/tochemey/goakt/v3/actor"
	"google.golang.org/protobuf/types/known/durationpb"
)

// Panel geometry; the panel opens while the cursor is over the reveal area.
const (
	panelW, panelH   = 280.0, 190.0
	revealW, revealH = 300.0, 150.0
)

var (
	// whiteImage is the source texture for DrawTriangles
	whiteImage  = ebiten.NewImage(3, 3)
	anchorColor = color.RGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xff}
	background  = color.RGBA{A: 0xff}
)

func init() {
	whiteImage.Fill(color.White)
}

type Game struct {
	ctx        context.Context
	System     actor.ActorSystem
	worldPID   *actor.PID
	snapshotCh chan *WorldSnapshot
	lastState  *WorldSnapshot

	// UI Controls
	panel         *ui.UIPanel
	widgetWord    *ui.TextInput
	widgetAnchors *ui.Checkbox
	widgetSpeed   *ui.Slider
	status        string

	cfg         *Config
	chars       []rune
	lastFrame   time.Time
	lastPointer pointerState
	vertices    []ebiten.Vertex
	indices     []uint16

	// Timing instrumentation
	lastUpdateDuration time.Duration
	lastDrawDuration   time.Duration
	updateAvg          float64 // Rolling average in ms
	drawAvg            float64 // Rolling average in ms
}

// GetNewGame rasterizes the configured word, spawns the World actor seeded
// with it and builds the control panel.
func GetNewGame(ctx context.Context, cfg *Config, system actor.ActorSystem) (*Game, error) {
	seeds, scale, err := glyph.WordSeeds(cfg.Word, cfg.WorldWidth, cfg.WorldHeight)
	if err != nil {
		return nil, fmt.Errorf("failed to seed word %q: %w", cfg.Word, err)
	}

	// 1. Buffer to avoid blocking the World
	snapshotCh := make(chan *WorldSnapshot, 2)

	// 2. Spawn World Actor
	world, err := NewWorldActor(snapshotCh, cfg, seeds, scale, system.Logger())
	if err != nil {
		return nil, err
	}
	worldPID, err := system.Spawn(ctx, "world", world)
	if err != nil {
		return nil, fmt.Errorf("failed to spawn world: %w", err)
	}

	g := &Game{
		ctx:        ctx,
		System:     system,
		worldPID:   worldPID,
		snapshotCh: snapshotCh,
		lastState:  &WorldSnapshot{}, // Avoid nil pointer
		cfg:        cfg,
		lastFrame:  time.Now(),
	}

	// 3. Control panel
	g.buildPanel()
	return g, nil
}

func (g *Game) buildPanel() {
	g.panel = ui.NewUIPanel("Glyph swarm", 10, 10, panelW, panelH)
	g.panel.RevealW, g.panel.RevealH = revealW, revealH
	g.panel.AddSection("Word")
	g.widgetWord = g.panel.AddTextInput(g.cfg.Word, 16, func(string) { g.applyWord() })
	g.panel.AddButton("Apply", g.applyWord)
	g.panel.AddSection("View")
	g.widgetAnchors = g.panel.AddCheckbox("Show anchors", g.cfg.DisplayAnchors)
	g.widgetSpeed = g.panel.AddSlider("Speed", 0.25, 2, 1)
}

// applyWord re-seeds the World with the text of the input box.
func (g *Game) applyWord() {
	word := g.widgetWord.Text
	seeds, _, err := glyph.WordSeeds(word, g.cfg.WorldWidth, g.cfg.WorldHeight)
	if err != nil {
		g.status = err.Error()
		return
	}
	if err := actor.Tell(g.ctx, g.worldPID, EncodeSeeds(seeds)); err != nil {
		g.status = err.Error()
		return
	}
	g.status = fmt.Sprintf("%q: %d boids", word, len(seeds))
}

func (g *Game) Update() error {
	start := time.Now()
	defer func() {
		g.lastUpdateDuration = time.Since(start)
		// Rolling average (exponential moving average)
		g.updateAvg = g.updateAvg*0.95 + float64(g.lastUpdateDuration.Microseconds())/1000.0*0.05
	}()

	// 1. Update UI Panel
	in := ui.PollInput(g.chars)
	g.chars = in.Chars
	g.panel.Update(in)

	// 2. Retrieve Latest State (Non-blocking)
	select {
	case snap := <-g.snapshotCh:
		g.lastState = snap
	default:
		// Use previous state if new one isn't ready
	}

	// 3. Pointer, only sent when it changes
	p := pointerState{
		pos:    geometry.Vector2D{X: in.X, Y: in.Y},
		active: in.Pressed && !g.panel.Captures(in),
	}
	if p != g.lastPointer {
		if err := actor.Tell(g.ctx, g.worldPID, EncodePointer(p.pos, p.active)); err != nil {
			return fmt.Errorf("failed to send pointer: %w", err)
		}
		g.lastPointer = p
	}

	// 4. Frame delta drives the World clock
	now := time.Now()
	dt := time.Duration(float64(now.Sub(g.lastFrame)) * g.widgetSpeed.Value)
	g.lastFrame = now
	if err := actor.Tell(g.ctx, g.worldPID, durationpb.New(dt)); err != nil {
		return fmt.Errorf("failed to send frame: %w", err)
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	start := time.Now()
	defer func() {
		g.lastDrawDuration = time.Since(start)
		g.drawAvg = g.drawAvg*0.95 + float64(g.lastDrawDuration.Microseconds())/1000.0*0.05
	}()
	screen.Fill(background)

	// 1. Anchors of released boids sit under every trail
	if g.widgetAnchors.Value {
		for i := range g.lastState.Boids {
			b := &g.lastState.Boids[i]
			if b.State == behavior.Free {
				g.drawAnchor(screen, b.Anchor, 5*b.Scale)
			}
		}
	}

	// 2. Boids arrive background layer first
	for i := range g.lastState.Boids {
		drawTrail(screen, &g.lastState.Boids[i])
	}

	// 3. Draw UI Panel
	g.panel.Draw(screen)
	if g.panel.Visible() && g.status != "" {
		ebitenutil.DebugPrintAt(screen, g.status, 20, int(10+panelH+5))
	}

	// Display performance stats on the right side to avoid overlap with panel
	msg := fmt.Sprintf("FPS: %.2f\nTPS: %.2f\nBoids: %d (free %d)\nTick: %d\n\nUpdate: %.2fms\nDraw:   %.2fms\nTotal:  %.2fms",
		ebiten.ActualFPS(),
		ebiten.ActualTPS(),
		len(g.lastState.Boids),
		g.lastState.Free,
		g.lastState.Tick,
		g.updateAvg,
		g.drawAvg,
		g.updateAvg+g.drawAvg)
	ebitenutil.DebugPrintAt(screen, msg, g.cfg.WorldWidth-170, 10)
}

// drawTrail strokes the trail as a round-jointed polyline.
func drawTrail(screen *ebiten.Image, b *BoidView) {
	r, gr, bl := b.Color.RGBA8()
	clr := color.RGBA{R: r, G: gr, B: bl, A: 0xff}
	width := float32(10 * b.Scale)

	for k := 0; k < behavior.TrailLength; k++ {
		p := b.Trail[k]
		if k > 0 {
			q := b.Trail[k-1]
			vector.StrokeLine(screen, float32(q.X), float32(q.Y), float32(p.X), float32(p.Y), width, clr, true)
		}
		vector.FillCircle(screen, float32(p.X), float32(p.Y), width/2, clr, true)
	}
}

// drawAnchor fills a pointy-top hexagon as a triangle fan.
func (g *Game) drawAnchor(screen *ebiten.Image, at geometry.Vector2D, radius float64) {
	const sides = 6
	cr, cg, cb := float32(anchorColor.R)/0xff, float32(anchorColor.G)/0xff, float32(anchorColor.B)/0xff
	vertex := func(x, y float64) ebiten.Vertex {
		return ebiten.Vertex{
			DstX: float32(x), DstY: float32(y),
			SrcX: 1, SrcY: 1,
			ColorR: cr, ColorG: cg, ColorB: cb, ColorA: 1,
		}
	}

	g.vertices = append(g.vertices[:0], vertex(at.X, at.Y))
	g.indices = g.indices[:0]
	for i := 0; i < sides; i++ {
		angle := math.Pi/3*float64(i) - math.Pi/2
		g.vertices = append(g.vertices, vertex(at.X+math.Cos(angle)*radius, at.Y+math.Sin(angle)*radius))
		g.indices = append(g.indices, 0, uint16(1+i), uint16(1+(i+1)%sides))
	}
	screen.DrawTriangles(g.vertices, g.indices, whiteImage, &ebiten.DrawTrianglesOptions{AntiAlias: true})
}

func (g *Game) Layout(w, h int) (int, int) { return g.cfg.WorldWidth, g.cfg.WorldHeight }
