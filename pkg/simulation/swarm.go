package simulation

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/lao-tseu-is-alive/go-glyph-swarm/pkg/behavior"
	"github.com/lao-tseu-is-alive/go-glyph-swarm/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-glyph-swarm/pkg/quadtree"
	"github.com/tochemey/goakt/v3/log"
	"golang.org/x/sync/errgroup"
)

var (
	ErrInvalidSwarmConfig = errors.New("invalid swarm configuration")
	ErrInvalidSeed        = errors.New("invalid seed point")
)

// indexSlack widens the index root past the largest wrap margin so boids
// parked exactly on the wrap line are still inside.
const indexSlack = 1.0

// SwarmConfig holds the construction-time settings of a Swarm.
type SwarmConfig struct {
	Capacity       int
	NeighborRadius float64
	Boid           behavior.Options
	// Workers > 1 runs the update loop in that many goroutines.
	Workers int
	// Seed feeds the boid rng; 0 picks one at random.
	Seed uint64
}

// SwarmConfigFrom maps the file configuration onto a SwarmConfig for the given
// display scale.
func SwarmConfigFrom(cfg *Config, scale float64) (SwarmConfig, error) {
	palette, err := cfg.ParsedPalette()
	if err != nil {
		return SwarmConfig{}, fmt.Errorf("%w: %v", ErrInvalidSwarmConfig, err)
	}
	return SwarmConfig{
		Capacity:       cfg.QuadtreeCapacity,
		NeighborRadius: cfg.NeighborRadius,
		Boid: behavior.Options{
			Scale:    scale,
			MaxSpeed: cfg.MaxSpeed,
			MaxForce: cfg.MaxForce,
			Palette:  palette,
		},
		Workers: cfg.Workers,
		Seed:    cfg.Seed,
	}, nil
}

// StepReport summarizes one tick.
type StepReport struct {
	Tick     uint64
	Boids    int
	Free     int
	Indexed  int
	Excluded int // boids outside the index root this tick
	Layered  int // boids whose render layer changed this tick
}

// BoidView is the render data of one boid.
type BoidView struct {
	Position geometry.Vector2D
	Trail    [behavior.TrailLength]geometry.Vector2D
	Color    behavior.RGB
	State    behavior.State
	Anchor   geometry.Vector2D
	Layer    behavior.Layer
	Scale    float64
}

// Swarm owns every boid and the neighbor index rebuilt on each tick.
type Swarm struct {
	cfg    SwarmConfig
	logger log.Logger
	rng    *rand.Rand

	boids []behavior.Boid
	index *quadtree.QuadTree

	// view is the frozen neighbor data of the current tick, indexed like boids
	view []behavior.Neighbor
	// per worker scratch
	points    [][]quadtree.Point
	neighbors [][]behavior.Neighbor
}

// NewSwarm returns an empty swarm. A nil logger discards output.
func NewSwarm(cfg SwarmConfig, logger log.Logger) (*Swarm, error) {
	if logger == nil {
		logger = log.DiscardLogger
	}
	cfg.Boid = cfg.Boid.WithDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	index, err := quadtree.New(quadtree.RectFromBounds(0, 0, 0), cfg.Capacity)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSwarmConfig, err)
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	workers := max(cfg.Workers, 1)
	return &Swarm{
		cfg:       cfg,
		logger:    logger,
		rng:       rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		index:     index,
		points:    make([][]quadtree.Point, workers),
		neighbors: make([][]behavior.Neighbor, workers),
	}, nil
}

func (c SwarmConfig) validate() error {
	if c.Capacity < 1 {
		return fmt.Errorf("%w: capacity must be >= 1, got %d", ErrInvalidSwarmConfig, c.Capacity)
	}
	if !(c.NeighborRadius >= 0) || math.IsInf(c.NeighborRadius, 0) {
		return fmt.Errorf("%w: neighbor radius must be finite and >= 0, got %v", ErrInvalidSwarmConfig, c.NeighborRadius)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must be >= 0, got %d", ErrInvalidSwarmConfig, c.Workers)
	}
	if err := c.Boid.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSwarmConfig, err)
	}
	return nil
}

// Len returns the number of boids.
func (s *Swarm) Len() int {
	return len(s.boids)
}

// Boids exposes the boid arena in creation order. Callers must not modify it.
func (s *Swarm) Boids() []behavior.Boid {
	return s.boids
}

// Index exposes the neighbor index as built by the last Step.
func (s *Swarm) Index() *quadtree.QuadTree {
	return s.index
}

// FreeCount returns how many boids have been released.
func (s *Swarm) FreeCount() int {
	n := 0
	for i := range s.boids {
		if s.boids[i].State == behavior.Free {
			n++
		}
	}
	return n
}

// Reset replaces every boid with one fixed boid per seed. Seeds are checked
// first; on error the swarm is left as it was.
func (s *Swarm) Reset(seeds []geometry.Vector2D) error {
	for i, p := range seeds {
		if !p.IsFinite() {
			return fmt.Errorf("%w: seed %d is %v", ErrInvalidSeed, i, p)
		}
	}
	boids := make([]behavior.Boid, 0, len(seeds))
	for _, p := range seeds {
		b, err := behavior.New(p, s.cfg.Boid, s.rng)
		if err != nil {
			return fmt.Errorf("failed to create boid at %v: %w", p, err)
		}
		boids = append(boids, *b)
	}
	s.boids = boids
	s.view = s.view[:0]
	s.index.Clear()
	s.logger.Infof("swarm reset with %d boids", len(boids))
	return nil
}

// DispatchTouch probes every fixed boid with pos, newest first. Boids that
// come loose are highlighted and their indices returned.
func (s *Swarm) DispatchTouch(pos geometry.Vector2D) []int {
	var released []int
	for i := len(s.boids) - 1; i >= 0; i-- {
		b := &s.boids[i]
		if b.CheckRelease(pos) {
			b.Highlight()
			released = append(released, i)
		}
	}
	if len(released) > 0 {
		s.logger.Debugf("touch at %v released %d boids", pos, len(released))
	}
	return released
}

// Step advances every boid by one tick. The stimulus, when set, must not
// change while Step runs.
func (s *Swarm) Step(bounds behavior.Bounds, tick uint64, noise behavior.NoiseSource, stimulus *geometry.Vector2D) StepReport {
	report := StepReport{Tick: tick, Boids: len(s.boids)}
	if len(s.boids) == 0 {
		return report
	}

	// 1. Rebuild the index and freeze the neighbor view
	margin := 0.0
	for i := range s.boids {
		margin = math.Max(margin, s.boids[i].WrapMargin())
	}
	s.index.Reset(quadtree.RectFromBounds(bounds.Width, bounds.Height, margin+indexSlack))
	s.view = s.view[:0]
	for i := range s.boids {
		n := s.boids[i].AsNeighbor()
		s.view = append(s.view, n)
		if !s.index.Insert(quadtree.Point{Pos: n.Position, Index: i}) {
			report.Excluded++
		}
	}
	report.Indexed = s.index.Len()
	if report.Excluded > 0 {
		s.logger.Debugf("tick %d: %d boids outside the index", tick, report.Excluded)
	}

	// 2. Query and update; the index and view are read-only from here
	workers := min(max(s.cfg.Workers, 1), len(s.boids))
	if workers == 1 {
		s.updateRange(0, 0, len(s.boids), bounds, tick, noise, stimulus)
	} else {
		chunk := (len(s.boids) + workers - 1) / workers
		var g errgroup.Group
		for w := 0; w < workers; w++ {
			lo := w * chunk
			hi := min(lo+chunk, len(s.boids))
			if lo >= hi {
				break
			}
			g.Go(func() error {
				s.updateRange(w, lo, hi, bounds, tick, noise, stimulus)
				return nil
			})
		}
		_ = g.Wait()
	}

	// 3. Pending layer changes
	for i := range s.boids {
		if s.boids[i].ApplyZOrder() {
			report.Layered++
		}
		if s.boids[i].State == behavior.Free {
			report.Free++
		}
	}
	return report
}

func (s *Swarm) updateRange(worker, lo, hi int, bounds behavior.Bounds, tick uint64, noise behavior.NoiseSource, stimulus *geometry.Vector2D) {
	pts := s.points[worker]
	nbs := s.neighbors[worker]
	for i := lo; i < hi; i++ {
		pts = s.index.QueryRadius(s.view[i].Position, s.cfg.NeighborRadius, pts[:0])
		nbs = nbs[:0]
		for _, p := range pts {
			nbs = append(nbs, s.view[p.Index])
		}
		s.boids[i].Update(nbs, bounds, tick, noise, stimulus)
	}
	// keep the grown buffers for the next tick
	s.points[worker] = pts
	s.neighbors[worker] = nbs
}

// Snapshot appends the render data of every boid to dst, background layer
// first, each layer in creation order.
func (s *Swarm) Snapshot(dst []BoidView) []BoidView {
	for _, layer := range []behavior.Layer{behavior.Background, behavior.Foreground} {
		for i := range s.boids {
			b := &s.boids[i]
			if b.RenderLayer() != layer {
				continue
			}
			dst = append(dst, BoidView{
				Position: b.Position,
				Trail:    b.Trail,
				Color:    b.CurrentColor,
				State:    b.State,
				Anchor:   b.Anchor,
				Layer:    layer,
				Scale:    b.Scale,
			})
		}
	}
	return dst
}
