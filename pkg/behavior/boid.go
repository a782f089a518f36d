// Package behavior holds the glyph boid: an agent that starts anchored to a
// seed point of the word and, once pulled loose, flocks with the others.
//
// Boids is an artificial life program, developed by Craig Reynolds in 1986,
// which simulates the flocking behaviour of birds, and related group motion.
// https://en.wikipedia.org/wiki/Boids
package behavior

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/lao-tseu-is-alive/go-glyph-swarm/pkg/geometry"
	"go.uber.org/multierr"
)

// TrailLength is the number of points in every boid's tail.
const TrailLength = 5

const (
	defaultMaxSpeed = 3 * 1.5
	defaultMaxForce = 0.05 * 1.5
	linkFactor      = 2.0 // initial link distance, in units of scale

	colorLerp = 0.1
)

// ErrInvalidOptions is wrapped by every Options.Validate failure.
var ErrInvalidOptions = errors.New("invalid boid options")

// State is the lifecycle phase of a boid. Fixed boids are tied to their
// Anchor; Free boids flock. A boid only ever goes from Fixed to Free.
type State uint8

const (
	Fixed State = iota
	Free
)

func (s State) String() string {
	switch s {
	case Fixed:
		return "fixed"
	case Free:
		return "free"
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// Layer is the draw order hint for renderers. Background goes first.
type Layer uint8

const (
	Background Layer = iota
	Foreground
)

// NoiseSource is a coherent 3D noise field with values in [-1, 1].
// *perlin.Perlin from github.com/aquilax/go-perlin satisfies it.
type NoiseSource interface {
	Noise3D(x, y, z float64) float64
}

// Neighbor is the read-only view of another boid used by the steering rules.
type Neighbor struct {
	Position geometry.Vector2D
	Velocity geometry.Vector2D
}

// Bounds is the nominal canvas size used for wraparound.
type Bounds struct {
	Width, Height float64
}

// Options tune a new boid. The zero value of a field means "use the default"
// except for Scale, which must be set.
type Options struct {
	// Scale is the display scale factor m; link distances are multiples of it.
	Scale    float64
	MaxSpeed float64
	MaxForce float64
	// Palette holds the candidate target colors; one is picked at random.
	Palette []RGB
}

// DefaultOptions returns the stock tuning for the given scale.
func DefaultOptions(scale float64) Options {
	return Options{
		Scale:    scale,
		MaxSpeed: defaultMaxSpeed,
		MaxForce: defaultMaxForce,
		Palette:  DefaultPalette,
	}
}

// Validate reports every problem with o at once.
func (o Options) Validate() error {
	var err error
	if !(o.Scale > 0) || math.IsInf(o.Scale, 0) {
		err = multierr.Append(err, fmt.Errorf("%w: scale must be > 0, got %v", ErrInvalidOptions, o.Scale))
	}
	if o.MaxSpeed < 0 || math.IsNaN(o.MaxSpeed) {
		err = multierr.Append(err, fmt.Errorf("%w: max speed must be >= 0, got %v", ErrInvalidOptions, o.MaxSpeed))
	}
	if o.MaxForce < 0 || math.IsNaN(o.MaxForce) {
		err = multierr.Append(err, fmt.Errorf("%w: max force must be >= 0, got %v", ErrInvalidOptions, o.MaxForce))
	}
	if len(o.Palette) == 0 {
		err = multierr.Append(err, fmt.Errorf("%w: palette is empty", ErrInvalidOptions))
	}
	return err
}

// WithDefaults fills zero fields with the stock tuning.
func (o Options) WithDefaults() Options {
	if o.MaxSpeed == 0 {
		o.MaxSpeed = defaultMaxSpeed
	}
	if o.MaxForce == 0 {
		o.MaxForce = defaultMaxForce
	}
	if o.Palette == nil {
		o.Palette = DefaultPalette
	}
	return o
}

// Boid is a single glyph agent. Fields are exported so renderers can read
// them; only the boid's own methods should write them.
type Boid struct {
	Position     geometry.Vector2D
	Velocity     geometry.Vector2D
	Acceleration geometry.Vector2D

	// Trail runs from the tail (index 0) to the head, which always equals
	// Position after an update.
	Trail [TrailLength]geometry.Vector2D

	MaxSpeed             float64
	BaseMaxSpeed         float64
	MaxForce             float64
	MaxTrailLinkDistance float64
	Scale                float64

	State State
	// Anchor is the seed point. Fixed boids are chained to it; for Free
	// boids it is only kept for anchor markers.
	Anchor geometry.Vector2D

	CurrentColor RGB
	TargetColor  RGB

	layer       Layer
	zOrderDirty bool
}

// New creates a Fixed boid anchored at pos. A nil rng uses the global source.
func New(pos geometry.Vector2D, opts Options, rng *rand.Rand) (*Boid, error) {
	opts = opts.WithDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if !pos.IsFinite() {
		return nil, fmt.Errorf("%w: position %v is not finite", ErrInvalidOptions, pos)
	}
	randFloat, randIntN := rand.Float64, rand.IntN
	if rng != nil {
		randFloat, randIntN = rng.Float64, rng.IntN
	}

	gray := Gray(90)
	if randFloat() >= 0.5 {
		gray = Gray(110)
	}

	b := &Boid{
		Position:             pos,
		Velocity:             geometry.Vector2D{X: randFloat()*2 - 1, Y: randFloat()*2 - 1},
		MaxSpeed:             opts.MaxSpeed,
		BaseMaxSpeed:         opts.MaxSpeed,
		MaxForce:             opts.MaxForce,
		MaxTrailLinkDistance: linkFactor * opts.Scale,
		Scale:                opts.Scale,
		State:                Fixed,
		Anchor:               pos,
		CurrentColor:         gray,
		TargetColor:          opts.Palette[randIntN(len(opts.Palette))],
		layer:                Background,
	}
	for i := range b.Trail {
		b.Trail[i] = pos
	}
	return b, nil
}

// Update runs one simulation tick. neighbors must not contain the boid
// itself; stimulus is the latched pointer position or nil. A nil noise
// selects a sinusoidal wander field.
func (b *Boid) Update(neighbors []Neighbor, bounds Bounds, tick uint64, noise NoiseSource, stimulus *geometry.Vector2D) {
	if stimulus != nil {
		b.applyForce(b.Avoid(*stimulus, noise, tick))
	} else {
		b.MaxSpeed = b.BaseMaxSpeed
	}

	switch b.State {
	case Free:
		b.applyForce(b.Flock(neighbors))
	case Fixed:
		b.applyForce(wander(noise, b.Position, tick))
	}

	b.integrate()
	b.updateTrail()
	if b.State == Free {
		b.CurrentColor = b.CurrentColor.Lerp(b.TargetColor, colorLerp)
	}
	b.wrap(bounds)
}

func (b *Boid) applyForce(f geometry.Vector2D) {
	b.Acceleration = b.Acceleration.Add(f)
}

func (b *Boid) integrate() {
	b.Velocity = b.Velocity.Add(b.Acceleration).Limit(b.MaxSpeed)
	b.Position = b.Position.Add(b.Velocity)
	b.Acceleration = geometry.Vector2D{}
}

// updateTrail drags the tail behind the head, then for Fixed boids pulls the
// chain back toward the anchor.
func (b *Boid) updateTrail() {
	maxD := b.MaxTrailLinkDistance
	head := TrailLength - 1

	b.Trail[head] = b.Position
	for i := head; i > 0; i-- {
		b.Trail[i-1], _ = clampLink(b.Trail[i], b.Trail[i-1], maxD)
	}

	if b.State != Fixed {
		return
	}
	prev := b.Anchor
	for i := range b.Trail {
		p, moved := clampLink(prev, b.Trail[i], maxD)
		b.Trail[i] = p
		if moved && i == head {
			b.Position = p
		}
		prev = p
	}
}

// clampLink returns p pulled toward lead so that it is at most maxD away.
func clampLink(lead, p geometry.Vector2D, maxD float64) (geometry.Vector2D, bool) {
	d := p.Sub(lead)
	dSq := d.LenSqr()
	if dSq <= maxD*maxD {
		return p, false
	}
	return lead.Add(d.Mul(maxD / math.Sqrt(dSq))), true
}

// WrapMargin is how far past the canvas edge the boid may travel before it
// wraps. It grows with the link distance.
func (b *Boid) WrapMargin() float64 {
	return TrailLength * b.MaxTrailLinkDistance
}

func (b *Boid) wrap(bounds Bounds) {
	d := b.WrapMargin()
	if b.Position.X < -d {
		b.Position.X = bounds.Width + d
	}
	if b.Position.Y < -d {
		b.Position.Y = bounds.Height + d
	}
	if b.Position.X > bounds.Width+d {
		b.Position.X = -d
	}
	if b.Position.Y > bounds.Height+d {
		b.Position.Y = -d
	}
}

// Highlight flashes the boid white; the color then fades back to its target.
func (b *Boid) Highlight() {
	b.CurrentColor = White
}

// RenderLayer is the layer the boid should be drawn on. It only changes when
// the owner calls ApplyZOrder after a release.
func (b *Boid) RenderLayer() Layer {
	return b.layer
}

// ZOrderDirty reports a pending layer change.
func (b *Boid) ZOrderDirty() bool {
	return b.zOrderDirty
}

// ApplyZOrder moves the boid to the layer matching its state and clears the
// pending flag. It reports whether anything changed.
func (b *Boid) ApplyZOrder() bool {
	if !b.zOrderDirty {
		return false
	}
	b.zOrderDirty = false
	if b.State == Free {
		b.layer = Foreground
	} else {
		b.layer = Background
	}
	return true
}

// AsNeighbor returns the view other boids steer against.
func (b *Boid) AsNeighbor() Neighbor {
	return Neighbor{Position: b.Position, Velocity: b.Velocity}
}
