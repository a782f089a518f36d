package behavior

import (
	"math"

	"github.com/lao-tseu-is-alive/go-glyph-swarm/pkg/geometry"
)

const (
	// SeparationRadius is the personal space kept from other free boids.
	SeparationRadius = 25.0
	// NeighborRadius bounds alignment and cohesion, and the index query.
	NeighborRadius  = 50.0
	separationGain  = 1.5
	separationSqMax = SeparationRadius * SeparationRadius
	neighborSqMax   = NeighborRadius * NeighborRadius

	// AvoidRadius is the reach of the pointer stimulus.
	AvoidRadius = 150.0
	avoidBoost  = 3.0       // max speed gain at zero distance
	avoidWeight = 0.8 * 0.5 // radial and curl parts share the force equally

	curlNoiseScale = 0.005
	curlTimeScale  = 0.02
	curlEpsilon    = 5.0

	wanderNoiseScale = 0.01
	wanderTimeScale  = 0.01
	wanderGain       = 0.1

	// ReleaseRadius is how close a probe must come to stretch a fixed boid.
	ReleaseRadius    = 50.0
	releaseStep      = 0.7 // link growth per probe, in units of scale
	releaseThreshold = 6.0 // link length that frees the boid, in units of scale
)

// Flock returns the combined separation, alignment and cohesion force for a
// free boid. Entries at distance zero are skipped.
func (b *Boid) Flock(neighbors []Neighbor) geometry.Vector2D {
	var sep, ali, coh geometry.Vector2D
	sepCount, count := 0, 0

	for i := range neighbors {
		n := &neighbors[i]
		dx := b.Position.X - n.Position.X
		dy := b.Position.Y - n.Position.Y
		dSq := dx*dx + dy*dy
		if dSq == 0 {
			continue
		}
		if dSq < separationSqMax {
			// unit vector away, weighted by 1/d
			d := math.Sqrt(dSq)
			sep.X += dx / d / d
			sep.Y += dy / d / d
			sepCount++
		}
		if dSq < neighborSqMax {
			ali = ali.Add(n.Velocity)
			coh = coh.Add(n.Position)
			count++
		}
	}

	var force geometry.Vector2D
	if sepCount > 0 {
		sep = sep.Div(float64(sepCount))
		if sep.LenSqr() > 0 {
			force = force.Add(b.steer(sep).Mul(separationGain))
		}
	}
	if count > 0 {
		force = force.Add(b.steer(ali.Div(float64(count))))
		force = force.Add(b.steer(coh.Div(float64(count)).Sub(b.Position)))
	}
	return force
}

// steer turns a desired heading into a force limited to MaxForce.
func (b *Boid) steer(desired geometry.Vector2D) geometry.Vector2D {
	return desired.Normalize().Mul(b.MaxSpeed).Sub(b.Velocity).Limit(b.MaxForce)
}

// Avoid returns the push away from stimulus and boosts MaxSpeed in
// proportion to how close it is. Out of reach, MaxSpeed goes back to base and
// the force is zero. The swirl part needs a noise field and is skipped when
// noise is nil.
func (b *Boid) Avoid(stimulus geometry.Vector2D, noise NoiseSource, tick uint64) geometry.Vector2D {
	away := b.Position.Sub(stimulus)
	dSq := away.LenSqr()
	if dSq >= AvoidRadius*AvoidRadius || dSq == 0 {
		b.MaxSpeed = b.BaseMaxSpeed
		return geometry.Vector2D{}
	}

	d := math.Sqrt(dSq)
	strength := (AvoidRadius - d) / AvoidRadius
	b.MaxSpeed = b.BaseMaxSpeed * (1 + avoidBoost*strength)

	w := strength * avoidWeight
	force := away.Div(d).Mul(w)
	if noise != nil {
		force = force.Add(curl(noise, b.Position, tick).Mul(w))
	}
	return force
}

// curl is the divergence-free field (-dn/dy, dn/dx) of noise around p,
// estimated with central differences.
func curl(noise NoiseSource, p geometry.Vector2D, tick uint64) geometry.Vector2D {
	t := float64(tick) * curlTimeScale
	n1 := noise.Noise3D((p.X+curlEpsilon)*curlNoiseScale, p.Y*curlNoiseScale, t)
	n2 := noise.Noise3D((p.X-curlEpsilon)*curlNoiseScale, p.Y*curlNoiseScale, t)
	n3 := noise.Noise3D(p.X*curlNoiseScale, (p.Y+curlEpsilon)*curlNoiseScale, t)
	n4 := noise.Noise3D(p.X*curlNoiseScale, (p.Y-curlEpsilon)*curlNoiseScale, t)
	grad := geometry.Vector2D{
		X: (n1 - n2) / (2 * curlEpsilon),
		Y: (n3 - n4) / (2 * curlEpsilon),
	}
	return grad.Perp()
}

// wander is the small drift that keeps anchored boids alive.
func wander(noise NoiseSource, p geometry.Vector2D, tick uint64) geometry.Vector2D {
	t := float64(tick)
	var n float64
	if noise != nil {
		n = noise.Noise3D(p.X*wanderNoiseScale, p.Y*wanderNoiseScale, t*wanderTimeScale)
	} else {
		n = math.Sin(p.X*wanderNoiseScale+t*wanderTimeScale) * math.Cos(p.Y*wanderNoiseScale+t*wanderTimeScale)
	}
	angle := n * math.Pi
	return geometry.Vector2D{X: math.Cos(angle), Y: math.Sin(angle)}.Mul(wanderGain)
}

// CheckRelease stretches a fixed boid when probe is within ReleaseRadius.
// It returns true on the one call that frees the boid; the caller is
// expected to Highlight it.
func (b *Boid) CheckRelease(probe geometry.Vector2D) bool {
	if b.State != Fixed {
		return false
	}
	if geometry.DistanceSquared(b.Position, probe) >= ReleaseRadius*ReleaseRadius {
		return false
	}
	b.MaxTrailLinkDistance += releaseStep * b.Scale
	if b.MaxTrailLinkDistance > releaseThreshold*b.Scale {
		b.State = Free
		b.zOrderDirty = true
		return true
	}
	return false
}
