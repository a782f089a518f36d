package geometry

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// Epsilon is the tolerance used by Eq and by polar construction.
const (
	Epsilon = 1e-9
)

// Vector2D represents a 2D vector or point in cartesian space.
// It is a plain value type: every operation returns a new value, so calls
// chain naturally, e.g. v.Sub(w).Normalize().Mul(speed).
type Vector2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NewVector creates a new Vector2D.
func NewVector(x, y float64) Vector2D {
	return Vector2D{X: x, Y: y}
}

// NewVectorPolar creates a new Vector2D from polar coordinates.
// theta is in radians.
func NewVectorPolar(radius, theta float64) Vector2D {
	x := radius * math.Cos(theta)
	y := radius * math.Sin(theta)

	// snap float noise around the axes
	if math.Abs(x) < Epsilon {
		x = 0
	}
	if math.Abs(y) < Epsilon {
		y = 0
	}

	return Vector2D{X: x, Y: y}
}

// RandomUnit returns a unit vector with a uniformly random heading.
// A nil rng uses the global source.
func RandomUnit(rng *rand.Rand) Vector2D {
	var angle float64
	if rng == nil {
		angle = rand.Float64() * 2 * math.Pi
	} else {
		angle = rng.Float64() * 2 * math.Pi
	}
	return Vector2D{X: math.Cos(angle), Y: math.Sin(angle)}
}

// String implements the fmt.Stringer interface.
func (v Vector2D) String() string {
	return fmt.Sprintf("(%.2f, %.2f)", v.X, v.Y)
}

// ---------------------------------------------------------------------
// Arithmetic Operations
// ---------------------------------------------------------------------

// Add adds two vectors and returns the result.
func (v Vector2D) Add(other Vector2D) Vector2D {
	return Vector2D{v.X + other.X, v.Y + other.Y}
}

// Sub subtracts the other vector from the current vector.
func (v Vector2D) Sub(other Vector2D) Vector2D {
	return Vector2D{v.X - other.X, v.Y - other.Y}
}

// Mul scales the vector by a scalar value.
func (v Vector2D) Mul(scalar float64) Vector2D {
	return Vector2D{v.X * scalar, v.Y * scalar}
}

// Div scales the vector by 1/scalar.
// Dividing by zero leaves the vector unchanged.
func (v Vector2D) Div(scalar float64) Vector2D {
	if scalar == 0 {
		return v
	}
	return Vector2D{v.X / scalar, v.Y / scalar}
}

// ---------------------------------------------------------------------
// Vector2D Products
// ---------------------------------------------------------------------

// Dot calculates the dot product of two vectors.
func (v Vector2D) Dot(other Vector2D) float64 {
	return v.X*other.X + v.Y*other.Y
}

// Cross calculates the 2D scalar cross product (z-component of 3D cross product).
func (v Vector2D) Cross(other Vector2D) float64 {
	return v.X*other.Y - v.Y*other.X
}

// ---------------------------------------------------------------------
// Magnitude and Normalization
// ---------------------------------------------------------------------

// LenSqr calculates the squared magnitude of the vector.
// Prefer it over Len for comparisons, it skips the square root.
func (v Vector2D) LenSqr() float64 {
	return v.X*v.X + v.Y*v.Y
}

// Len calculates the magnitude (length) of the vector.
func (v Vector2D) Len() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

// Normalize returns a unit vector in the same direction.
// A zero vector is returned unchanged.
func (v Vector2D) Normalize() Vector2D {
	l := v.Len()
	if l == 0 {
		return v
	}
	return Vector2D{v.X / l, v.Y / l}
}

// SetLen returns a vector with the same heading and the given length.
// A zero vector stays zero.
func (v Vector2D) SetLen(length float64) Vector2D {
	return v.Normalize().Mul(length)
}

// Limit clamps the magnitude of the vector to max.
// The square root is only taken when the vector actually exceeds max.
func (v Vector2D) Limit(max float64) Vector2D {
	lSq := v.LenSqr()
	if lSq <= max*max {
		return v
	}
	l := math.Sqrt(lSq)
	return Vector2D{v.X / l * max, v.Y / l * max}
}

// IsFinite reports whether both components are neither NaN nor infinite.
func (v Vector2D) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}

// ---------------------------------------------------------------------
// Geometric Utilities
// ---------------------------------------------------------------------

// Distance is the Euclidean distance between a and b.
func Distance(a, b Vector2D) float64 {
	return a.Sub(b).Len()
}

// DistanceSquared is the squared Euclidean distance between a and b.
func DistanceSquared(a, b Vector2D) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return dx*dx + dy*dy
}

// DistanceTo calculates the Euclidean distance to another vector.
func (v Vector2D) DistanceTo(other Vector2D) float64 {
	return Distance(v, other)
}

// DistanceSquaredTo calculates the squared Euclidean distance to another vector.
func (v Vector2D) DistanceSquaredTo(other Vector2D) float64 {
	return DistanceSquared(v, other)
}

// Angle returns the heading (in radians) of the vector relative to the X-axis.
// Range: [-Pi, Pi]
func (v Vector2D) Angle() float64 {
	return math.Atan2(v.Y, v.X)
}

// AngleTo calculates the angle (in radians) of the segment from v to other.
func (v Vector2D) AngleTo(other Vector2D) float64 {
	return math.Atan2(other.Y-v.Y, other.X-v.X)
}

// Perp returns the vector rotated by +90 degrees: (-y, x).
func (v Vector2D) Perp() Vector2D {
	return Vector2D{-v.Y, v.X}
}

// Rotate rotates the vector by angle (in radians) around the origin (0,0).
func (v Vector2D) Rotate(angle float64) Vector2D {
	cosTheta := math.Cos(angle)
	sinTheta := math.Sin(angle)
	return Vector2D{
		X: v.X*cosTheta - v.Y*sinTheta,
		Y: v.X*sinTheta + v.Y*cosTheta,
	}
}

// RotateAround rotates the vector by angle (radians) around a specific center point.
func (v Vector2D) RotateAround(angle float64, center Vector2D) Vector2D {
	return v.Sub(center).Rotate(angle).Add(center)
}

// Lerp (Linear Interpolate) calculates a point between v and target based on t [0, 1].
func (v Vector2D) Lerp(target Vector2D, t float64) Vector2D {
	return v.Add(target.Sub(v).Mul(t))
}

// ---------------------------------------------------------------------
// Comparison
// ---------------------------------------------------------------------

// Eq checks if two vectors are approximately equal using the Epsilon constant.
func (v Vector2D) Eq(other Vector2D) bool {
	return math.Abs(v.X-other.X) <= Epsilon && math.Abs(v.Y-other.Y) <= Epsilon
}
