package physics

import (
	"math"
	"math/rand/v2"

	"github.com/jakecoffman/cp"
)

// Vec2 is a 2D vector in arena coordinates (x right, y down).
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func NewVec2(x, y float64) Vec2 { return Vec2{X: x, Y: y} }

// Point is NewVec2 for positions.
func Point(x, y float64) Vec2 { return Vec2{X: x, Y: y} }

// Range is a half-open interval [Min, Max).
type Range struct {
	Min, Max float64
}

// Sample draws a uniform value from the range. An empty or inverted range
// yields Min.
func (r Range) Sample(rng *rand.Rand) float64 {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + rng.Float64()*(r.Max-r.Min)
}

// Contains reports whether v lies in [Min, Max).
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v < r.Max
}

// NewRandomVec2 samples each component independently from its range.
func NewRandomVec2(rng *rand.Rand, x, y Range) Vec2 {
	return Vec2{X: x.Sample(rng), Y: y.Sample(rng)}
}

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{X: v.X + o.X, Y: v.Y + o.Y} }

func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{X: v.X - o.X, Y: v.Y - o.Y} }

func (v Vec2) Scale(s float64) Vec2 { return Vec2{X: v.X * s, Y: v.Y * s} }

func (v Vec2) Len() float64 { return math.Hypot(v.X, v.Y) }

// Rotate turns v by angle radians about the origin.
func (v Vec2) Rotate(angle float64) Vec2 {
	sin, cos := math.Sincos(angle)
	return Vec2{X: v.X*cos - v.Y*sin, Y: v.X*sin + v.Y*cos}
}

func (v Vec2) toCP() cp.Vector { return cp.Vector{X: v.X, Y: v.Y} }

func fromCP(v cp.Vector) Vec2 { return Vec2{X: v.X, Y: v.Y} }
