package drawdata

import "github.com/zeusync/dropchooser/internal/core/systems/physics"

// Rect is a rectangle in body-local coordinates: X and Y locate its
// top-left corner relative to the body position.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// CenteredRect returns a w by h rectangle centered on the body.
func CenteredRect(w, h float64) Rect {
	return Rect{X: -w / 2, Y: -h / 2, W: w, H: h}
}

func (r Rect) Center() physics.Vec2 {
	return physics.Vec2{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

// Corners returns the world-space corners of r for a body at pos, after
// rotating the rectangle by rotation radians about its own center.
// The order is top-left, top-right, bottom-right, bottom-left.
func (r Rect) Corners(pos physics.Vec2, rotation float64) [4]physics.Vec2 {
	c := r.Center()
	hw, hh := r.W/2, r.H/2
	local := [4]physics.Vec2{{X: -hw, Y: -hh}, {X: hw, Y: -hh}, {X: hw, Y: hh}, {X: -hw, Y: hh}}
	var out [4]physics.Vec2
	for i, p := range local {
		out[i] = p.Rotate(rotation).Add(c).Add(pos)
	}
	return out
}
