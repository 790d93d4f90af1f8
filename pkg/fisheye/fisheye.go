// Package fisheye implements the circular fisheye lens that turns simulation
// coordinates into screen coordinates.
//
// Points inside the lens are pushed away from the focus so the neighbourhood
// of the pointer is magnified while everything else stays in view. Each
// point also gets a scale factor, 1 at and beyond the lens edge and
// distortion+1 at the focus, which callers use for label size and stroke
// width.
package fisheye

import (
	"math"

	"github.com/sboosali/notegraph/pkg/errors"
	"github.com/sboosali/notegraph/pkg/graph"
)

const (
	// DefaultDistortion is the magnification parameter of a new Lens.
	DefaultDistortion = 50.0
	// DefaultRadius is the lens radius of a new Lens.
	DefaultRadius = 100.0
)

// Distort returns the image of p under a lens centred on focus.
//
// For a point at distance d < radius, with x = d/radius, the offset from the
// focus is multiplied by z = (distortion+1)/(distortion*x+1), which puts the
// point at radius*(distortion+1)/(distortion+radius/d) from the focus. Points
// at or beyond radius are unchanged with scale 1. The focus itself maps to
// itself with the maximum scale distortion+1.
//
// A non-positive radius disables the lens. Negative distortion is treated
// as zero.
func Distort(p, focus graph.Point, distortion, radius float64) graph.Distorted {
	if radius <= 0 {
		return graph.Distorted{X: p.X, Y: p.Y, Scale: 1}
	}
	distortion = max(distortion, 0)

	dx, dy := p.X-focus.X, p.Y-focus.Y
	d := math.Hypot(dx, dy)
	if d >= radius {
		return graph.Distorted{X: p.X, Y: p.Y, Scale: 1}
	}
	if d == 0 {
		return graph.Distorted{X: focus.X, Y: focus.Y, Scale: distortion + 1}
	}

	z := (distortion + 1) / (distortion*d/radius + 1)

	// d*z never exceeds radius analytically; keep float error from
	// pushing a point across the lens edge.
	if d*z > radius {
		z = radius / d
	}
	return graph.Distorted{X: focus.X + dx*z, Y: focus.Y + dy*z, Scale: z}
}

// Lens is a fisheye with a movable focus.
type Lens struct {
	Distortion float64
	Radius     float64
	Focus      graph.Point
}

// NewLens returns a lens with the default distortion and radius, focused on
// the origin.
func NewLens() *Lens {
	return &Lens{Distortion: DefaultDistortion, Radius: DefaultRadius}
}

// Validate reports whether the lens parameters are usable.
func (l *Lens) Validate() error {
	if l.Distortion < 0 || math.IsNaN(l.Distortion) || math.IsInf(l.Distortion, 0) {
		return errors.New(errors.ErrCodeInvalidConfig, "fisheye distortion must be a finite non-negative number")
	}
	if l.Radius <= 0 || math.IsNaN(l.Radius) || math.IsInf(l.Radius, 0) {
		return errors.New(errors.ErrCodeInvalidConfig, "fisheye radius must be a finite positive number")
	}
	return nil
}

// SetFocus moves the lens.
func (l *Lens) SetFocus(x, y float64) {
	l.Focus = graph.Point{X: x, Y: y}
}

// Apply distorts p through the lens.
func (l *Lens) Apply(p graph.Point) graph.Distorted {
	return Distort(p, l.Focus, l.Distortion, l.Radius)
}
