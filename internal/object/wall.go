package object

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/tomz197/marbles/internal/physics"
)

// WallMass is the nominal mass of static geometry. It only enters the
// impulse denominator.
const WallMass = 1e6

// Wall is an axis-aligned static box. Walls absorb contact impulses without
// reacting.
type Wall struct {
	Name string
	Min  mgl64.Vec3
	Max  mgl64.Vec3

	body *physics.Body
}

// NewWall creates a wall spanning the box [min, max].
func NewWall(name string, min, max mgl64.Vec3) *Wall {
	for i := 0; i < 3; i++ {
		if min[i] > max[i] {
			min[i], max[i] = max[i], min[i]
		}
	}
	center := min.Add(max).Mul(0.5)
	body := physics.NewBody(center, 0, WallMass)
	body.Static = true
	return &Wall{Name: name, Min: min, Max: max, body: body}
}

// Body returns the wall's static body.
func (w *Wall) Body() *physics.Body {
	return w.body
}

// Update is a no-op; walls never move.
func (w *Wall) Update(UpdateContext) (bool, error) {
	return false, nil
}

// ClosestPoint returns the point of the box nearest to p.
func (w *Wall) ClosestPoint(p mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{
		mgl64.Clamp(p[0], w.Min[0], w.Max[0]),
		mgl64.Clamp(p[1], w.Min[1], w.Max[1]),
		mgl64.Clamp(p[2], w.Min[2], w.Max[2]),
	}
}

// Touch reports whether a sphere at center with radius r overlaps the wall.
// The normal points from the sphere toward the wall.
func (w *Wall) Touch(center mgl64.Vec3, r float64) (mgl64.Vec3, float64, bool) {
	closest := w.ClosestPoint(center)
	d := closest.Sub(center)
	dist := d.Len()
	if dist >= r {
		return mgl64.Vec3{}, 0, false
	}
	if dist > 1e-9 {
		return d.Mul(1 / dist), r - dist, true
	}

	// Center is inside the box: push out along the shallowest axis.
	best, depth := 0, -1.0
	var sign float64
	for i := 0; i < 3; i++ {
		toMin := center[i] - w.Min[i]
		toMax := w.Max[i] - center[i]
		if depth < 0 || toMin < depth {
			best, depth, sign = i, toMin, -1
		}
		if toMax < depth {
			best, depth, sign = i, toMax, 1
		}
	}
	var n mgl64.Vec3
	n[best] = -sign
	return n, r + depth, true
}
