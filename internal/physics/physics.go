// Package physics provides rigid-body state, motion integration, contact
// resolution and distance utilities for the race simulation.
//
// The world is Y-up. The horizontal plane is XZ and the track runs along +Z.
package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

var (
	// Up is the world up axis.
	Up = mgl64.Vec3{0, 1, 0}
	// Forward is the world forward axis (the track direction).
	Forward = mgl64.Vec3{0, 0, 1}
)

// Epsilon values shared by the integrator and resolver.
const (
	VelocityEpsilon   = 0.01   // Below this speed a body counts as at rest
	SteeringEpsilonSq = 0.0001 // Squared steering magnitude treated as "no steering"
	MassEpsilon       = 0.0001 // Mass floor used for division
)

// Distance calculates the Euclidean distance between two points.
func Distance(a, b mgl64.Vec3) float64 {
	return b.Sub(a).Len()
}

// DistanceSquared calculates the squared distance between two points.
// Use this when comparing distances to avoid the sqrt cost.
func DistanceSquared(a, b mgl64.Vec3) float64 {
	d := b.Sub(a)
	return d.Dot(d)
}

// HorizontalDistanceSquared is DistanceSquared ignoring the Y axis.
func HorizontalDistanceSquared(a, b mgl64.Vec3) float64 {
	dx := b[0] - a[0]
	dz := b[2] - a[2]
	return dx*dx + dz*dz
}

// Horizontal returns v with its vertical component removed.
func Horizontal(v mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{v[0], 0, v[2]}
}

// SpheresOverlap checks if two spheres overlap.
func SpheresOverlap(a mgl64.Vec3, ra float64, b mgl64.Vec3, rb float64) bool {
	minDist := ra + rb
	return DistanceSquared(a, b) < minDist*minDist
}

// finite reports whether every component of v is a real number.
func finite(v mgl64.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
