package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// MinMass is the floor every body mass is clamped to.
const MinMass = 0.001

// ForceMode selects how a vector passed to Body.Apply changes velocity.
type ForceMode uint8

const (
	ModeForce          ForceMode = iota // Continuous force, divided by mass, scaled by dt
	ModeAcceleration                    // Continuous acceleration, mass independent, scaled by dt
	ModeImpulse                         // Instant impulse, divided by mass
	ModeVelocityChange                  // Instant velocity change, mass independent
)

// Body is the physical state of one simulated sphere.
type Body struct {
	Position    mgl64.Vec3
	Velocity    mgl64.Vec3
	Orientation mgl64.Quat
	Radius      float64 // Unscaled radius
	Scale       float64 // Uniform scale factor (1 = template size)
	Static      bool    // Static bodies never move and ignore Apply

	mass float64
}

// NewBody creates a body at position facing world forward.
func NewBody(position mgl64.Vec3, radius, mass float64) *Body {
	b := &Body{
		Position:    position,
		Orientation: mgl64.QuatIdent(),
		Radius:      radius,
		Scale:       1,
	}
	b.SetMass(mass)
	return b
}

// Mass returns the current mass. It is never below MinMass.
func (b *Body) Mass() float64 {
	if b.mass < MinMass {
		return MinMass
	}
	return b.mass
}

// SetMass sets the mass, clamping to MinMass.
func (b *Body) SetMass(m float64) {
	if math.IsNaN(m) || m < MinMass {
		m = MinMass
	}
	b.mass = m
}

// EffectiveRadius is the collision radius after scaling.
func (b *Body) EffectiveRadius() float64 {
	s := b.Scale
	if s <= 0 {
		s = 1
	}
	return b.Radius * s
}

// Heading returns the unit forward vector of the body's orientation.
func (b *Body) Heading() mgl64.Vec3 {
	return b.Orientation.Rotate(Forward)
}

// Speed returns the velocity magnitude.
func (b *Body) Speed() float64 {
	return b.Velocity.Len()
}

// Apply changes the body's velocity by v interpreted according to mode.
// dt is only used by the continuous modes.
func (b *Body) Apply(v mgl64.Vec3, mode ForceMode, dt float64) {
	if b == nil || b.Static {
		return
	}
	b.Velocity = b.Velocity.Add(b.deltaV(v, mode, dt))
}

// deltaV converts v into the velocity change it would cause.
func (b *Body) deltaV(v mgl64.Vec3, mode ForceMode, dt float64) mgl64.Vec3 {
	switch mode {
	case ModeForce:
		return v.Mul(dt / b.Mass())
	case ModeAcceleration:
		return v.Mul(dt)
	case ModeImpulse:
		return v.Mul(1 / b.Mass())
	default:
		return v
	}
}

// Integrate advances position by the current velocity.
func (b *Body) Integrate(dt float64) {
	if b == nil || b.Static {
		return
	}
	if !finite(b.Velocity) {
		b.Velocity = mgl64.Vec3{}
	}
	b.Position = b.Position.Add(b.Velocity.Mul(dt))
}
