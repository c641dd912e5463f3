package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Global tuning defaults for the motion integrator.
const (
	DefaultAirDensity             = 0.02 // kg/m³, kept low to reduce drag
	DefaultDragCoefficient        = 0.05
	DefaultFrontalArea            = 0.05 // m²
	DefaultSpeedMultiplier        = 1.5
	DefaultAccelerationMultiplier = 1.5
	MomentumFloorFactor           = 10.0 // Push per unit of speed deficit
)

// Stats is the template-derived stat block a Motion is initialised from.
type Stats struct {
	Speed        float64 // Maximum speed in m/s before multipliers
	Acceleration float64 // Thrust along the heading before multipliers
	Handling     float64 // Turn rate in degrees per second
	Weight       float64 // Mass
	Bounciness   float64 // Restitution input for the collision resolver
}

// Motion advances one body's velocity and heading every fixed tick.
//
// Speed, Acceleration and Handling hold the current base values. Abilities
// may overwrite them for the duration of an effect and must put back what
// they found.
type Motion struct {
	Speed        float64
	Acceleration float64
	Handling     float64

	SpeedMultiplier        float64
	AccelerationMultiplier float64
	AirDensity             float64
	DragCoefficient        float64
	FrontalArea            float64

	EnforceSpeedCap bool // Clamp horizontal speed to EffSpeed at the end of each step
	ThrustUsesMass  bool // Force mode (divided by mass) instead of acceleration mode

	steering mgl64.Vec3
}

// NewMotion creates an integrator with the global tuning defaults.
func NewMotion() *Motion {
	return &Motion{
		SpeedMultiplier:        DefaultSpeedMultiplier,
		AccelerationMultiplier: DefaultAccelerationMultiplier,
		AirDensity:             DefaultAirDensity,
		DragCoefficient:        DefaultDragCoefficient,
		FrontalArea:            DefaultFrontalArea,
		EnforceSpeedCap:        true,
	}
}

// ApplyStats copies template stats into the integrator and the body mass.
func (m *Motion) ApplyStats(s Stats, body *Body) {
	if m == nil {
		return
	}
	m.Speed = s.Speed
	m.Acceleration = s.Acceleration
	m.Handling = s.Handling
	if body != nil {
		body.SetMass(s.Weight)
	}
}

// SetSteering records the desired heading for the next step. Directions
// shorter than the steering epsilon clear steering.
func (m *Motion) SetSteering(dir mgl64.Vec3) {
	if m == nil {
		return
	}
	if !finite(dir) || dir.Dot(dir) <= SteeringEpsilonSq {
		m.steering = mgl64.Vec3{}
		return
	}
	m.steering = dir.Normalize()
}

// Steering returns the current steering direction (unit or zero).
func (m *Motion) Steering() mgl64.Vec3 {
	return m.steering
}

// EffSpeed is the speed cap after the global multiplier.
func (m *Motion) EffSpeed() float64 {
	return m.Speed * m.SpeedMultiplier
}

// EffAcceleration is the thrust after the global multiplier.
func (m *Motion) EffAcceleration() float64 {
	return m.Acceleration * m.AccelerationMultiplier
}

// DragForce returns the quadratic air drag for velocity v. It is zero for a
// body at rest.
func (m *Motion) DragForce(v mgl64.Vec3) mgl64.Vec3 {
	speed := v.Len()
	if speed <= VelocityEpsilon {
		return mgl64.Vec3{}
	}
	magnitude := 0.5 * m.AirDensity * m.DragCoefficient * m.FrontalArea * speed * speed
	return v.Mul(-magnitude / speed)
}

// Step advances the body by one fixed tick of dt seconds.
//
// All contributions are computed from the velocity at the start of the tick
// and summed, then the speed cap is applied to the result.
func (m *Motion) Step(body *Body, dt float64) {
	if m == nil || body == nil || body.Static || dt <= 0 {
		return
	}

	v0 := body.Velocity
	if !finite(v0) {
		v0 = mgl64.Vec3{}
	}
	speed := v0.Len()
	effSpeed := m.EffSpeed()
	effAccel := m.EffAcceleration()
	thrustMode := ModeAcceleration
	if m.ThrustUsesMass {
		thrustMode = ModeForce
	}

	dv := body.deltaV(m.DragForce(v0), ModeForce, dt)

	if m.steering.Dot(m.steering) > SteeringEpsilonSq && (!m.EnforceSpeedCap || speed < effSpeed) {
		maxAngle := mgl64.DegToRad(m.Handling * dt)
		body.Orientation = RotateTowards(body.Orientation, m.steering, maxAngle)
		dv = dv.Add(body.deltaV(body.Heading().Mul(effAccel), thrustMode, dt))
	}

	if speed > VelocityEpsilon && speed < effSpeed {
		deficit := effSpeed - speed
		push := v0.Mul(deficit * MomentumFloorFactor / speed)
		dv = dv.Add(body.deltaV(push, thrustMode, dt))
	}

	body.Velocity = v0.Add(dv)

	if m.EnforceSpeedCap {
		body.Velocity = ClampHorizontal(body.Velocity, effSpeed)
	}
}

// ClampHorizontal limits the XZ magnitude of v to max, keeping the Y
// component unchanged.
func ClampHorizontal(v mgl64.Vec3, max float64) mgl64.Vec3 {
	if max < 0 {
		max = 0
	}
	h := Horizontal(v)
	hMag := h.Len()
	if hMag <= max {
		return v
	}
	h = h.Mul(max / hMag)
	return mgl64.Vec3{h[0], v[1], h[2]}
}

// RotateTowards turns q so its forward axis moves toward dir by at most
// maxAngle radians along the shortest arc. It never overshoots dir.
func RotateTowards(q mgl64.Quat, dir mgl64.Vec3, maxAngle float64) mgl64.Quat {
	if dir.Dot(dir) <= SteeringEpsilonSq || maxAngle <= 0 {
		return q
	}
	target := dir.Normalize()
	fwd := q.Rotate(Forward)

	cos := mgl64.Clamp(fwd.Dot(target), -1, 1)
	angle := math.Acos(cos)
	if angle < 1e-9 {
		return q
	}

	axis := fwd.Cross(target)
	if axis.Len() < 1e-9 {
		// Opposite directions: any perpendicular works, prefer turning about up.
		axis = Up
		if math.Abs(fwd.Dot(Up)) > 0.999 {
			axis = mgl64.Vec3{1, 0, 0}
		}
	}
	step := math.Min(angle, maxAngle)
	return mgl64.QuatRotate(step, axis.Normalize()).Mul(q).Normalize()
}
