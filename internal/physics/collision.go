package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// MaxBounciness bounds the configured restitution before it is clamped to
// [0, 1] for the impulse formula.
const MaxBounciness = 1.5

// Contact is one pairwise contact as seen from Self.
//
// Normal points along the approach axis: a positive projection of the
// relative velocity (Self - Other) onto it means the bodies are closing.
type Contact struct {
	Self         *Body
	Other        *Body
	Normal       mgl64.Vec3
	OtherIsRacer bool // Only racing entities receive the reaction impulse
}

// Resolver applies restitution impulses for one entity's contacts.
type Resolver struct {
	Bounciness float64
}

// Restitution returns the coefficient used in the impulse formula.
func (r Resolver) Restitution() float64 {
	e := mgl64.Clamp(r.Bounciness, 0, MaxBounciness)
	return mgl64.Clamp(e, 0, 1)
}

// Resolve applies the impulse for c and returns its magnitude. Separating
// or resting contacts and contacts with missing bodies return 0 and leave
// both bodies untouched. Walls and other non-racers absorb the reaction.
func (r Resolver) Resolve(c Contact) float64 {
	if c.Self == nil || c.Other == nil {
		return 0
	}
	if c.Normal.Dot(c.Normal) < 1e-12 || !finite(c.Normal) {
		return 0
	}
	n := c.Normal.Normalize()

	relative := c.Self.Velocity.Sub(c.Other.Velocity)
	closing := relative.Dot(n)
	if closing <= 0 {
		return 0
	}

	e := r.Restitution()
	denom := 1/math.Max(c.Self.Mass(), MassEpsilon) + 1/math.Max(c.Other.Mass(), MassEpsilon)
	j := (1 + e) * closing / denom
	impulse := n.Mul(j)

	c.Self.Apply(impulse.Mul(-1), ModeImpulse, 0)
	if c.OtherIsRacer {
		c.Other.Apply(impulse, ModeImpulse, 0)
	}
	return j
}
