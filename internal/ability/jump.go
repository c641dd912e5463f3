package ability

import "github.com/tomz197/marbles/internal/physics"

// JumpBoost kicks the marble upward and toward the finish. The kick is a
// mass-independent velocity change.
type JumpBoost struct {
	cooldownRange
	Lift float64
	Kick float64
}

// NewJumpBoost returns the default upward and forward kick.
func NewJumpBoost() *JumpBoost {
	return &JumpBoost{
		cooldownRange: cooldownRange{CooldownMin: 7, CooldownMax: 15},
		Lift:          10,
		Kick:          5,
	}
}

func (j *JumpBoost) Kind() Kind { return KindJumpBoost }

func (j *JumpBoost) Execute(h Host) Effect {
	if h == nil || h.Body() == nil {
		return nil
	}
	dv := physics.Up.Mul(j.Lift).Add(physics.Forward.Mul(j.Kick))
	h.Body().Apply(dv, physics.ModeVelocityChange, 0)
	return instant()
}
