package ability

import "math/rand/v2"

// New returns the default-tuned strategy for kind, or nil for an unknown
// kind. rng is only used by strategies that pick targets.
func New(kind Kind, rng *rand.Rand) Strategy {
	switch kind {
	case KindGrowthBurst:
		return NewGrowthBurst()
	case KindJumpBoost:
		return NewJumpBoost()
	case KindSpeedDash:
		return NewSpeedDash()
	case KindPhaseShift:
		return NewPhaseShift()
	case KindRandomTeleport:
		return NewRandomTeleport(rng)
	default:
		return nil
	}
}
