package ability

import "math/rand/v2"

// RandomTeleport moves the marble to just behind a random rival in range.
type RandomTeleport struct {
	cooldownRange
	Radius float64 // Search radius around the marble
	Behind float64 // Distance kept between the rival and the landing point

	rng *rand.Rand
}

// DefaultRivalRadius is how far RandomTeleport looks for rivals.
const DefaultRivalRadius = 50.0

// NewRandomTeleport returns the teleport with its default radius and
// cooldown, picking rivals with rng.
func NewRandomTeleport(rng *rand.Rand) *RandomTeleport {
	return &RandomTeleport{
		cooldownRange: cooldownRange{CooldownMin: 10, CooldownMax: 15},
		Radius:        DefaultRivalRadius,
		Behind:        5,
		rng:           rng,
	}
}

func (r *RandomTeleport) Kind() Kind { return KindRandomTeleport }

func (r *RandomTeleport) Execute(h Host) Effect {
	if h == nil || h.Body() == nil {
		return nil
	}
	rivals := h.Rivals(r.Radius)
	if len(rivals) == 0 {
		return nil
	}
	body := h.Body()
	target := rivals[r.pick(len(rivals))]

	dir := target.Sub(body.Position)
	if dir.Len() < 1e-9 {
		dir = body.Heading()
	} else {
		dir = dir.Normalize()
	}
	body.Position = target.Sub(dir.Mul(r.Behind))
	return instant()
}

func (r *RandomTeleport) pick(n int) int {
	if r.rng == nil {
		return rand.IntN(n)
	}
	return r.rng.IntN(n)
}
