package ability

// GrowthBurst scales the marble up and raises its mass by the cube of the
// scale factor for a fixed duration.
type GrowthBurst struct {
	cooldownRange
	Factor   float64
	Duration float64
}

// NewGrowthBurst returns the 1.5x growth held for 5 seconds.
func NewGrowthBurst() *GrowthBurst {
	return &GrowthBurst{
		cooldownRange: cooldownRange{CooldownMin: 10, CooldownMax: 15},
		Factor:        1.5,
		Duration:      5,
	}
}

func (g *GrowthBurst) Kind() Kind { return KindGrowthBurst }

func (g *GrowthBurst) Execute(h Host) Effect {
	if h == nil || h.Body() == nil {
		return nil
	}
	body := h.Body()
	scale, mass := body.Scale, body.Mass()

	body.Scale = scale * g.Factor
	body.SetMass(mass * g.Factor * g.Factor * g.Factor)

	return hold(g.Duration, func() {
		body.Scale = scale
		body.SetMass(mass)
	})
}
