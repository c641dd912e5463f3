package ability

// SpeedDash raises the speed cap to a multiple of the template speed for a
// short burst.
type SpeedDash struct {
	cooldownRange
	Multiplier float64
	Duration   float64
}

// NewSpeedDash returns an 8x speed burst lasting 2 seconds.
func NewSpeedDash() *SpeedDash {
	return &SpeedDash{
		cooldownRange: cooldownRange{CooldownMin: 8, CooldownMax: 10},
		Multiplier:    8,
		Duration:      2,
	}
}

func (d *SpeedDash) Kind() Kind { return KindSpeedDash }

func (d *SpeedDash) Execute(h Host) Effect {
	if h == nil || h.Motion() == nil {
		return nil
	}
	m := h.Motion()
	speed := m.Speed
	m.Speed = h.BaseStats().Speed * d.Multiplier

	return hold(d.Duration, func() {
		m.Speed = speed
	})
}
