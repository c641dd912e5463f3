package ability

// PhaseShift lets the marble pass through other racers while sharpening
// its handling and acceleration.
type PhaseShift struct {
	cooldownRange
	Factor   float64
	Duration float64
}

// NewPhaseShift returns a 5 second phase with 1.5x handling and acceleration.
func NewPhaseShift() *PhaseShift {
	return &PhaseShift{
		cooldownRange: cooldownRange{CooldownMin: 5, CooldownMax: 10},
		Factor:        1.5,
		Duration:      5,
	}
}

func (p *PhaseShift) Kind() Kind { return KindPhaseShift }

func (p *PhaseShift) Execute(h Host) Effect {
	if h == nil || h.Motion() == nil {
		return nil
	}
	m := h.Motion()
	handling, accel, phased := m.Handling, m.Acceleration, h.Phased()

	m.Handling = handling * p.Factor
	m.Acceleration = accel * p.Factor
	h.SetPhased(true)

	return hold(p.Duration, func() {
		m.Handling = handling
		m.Acceleration = accel
		h.SetPhased(phased)
	})
}
