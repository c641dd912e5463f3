package object

import (
	"math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/tomz197/marbles/internal/ability"
	"github.com/tomz197/marbles/internal/catalog"
	"github.com/tomz197/marbles/internal/physics"
)

// DefaultMarbleRadius is the unscaled radius of every marble.
const DefaultMarbleRadius = 0.5

// RivalFinder answers proximity queries for abilities that target other
// marbles.
type RivalFinder interface {
	RivalsNear(self *Marble, radius float64) []mgl64.Vec3
}

// MarbleConfig carries the collaborators a marble is wired to at spawn.
type MarbleConfig struct {
	Radius      float64
	StartDelay  float64     // Ability start-of-match delay; 0 picks the default
	RivalRadius float64     // Teleport search radius; 0 keeps the ability default
	Rivals      RivalFinder // May be nil
	Rand        *rand.Rand
	Logger      *log.Logger
}

// Marble is one racing entity. It owns its body, its motion integrator,
// its collision resolver and its ability scheduler.
type Marble struct {
	ID   int
	Name string

	template  *catalog.Template
	stats     physics.Stats
	body      *physics.Body
	motion    *physics.Motion
	resolver  physics.Resolver
	scheduler *ability.Scheduler
	rivals    RivalFinder

	phased     bool
	finished   bool
	eliminated bool
}

// Compile-time checks for the roles a marble plays.
var (
	_ Object         = (*Marble)(nil)
	_ Destructible   = (*Marble)(nil)
	_ ability.Host   = (*Marble)(nil)
	_ catalog.Bearer = (*Marble)(nil)
)

// NewMarble instantiates template t at position. A nil template yields a
// marble with zero stats and no ability.
func NewMarble(id int, t *catalog.Template, position mgl64.Vec3, cfg MarbleConfig) *Marble {
	if cfg.Radius <= 0 {
		cfg.Radius = DefaultMarbleRadius
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}

	m := &Marble{
		ID:       id,
		template: t,
		body:     physics.NewBody(position, cfg.Radius, physics.MinMass),
		motion:   physics.NewMotion(),
		rivals:   cfg.Rivals,
	}

	var strategy ability.Strategy
	if t != nil {
		m.Name = t.Name
		m.stats = physics.Stats{
			Speed:        t.Speed,
			Acceleration: t.Acceleration,
			Handling:     t.Handling,
			Weight:       t.Weight,
			Bounciness:   t.Bounciness,
		}
		strategy = ability.New(ability.Kind(t.Ability), cfg.Rand)
		if strategy == nil {
			cfg.Logger.Warn("marble has unknown ability", "marble", t.ID, "ability", t.Ability)
		}
		if tp, ok := strategy.(*ability.RandomTeleport); ok && cfg.RivalRadius > 0 {
			tp.Radius = cfg.RivalRadius
		}
	}
	m.motion.ApplyStats(m.stats, m.body)
	m.resolver = physics.Resolver{Bounciness: m.stats.Bounciness}

	m.scheduler = ability.NewScheduler(m, strategy, ability.Config{
		StartDelay: cfg.StartDelay,
		Rand:       cfg.Rand,
		Logger:     cfg.Logger.With("marble", m.Name),
	})
	return m
}

// MarbleTemplate implements catalog.Bearer.
func (m *Marble) MarbleTemplate() *catalog.Template { return m.template }

// Body implements ability.Host.
func (m *Marble) Body() *physics.Body { return m.body }

// Motion implements ability.Host.
func (m *Marble) Motion() *physics.Motion { return m.motion }

// BaseStats implements ability.Host.
func (m *Marble) BaseStats() physics.Stats { return m.stats }

// Phased reports whether contacts with other marbles are ignored.
func (m *Marble) Phased() bool { return m.phased }

// SetPhased implements ability.Host.
func (m *Marble) SetPhased(phased bool) { m.phased = phased }

// Rivals implements ability.Host.
func (m *Marble) Rivals(radius float64) []mgl64.Vec3 {
	if m.rivals == nil {
		return nil
	}
	return m.rivals.RivalsNear(m, radius)
}

// Scheduler exposes the ability state machine.
func (m *Marble) Scheduler() *ability.Scheduler { return m.scheduler }

// Resolver returns the marble's collision resolver.
func (m *Marble) Resolver() physics.Resolver { return m.resolver }

// Position returns the body position.
func (m *Marble) Position() mgl64.Vec3 { return m.body.Position }

// Radius returns the current collision radius.
func (m *Marble) Radius() float64 { return m.body.EffectiveRadius() }

// SetSteering forwards the desired heading to the integrator. The last call
// before a tick wins.
func (m *Marble) SetSteering(dir mgl64.Vec3) {
	m.motion.SetSteering(dir)
}

// OnContact resolves one contact with other. normal points from this marble
// toward other. Returns the impulse magnitude.
func (m *Marble) OnContact(other *physics.Body, normal mgl64.Vec3, otherIsRacer bool) float64 {
	if m == nil || m.eliminated {
		return 0
	}
	return m.resolver.Resolve(physics.Contact{
		Self:         m.body,
		Other:        other,
		Normal:       normal,
		OtherIsRacer: otherIsRacer,
	})
}

// EnforceCap clamps horizontal speed to the effective cap again. Contacts
// resolved after the motion step can push a marble past it.
func (m *Marble) EnforceCap() {
	if !m.motion.EnforceSpeedCap {
		return
	}
	m.body.Velocity = physics.ClampHorizontal(m.body.Velocity, m.motion.EffSpeed())
}

// SetGameOver stops future ability activations.
func (m *Marble) SetGameOver() {
	m.scheduler.SetGameOver()
}

// Finish marks the marble as having crossed the finish line.
func (m *Marble) Finish() {
	m.finished = true
	m.SetGameOver()
}

// Finished reports whether the marble crossed the finish line.
func (m *Marble) Finished() bool { return m.finished }

// MarkDestroyed eliminates the marble from the race.
func (m *Marble) MarkDestroyed() {
	m.eliminated = true
	m.SetGameOver()
}

// IsDestroyed reports whether the marble was eliminated.
func (m *Marble) IsDestroyed() bool { return m.eliminated }

// Update runs the ability scheduler, the motion integrator and gravity, then
// moves the body.
func (m *Marble) Update(ctx UpdateContext) (bool, error) {
	if m.eliminated {
		return true, nil
	}
	dt := ctx.Seconds()
	if dt <= 0 {
		return false, nil
	}

	m.scheduler.Tick(dt)
	m.motion.Step(m.body, dt)
	m.body.Apply(ctx.Gravity, physics.ModeAcceleration, dt)
	m.body.Integrate(dt)
	return false, nil
}

// Readout is the read-only view HUD and telemetry consumers get.
type Readout struct {
	ID              int
	Name            string
	Template        string
	Position        mgl64.Vec3
	Velocity        mgl64.Vec3
	Speed           float64
	EffSpeed        float64
	EffAcceleration float64
	EnforceSpeedCap bool
	ThrustUsesMass  bool
	Scale           float64
	Mass            float64
	Ability         string
	AbilityState    string
	Phased          bool
	Finished        bool
	Eliminated      bool
}

// Readout captures the marble's current state.
func (m *Marble) Readout() Readout {
	r := Readout{
		ID:              m.ID,
		Name:            m.Name,
		Position:        m.body.Position,
		Velocity:        m.body.Velocity,
		Speed:           m.body.Speed(),
		EffSpeed:        m.motion.EffSpeed(),
		EffAcceleration: m.motion.EffAcceleration(),
		EnforceSpeedCap: m.motion.EnforceSpeedCap,
		ThrustUsesMass:  m.motion.ThrustUsesMass,
		Scale:           m.body.Scale,
		Mass:            m.body.Mass(),
		AbilityState:    m.scheduler.State().String(),
		Phased:          m.phased,
		Finished:        m.finished,
		Eliminated:      m.eliminated,
	}
	if m.template != nil {
		r.Template = m.template.ID
		r.Ability = m.template.Ability
	}
	return r
}
