package ability

import (
	"math/rand/v2"

	"github.com/charmbracelet/log"
)

// DefaultStartDelay is how long a fresh marble waits before its first
// activation.
const DefaultStartDelay = 3.0

// State is a scheduler phase.
type State uint8

const (
	Dormant State = iota
	Idle
	Activating
	Cooldown
	Disabled
)

func (s State) String() string {
	switch s {
	case Dormant:
		return "dormant"
	case Idle:
		return "idle"
	case Activating:
		return "activating"
	case Cooldown:
		return "cooldown"
	case Disabled:
		return "disabled"
	default:
		return "unknown"
	}
}

// Config tunes a Scheduler. Zero values pick the defaults.
type Config struct {
	StartDelay float64
	Rand       *rand.Rand
	Logger     *log.Logger
}

// Scheduler drives one marble's ability cycle:
//
//	Dormant -> Idle -> Activating -> Cooldown -> Idle -> ...
//
// At most one effect is in flight at a time. Game over stops new
// activations but lets a running effect finish and restore its overrides,
// after which the scheduler is Disabled for good.
type Scheduler struct {
	host     Host
	strategy Strategy
	rng      *rand.Rand
	logger   *log.Logger

	state    State
	timer    float64
	effect   Effect
	gameOver bool
	cycles   int
}

// NewScheduler binds strategy to host. Either may be nil, in which case the
// scheduler never activates anything.
func NewScheduler(host Host, strategy Strategy, cfg Config) *Scheduler {
	if cfg.StartDelay <= 0 {
		cfg.StartDelay = DefaultStartDelay
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	s := &Scheduler{
		host:     host,
		strategy: strategy,
		rng:      cfg.Rand,
		logger:   cfg.Logger,
		state:    Dormant,
		timer:    cfg.StartDelay,
	}
	if strategy != nil {
		s.logger = s.logger.With("ability", strategy.Kind())
	}
	return s
}

// State returns the current phase.
func (s *Scheduler) State() State {
	if s == nil {
		return Disabled
	}
	return s.state
}

// Strategy returns the bound strategy, or nil.
func (s *Scheduler) Strategy() Strategy {
	if s == nil {
		return nil
	}
	return s.strategy
}

// Cycles is the number of activations started so far.
func (s *Scheduler) Cycles() int {
	if s == nil {
		return 0
	}
	return s.cycles
}

// Remaining is the time left in the current Dormant or Cooldown phase.
func (s *Scheduler) Remaining() float64 {
	if s == nil || (s.state != Dormant && s.state != Cooldown) {
		return 0
	}
	return max(s.timer, 0)
}

// GameOver reports whether SetGameOver has been called.
func (s *Scheduler) GameOver() bool {
	return s != nil && s.gameOver
}

// SetGameOver stops any further activation. A running effect is not
// aborted.
func (s *Scheduler) SetGameOver() {
	if s == nil || s.gameOver {
		return
	}
	s.gameOver = true
	if s.state != Activating {
		s.enter(Disabled)
	}
}

// Tick advances the state machine by dt seconds.
func (s *Scheduler) Tick(dt float64) {
	if s == nil || dt <= 0 {
		return
	}

	switch s.state {
	case Dormant:
		s.timer -= dt
		if s.timer <= 0 {
			s.enter(Idle)
		}

	case Idle:
		s.activate()

	case Activating:
		if s.effect == nil || s.effect.Step(dt) {
			s.finish()
		}

	case Cooldown:
		s.timer -= dt
		if s.timer <= 0 {
			s.enter(Idle)
		}
	}
}

func (s *Scheduler) activate() {
	if s.host == nil || s.strategy == nil {
		return
	}
	s.cycles++
	s.effect = s.strategy.Execute(s.host)
	s.enter(Activating)
	s.logger.Debug("ability activated", "cycle", s.cycles)
	if s.effect == nil {
		s.finish()
	}
}

func (s *Scheduler) finish() {
	s.effect = nil
	if s.gameOver {
		s.enter(Disabled)
		return
	}
	s.timer = s.sampleCooldown()
	s.enter(Cooldown)
}

func (s *Scheduler) sampleCooldown() float64 {
	lo, hi := s.strategy.Cooldown()
	var u float64
	if s.rng != nil {
		u = s.rng.Float64()
	} else {
		u = rand.Float64()
	}
	return lo + u*(hi-lo)
}

func (s *Scheduler) enter(next State) {
	if s.gameOver && (next == Idle || next == Activating) {
		next = Disabled
	}
	if s.state == next {
		return
	}
	s.logger.Debug("ability state", "from", s.state, "to", next)
	s.state = next
}
