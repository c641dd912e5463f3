// Package ability runs the per-marble ability cycle and the five ability
// strategies a marble can carry.
package ability

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/tomz197/marbles/internal/physics"
)

// Kind names one of the closed set of ability strategies.
type Kind string

const (
	KindGrowthBurst    Kind = "GrowthBurst"
	KindJumpBoost      Kind = "JumpBoost"
	KindSpeedDash      Kind = "SpeedDash"
	KindPhaseShift     Kind = "PhaseShift"
	KindRandomTeleport Kind = "RandomTeleport"
)

// Kinds lists every known strategy kind.
var Kinds = []Kind{KindGrowthBurst, KindJumpBoost, KindSpeedDash, KindPhaseShift, KindRandomTeleport}

// Host is the entity an ability acts on.
type Host interface {
	Body() *physics.Body
	Motion() *physics.Motion
	// BaseStats returns the template stats the entity was spawned with.
	BaseStats() physics.Stats
	// Phased reports whether contacts with other racers are ignored.
	Phased() bool
	SetPhased(phased bool)
	// Rivals returns the positions of the other active racers within radius.
	Rivals(radius float64) []mgl64.Vec3
}

// Effect is one in-flight ability activation.
type Effect interface {
	// Step advances the effect by dt seconds and reports whether it has
	// finished. Once it returns true every override has been restored.
	Step(dt float64) bool
}

// Strategy is one ability variant.
type Strategy interface {
	Kind() Kind
	// Cooldown returns the range the cooldown duration is sampled from.
	Cooldown() (min, max float64)
	// Execute applies the ability to h and returns the running effect.
	// A nil effect means the ability had nothing to do.
	Execute(h Host) Effect
}

// timedEffect holds its overrides for a fixed duration and then runs
// restore exactly once.
type timedEffect struct {
	remaining float64
	restore   func()
	done      bool
}

func hold(duration float64, restore func()) *timedEffect {
	return &timedEffect{remaining: duration, restore: restore}
}

// instant finishes on the first step after activation.
func instant() *timedEffect {
	return &timedEffect{}
}

func (e *timedEffect) Step(dt float64) bool {
	if e.done {
		return true
	}
	e.remaining -= dt
	if e.remaining > 1e-9 {
		return false
	}
	if e.restore != nil {
		e.restore()
	}
	e.done = true
	return true
}

// cooldownRange is embedded by strategies to satisfy Strategy.Cooldown.
type cooldownRange struct {
	CooldownMin float64
	CooldownMax float64
}

func (c cooldownRange) Cooldown() (float64, float64) {
	if c.CooldownMax < c.CooldownMin {
		return c.CooldownMax, c.CooldownMin
	}
	return c.CooldownMin, c.CooldownMax
}
