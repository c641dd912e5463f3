package ability

import (
	"io"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/tomz197/marbles/internal/physics"
)

type fakeHost struct {
	body   *physics.Body
	motion *physics.Motion
	stats  physics.Stats
	phased bool
	rivals []mgl64.Vec3
}

func newFakeHost() *fakeHost {
	stats := physics.Stats{Speed: 5, Acceleration: 8, Handling: 120, Weight: 2, Bounciness: 0.6}
	h := &fakeHost{
		body:   physics.NewBody(mgl64.Vec3{}, 0.5, 1),
		motion: physics.NewMotion(),
		stats:  stats,
	}
	h.motion.ApplyStats(stats, h.body)
	return h
}

func (h *fakeHost) Body() *physics.Body      { return h.body }
func (h *fakeHost) Motion() *physics.Motion  { return h.motion }
func (h *fakeHost) BaseStats() physics.Stats { return h.stats }
func (h *fakeHost) Phased() bool             { return h.phased }
func (h *fakeHost) SetPhased(p bool)         { h.phased = p }

func (h *fakeHost) Rivals(radius float64) []mgl64.Vec3 {
	var out []mgl64.Vec3
	for _, p := range h.rivals {
		if physics.Distance(p, h.body.Position) <= radius {
			out = append(out, p)
		}
	}
	return out
}

// stubStrategy counts activations and restores.
type stubStrategy struct {
	cooldownRange
	duration float64
	executed int
	restored int
}

func (s *stubStrategy) Kind() Kind { return "Stub" }

func (s *stubStrategy) Execute(Host) Effect {
	s.executed++
	return hold(s.duration, func() { s.restored++ })
}

func testConfig(seed uint64) Config {
	return Config{
		StartDelay: 3,
		Rand:       rand.New(rand.NewPCG(seed, seed^0x9e3779b9)),
		Logger:     log.New(io.Discard),
	}
}

func runUntil(s *Scheduler, dt float64, limit int, cond func() bool) bool {
	for i := 0; i < limit; i++ {
		if cond() {
			return true
		}
		s.Tick(dt)
	}
	return cond()
}

func TestSchedulerHoldsDormantForStartDelay(t *testing.T) {
	strat := &stubStrategy{cooldownRange: cooldownRange{1, 1}, duration: 1}
	s := NewScheduler(newFakeHost(), strat, testConfig(1))

	for i := 0; i < 5; i++ {
		s.Tick(0.5)
	}
	if s.State() != Dormant {
		t.Fatalf("expected dormant after 2.5s, got %v", s.State())
	}
	s.Tick(0.5)
	if s.State() != Idle {
		t.Fatalf("expected idle after 3s, got %v", s.State())
	}
	s.Tick(0.5)
	if s.State() != Activating || strat.executed != 1 || s.Cycles() != 1 {
		t.Fatalf("expected first activation, got state=%v executed=%d", s.State(), strat.executed)
	}
}

func TestSchedulerIsSingleFlight(t *testing.T) {
	strat := &stubStrategy{cooldownRange: cooldownRange{2, 2}, duration: 1}
	s := NewScheduler(newFakeHost(), strat, testConfig(2))

	if !runUntil(s, 0.1, 100, func() bool { return s.State() == Activating }) {
		t.Fatalf("scheduler never activated")
	}
	for s.State() == Activating {
		if strat.executed != 1 {
			t.Fatalf("second activation while one is in flight")
		}
		s.Tick(0.1)
	}
	if s.State() != Cooldown || strat.restored != 1 {
		t.Fatalf("expected cooldown after restore, got state=%v restored=%d", s.State(), strat.restored)
	}
	for s.State() == Cooldown {
		if strat.executed != 1 {
			t.Fatalf("activation during cooldown")
		}
		s.Tick(0.1)
	}
	s.Tick(0.1)
	if strat.executed != 2 {
		t.Fatalf("expected a second cycle after cooldown, executed=%d", strat.executed)
	}
}

func TestCooldownSampledWithinRange(t *testing.T) {
	strat := &stubStrategy{cooldownRange: cooldownRange{5, 10}, duration: 0}
	s := NewScheduler(newFakeHost(), strat, testConfig(3))

	seen := 0
	for i := 0; i < 20000 && seen < 50; i++ {
		prev := s.State()
		s.Tick(0.05)
		if prev != Cooldown && s.State() == Cooldown {
			if r := s.Remaining(); r < 5 || r > 10 {
				t.Fatalf("cooldown %v outside [5, 10]", r)
			}
			seen++
		}
	}
	if seen == 0 {
		t.Fatalf("never entered cooldown")
	}
}

func TestGameOverStopsIdleAndDormant(t *testing.T) {
	strat := &stubStrategy{cooldownRange: cooldownRange{1, 1}, duration: 1}

	dormant := NewScheduler(newFakeHost(), strat, testConfig(4))
	dormant.SetGameOver()
	for i := 0; i < 100; i++ {
		dormant.Tick(0.1)
	}
	if dormant.State() != Disabled || strat.executed != 0 {
		t.Fatalf("dormant scheduler activated after game over: %v", dormant.State())
	}

	idle := NewScheduler(newFakeHost(), strat, testConfig(5))
	runUntil(idle, 0.5, 10, func() bool { return idle.State() == Idle })
	idle.SetGameOver()
	idle.Tick(0.5)
	if idle.State() != Disabled || strat.executed != 0 {
		t.Fatalf("idle scheduler activated after game over: %v", idle.State())
	}
}

func TestGameOverLetsRunningEffectFinish(t *testing.T) {
	strat := &stubStrategy{cooldownRange: cooldownRange{1, 1}, duration: 2}
	s := NewScheduler(newFakeHost(), strat, testConfig(6))

	runUntil(s, 0.1, 100, func() bool { return s.State() == Activating })
	s.SetGameOver()
	if s.State() != Activating {
		t.Fatalf("game over aborted the running effect")
	}
	runUntil(s, 0.1, 100, func() bool { return s.State() != Activating })
	if strat.restored != 1 {
		t.Fatalf("effect did not restore, restored=%d", strat.restored)
	}
	if s.State() != Disabled {
		t.Fatalf("expected disabled after effect, got %v", s.State())
	}
	for i := 0; i < 200; i++ {
		s.Tick(0.1)
	}
	if strat.executed != 1 {
		t.Fatalf("activation after game over")
	}
}

func TestSchedulerWithoutStrategyNoops(t *testing.T) {
	s := NewScheduler(newFakeHost(), nil, testConfig(7))
	for i := 0; i < 100; i++ {
		s.Tick(0.1)
	}
	if s.State() != Idle || s.Cycles() != 0 {
		t.Fatalf("expected idle with no cycles, got %v/%d", s.State(), s.Cycles())
	}

	var nilSched *Scheduler
	nilSched.Tick(1)
	nilSched.SetGameOver()
	if nilSched.State() != Disabled {
		t.Fatalf("nil scheduler should report disabled")
	}
}

// runEffect steps an effect to completion and returns how many steps it took.
func runEffect(t *testing.T, e Effect, dt float64) int {
	t.Helper()
	for i := 1; i <= 10000; i++ {
		if e.Step(dt) {
			return i
		}
	}
	t.Fatalf("effect never finished")
	return 0
}

func TestGrowthBurstRestoresScaleAndMass(t *testing.T) {
	h := newFakeHost()
	g := NewGrowthBurst()

	e := g.Execute(h)
	if math.Abs(h.body.Scale-1.5) > 1e-9 {
		t.Fatalf("scale %v, want 1.5", h.body.Scale)
	}
	if math.Abs(h.body.Mass()-2*3.375) > 1e-9 {
		t.Fatalf("mass %v, want %v", h.body.Mass(), 2*3.375)
	}
	steps := runEffect(t, e, 0.02)
	if steps < 249 || steps > 251 {
		t.Fatalf("growth lasted %d steps, want about 250", steps)
	}
	if h.body.Scale != 1 || h.body.Mass() != 2 {
		t.Fatalf("not restored: scale=%v mass=%v", h.body.Scale, h.body.Mass())
	}
}

func TestJumpBoostIsMassIndependentAndInstant(t *testing.T) {
	h := newFakeHost()
	h.body.SetMass(50)

	e := NewJumpBoost().Execute(h)
	want := mgl64.Vec3{0, 10, 5}
	if !h.body.Velocity.ApproxEqual(want) {
		t.Fatalf("velocity %v, want %v", h.body.Velocity, want)
	}
	if steps := runEffect(t, e, 0.02); steps != 1 {
		t.Fatalf("jump should finish on the next step, took %d", steps)
	}
}

func TestSpeedDashRestoresPreEffectSpeed(t *testing.T) {
	h := newFakeHost()
	h.motion.Speed = 6 // already overridden by something else

	e := NewSpeedDash().Execute(h)
	if h.motion.Speed != 40 {
		t.Fatalf("dash speed %v, want 8x template speed", h.motion.Speed)
	}
	runEffect(t, e, 0.1)
	if h.motion.Speed != 6 {
		t.Fatalf("speed restored to %v, want 6", h.motion.Speed)
	}
}

func TestPhaseShiftRestoresHandlingAccelerationAndFilter(t *testing.T) {
	h := newFakeHost()

	e := NewPhaseShift().Execute(h)
	if !h.phased || h.motion.Handling != 180 || h.motion.Acceleration != 12 {
		t.Fatalf("phase not applied: phased=%v handling=%v accel=%v", h.phased, h.motion.Handling, h.motion.Acceleration)
	}
	runEffect(t, e, 0.1)
	if h.phased || h.motion.Handling != 120 || h.motion.Acceleration != 8 {
		t.Fatalf("phase not restored: phased=%v handling=%v accel=%v", h.phased, h.motion.Handling, h.motion.Acceleration)
	}
}

func TestRandomTeleportLandsBehindRival(t *testing.T) {
	h := newFakeHost()
	h.rivals = []mgl64.Vec3{{0, 0, 20}}
	tp := NewRandomTeleport(rand.New(rand.NewPCG(1, 2)))

	e := tp.Execute(h)
	if e == nil {
		t.Fatalf("expected teleport effect")
	}
	want := mgl64.Vec3{0, 0, 15}
	if !h.body.Position.ApproxEqual(want) {
		t.Fatalf("position %v, want %v", h.body.Position, want)
	}
}

func TestRandomTeleportIgnoresFarRivals(t *testing.T) {
	h := newFakeHost()
	h.rivals = []mgl64.Vec3{{0, 0, 100}}

	if e := NewRandomTeleport(nil).Execute(h); e != nil {
		t.Fatalf("expected no effect without rivals in range")
	}
	if h.body.Position != (mgl64.Vec3{}) {
		t.Fatalf("marble moved without a target: %v", h.body.Position)
	}
}

func TestNewCoversEveryKind(t *testing.T) {
	for _, k := range Kinds {
		s := New(k, nil)
		if s == nil || s.Kind() != k {
			t.Fatalf("New(%q) = %v", k, s)
		}
		lo, hi := s.Cooldown()
		if lo <= 0 || hi < lo {
			t.Fatalf("%s: bad cooldown range [%v, %v]", k, lo, hi)
		}
	}
	if New("Nope", nil) != nil {
		t.Fatalf("unknown kind should give nil")
	}
}

func TestStrategiesTolerateNilHost(t *testing.T) {
	for _, k := range Kinds {
		if e := New(k, nil).Execute(nil); e != nil {
			t.Fatalf("%s: expected nil effect for nil host", k)
		}
	}
}
