package race

import (
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/tomz197/marbles/internal/catalog"
	"github.com/tomz197/marbles/internal/object"
	"github.com/tomz197/marbles/internal/physics"
	"github.com/tomz197/marbles/internal/race/config"
)

// EventKind identifies a race event.
type EventKind int

const (
	EventWinner EventKind = iota
	EventEliminated
	EventFinished
)

func (k EventKind) String() string {
	switch k {
	case EventWinner:
		return "winner"
	case EventEliminated:
		return "eliminated"
	case EventFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Event is something that happened to one marble during a tick.
type Event struct {
	Kind     EventKind
	MarbleID int
	Marble   string // Template id
	Name     string
	Tick     int
}

// TemplateLookup resolves template ids; *catalog.Synchronizer satisfies it.
type TemplateLookup interface {
	Lookup(id string) (*catalog.Template, bool)
}

// Options configures a World. Zero values pick the defaults.
type Options struct {
	Track      Track
	Steering   Steerer
	StartDelay float64
	Catalog    TemplateLookup // Optional; Instantiate falls back to it
	Rand       *rand.Rand
	Logger     *log.Logger
}

// World holds one race: static geometry, the marbles and the race result.
// It is not safe for concurrent use; the server serialises access.
type World struct {
	Objects []object.Object
	Track   Track
	Elapsed time.Duration
	Ticks   int

	ground  *object.Wall
	walls   []*object.Wall
	gravity mgl64.Vec3
	steer   Steerer

	roster   []*object.Marble // Every marble spawned this race
	marbles  []*object.Marble // Active marbles, rebuilt every tick
	grid     *physics.SpatialGrid
	winner   *object.Marble
	finished []*object.Marble
	events   []Event

	templates map[string]*catalog.Template // Populated entries by id
	catalog   TemplateLookup

	nextID     int
	startDelay float64
	rng        *rand.Rand
	logger     *log.Logger
}

// NewWorld builds an empty race on the configured track.
func NewWorld(opts Options) *World {
	if opts.Track.Length <= 0 {
		opts.Track = DefaultTrack()
	}
	if opts.Steering == nil {
		opts.Steering = TrackSteering{AvoidDistance: config.WallAvoidDistance, Seek: config.SeekFinish}
	}
	if opts.StartDelay <= 0 {
		opts.StartDelay = config.StartOfMatchDelay
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	w := &World{
		Track:      opts.Track,
		gravity:    mgl64.Vec3{0, config.Gravity, 0},
		steer:      opts.Steering,
		templates:  make(map[string]*catalog.Template),
		catalog:    opts.Catalog,
		nextID:     1,
		startDelay: opts.StartDelay,
		rng:        opts.Rand,
		logger:     opts.Logger,
	}
	w.ground, w.walls = w.Track.Build()
	w.Objects = append(w.Objects, w.ground)
	for _, wall := range w.walls {
		w.Objects = append(w.Objects, wall)
	}
	minX, minZ, width, depth := w.Track.Bounds()
	w.grid = physics.NewSpatialGrid(minX, minZ, width, depth, config.CollisionGridCellSize)
	return w
}

// Spawn instantiates t in the next free start slot.
func (w *World) Spawn(t *catalog.Template) *object.Marble {
	slot := len(w.roster)
	pos := w.Track.StartSlot(slot, config.MarbleRadius)

	m := object.NewMarble(w.nextID, t, pos, object.MarbleConfig{
		Radius:      config.MarbleRadius,
		StartDelay:  w.startDelay,
		RivalRadius: config.RivalSearchRadius,
		Rivals:      w,
		Rand:        w.rng,
		Logger:      w.logger,
	})
	w.nextID++
	w.Objects = append(w.Objects, m)
	w.roster = append(w.roster, m)
	w.marbles = append(w.marbles, m)
	return m
}

// Populate spawns one marble per unlocked entry.
func (w *World) Populate(entries []catalog.Entry) []*object.Marble {
	var spawned []*object.Marble
	for _, e := range entries {
		if !e.Unlocked || e.Template == nil {
			continue
		}
		w.templates[e.Template.ID] = e.Template
		spawned = append(spawned, w.Spawn(e.Template))
	}
	return spawned
}

// Instantiate spawns another marble of the template with the given id,
// looked up among the populated entries first and then the catalog. It
// returns nil for an unknown id.
func (w *World) Instantiate(id string) *object.Marble {
	t, ok := w.templates[id]
	if !ok && w.catalog != nil {
		t, ok = w.catalog.Lookup(id)
	}
	if !ok || t == nil {
		w.logger.Warn("cannot instantiate unknown marble", "id", id)
		return nil
	}
	return w.Spawn(t)
}

// Marbles returns the marbles still racing.
func (w *World) Marbles() []*object.Marble {
	return w.marbles
}

// Roster returns every marble spawned this race, eliminated ones included.
func (w *World) Roster() []*object.Marble {
	return w.roster
}

// Walls returns the static side and end walls.
func (w *World) Walls() []*object.Wall {
	return w.walls
}

// Winner returns the first marble across the finish line, or nil.
func (w *World) Winner() *object.Marble {
	return w.winner
}

// Finished returns the marbles that crossed the finish line, in order.
func (w *World) Finished() []*object.Marble {
	return w.finished
}

// RivalsNear implements object.RivalFinder.
func (w *World) RivalsNear(self *object.Marble, radius float64) []mgl64.Vec3 {
	var out []mgl64.Vec3
	r2 := radius * radius
	for _, m := range w.marbles {
		if m == self || m.IsDestroyed() {
			continue
		}
		if physics.DistanceSquared(self.Position(), m.Position()) <= r2 {
			out = append(out, m.Position())
		}
	}
	return out
}

// Step advances the race by one fixed tick and returns the events it
// produced.
func (w *World) Step(delta time.Duration) []Event {
	w.events = w.events[:0]
	if delta <= 0 {
		return nil
	}
	w.Ticks++
	w.Elapsed += delta

	for _, m := range w.marbles {
		m.SetSteering(w.steer.Direction(m, w.Track))
	}

	ctx := object.UpdateContext{Delta: delta, Gravity: w.gravity}
	kept := w.Objects[:0]
	for _, obj := range w.Objects {
		remove, err := obj.Update(ctx)
		if err != nil {
			w.logger.Error("object update failed", "err", err)
		}
		if !remove {
			kept = append(kept, obj)
		}
	}
	w.Objects = kept
	w.marbles = object.FilterMarbles(w.Objects)

	w.resolveStatic()
	w.resolveMarbles()
	for _, m := range w.marbles {
		m.EnforceCap()
	}
	w.checkFinish()
	w.checkFallen()

	out := make([]Event, len(w.events))
	copy(out, w.events)
	return out
}

func (w *World) emit(kind EventKind, m *object.Marble) {
	e := Event{Kind: kind, MarbleID: m.ID, Name: m.Name, Tick: w.Ticks}
	if t := m.MarbleTemplate(); t != nil {
		e.Marble = t.ID
	}
	w.events = append(w.events, e)
}

func (w *World) checkFinish() {
	for _, m := range w.marbles {
		if m.Finished() || !w.Track.Crossed(m.Position()) {
			continue
		}
		if w.winner == nil {
			w.winner = m
			m.Finish()
			w.finished = append(w.finished, m)
			w.logger.Info("winner declared", "marble", m.Name, "tick", w.Ticks)
			w.emit(EventWinner, m)
			continue
		}
		if !w.hasFinished(m) {
			w.finished = append(w.finished, m)
			w.emit(EventFinished, m)
		}
	}
}

func (w *World) hasFinished(m *object.Marble) bool {
	for _, f := range w.finished {
		if f == m {
			return true
		}
	}
	return false
}

func (w *World) checkFallen() {
	for _, m := range w.marbles {
		if m.IsDestroyed() || m.Position()[1] >= config.FallLimit {
			continue
		}
		m.MarkDestroyed()
		w.logger.Info("marble fell off the track", "marble", m.Name, "tick", w.Ticks)
		w.emit(EventEliminated, m)
	}
}
