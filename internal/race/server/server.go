// Package server runs races on a fixed tick and fans results out to
// spectators.
package server

import (
	"context"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/marbles/internal/catalog"
	"github.com/tomz197/marbles/internal/race"
	"github.com/tomz197/marbles/internal/race/config"
)

// RaceServer is the interface spectators use to talk to the race server.
type RaceServer interface {
	RegisterSpectator(name string) *SpectatorHandle
	UnregisterSpectator(id int)
	GetSnapshot() *RaceSnapshot
	Reset(entries []catalog.Entry)
}

// Server owns the race world and advances it on a fixed tick.
type Server struct {
	world        *race.World
	snapshot     atomic.Pointer[RaceSnapshot]
	spectators   map[int]*SpectatorHandle
	nextID       int
	registerCh   chan *SpectatorHandle
	unregisterCh chan int
	resetCh      chan []catalog.Entry
	mu           sync.RWMutex

	round    int
	entries  []catalog.Entry
	opts     Options
	rng      *rand.Rand
	logger   *log.Logger
	onWinner func(race.Event)
}

// Compile-time check that Server implements RaceServer.
var _ RaceServer = (*Server)(nil)

// Options configures a Server. Zero values pick the defaults.
type Options struct {
	Track    race.Track
	Steering race.Steerer
	Catalog  race.TemplateLookup
	TickTime time.Duration
	Seed     uint64 // 0 seeds from the runtime source
	Logger   *log.Logger
	// OnWinner is called from the tick goroutine when a round is won.
	OnWinner func(race.Event)
}

// SpectatorHandle represents one spectator's connection to the server.
type SpectatorHandle struct {
	ID       int
	Name     string
	EventsCh chan SpectatorEvent
}

// SpectatorEvent is pushed to spectators as the race unfolds.
type SpectatorEvent struct {
	Type   SpectatorEventType
	Round  int
	Marble string // Template id, for marble events
	Name   string // Display name, for marble events
}

// SpectatorEventType identifies the type of spectator event.
type SpectatorEventType int

const (
	EventWinner SpectatorEventType = iota
	EventEliminated
	EventRoundReset
	EventServerShutdown
)

func (t SpectatorEventType) String() string {
	switch t {
	case EventWinner:
		return "winner"
	case EventEliminated:
		return "eliminated"
	case EventRoundReset:
		return "reset"
	case EventServerShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

// NewServer creates a race server running the given entries.
func NewServer(entries []catalog.Entry, opts Options) *Server {
	if opts.TickTime <= 0 {
		opts.TickTime = config.ServerTickTime
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	seed := opts.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}

	s := &Server{
		spectators:   make(map[int]*SpectatorHandle),
		nextID:       1,
		registerCh:   make(chan *SpectatorHandle, 16),
		unregisterCh: make(chan int, 16),
		resetCh:      make(chan []catalog.Entry, 1),
		opts:         opts,
		rng:          rand.New(rand.NewPCG(seed, seed>>1|1)),
		logger:       opts.Logger.With("component", "race"),
		onWinner:     opts.OnWinner,
	}
	s.startRound(entries)
	s.createSnapshot()
	return s
}

// startRound replaces the world with a fresh race over entries.
func (s *Server) startRound(entries []catalog.Entry) {
	s.round++
	s.entries = entries
	s.world = race.NewWorld(race.Options{
		Track:    s.opts.Track,
		Steering: s.opts.Steering,
		Catalog:  s.opts.Catalog,
		Rand:     s.rng,
		Logger:   s.logger,
	})
	marbles := s.world.Populate(entries)
	s.logger.Info("round started", "round", s.round, "marbles", len(marbles))
}

// Run starts the server loop. Blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		frameStart := time.Now()
		s.Tick()

		// Frame timing
		elapsed := time.Since(frameStart)
		if elapsed < s.opts.TickTime {
			time.Sleep(s.opts.TickTime - elapsed)
		}
	}
}

// Tick runs one server iteration: spectator bookkeeping, pending resets,
// one fixed physics step and a new snapshot.
func (s *Server) Tick() {
	s.processRegistrations()
	s.processResets()
	s.updateWorld()
	s.createSnapshot()
}

// Shutdown notifies all spectators and waits for them to disconnect (up to
// the given timeout). The caller should cancel the server context after
// Shutdown returns.
func (s *Server) Shutdown(timeout time.Duration) {
	s.mu.RLock()
	for _, handle := range s.spectators {
		select {
		case handle.EventsCh <- SpectatorEvent{Type: EventServerShutdown, Round: s.round}:
		default:
		}
	}
	s.mu.RUnlock()

	deadline := time.After(timeout)
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-deadline:
			return
		case <-ticker.C:
			s.processRegistrations()
			s.mu.RLock()
			remaining := len(s.spectators)
			s.mu.RUnlock()
			if remaining == 0 {
				return
			}
		}
	}
}

// RegisterSpectator registers a new spectator and returns its handle.
func (s *Server) RegisterSpectator(name string) *SpectatorHandle {
	if len(name) > config.MaxSpectatorNameLength {
		name = name[:config.MaxSpectatorNameLength]
	}

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.mu.Unlock()

	handle := &SpectatorHandle{
		ID:       id,
		Name:     name,
		EventsCh: make(chan SpectatorEvent, config.SpectatorEventBuffer),
	}

	s.registerCh <- handle
	return handle
}

// UnregisterSpectator removes a spectator from the server.
func (s *Server) UnregisterSpectator(id int) {
	s.unregisterCh <- id
}

// Reset queues a new round over entries. A nil slice reruns the current
// entries. Only the latest pending reset is kept.
func (s *Server) Reset(entries []catalog.Entry) {
	for {
		select {
		case s.resetCh <- entries:
			return
		default:
		}
		select {
		case <-s.resetCh:
		default:
		}
	}
}

// GetSnapshot returns the current race snapshot.
func (s *Server) GetSnapshot() *RaceSnapshot {
	return s.snapshot.Load()
}

// processRegistrations handles pending spectator registrations.
func (s *Server) processRegistrations() {
	for {
		select {
		case handle := <-s.registerCh:
			s.mu.Lock()
			s.spectators[handle.ID] = handle
			s.mu.Unlock()
			s.logger.Debug("spectator joined", "id", handle.ID, "name", handle.Name)
		case id := <-s.unregisterCh:
			s.mu.Lock()
			if handle, ok := s.spectators[id]; ok {
				close(handle.EventsCh)
				delete(s.spectators, id)
			}
			s.mu.Unlock()
		default:
			return
		}
	}
}

func (s *Server) processResets() {
	select {
	case entries := <-s.resetCh:
		if entries == nil {
			entries = s.entries
		}
		s.mu.Lock()
		s.startRound(entries)
		s.mu.Unlock()
		s.broadcast(SpectatorEvent{Type: EventRoundReset, Round: s.round})
	default:
	}
}

// updateWorld advances the race by one fixed step and forwards its events.
func (s *Server) updateWorld() {
	s.mu.Lock()
	events := s.world.Step(s.opts.TickTime)
	s.mu.Unlock()

	for _, e := range events {
		switch e.Kind {
		case race.EventWinner:
			s.broadcast(SpectatorEvent{Type: EventWinner, Round: s.round, Marble: e.Marble, Name: e.Name})
			if s.onWinner != nil {
				s.onWinner(e)
			}
		case race.EventEliminated:
			s.broadcast(SpectatorEvent{Type: EventEliminated, Round: s.round, Marble: e.Marble, Name: e.Name})
		}
	}
}

// broadcast delivers ev to every spectator without blocking.
func (s *Server) broadcast(ev SpectatorEvent) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, handle := range s.spectators {
		select {
		case handle.EventsCh <- ev:
		default:
		}
	}
}
