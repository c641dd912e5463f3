package server

import (
	"time"

	"github.com/tomz197/marbles/internal/object"
	"github.com/tomz197/marbles/internal/race"
)

// RaceSnapshot is an immutable view of the race for spectators.
type RaceSnapshot struct {
	Round      int
	Tick       int
	Elapsed    time.Duration
	Marbles    []object.Readout
	Standings  []race.Standing
	Winner     string // Template id of the winner, empty while racing
	WinnerName string
	Spectators int
}

// Finished reports whether the round has a winner.
func (s *RaceSnapshot) Finished() bool {
	return s != nil && s.Winner != ""
}

// createSnapshot captures the world into a fresh snapshot.
func (s *Server) createSnapshot() {
	s.mu.RLock()
	defer s.mu.RUnlock()

	roster := s.world.Roster()
	marbles := make([]object.Readout, len(roster))
	for i, m := range roster {
		marbles[i] = m.Readout()
	}

	snapshot := &RaceSnapshot{
		Round:      s.round,
		Tick:       s.world.Ticks,
		Elapsed:    s.world.Elapsed,
		Marbles:    marbles,
		Standings:  s.world.Standings(),
		Spectators: len(s.spectators),
	}
	if w := s.world.Winner(); w != nil {
		snapshot.WinnerName = w.Name
		if t := w.MarbleTemplate(); t != nil {
			snapshot.Winner = t.ID
		}
	}

	s.snapshot.Store(snapshot)
}
