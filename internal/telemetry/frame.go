// Package telemetry streams race snapshots to browser spectators over
// websockets as msgpack frames.
package telemetry

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/tomz197/marbles/internal/race/server"
)

// Frame types.
const (
	FrameSnapshot = "snapshot"
	FrameEvent    = "event"
)

// Frame is one message sent to a browser spectator.
type Frame struct {
	Type       string          `msgpack:"type"`
	Round      int             `msgpack:"round"`
	Tick       int             `msgpack:"tick,omitempty"`
	ElapsedMs  int64           `msgpack:"elapsedMs,omitempty"`
	Winner     string          `msgpack:"winner,omitempty"`
	WinnerName string          `msgpack:"winnerName,omitempty"`
	Spectators int             `msgpack:"spectators,omitempty"`
	Marbles    []MarbleFrame   `msgpack:"marbles,omitempty"`
	Standings  []StandingFrame `msgpack:"standings,omitempty"`

	// Event frames only.
	Event  string `msgpack:"event,omitempty"`
	Marble string `msgpack:"marble,omitempty"`
	Name   string `msgpack:"name,omitempty"`
}

// MarbleFrame is the wire form of a marble readout.
type MarbleFrame struct {
	ID              int        `msgpack:"id"`
	Name            string     `msgpack:"name"`
	Template        string     `msgpack:"template"`
	Position        [3]float64 `msgpack:"pos"`
	Velocity        [3]float64 `msgpack:"vel"`
	Speed           float64    `msgpack:"speed"`
	EffSpeed        float64    `msgpack:"effSpeed"`
	EffAcceleration float64    `msgpack:"effAccel"`
	SpeedCap        bool       `msgpack:"speedCap"`
	ThrustUsesMass  bool       `msgpack:"thrustMass"`
	Scale           float64    `msgpack:"scale"`
	Mass            float64    `msgpack:"mass"`
	Ability         string     `msgpack:"ability,omitempty"`
	AbilityState    string     `msgpack:"abilityState"`
	Phased          bool       `msgpack:"phased,omitempty"`
	Finished        bool       `msgpack:"finished,omitempty"`
	Eliminated      bool       `msgpack:"eliminated,omitempty"`
}

// StandingFrame is the wire form of one standings row.
type StandingFrame struct {
	Place      int     `msgpack:"place"`
	MarbleID   int     `msgpack:"id"`
	Marble     string  `msgpack:"marble"`
	Name       string  `msgpack:"name"`
	Distance   float64 `msgpack:"distance"`
	Finished   bool    `msgpack:"finished,omitempty"`
	Eliminated bool    `msgpack:"eliminated,omitempty"`
}

// SnapshotFrame converts a race snapshot into a frame.
func SnapshotFrame(s *server.RaceSnapshot) Frame {
	if s == nil {
		return Frame{Type: FrameSnapshot}
	}
	f := Frame{
		Type:       FrameSnapshot,
		Round:      s.Round,
		Tick:       s.Tick,
		ElapsedMs:  s.Elapsed.Milliseconds(),
		Winner:     s.Winner,
		WinnerName: s.WinnerName,
		Spectators: s.Spectators,
		Marbles:    make([]MarbleFrame, len(s.Marbles)),
		Standings:  make([]StandingFrame, len(s.Standings)),
	}
	for i, m := range s.Marbles {
		f.Marbles[i] = MarbleFrame{
			ID:              m.ID,
			Name:            m.Name,
			Template:        m.Template,
			Position:        [3]float64(m.Position),
			Velocity:        [3]float64(m.Velocity),
			Speed:           m.Speed,
			EffSpeed:        m.EffSpeed,
			EffAcceleration: m.EffAcceleration,
			SpeedCap:        m.EnforceSpeedCap,
			ThrustUsesMass:  m.ThrustUsesMass,
			Scale:           m.Scale,
			Mass:            m.Mass,
			Ability:         m.Ability,
			AbilityState:    m.AbilityState,
			Phased:          m.Phased,
			Finished:        m.Finished,
			Eliminated:      m.Eliminated,
		}
	}
	for i, st := range s.Standings {
		f.Standings[i] = StandingFrame{
			Place:      st.Place,
			MarbleID:   st.MarbleID,
			Marble:     st.Marble,
			Name:       st.Name,
			Distance:   st.Distance,
			Finished:   st.Finished,
			Eliminated: st.Eliminated,
		}
	}
	return f
}

// EventFrame converts a spectator event into a frame.
func EventFrame(ev server.SpectatorEvent) Frame {
	return Frame{
		Type:   FrameEvent,
		Round:  ev.Round,
		Event:  ev.Type.String(),
		Marble: ev.Marble,
		Name:   ev.Name,
	}
}

// Encode serializes a frame.
func Encode(f Frame) ([]byte, error) {
	b, err := msgpack.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("encode %s frame: %w", f.Type, err)
	}
	return b, nil
}

// Decode parses a frame produced by Encode.
func Decode(b []byte) (Frame, error) {
	var f Frame
	if err := msgpack.Unmarshal(b, &f); err != nil {
		return Frame{}, fmt.Errorf("decode frame: %w", err)
	}
	return f, nil
}
