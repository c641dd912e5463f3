package race

import (
	"math"
	"slices"

	"github.com/tomz197/marbles/internal/object"
	"github.com/tomz197/marbles/internal/physics"
)

// Standing is one marble's place in the race.
type Standing struct {
	Place      int
	MarbleID   int
	Marble     string // Template id
	Name       string
	Distance   float64 // Horizontal distance to the finish target
	Finished   bool
	Eliminated bool
}

// Standings ranks every marble: finishers in crossing order, then racers by
// horizontal distance to the finish target, then eliminated marbles.
func (w *World) Standings() []Standing {
	finishOrder := make(map[*object.Marble]int, len(w.finished))
	for i, m := range w.finished {
		finishOrder[m] = i
	}

	type ranked struct {
		m    *object.Marble
		dist float64
	}
	list := make([]ranked, 0, len(w.roster))
	for _, m := range w.roster {
		d := math.Sqrt(physics.HorizontalDistanceSquared(m.Position(), w.Track.Target()))
		list = append(list, ranked{m: m, dist: d})
	}

	group := func(m *object.Marble) int {
		if _, ok := finishOrder[m]; ok {
			return 0
		}
		if m.IsDestroyed() {
			return 2
		}
		return 1
	}

	slices.SortStableFunc(list, func(a, b ranked) int {
		ga, gb := group(a.m), group(b.m)
		if ga != gb {
			return ga - gb
		}
		if ga == 0 {
			return finishOrder[a.m] - finishOrder[b.m]
		}
		switch {
		case a.dist < b.dist:
			return -1
		case a.dist > b.dist:
			return 1
		default:
			return a.m.ID - b.m.ID
		}
	})

	out := make([]Standing, len(list))
	for i, r := range list {
		_, finished := finishOrder[r.m]
		s := Standing{
			Place:      i + 1,
			MarbleID:   r.m.ID,
			Name:       r.m.Name,
			Distance:   r.dist,
			Finished:   finished,
			Eliminated: r.m.IsDestroyed(),
		}
		if t := r.m.MarbleTemplate(); t != nil {
			s.Marble = t.ID
		}
		out[i] = s
	}
	return out
}
