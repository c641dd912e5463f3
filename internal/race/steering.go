package race

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/tomz197/marbles/internal/object"
	"github.com/tomz197/marbles/internal/physics"
)

// Steerer produces a steering direction for one marble each tick.
type Steerer interface {
	Direction(m *object.Marble, track Track) mgl64.Vec3
}

// SteererFunc adapts a function to Steerer.
type SteererFunc func(m *object.Marble, track Track) mgl64.Vec3

func (f SteererFunc) Direction(m *object.Marble, track Track) mgl64.Vec3 {
	return f(m, track)
}

// TrackSteering turns away from side walls first, then seeks the finish
// target, and otherwise drives straight ahead. Marbles past the finish line
// keep driving ahead into the runout.
type TrackSteering struct {
	AvoidDistance float64
	Seek          bool
	Constant      mgl64.Vec3 // Used when Seek is false; zero means Forward
}

func (s TrackSteering) Direction(m *object.Marble, track Track) mgl64.Vec3 {
	if m == nil {
		return mgl64.Vec3{}
	}
	p := m.Position()

	if s.AvoidDistance > 0 {
		gap := track.HalfWidth - math.Abs(p[0]) - m.Radius()
		if gap < s.AvoidDistance {
			inward := -math.Copysign(1, p[0])
			return mgl64.Vec3{inward, 0, 1}.Normalize()
		}
	}

	if s.Seek && p[2] < track.Length {
		to := physics.Horizontal(track.Target().Sub(p))
		if to.Dot(to) > physics.SteeringEpsilonSq {
			return to.Normalize()
		}
	}

	if c := s.Constant; c.Dot(c) > physics.SteeringEpsilonSq {
		return c.Normalize()
	}
	return physics.Forward
}
