package race

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/tomz197/marbles/internal/object"
	"github.com/tomz197/marbles/internal/physics"
	"github.com/tomz197/marbles/internal/race/config"
)

// resolveStatic handles marble contacts with the ground and the walls.
func (w *World) resolveStatic() {
	for _, m := range w.marbles {
		if m.IsDestroyed() {
			continue
		}
		w.touchGround(m)
		for _, wall := range w.walls {
			n, depth, ok := wall.Touch(m.Position(), m.Radius())
			if !ok {
				continue
			}
			separate(m.Body(), n, depth)
			m.OnContact(wall.Body(), n, false)
		}
	}
}

// touchGround keeps marbles on the ground. Slow impacts settle instead of
// bouncing so resting marbles do not jitter.
func (w *World) touchGround(m *object.Marble) {
	n, depth, ok := w.ground.Touch(m.Position(), m.Radius())
	if !ok {
		return
	}
	separate(m.Body(), n, depth)

	body := m.Body()
	closing := body.Velocity.Dot(n)
	if closing <= 0 {
		return
	}
	if closing < config.RestingSpeed {
		body.Velocity = body.Velocity.Sub(n.Mul(closing))
		return
	}
	m.OnContact(w.ground.Body(), n, false)
}

// separate pushes a body out of static geometry along -n.
func separate(b *physics.Body, n mgl64.Vec3, depth float64) {
	if depth <= 0 {
		return
	}
	b.Position = b.Position.Sub(n.Mul(depth))
}

// resolveMarbles finds overlapping marble pairs with the spatial grid and
// delivers the contact to both marbles. Phased marbles pass through other
// marbles.
func (w *World) resolveMarbles() {
	w.grid.Clear()
	for i, m := range w.marbles {
		p := m.Position()
		w.grid.Insert(p[0], p[2], i)
	}

	for i, a := range w.marbles {
		if a.IsDestroyed() || a.Phased() {
			continue
		}
		pa := a.Position()
		w.grid.QueryAround(pa[0], pa[2], func(j int) bool {
			if j <= i {
				return false // Skip self and already-checked pairs
			}
			b := w.marbles[j]
			if b.IsDestroyed() || b.Phased() {
				return false
			}
			bounceMarbles(a, b)
			return false
		})
	}
}

// bounceMarbles resolves one marble pair. The normal points from a to b.
func bounceMarbles(a, b *object.Marble) {
	pa, pb := a.Position(), b.Position()
	ra, rb := a.Radius(), b.Radius()
	if !physics.SpheresOverlap(pa, ra, pb, rb) {
		return
	}

	d := pb.Sub(pa)
	dist := d.Len()
	var n mgl64.Vec3
	if dist > 1e-9 {
		n = d.Mul(1 / dist)
	} else {
		n = physics.Forward
	}

	a.OnContact(b.Body(), n, true)
	b.OnContact(a.Body(), n.Mul(-1), true)

	// Separate proportionally to mass so heavier marbles move less.
	overlap := ra + rb - dist
	if overlap > 0 {
		ma, mb := a.Body().Mass(), b.Body().Mass()
		total := ma + mb
		a.Body().Position = pa.Sub(n.Mul(overlap * mb / total))
		b.Body().Position = pb.Add(n.Mul(overlap * ma / total))
	}
}
