package physics

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestElasticHeadOnSwapsVelocities(t *testing.T) {
	a := NewBody(mgl64.Vec3{0, 0, 0}, 0.5, 2)
	b := NewBody(mgl64.Vec3{1, 0, 0}, 0.5, 2)
	a.Velocity = mgl64.Vec3{3, 0, 0}
	b.Velocity = mgl64.Vec3{-3, 0, 0}
	closing := 6.0

	j := Resolver{Bounciness: 1}.Resolve(Contact{
		Self:         a,
		Other:        b,
		Normal:       mgl64.Vec3{1, 0, 0},
		OtherIsRacer: true,
	})
	if j <= 0 {
		t.Fatalf("expected a positive impulse, got %f", j)
	}

	separating := b.Velocity.Sub(a.Velocity).Dot(mgl64.Vec3{1, 0, 0})
	if math.Abs(separating-closing) > 1e-9 {
		t.Fatalf("separating speed = %f, want %f", separating, closing)
	}
	if math.Abs(a.Velocity[0]+3) > 1e-9 || math.Abs(b.Velocity[0]-3) > 1e-9 {
		t.Fatalf("expected velocity swap, got a=%v b=%v", a.Velocity, b.Velocity)
	}
}

func TestSeparatingContactIsNoop(t *testing.T) {
	a := NewBody(mgl64.Vec3{}, 0.5, 1)
	b := NewBody(mgl64.Vec3{1, 0, 0}, 0.5, 1)
	a.Velocity = mgl64.Vec3{-1, 0, 0}
	b.Velocity = mgl64.Vec3{1, 0, 0}

	j := Resolver{Bounciness: 1}.Resolve(Contact{Self: a, Other: b, Normal: mgl64.Vec3{1, 0, 0}, OtherIsRacer: true})
	if j != 0 {
		t.Fatalf("expected zero impulse, got %f", j)
	}
	if a.Velocity != (mgl64.Vec3{-1, 0, 0}) || b.Velocity != (mgl64.Vec3{1, 0, 0}) {
		t.Fatalf("velocities changed on separating contact: a=%v b=%v", a.Velocity, b.Velocity)
	}

	// Resting relative to each other.
	a.Velocity = mgl64.Vec3{2, 0, 0}
	b.Velocity = mgl64.Vec3{2, 0, 0}
	if j := (Resolver{Bounciness: 1}).Resolve(Contact{Self: a, Other: b, Normal: mgl64.Vec3{1, 0, 0}}); j != 0 {
		t.Fatalf("expected zero impulse for equal velocities, got %f", j)
	}
}

func TestWallDoesNotReceiveReaction(t *testing.T) {
	marble := NewBody(mgl64.Vec3{}, 0.5, 1)
	marble.Velocity = mgl64.Vec3{4, 0, 0}
	wall := NewBody(mgl64.Vec3{1, 0, 0}, 0, 1e6)

	Resolver{Bounciness: 0.5}.Resolve(Contact{Self: marble, Other: wall, Normal: mgl64.Vec3{1, 0, 0}})

	if wall.Velocity.Len() != 0 {
		t.Fatalf("wall should not move, got %v", wall.Velocity)
	}
	if marble.Velocity[0] >= 0 {
		t.Fatalf("marble should bounce back, got %v", marble.Velocity)
	}
}

func TestRestitutionIsClamped(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{-1, 0},
		{0.6, 0.6},
		{1.2, 1},
		{9, 1},
	}
	for _, c := range cases {
		if got := (Resolver{Bounciness: c.in}).Restitution(); got != c.want {
			t.Fatalf("Restitution(%f) = %f, want %f", c.in, got, c.want)
		}
	}
}

func TestResolveHandlesDegenerateInput(t *testing.T) {
	a := NewBody(mgl64.Vec3{}, 0.5, 0)
	b := NewBody(mgl64.Vec3{1, 0, 0}, 0.5, 0)
	a.Velocity = mgl64.Vec3{1, 0, 0}

	if j := (Resolver{}).Resolve(Contact{Self: nil, Other: b, Normal: mgl64.Vec3{1, 0, 0}}); j != 0 {
		t.Fatalf("nil self should be a no-op")
	}
	if j := (Resolver{}).Resolve(Contact{Self: a, Other: b}); j != 0 {
		t.Fatalf("zero normal should be a no-op")
	}

	Resolver{Bounciness: 1}.Resolve(Contact{Self: a, Other: b, Normal: mgl64.Vec3{1, 0, 0}, OtherIsRacer: true})
	if !finite(a.Velocity) || !finite(b.Velocity) {
		t.Fatalf("near-zero masses produced non-finite velocities: a=%v b=%v", a.Velocity, b.Velocity)
	}
}
