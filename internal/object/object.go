// Package object holds the simulated race entities: marbles and the static
// track pieces they collide with.
package object

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// UpdateContext provides all the information an object needs during update.
type UpdateContext struct {
	Delta   time.Duration
	Gravity mgl64.Vec3 // World gravity as an acceleration
}

// Seconds returns the tick length in seconds.
func (c UpdateContext) Seconds() float64 {
	return c.Delta.Seconds()
}

// Object is an updatable race entity.
type Object interface {
	// Update advances the object by one tick. Returns true if the object
	// should be removed.
	Update(ctx UpdateContext) (remove bool, err error)
}

// Destructible is implemented by objects that can be marked for removal.
type Destructible interface {
	// MarkDestroyed marks the object for removal on next update cycle.
	MarkDestroyed()
	// IsDestroyed returns true if the object is marked for destruction.
	IsDestroyed() bool
}

// FilterMarbles returns all marbles from the given object slice.
func FilterMarbles(objects []Object) []*Marble {
	var marbles []*Marble
	for _, obj := range objects {
		if m, ok := obj.(*Marble); ok {
			marbles = append(marbles, m)
		}
	}
	return marbles
}

// FilterWalls returns all walls from the given object slice.
func FilterWalls(objects []Object) []*Wall {
	var walls []*Wall
	for _, obj := range objects {
		if w, ok := obj.(*Wall); ok {
			walls = append(walls, w)
		}
	}
	return walls
}
