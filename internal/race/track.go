// Package race runs one marble race: the track, the marbles on it, contact
// delivery, the finish line and the standings.
package race

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/tomz197/marbles/internal/object"
	"github.com/tomz197/marbles/internal/race/config"
)

// Track describes the straight course marbles race along.
type Track struct {
	Length     float64 // Start line to finish line along +Z
	HalfWidth  float64
	WallHeight float64
	Runout     float64 // Ground past the finish line
}

// DefaultTrack returns the track built from the config constants.
func DefaultTrack() Track {
	return Track{
		Length:     config.TrackLength,
		HalfWidth:  config.TrackHalfWidth,
		WallHeight: config.WallHeight,
		Runout:     config.RunoutLength,
	}
}

// Target is the point marbles steer toward: the middle of the finish line.
func (t Track) Target() mgl64.Vec3 {
	return mgl64.Vec3{0, 0, t.Length}
}

// backStop is how far behind the start line the ground extends.
const backStop = 5.0

// Crossed reports whether p is past the finish line and between the walls.
func (t Track) Crossed(p mgl64.Vec3) bool {
	return p[2] >= t.Length && p[0] >= -t.HalfWidth && p[0] <= t.HalfWidth
}

// Bounds returns the XZ rectangle the track occupies, walls included.
func (t Track) Bounds() (minX, minZ, width, depth float64) {
	minX = -t.HalfWidth - config.WallThickness
	minZ = -backStop - config.WallThickness
	width = 2 * (t.HalfWidth + config.WallThickness)
	depth = t.Length + t.Runout + backStop + 2*config.WallThickness
	return minX, minZ, width, depth
}

// Build creates the static geometry: ground, side walls and end walls.
func (t Track) Build() (ground *object.Wall, walls []*object.Wall) {
	thick := config.WallThickness
	zMin, zMax := -backStop, t.Length+t.Runout

	ground = object.NewWall("ground",
		mgl64.Vec3{-t.HalfWidth, -thick, zMin},
		mgl64.Vec3{t.HalfWidth, 0, zMax})

	walls = []*object.Wall{
		object.NewWall("left",
			mgl64.Vec3{-t.HalfWidth - thick, 0, zMin},
			mgl64.Vec3{-t.HalfWidth, t.WallHeight, zMax}),
		object.NewWall("right",
			mgl64.Vec3{t.HalfWidth, 0, zMin},
			mgl64.Vec3{t.HalfWidth + thick, t.WallHeight, zMax}),
		object.NewWall("start",
			mgl64.Vec3{-t.HalfWidth, 0, zMin - thick},
			mgl64.Vec3{t.HalfWidth, t.WallHeight, zMin}),
		object.NewWall("end",
			mgl64.Vec3{-t.HalfWidth, 0, zMax},
			mgl64.Vec3{t.HalfWidth, t.WallHeight, zMax + thick}),
	}
	return ground, walls
}

// StartSlot returns the spawn position for the i-th marble. Slots fill rows
// across the track, then step back behind the start line. Once the rows
// reach the back stop, further slots are layered above the grid, every
// other layer shifted half a slot sideways, and drop onto the pack.
func (t Track) StartSlot(i int, radius float64) mgl64.Vec3 {
	perRow := int((2*t.HalfWidth - config.StartSpacing) / config.StartSpacing)
	if perRow < 1 {
		perRow = 1
	}
	rows := int((backStop-radius)/config.StartRowDepth) + 1
	if rows < 1 {
		rows = 1
	}
	layer, slot := i/(perRow*rows), i%(perRow*rows)
	row, col := slot/perRow, slot%perRow

	width := float64(perRow-1) * config.StartSpacing
	x := -width/2 + float64(col)*config.StartSpacing
	if layer%2 == 1 {
		x += config.StartSpacing / 2
	}
	y := radius + float64(layer)*config.StartSpacing
	z := -float64(row) * config.StartRowDepth
	return mgl64.Vec3{x, y, z}
}
