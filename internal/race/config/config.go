// Package config centralizes all tunable race parameters.
package config

import "time"

// Track geometry. The start line sits at z = 0 and the track runs along +Z.
const (
	TrackLength    = 200.0 // Distance from start line to finish line
	TrackHalfWidth = 6.0   // Half the drivable width
	WallHeight     = 2.5   // Marbles that clear this height can fly off the track
	WallThickness  = 1.0
	RunoutLength   = 20.0 // Ground past the finish line
)

// World physics.
const (
	Gravity       = -9.81 // m/s² along Y
	FallLimit     = -50.0 // Marbles below this height are eliminated
	RestingSpeed  = 1.0   // Ground impacts slower than this do not bounce
	MarbleRadius  = 0.5
	StartSpacing  = 1.6 // Lateral gap between start slots
	StartRowDepth = 2.0 // Gap between start rows
)

// Steering.
const (
	WallAvoidDistance = 1.5 // Start steering inward this close to a side wall
	SeekFinish        = true
)

// Abilities.
const (
	StartOfMatchDelay = 3.0 // Seconds before any ability may fire
	RivalSearchRadius = 50.0
)

// Broad-phase grid cell size. Must be >= the largest contact distance
// (two grown marbles: 2 * 0.5 * 1.5 = 1.5).
const CollisionGridCellSize = 2.0

// Spectators
const (
	MaxSpectatorNameLength = 16
	SpectatorEventBuffer   = 16
)

// Shutdown
const (
	ShutdownDisplaySeconds = 10.0 // Seconds to show shutdown message before auto-disconnect
)

// Server tick rate
const (
	ServerTickRate = 50
	ServerTickTime = time.Second / ServerTickRate
)

// Console rendering
const (
	ConsoleTargetFPS       = 10
	ConsoleTargetFrameTime = time.Second / ConsoleTargetFPS
)
