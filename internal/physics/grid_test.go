package physics

import (
	"sort"
	"testing"
)

func TestGridQueryFindsNeighbors(t *testing.T) {
	g := NewSpatialGrid(-10, 0, 20, 100, 2)
	g.Insert(0, 10, 0)
	g.Insert(1.5, 11, 1)
	g.Insert(8, 90, 2)

	var found []int
	g.QueryAround(0.5, 10.5, func(i int) bool {
		found = append(found, i)
		return false
	})
	sort.Ints(found)

	if len(found) != 2 || found[0] != 0 || found[1] != 1 {
		t.Fatalf("expected neighbors [0 1], got %v", found)
	}
}

func TestGridClampsOutOfBoundsPositions(t *testing.T) {
	g := NewSpatialGrid(0, 0, 10, 10, 5)
	g.Insert(-50, -50, 7)

	hit := false
	g.QueryAround(0, 0, func(i int) bool {
		hit = i == 7
		return hit
	})
	if !hit {
		t.Fatalf("expected off-grid item to land in the edge cell")
	}

	g.Clear()
	g.QueryAround(0, 0, func(int) bool {
		t.Fatalf("expected empty grid after Clear")
		return true
	})
}
