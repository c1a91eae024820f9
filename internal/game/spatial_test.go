package game

import (
	"slices"
	"testing"
)

func TestSpatialGridInsertAndQuery(t *testing.T) {
	g := newSpatialGrid(1000, 1000)
	g.insert(Rect{X: 90, Y: 90, W: 20, H: 20}, 0)

	if got := g.query(Rect{X: 100, Y: 100, W: 3, H: 3}, nil); !slices.Equal(got, []int{0}) {
		t.Errorf("expected to find 0 near (100,100), got %v", got)
	}
	if got := g.query(Rect{X: 800, Y: 800, W: 3, H: 3}, nil); len(got) != 0 {
		t.Errorf("should not find anything far away, got %v", got)
	}
}

func TestSpatialGridQueryOrderedAndUnique(t *testing.T) {
	g := newSpatialGrid(1000, 1000)
	// 2 spans several cells; 0 and 1 share one
	g.insert(Rect{X: 30, Y: 30, W: 60, H: 60}, 2)
	g.insert(Rect{X: 45, Y: 45, W: 5, H: 5}, 1)
	g.insert(Rect{X: 42, Y: 42, W: 5, H: 5}, 0)

	got := g.query(Rect{X: 0, Y: 0, W: 100, H: 100}, nil)
	if !slices.Equal(got, []int{0, 1, 2}) {
		t.Errorf("expected [0 1 2], got %v", got)
	}
}

func TestSpatialGridClampsOutside(t *testing.T) {
	g := newSpatialGrid(100, 100)
	g.insert(Rect{X: -50, Y: -50, W: 10, H: 10}, 3)
	g.insert(Rect{X: 500, Y: 500, W: 10, H: 10}, 4)
	if got := g.query(Rect{X: 0, Y: 0, W: 1, H: 1}, nil); !slices.Equal(got, []int{3}) {
		t.Errorf("expected clamped entry in the corner cell, got %v", got)
	}

	g.clear()
	if got := g.query(Rect{X: 0, Y: 0, W: 100, H: 100}, nil); len(got) != 0 {
		t.Errorf("expected empty grid after clear, got %v", got)
	}
}
