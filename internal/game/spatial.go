package game

import "slices"

// spatialCellSize is about twice the largest ship bounding box.
const spatialCellSize = 40

// spatialGrid is a fixed grid for broad-phase hit queries. It stores
// indexes into the tick's list of living players.
type spatialGrid struct {
	cols, rows int
	cells      [][]int
}

func newSpatialGrid(width, height int) *spatialGrid {
	cols := width/spatialCellSize + 1
	rows := height/spatialCellSize + 1
	return &spatialGrid{cols: cols, rows: rows, cells: make([][]int, cols*rows)}
}

// clear resets all cells (keeps allocated capacity)
func (g *spatialGrid) clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

func (g *spatialGrid) span(r Rect) (minCX, maxCX, minCY, maxCY int) {
	minCX = Clamp(r.X/spatialCellSize, 0, g.cols-1)
	maxCX = Clamp((r.X+r.W)/spatialCellSize, 0, g.cols-1)
	minCY = Clamp(r.Y/spatialCellSize, 0, g.rows-1)
	maxCY = Clamp((r.Y+r.H)/spatialCellSize, 0, g.rows-1)
	return
}

// insert adds idx to every cell overlapping r.
func (g *spatialGrid) insert(r Rect, idx int) {
	minCX, maxCX, minCY, maxCY := g.span(r)
	for cy := minCY; cy <= maxCY; cy++ {
		for cx := minCX; cx <= maxCX; cx++ {
			i := cy*g.cols + cx
			g.cells[i] = append(g.cells[i], idx)
		}
	}
}

// query appends the indexes stored in cells overlapping r to buf. The
// result is sorted and free of duplicates, so callers see candidates in
// the same order as the list they were built from.
func (g *spatialGrid) query(r Rect, buf []int) []int {
	buf = buf[:0]
	minCX, maxCX, minCY, maxCY := g.span(r)
	for cy := minCY; cy <= maxCY; cy++ {
		for cx := minCX; cx <= maxCX; cx++ {
			buf = append(buf, g.cells[cy*g.cols+cx]...)
		}
	}
	slices.Sort(buf)
	return slices.Compact(buf)
}
