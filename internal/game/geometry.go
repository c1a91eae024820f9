package game

import "math"

// Point is an integer world position. Screen y grows downward.
type Point struct {
	X, Y int
}

// Rect is an axis-aligned box anchored at its top-left corner.
type Rect struct {
	X, Y, W, H int
}

// Contains reports whether (x,y) lies inside r. Right and bottom edges are
// exclusive.
func (r Rect) Contains(x, y int) bool {
	return r.W > 0 && r.H > 0 &&
		x >= r.X && x < r.X+r.W &&
		y >= r.Y && y < r.Y+r.H
}

// Intersects reports whether r and o overlap.
func (r Rect) Intersects(o Rect) bool {
	if r.W <= 0 || r.H <= 0 || o.W <= 0 || o.H <= 0 {
		return false
	}
	return o.X < r.X+r.W && o.X+o.W > r.X &&
		o.Y < r.Y+r.H && o.Y+o.H > r.Y
}

// Polygon is a closed integer outline.
type Polygon struct {
	Xs, Ys []int
}

// Bounds returns the smallest box around p.
func (p Polygon) Bounds() Rect {
	if len(p.Xs) == 0 {
		return Rect{}
	}
	minX, maxX := p.Xs[0], p.Xs[0]
	minY, maxY := p.Ys[0], p.Ys[0]
	for i := 1; i < len(p.Xs); i++ {
		minX = min(minX, p.Xs[i])
		maxX = max(maxX, p.Xs[i])
		minY = min(minY, p.Ys[i])
		maxY = max(maxY, p.Ys[i])
	}
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// Contains tests (x,y) with the even-odd rule.
func (p Polygon) Contains(x, y int) bool {
	n := len(p.Xs)
	if n < 3 {
		return false
	}
	px, py := float64(x), float64(y)
	inside := false
	j := n - 1
	for i := 0; i < n; i++ {
		xi, yi := float64(p.Xs[i]), float64(p.Ys[i])
		xj, yj := float64(p.Xs[j]), float64(p.Ys[j])
		if (yi > py) != (yj > py) {
			cross := xi + (py-yi)*(xj-xi)/(yj-yi)
			if px < cross {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}

// Transform rotates p around the origin by the visual angle dir (0 right,
// pi/2 up) and moves it to loc. Coordinates are truncated after adding one
// half, matching the client's rendering.
func (p Polygon) Transform(loc Point, dir float64) Polygon {
	co := math.Cos(-dir)
	si := math.Sin(-dir)
	out := Polygon{Xs: make([]int, len(p.Xs)), Ys: make([]int, len(p.Ys))}
	for i := range p.Xs {
		fx, fy := float64(p.Xs[i]), float64(p.Ys[i])
		out.Xs[i] = loc.X + int(fx*co-fy*si+0.5)
		out.Ys[i] = loc.Y + int(fx*si+fy*co+0.5)
	}
	return out
}

// squareDistance is cheaper than Distance and orders the same way.
func squareDistance(a, b Point) int {
	dx := b.X - a.X
	dy := b.Y - a.Y
	return dx*dx + dy*dy
}

// Distance returns the rounded distance between two points.
func Distance(a, b Point) int {
	return int(math.Sqrt(float64(squareDistance(a, b))) + 0.5)
}
