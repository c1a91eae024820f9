package game

import "sync"

// EntityKind tags what an Object is.
type EntityKind uint8

const (
	KindShip EntityKind = iota + 1
	KindPhaser
	KindBomb
	KindBombPack
	KindExplosion
	KindStar
)

func (k EntityKind) String() string {
	switch k {
	case KindShip:
		return "ship"
	case KindPhaser:
		return "phaser"
	case KindBomb:
		return "bomb"
	case KindBombPack:
		return "bombpack"
	case KindExplosion:
		return "explosion"
	case KindStar:
		return "star"
	}
	return "unknown"
}

// Object is anything placed in the world.
type Object interface {
	ID() int16
	Kind() EntityKind
	Location() Point
	Bounds() Rect
}

// body holds identity, position and heading shared by every entity. The
// Updater writes positions while handlers read them, so access is locked.
type body struct {
	id   int16
	w, h int // bounding box size

	mu  sync.RWMutex
	x   float64
	y   float64
	dir float64
}

func (b *body) init(id int16, x, y int, dir float64, w, h int) {
	b.id, b.w, b.h = id, w, h
	b.x, b.y, b.dir = float64(x), float64(y), dir
}

func (b *body) ID() int16 { return b.id }

// Location rounds the precise position to the grid.
func (b *body) Location() Point {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return Point{int(b.x + 0.5), int(b.y + 0.5)}
}

func (b *body) SetLocation(p Point) {
	b.mu.Lock()
	b.x, b.y = float64(p.X), float64(p.Y)
	b.mu.Unlock()
}

func (b *body) Direction() float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.dir
}

func (b *body) SetDirection(dir float64) {
	b.mu.Lock()
	b.dir = dir
	b.mu.Unlock()
}

// Bounds is a fixed-size box at the current location.
func (b *body) Bounds() Rect {
	l := b.Location()
	return Rect{X: l.X, Y: l.Y, W: b.w, H: b.h}
}

// Star is scenery: never collidable and never removed.
type Star struct {
	body
	Color Color
}

func newStar(x, y int, c Color) *Star {
	s := &Star{Color: c}
	s.init(-1, x, y, 0, 1, 1)
	return s
}

func (*Star) Kind() EntityKind { return KindStar }

// Explosion grows and shrinks for maxLevel ticks, then disappears.
type Explosion struct {
	body
	level    int8
	maxLevel int8
}

// Explosion sizes used by hit resolution.
const (
	explosionSmall = 5
	explosionLarge = 15
)

func NewExplosion(id int16, at Point, level, maxLevel int8) *Explosion {
	e := &Explosion{level: level, maxLevel: maxLevel}
	e.init(id, at.X, at.Y, 0, 1, 1)
	return e
}

func (*Explosion) Kind() EntityKind { return KindExplosion }

// Level returns the current and final animation level.
func (e *Explosion) Level() (level, maxLevel int8) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.level, e.maxLevel
}

// advance steps the animation and reports whether it has run out.
func (e *Explosion) advance() (level int8, done bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.level++
	return e.level, e.level > e.maxLevel
}

// Size is the drawn diameter at the current level: it rises until half of
// the run and then falls.
func (e *Explosion) Size() int {
	level, maxLevel := e.Level()
	l := int(level) + 3
	ml := int(maxLevel) + 3
	if l <= ml/2 {
		return l * 4
	}
	return (ml - l + 1) * 4
}
