package game

import (
	"math"
	"math/rand/v2"
	"sync"
)

const (
	DefaultWidth  = 1000
	DefaultHeight = 1000

	starDensity   = 35000 // square pixels per star
	spawnAttempts = 100
)

type entity interface {
	comparable
	ID() int16
}

// registry is one independently locked collection. Scans work on a copy.
type registry[T entity] struct {
	mu    sync.Mutex
	items []T
}

func (r *registry[T]) add(e T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, it := range r.items {
		if it == e {
			return
		}
	}
	r.items = append(r.items, e)
}

func (r *registry[T]) remove(e T) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, it := range r.items {
		if it == e {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return true
		}
	}
	return false
}

func (r *registry[T]) find(id int16) (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, it := range r.items {
		if it.ID() == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}

func (r *registry[T]) has(id int16) bool {
	_, ok := r.find(id)
	return ok
}

func (r *registry[T]) snapshot() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]T, len(r.items))
	copy(out, r.items)
	return out
}

func (r *registry[T]) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

// idSource hands out 16-bit ids for one entity kind, skipping ids that are
// still in use.
type idSource struct {
	mu   sync.Mutex
	next int16
}

func (s *idSource) allocate(inUse func(int16) bool) int16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := 0; i <= math.MaxUint16; i++ {
		id := s.next
		s.next++
		if id == -1 {
			continue // reserved for "nobody" on the wire
		}
		if !inUse(id) {
			return id
		}
	}
	panic("game: id space exhausted")
}

// World is the shared set of live entities. Every collection is guarded
// on its own; no lock is held across collections.
type World struct {
	width, height int

	stars      []*Star
	players    registry[*Player]
	phasers    registry[*Phaser]
	bombs      registry[*Bomb]
	bombPacks  registry[*BombPack]
	explosions registry[*Explosion]

	playerIDs, phaserIDs, bombIDs, bombPackIDs, explosionIDs idSource
}

// NewWorld creates an empty world of the given size sprinkled with stars.
func NewWorld(width, height int) *World {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	w := &World{width: width, height: height}
	n := width * height / starDensity
	w.stars = make([]*Star, n)
	for i := range w.stars {
		w.stars[i] = newStar(rand.IntN(width), rand.IntN(height), randomStarColor())
	}
	return w
}

func (w *World) Width() int { return w.width }
func (w *World) Height() int { return w.height }

// Stars never change after creation, so the slice is shared.
func (w *World) Stars() []*Star { return w.stars }

// Id allocation

func (w *World) NextPlayerID() int16 { return w.playerIDs.allocate(w.players.has) }

func (w *World) NextPhaserID() int16 { return w.phaserIDs.allocate(w.phasers.has) }

func (w *World) NextBombID() int16 { return w.bombIDs.allocate(w.bombs.has) }

func (w *World) NextBombPackID() int16 { return w.bombPackIDs.allocate(w.bombPacks.has) }

func (w *World) NextExplosionID() int16 { return w.explosionIDs.allocate(w.explosions.has) }

// Players

func (w *World) AddPlayer(p *Player) { w.players.add(p) }
func (w *World) RemovePlayer(p *Player) bool { return w.players.remove(p) }
func (w *World) FindPlayer(id int16) (*Player, bool) { return w.players.find(id) }
func (w *World) Players() []*Player { return w.players.snapshot() }

// Phasers

func (w *World) AddPhaser(p *Phaser) { w.phasers.add(p) }
func (w *World) RemovePhaser(p *Phaser) bool { return w.phasers.remove(p) }
func (w *World) FindPhaser(id int16) (*Phaser, bool) { return w.phasers.find(id) }
func (w *World) Phasers() []*Phaser { return w.phasers.snapshot() }

// Bombs

func (w *World) AddBomb(b *Bomb) { w.bombs.add(b) }
func (w *World) RemoveBomb(b *Bomb) bool { return w.bombs.remove(b) }
func (w *World) FindBomb(id int16) (*Bomb, bool) { return w.bombs.find(id) }
func (w *World) Bombs() []*Bomb { return w.bombs.snapshot() }

// Bomb packs

func (w *World) AddBombPack(bp *BombPack) { w.bombPacks.add(bp) }
func (w *World) RemoveBombPack(bp *BombPack) bool { return w.bombPacks.remove(bp) }
func (w *World) FindBombPack(id int16) (*BombPack, bool) { return w.bombPacks.find(id) }
func (w *World) BombPacks() []*BombPack { return w.bombPacks.snapshot() }

// Explosions

func (w *World) AddExplosion(e *Explosion) { w.explosions.add(e) }
func (w *World) RemoveExplosion(e *Explosion) bool { return w.explosions.remove(e) }
func (w *World) FindExplosion(id int16) (*Explosion, bool) { return w.explosions.find(id) }
func (w *World) Explosions() []*Explosion { return w.explosions.snapshot() }

// Counts reports how many entities of each kind are registered.
func (w *World) Counts() map[EntityKind]int {
	return map[EntityKind]int{
		KindShip:      w.players.len(),
		KindPhaser:    w.phasers.len(),
		KindBomb:      w.bombs.len(),
		KindBombPack:  w.bombPacks.len(),
		KindExplosion: w.explosions.len(),
		KindStar:      len(w.stars),
	}
}

// collidables lists everything a ship can run into.
func (w *World) collidables() []Object {
	players := w.players.snapshot()
	phasers := w.phasers.snapshot()
	bombs := w.bombs.snapshot()
	packs := w.bombPacks.snapshot()
	out := make([]Object, 0, len(players)+len(phasers)+len(bombs)+len(packs))
	for _, p := range players {
		out = append(out, p.ship)
	}
	for _, p := range phasers {
		out = append(out, p)
	}
	for _, b := range bombs {
		out = append(out, b)
	}
	for _, bp := range packs {
		out = append(out, bp)
	}
	return out
}

// ObjectsInRect returns every object whose bounds intersect r: scenery
// first, then collidables.
func (w *World) ObjectsInRect(r Rect) []Object {
	var out []Object
	for _, s := range w.stars {
		if r.Intersects(s.Bounds()) {
			out = append(out, s)
		}
	}
	for _, e := range w.explosions.snapshot() {
		if r.Intersects(e.Bounds()) {
			out = append(out, e)
		}
	}
	for _, o := range w.collidables() {
		if r.Intersects(o.Bounds()) {
			out = append(out, o)
		}
	}
	return out
}

// closest returns the item nearest to at by squared distance. The first
// item wins ties.
func closest[T any](items []T, at Point, loc func(T) Point, skip func(T) bool) (T, bool) {
	var best T
	found := false
	bestDist := math.MaxInt
	for _, it := range items {
		if skip != nil && skip(it) {
			continue
		}
		if d := squareDistance(loc(it), at); d < bestDist {
			best, bestDist, found = it, d, true
		}
	}
	return best, found
}

// ClosestLivingEnemy returns the living player nearest to at, other than me.
func (w *World) ClosestLivingEnemy(me *Player, at Point) (*Player, bool) {
	return closest(w.players.snapshot(), at,
		func(p *Player) Point { return p.Location() },
		func(p *Player) bool { return p == me || !p.Alive() })
}

// ClosestEnemyPhaser returns the nearest phaser not fired by me.
func (w *World) ClosestEnemyPhaser(me *Player, at Point) (*Phaser, bool) {
	return closest(w.phasers.snapshot(), at,
		func(p *Phaser) Point { return p.Location() },
		func(p *Phaser) bool { return p.owner == me })
}

// ClosestEnemyBomb returns the nearest bomb not dropped by me.
func (w *World) ClosestEnemyBomb(me *Player, at Point) (*Bomb, bool) {
	return closest(w.bombs.snapshot(), at,
		func(b *Bomb) Point { return b.Location() },
		func(b *Bomb) bool { return b.owner == me })
}

// ClosestBombPack returns the nearest pickup.
func (w *World) ClosestBombPack(at Point) (*BombPack, bool) {
	return closest(w.bombPacks.snapshot(), at,
		func(bp *BombPack) Point { return bp.Location() }, nil)
}

// DistanceToClosestCollidable returns the rounded distance from at to the
// nearest collidable, or math.MaxInt when there is none.
func (w *World) DistanceToClosestCollidable(at Point) int {
	o, ok := closest(w.collidables(), at, func(o Object) Point { return o.Location() }, nil)
	if !ok {
		return math.MaxInt
	}
	return Distance(o.Location(), at)
}

// FindSpawnLocation picks a random point away from the edges and at least
// twenty margins from anything collidable. After a bounded number of tries
// the last candidate is used anyway.
func (w *World) FindSpawnLocation() Point {
	marginX := w.width / 100
	marginY := w.height / 100
	spanX := max(w.width-2*marginX, 1)
	spanY := max(w.height-2*marginY, 1)
	var p Point
	for i := 0; i < spawnAttempts; i++ {
		p = Point{marginX + rand.IntN(spanX), marginY + rand.IntN(spanY)}
		if w.DistanceToClosestCollidable(p) >= marginX*20 {
			break
		}
	}
	return p
}
