package game

import (
	"math"
	"math/rand/v2"
)

const (
	phaserSpeed       = 15
	phaserMaxDistance = 500
	phaserMinDamage   = 5
	phaserDamageRange = 15

	bombMaxSpeed       = 10.0
	bombAccel          = 4.0
	bombMinDistance    = 500
	bombDistanceRange  = 300
	bombMinDamage      = 30
	bombDamageRange    = 30
	bombMinTurnDivisor = 20.0
	bombTurnRange      = 7.0

	phaserSize    = 3
	bombSize      = 7
	bombPackSize  = 3
	bombPackReach = 5
)

// segment is the path a projectile travelled during one tick.
type segment struct {
	fromX, fromY float64
	toX, toY     float64
}

// probes returns the end point and the midpoints at 1/2, 1/4 and 3/4 of
// the way, rounded to the grid.
func (s segment) probes() [4]Point {
	m1x := s.fromX + (s.toX-s.fromX)/2
	m1y := s.fromY + (s.toY-s.fromY)/2
	m2x := s.fromX + (m1x-s.fromX)/2
	m2y := s.fromY + (m1y-s.fromY)/2
	m3x := m1x + (s.toX-m1x)/2
	m3y := m1y + (s.toY-m1y)/2
	return [4]Point{
		{int(s.toX + 0.5), int(s.toY + 0.5)},
		{int(m1x + 0.5), int(m1y + 0.5)},
		{int(m2x + 0.5), int(m2y + 0.5)},
		{int(m3x + 0.5), int(m3y + 0.5)},
	}
}

// hits reports whether any probe of s lands on ship.
func (s segment) hits(ship *Ship) bool {
	for _, pt := range s.probes() {
		if ship.HitBy(pt.X, pt.Y) {
			return true
		}
	}
	return false
}

func (s segment) box() Rect {
	x0, x1 := math.Min(s.fromX, s.toX), math.Max(s.fromX, s.toX)
	y0, y1 := math.Min(s.fromY, s.toY), math.Max(s.fromY, s.toY)
	return Rect{X: int(x0), Y: int(y0), W: int(x1-x0) + 2, H: int(y1-y0) + 2}
}

func outside(x, y float64, width, height int) bool {
	return x < 0 || x >= float64(width) || y < 0 || y >= float64(height)
}

// Phaser flies straight at a fixed speed until it has covered its range.
type Phaser struct {
	body
	owner    *Player
	color    Color
	dx, dy   float64
	distance int
}

func NewPhaser(id int16, owner *Player, at Point, dir float64) *Phaser {
	p := &Phaser{
		owner: owner,
		color: White,
		dx:    phaserSpeed * math.Cos(dir),
		dy:    phaserSpeed * math.Sin(dir),
	}
	p.init(id, at.X, at.Y, dir, phaserSize, phaserSize)
	return p
}

func (*Phaser) Kind() EntityKind { return KindPhaser }
func (p *Phaser) Owner() *Player { return p.owner }
func (p *Phaser) Color() Color   { return p.color }

// step moves the phaser one tick and reports whether it is spent.
func (p *Phaser) step(width, height int) (segment, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	seg := segment{fromX: p.x, fromY: p.y}
	p.x += p.dx
	p.y -= p.dy
	p.distance += phaserSpeed
	seg.toX, seg.toY = p.x, p.y
	return seg, p.distance > phaserMaxDistance || outside(p.x, p.y, width, height)
}

func phaserDamage() int {
	return randInt(phaserMinDamage, phaserDamageRange)
}

// Bomb homes in on the nearest living enemy with a limited turn rate.
type Bomb struct {
	body
	owner       *Player
	color       Color
	dx, dy      float64
	speed       float64
	distance    int
	maxDistance int
	maxTurn     float64
}

func NewBomb(id int16, owner *Player, at Point, dir float64, c Color) *Bomb {
	b := &Bomb{
		owner:       owner,
		color:       c,
		dx:          bombMaxSpeed * math.Cos(dir),
		dy:          bombMaxSpeed * math.Sin(dir),
		speed:       bombMaxSpeed,
		maxDistance: bombMinDistance + int(rand.Float64()*bombDistanceRange),
		maxTurn:     fullCircle / (bombMinTurnDivisor + rand.Float64()*bombTurnRange),
	}
	b.init(id, at.X, at.Y, dir, bombSize, bombSize)
	return b
}

func (*Bomb) Kind() EntityKind { return KindBomb }
func (b *Bomb) Owner() *Player { return b.owner }
func (b *Bomb) Color() Color   { return b.color }

// MaxTurn is the largest heading change per tick.
func (b *Bomb) MaxTurn() float64 { return b.maxTurn }

// steer turns toward target by at most maxTurn and accelerates along the
// new heading, capped at the maximum speed.
func (b *Bomb) steer(target Point) {
	from := b.Location()
	wanted := Angle(from, target)

	b.mu.Lock()
	defer b.mu.Unlock()
	ddir := wanted - b.dir
	correct := math.Min(math.Abs(ddir), b.maxTurn)
	if (math.Abs(ddir) < math.Pi) == (ddir >= 0) {
		b.dir += correct
	} else {
		b.dir -= correct
	}
	b.dir = NormalizeAngle(b.dir)

	b.dx += bombAccel * math.Cos(b.dir)
	b.dy += bombAccel * math.Sin(b.dir)
	b.speed = math.Hypot(b.dx, b.dy)
	if b.speed > bombMaxSpeed {
		b.dx *= bombMaxSpeed / b.speed
		b.dy *= bombMaxSpeed / b.speed
		b.speed = bombMaxSpeed
	}
}

// step moves the bomb one tick and reports whether it is spent.
func (b *Bomb) step(width, height int) (segment, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	seg := segment{fromX: b.x, fromY: b.y}
	b.x += b.dx
	b.y -= b.dy
	b.distance += int(b.speed + 0.5)
	seg.toX, seg.toY = b.x, b.y
	return seg, b.distance > b.maxDistance || outside(b.x, b.y, width, height)
}

func bombDamage() int {
	return randInt(bombMinDamage, bombDamageRange)
}

// BombPack is a pickup holding the bombs of a destroyed ship.
type BombPack struct {
	body
	color Color
	bombs int
}

func NewBombPack(id int16, at Point, dir float64, c Color, bombs int) *BombPack {
	bp := &BombPack{color: c, bombs: bombs}
	bp.init(id, at.X, at.Y, dir, bombPackSize, bombPackSize)
	return bp
}

func (*BombPack) Kind() EntityKind { return KindBombPack }
func (bp *BombPack) Color() Color  { return bp.color }
func (bp *BombPack) Bombs() int    { return bp.bombs }

// touchedBy reports whether ship covers the pack's center or one of the
// four diagonal probes around it.
func (bp *BombPack) touchedBy(ship *Ship) bool {
	c := bp.Location()
	return ship.HitBy(c.X, c.Y) ||
		ship.HitBy(c.X-bombPackReach, c.Y-bombPackReach) ||
		ship.HitBy(c.X+bombPackReach, c.Y-bombPackReach) ||
		ship.HitBy(c.X+bombPackReach, c.Y+bombPackReach) ||
		ship.HitBy(c.X-bombPackReach, c.Y+bombPackReach)
}
