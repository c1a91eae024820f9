package game

import (
	"math"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"starfight-server/internal/protocol"
)

const (
	MaxNameLen   = 15
	MaxDamage    = 100
	MaxHeat      = 100
	MaxBombs     = 50
	StartBombs   = 5
	OverheatHeat = 75

	playerMaxSpeed  = 8.0
	playerThrust    = 1.5
	playerTurnSteps = 32
	driftDecay      = 1.03
	driftSnap       = 0.25
	viewLimitWidth  = 600/2 + 30
	viewLimitHeight = 600/2 + 30
)

// Sink accepts messages for one connection.
type Sink interface {
	Enqueue(m *protocol.Message) error
}

// Player is one logged-in pilot and its ship.
//
// Intent fields (turn, thrust, phaser permission) are written by the
// player's connection and read by the Updater without further
// coordination; everything else is guarded by mu.
type Player struct {
	id      int16
	ship    *Ship
	sink    Sink
	session string // connection session id, for the event log

	turn     atomic.Int32
	thrust   atomic.Int32
	phaserOK atomic.Bool
	joinedAt time.Time

	mu        sync.Mutex
	name      string
	nameDirty bool
	score     int
	antiScore int
	alive     bool
	damage    int
	heat      int
	bombs     int
	driftX    float64
	driftY    float64
}

// NewPlayer creates a living player carrying the starting bombs.
func NewPlayer(id int16, name string, color Color, sink Sink) *Player {
	p := &Player{
		id:       id,
		sink:     sink,
		alive:    true,
		bombs:    StartBombs,
		joinedAt: time.Now(),
	}
	p.name = truncateName(name)
	p.ship = newShip(p, color)
	p.phaserOK.Store(true)
	return p
}

func truncateName(name string) string {
	if utf8.RuneCountInString(name) <= MaxNameLen {
		return name
	}
	r := []rune(name)
	return string(r[:MaxNameLen])
}

func (p *Player) ID() int16           { return p.id }
func (p *Player) Ship() *Ship         { return p.ship }
func (p *Player) Color() Color        { return p.ship.color }
func (p *Player) JoinedAt() time.Time { return p.joinedAt }

func (p *Player) Location() Point    { return p.ship.Location() }
func (p *Player) Direction() float64 { return p.ship.Direction() }

func (p *Player) Name() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.name
}

// SetName renames the player. The change is announced on the next tick.
func (p *Player) SetName(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.name = truncateName(name)
	p.nameDirty = true
}

func (p *Player) takeNameChange() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	dirty := p.nameDirty
	p.nameDirty = false
	return p.name, dirty
}

func (p *Player) SetTurn(v int8)   { p.turn.Store(int32(clampIntent(v))) }
func (p *Player) SetThrust(v int8) { p.thrust.Store(int32(clampIntent(v))) }
func (p *Player) Turn() int8       { return int8(p.turn.Load()) }
func (p *Player) Thrust() int8     { return int8(p.thrust.Load()) }

// PhaserReady reports whether a phaser may still be fired this tick.
func (p *Player) PhaserReady() bool { return p.phaserOK.Load() }

func (p *Player) setPhaserReady(ok bool) { p.phaserOK.Store(ok) }

func (p *Player) Alive() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.alive
}

// Score returns kills and deaths.
func (p *Player) Score() (score, antiScore int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.score, p.antiScore
}

func (p *Player) incScore() {
	p.mu.Lock()
	p.score++
	p.mu.Unlock()
}

// Status returns the private damage, heat and bomb counters.
func (p *Player) Status() (damage, heat, bombs int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.damage, p.heat, p.bombs
}

func (p *Player) Overheated() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.heat > OverheatHeat
}

func (p *Player) addDamage(n int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.damage = Clamp(p.damage+n, 0, MaxDamage)
	return p.damage
}

func (p *Player) addHeat(n int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.heat = Clamp(p.heat+n, 0, MaxHeat)
	return p.heat
}

func (p *Player) addBombs(n int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bombs = Clamp(p.bombs+n, 0, MaxBombs)
	return p.bombs
}

// heatAfterShot adds n to the heat and saturates it once overheated.
func (p *Player) heatAfterShot(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.heat = Clamp(p.heat+n, 0, MaxHeat)
	if p.heat > OverheatHeat {
		p.heat = MaxHeat
	}
}

// takeBomb removes one bomb and reports whether there was one.
func (p *Player) takeBomb() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bombs == 0 {
		return false
	}
	p.bombs--
	return true
}

// repair applies the passive once-a-second recovery.
func (p *Player) repair(damage, heat int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.alive {
		return false
	}
	p.damage = Clamp(p.damage-damage, 0, MaxDamage)
	p.heat = Clamp(p.heat-heat, 0, MaxHeat)
	return true
}

// die marks the player dead and stops the ship. It returns the bombs the
// player was carrying.
func (p *Player) die() int {
	p.mu.Lock()
	p.alive = false
	p.antiScore++
	p.driftX, p.driftY = 0, 0
	bombs := p.bombs
	p.mu.Unlock()
	p.turn.Store(0)
	p.thrust.Store(0)
	return bombs
}

// resurrect brings a dead player back at loc. It reports false if the
// player is alive.
func (p *Player) resurrect(loc Point, dir float64) bool {
	p.mu.Lock()
	if p.alive {
		p.mu.Unlock()
		return false
	}
	p.alive = true
	p.damage = 0
	p.heat = 0
	p.bombs = StartBombs
	p.driftX, p.driftY = 0, 0
	p.mu.Unlock()
	p.ship.place(loc, dir)
	return true
}

// update advances turning and drifting by one tick inside a width x height
// world. It reports whether the ship moved or turned.
func (p *Player) update(width, height int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.alive {
		return false
	}
	turn := float64(p.Turn())
	thrust := float64(p.Thrust())
	changed := false

	dir := p.ship.Direction()
	if turn != 0 {
		dir = NormalizeAngle(dir + turn*fullCircle/playerTurnSteps)
		changed = true
	}
	if thrust != 0 {
		p.driftX += playerThrust * thrust * math.Cos(dir)
		p.driftY -= playerThrust * thrust * math.Sin(dir)
		if speed := math.Hypot(p.driftX, p.driftY); speed > playerMaxSpeed {
			p.driftX *= playerMaxSpeed / speed
			p.driftY *= playerMaxSpeed / speed
		}
	}
	if p.driftX == 0 && p.driftY == 0 {
		if changed {
			p.ship.SetDirection(dir)
		}
		return changed
	}
	if thrust == 0 {
		p.driftX /= driftDecay
		if math.Abs(p.driftX) < driftSnap {
			p.driftX = 0
		}
		p.driftY /= driftDecay
		if math.Abs(p.driftY) < driftSnap {
			p.driftY = 0
		}
	}
	p.ship.drift(p.driftX, p.driftY, dir, width, height)
	return true
}

// InView reports whether loc is on this player's screen.
func (p *Player) InView(loc Point) bool {
	me := p.Location()
	return loc.X >= me.X-viewLimitWidth && loc.X <= me.X+viewLimitWidth &&
		loc.Y >= me.Y-viewLimitHeight && loc.Y <= me.Y+viewLimitHeight
}

// send queues m on the player's own connection.
func (p *Player) send(m *protocol.Message) {
	if p.sink != nil {
		p.sink.Enqueue(m)
	}
}

// Ship is the collidable body of a player.
type Ship struct {
	body
	owner *Player
	color Color
	hull  Polygon // hull at the current position and heading
}

// shipShape is the unrotated hull, nose along +x.
var shipShape = Polygon{
	Xs: []int{13, 11, 3, 0, -5, -4, -10, -10, -4, -5, 0, 3, 11},
	Ys: []int{0, 1, 1, 8, 10, 3, 3, -3, -3, -10, -8, -1, -2},
}

// muzzleOffset is how far ahead of the ship's center shots appear.
const muzzleOffset = 13

func newShip(owner *Player, c Color) *Ship {
	s := &Ship{owner: owner, color: c}
	s.init(owner.id, 0, 0, 0, 0, 0)
	s.hull = shipShape.Transform(Point{}, 0)
	return s
}

func (*Ship) Kind() EntityKind { return KindShip }

func (s *Ship) Owner() *Player { return s.owner }

func (s *Ship) Color() Color { return s.color }

// place moves the ship without drift, e.g. on spawn.
func (s *Ship) place(loc Point, dir float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.x, s.y, s.dir = float64(loc.X), float64(loc.Y), dir
	s.hull = shipShape.Transform(loc, dir)
}

func (s *Ship) SetLocation(p Point) {
	s.place(p, s.Direction())
}

func (s *Ship) SetDirection(dir float64) {
	s.place(s.Location(), dir)
}

// drift moves by (dx,dy), clamped to the world, and turns to dir.
func (s *Ship) drift(dx, dy, dir float64, width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.x = math.Max(0, math.Min(s.x+dx, float64(width-1)))
	s.y = math.Max(0, math.Min(s.y+dy, float64(height-1)))
	s.dir = dir
	s.hull = shipShape.Transform(Point{int(s.x + 0.5), int(s.y + 0.5)}, dir)
}

// Bounds is the box around the rotated hull.
func (s *Ship) Bounds() Rect {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hull.Bounds()
}

// HitBy reports whether (x,y) is inside the hull.
func (s *Ship) HitBy(x, y int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hull.Bounds().Contains(x, y) && s.hull.Contains(x, y)
}

// Muzzle is where shots fired along dir start.
func (s *Ship) Muzzle() (Point, float64) {
	loc, dir := s.Location(), s.Direction()
	loc.X += int(muzzleOffset*math.Cos(dir) + 0.5)
	loc.Y -= int(muzzleOffset*math.Sin(dir) + 0.5)
	return loc, dir
}
