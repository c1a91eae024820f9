package game

import (
	"context"
	"time"

	"go.uber.org/zap"

	"starfight-server/internal/protocol"
)

// DefaultRate is the default number of ticks per second.
const DefaultRate = 15

const (
	recoverDamage   = 1
	recoverHeatMin  = 5
	recoverHeatSpan = 7
)

// Updater is the single goroutine that advances the world. Each tick it
// moves everything, resolves hits, and then flushes every connection once.
type Updater struct {
	world   *World
	hub     *Hub
	rec     Recorder
	log     *zap.SugaredLogger
	metrics *Metrics

	rate   int
	period time.Duration
	tick   uint64

	// Living ships at the start of the tick, indexed by grid.
	grid  *spatialGrid
	ships []*Player
	buf   []int
}

func newUpdater(w *World, hub *Hub, rate int, rec Recorder, m *Metrics, log *zap.SugaredLogger) *Updater {
	if rate <= 0 {
		rate = DefaultRate
	}
	return &Updater{
		world:   w,
		hub:     hub,
		rec:     rec,
		log:     log,
		metrics: m,
		rate:    rate,
		period:  time.Second / time.Duration(rate),
		grid:    newSpatialGrid(w.Width(), w.Height()),
	}
}

// Run ticks until ctx is done. A tick that overruns the period is
// followed immediately by the next one; lost time is not made up.
func (u *Updater) Run(ctx context.Context) {
	timer := time.NewTimer(u.period)
	defer timer.Stop()
	for {
		start := time.Now()
		u.Tick()
		elapsed := time.Since(start)
		u.metrics.AddTick(elapsed.Nanoseconds())

		wait := u.period - elapsed
		if wait <= 0 {
			u.metrics.Overruns.Add(1)
			u.log.Debugw("tick overrun", "tick", u.tick, "elapsed", elapsed)
			if ctx.Err() != nil {
				return
			}
			continue
		}
		timer.Reset(wait)
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
	}
}

// Tick runs one simulation step.
func (u *Updater) Tick() {
	u.tick++
	u.indexShips()
	u.updateExplosions()
	u.updatePhasers()
	u.updateBombs()
	u.updateBombPacks()
	u.updatePlayers()
	if u.tick%uint64(u.rate) == 0 {
		u.recoverPlayers()
	}
	u.hub.FlushAll()
}

// guard runs one entity's update so that a panic only loses that entity's
// step for this tick.
func (u *Updater) guard(kind EntityKind, id int16, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			u.metrics.Recovered.Add(1)
			u.log.Errorw("entity update panicked", "kind", kind.String(), "id", id, "panic", r)
		}
	}()
	fn()
}

func (u *Updater) indexShips() {
	u.grid.clear()
	u.ships = u.ships[:0]
	for _, p := range u.world.Players() {
		if !p.Alive() {
			continue
		}
		u.grid.insert(p.ship.Bounds(), len(u.ships))
		u.ships = append(u.ships, p)
	}
}

// firstHit returns the first living ship, in player order, that seg
// passes through. The owner is never hit by its own shots.
func (u *Updater) firstHit(seg segment, owner *Player) *Player {
	u.buf = u.grid.query(seg.box(), u.buf)
	for _, i := range u.buf {
		p := u.ships[i]
		if p == owner || !p.Alive() {
			continue
		}
		if seg.hits(p.ship) {
			return p
		}
	}
	return nil
}

func (u *Updater) updateExplosions() {
	for _, e := range u.world.Explosions() {
		u.guard(KindExplosion, e.id, func() {
			level, done := e.advance()
			if done {
				u.hub.Announce(func() { u.world.RemoveExplosion(e) }, msgRemoveExplosion(e))
				return
			}
			u.hub.Broadcast(msgSetExplosionLevel(e, level))
		})
	}
}

func (u *Updater) updatePhasers() {
	width, height := u.world.Width(), u.world.Height()
	for _, ph := range u.world.Phasers() {
		u.guard(KindPhaser, ph.id, func() {
			seg, spent := ph.step(width, height)
			if !spent {
				if victim := u.firstHit(seg, ph.owner); victim != nil {
					u.applyHit(victim, ph.owner, protocol.WeaponPhaser, phaserDamage())
					spent = true
				}
			}
			if spent {
				u.hub.Announce(func() { u.world.RemovePhaser(ph) }, msgRemovePhaser(ph))
				return
			}
			u.hub.BroadcastInView(msgSetPhaserPosition(ph), ph.Location())
		})
	}
}

func (u *Updater) updateBombs() {
	width, height := u.world.Width(), u.world.Height()
	for _, b := range u.world.Bombs() {
		u.guard(KindBomb, b.id, func() {
			if target, ok := u.world.ClosestLivingEnemy(b.owner, b.Location()); ok {
				b.steer(target.Location())
			}
			seg, spent := b.step(width, height)
			if !spent {
				if victim := u.firstHit(seg, b.owner); victim != nil {
					u.applyHit(victim, b.owner, protocol.WeaponBomb, bombDamage())
					spent = true
				}
			}
			if spent {
				u.hub.Announce(func() { u.world.RemoveBomb(b) }, msgRemoveBomb(b))
				return
			}
			u.hub.BroadcastInView(msgSetBombPosition(b), b.Location())
		})
	}
}

func (u *Updater) updateBombPacks() {
	for _, bp := range u.world.BombPacks() {
		u.guard(KindBombPack, bp.id, func() {
			r := bp.Bounds()
			r.X -= bombPackReach
			r.Y -= bombPackReach
			r.W += 2 * bombPackReach
			r.H += 2 * bombPackReach
			u.buf = u.grid.query(r, u.buf)
			for _, i := range u.buf {
				p := u.ships[i]
				if !p.Alive() || !bp.touchedBy(p.ship) {
					continue
				}
				p.addBombs(bp.bombs)
				p.send(msgSetPlayerStatus(p))
				u.hub.Announce(func() { u.world.RemoveBombPack(bp) }, msgRemoveBombPack(bp))
				return
			}
		})
	}
}

func (u *Updater) updatePlayers() {
	width, height := u.world.Width(), u.world.Height()
	for _, p := range u.world.Players() {
		u.guard(KindShip, p.id, func() {
			if name, changed := p.takeNameChange(); changed {
				u.hub.Broadcast(msgSetPlayerName(p, name))
			}
			if p.update(width, height) {
				u.hub.Broadcast(msgSetPlayerPosition(p))
			}
			p.setPhaserReady(true)
		})
	}
}

// recoverPlayers applies the once-a-second repair and tells each living
// player its new status.
func (u *Updater) recoverPlayers() {
	for _, p := range u.world.Players() {
		u.guard(KindShip, p.id, func() {
			if p.repair(recoverDamage, randInt(recoverHeatMin, recoverHeatSpan)) {
				p.send(msgSetPlayerStatus(p))
			}
		})
	}
}
