package game

import "starfight-server/internal/protocol"

// smallExplosionDamage is the smallest non-lethal hit that still blows
// something off the hull.
const smallExplosionDamage = 25

// applyHit resolves one confirmed hit of victim by attacker, who may be
// nil or already gone.
func (u *Updater) applyHit(victim, attacker *Player, weapon protocol.Weapon, damage int) {
	u.hub.Broadcast(msgPlayerHit(victim, attacker, weapon))
	if victim.addDamage(damage) >= MaxDamage {
		u.kill(victim, attacker, weapon)
	} else if damage >= smallExplosionDamage {
		u.explode(victim.Location(), explosionSmall)
	}
	u.hub.Broadcast(msgSetPlayerScore(victim))
	victim.send(msgSetPlayerStatus(victim))
}

func (u *Updater) kill(victim, attacker *Player, weapon protocol.Weapon) {
	bombs := victim.die()
	u.hub.Broadcast(msgPlayerDies(victim, attacker, weapon))
	loc := victim.Location()
	u.explode(loc, explosionLarge)

	if attacker != nil {
		attacker.incScore()
		if p, ok := u.world.FindPlayer(attacker.id); ok && p == attacker {
			u.hub.Broadcast(msgSetPlayerScore(attacker))
		}
		u.rec.Event(EventKill, attacker.session, attacker.id, attacker.Name(), victim.Name())
	}
	u.rec.Event(EventDeath, victim.session, victim.id, victim.Name(), weapon.String())

	if bombs > 0 {
		bp := NewBombPack(u.world.NextBombPackID(), loc, victim.Direction(), victim.Color(), bombs)
		u.hub.Announce(func() { u.world.AddBombPack(bp) }, msgNewBombPack(bp))
	}
	u.log.Debugw("player died", "victim", victim.id, "killer", playerID(attacker),
		"weapon", weapon.String(), "bombs", bombs)
}

// explode starts an explosion animation running to maxLevel at at.
func (u *Updater) explode(at Point, maxLevel int8) {
	e := NewExplosion(u.world.NextExplosionID(), at, 0, maxLevel)
	u.hub.Announce(func() { u.world.AddExplosion(e) }, msgNewExplosion(e))
}
