package game

import (
	"fmt"

	"starfight-server/internal/protocol"
)

// noPlayer is sent where a player id is expected but nobody is meant.
const noPlayer int16 = -1

func playerID(p *Player) int16 {
	if p == nil {
		return noPlayer
	}
	return p.id
}

// versionRejection is the human-readable GET_LOST reason for a client
// speaking the wrong protocol version.
func versionRejection(version int8) string {
	s := fmt.Sprintf("Server says: Wrong protocol version: You want #%d, I talk #%d.\n    ",
		version, protocol.Version)
	if version < protocol.Version {
		return s + "You're outdated, son."
	}
	return s + "I'm too old for this shit."
}

func msgGetLost(reason string) *protocol.Message {
	return protocol.NewMessage(protocol.GetLost).PutString(reason)
}

func msgSetYourID(id int16) *protocol.Message {
	return protocol.NewMessage(protocol.SetYourID).PutShort(id)
}

func msgNewPlayer(p *Player) *protocol.Message {
	loc := p.Location()
	return protocol.NewMessage(protocol.NewPlayer).
		PutShort(p.id).
		PutString(p.Name()).
		PutShort(int16(loc.X)).
		PutShort(int16(loc.Y)).
		PutShort(DirToShort(p.Direction())).
		PutInt(p.Color().Wire()).
		PutBool(p.Alive())
}

func msgRemovePlayer(p *Player) *protocol.Message {
	return protocol.NewMessage(protocol.RemovePlayer).PutShort(p.id)
}

func msgSetPlayerName(p *Player, name string) *protocol.Message {
	return protocol.NewMessage(protocol.SetPlayerName).PutShort(p.id).PutString(name)
}

func msgSetPlayerPosition(p *Player) *protocol.Message {
	loc := p.Location()
	return protocol.NewMessage(protocol.SetPlayerPosition).
		PutShort(p.id).
		PutShort(int16(loc.X)).
		PutShort(int16(loc.Y)).
		PutShort(DirToShort(p.Direction()))
}

func msgSetPlayerScore(p *Player) *protocol.Message {
	score, anti := p.Score()
	return protocol.NewMessage(protocol.SetPlayerScore).
		PutShort(p.id).
		PutShort(int16(score)).
		PutShort(int16(anti))
}

// msgSetPlayerStatus carries no id: it always describes the receiver.
func msgSetPlayerStatus(p *Player) *protocol.Message {
	damage, heat, bombs := p.Status()
	return protocol.NewMessage(protocol.SetPlayerStatus).
		PutByte(int8(damage)).
		PutByte(int8(heat)).
		PutByte(int8(bombs))
}

func msgPlayerHit(victim, hitter *Player, weapon protocol.Weapon) *protocol.Message {
	return protocol.NewMessage(protocol.PlayerHit).
		PutShort(victim.id).
		PutShort(playerID(hitter)).
		PutByte(int8(weapon))
}

func msgPlayerDies(victim, killer *Player, weapon protocol.Weapon) *protocol.Message {
	return protocol.NewMessage(protocol.PlayerDies).
		PutShort(victim.id).
		PutShort(playerID(killer)).
		PutByte(int8(weapon))
}

func msgPlayerResurrects(p *Player) *protocol.Message {
	loc := p.Location()
	return protocol.NewMessage(protocol.PlayerResurrects).
		PutShort(p.id).
		PutShort(int16(loc.X)).
		PutShort(int16(loc.Y)).
		PutShort(DirToShort(p.Direction()))
}

func msgPlayerSays(p *Player, text string) *protocol.Message {
	return protocol.NewMessage(protocol.PlayerSays).PutShort(p.id).PutString(text)
}

func msgNewStar(s *Star) *protocol.Message {
	loc := s.Location()
	return protocol.NewMessage(protocol.NewStar).
		PutShort(int16(loc.X)).
		PutShort(int16(loc.Y)).
		PutInt(s.Color.Wire())
}

func msgNewPhaser(p *Phaser) *protocol.Message {
	loc := p.Location()
	return protocol.NewMessage(protocol.NewPhaser).
		PutShort(p.id).
		PutShort(playerID(p.owner)).
		PutShort(int16(loc.X)).
		PutShort(int16(loc.Y)).
		PutShort(DirToShort(p.Direction())).
		PutInt(p.color.Wire())
}

func msgRemovePhaser(p *Phaser) *protocol.Message {
	return protocol.NewMessage(protocol.RemovePhaser).PutShort(p.id)
}

func msgSetPhaserPosition(p *Phaser) *protocol.Message {
	loc := p.Location()
	return protocol.NewMessage(protocol.SetPhaserPosition).
		PutShort(p.id).
		PutShort(int16(loc.X)).
		PutShort(int16(loc.Y))
}

func msgNewBomb(b *Bomb) *protocol.Message {
	loc := b.Location()
	return protocol.NewMessage(protocol.NewBomb).
		PutShort(b.id).
		PutShort(playerID(b.owner)).
		PutShort(int16(loc.X)).
		PutShort(int16(loc.Y)).
		PutShort(DirToShort(b.Direction())).
		PutInt(b.color.Wire())
}

func msgRemoveBomb(b *Bomb) *protocol.Message {
	return protocol.NewMessage(protocol.RemoveBomb).PutShort(b.id)
}

func msgSetBombPosition(b *Bomb) *protocol.Message {
	loc := b.Location()
	return protocol.NewMessage(protocol.SetBombPosition).
		PutShort(b.id).
		PutShort(int16(loc.X)).
		PutShort(int16(loc.Y))
}

func msgNewBombPack(bp *BombPack) *protocol.Message {
	loc := bp.Location()
	return protocol.NewMessage(protocol.NewBombPack).
		PutShort(bp.id).
		PutShort(int16(loc.X)).
		PutShort(int16(loc.Y)).
		PutShort(DirToShort(bp.Direction())).
		PutInt(bp.color.Wire())
}

func msgRemoveBombPack(bp *BombPack) *protocol.Message {
	return protocol.NewMessage(protocol.RemoveBombPack).PutShort(bp.id)
}

func msgNewExplosion(e *Explosion) *protocol.Message {
	loc := e.Location()
	level, maxLevel := e.Level()
	return protocol.NewMessage(protocol.NewExplosion).
		PutShort(e.id).
		PutShort(int16(loc.X)).
		PutShort(int16(loc.Y)).
		PutByte(level).
		PutByte(maxLevel)
}

func msgRemoveExplosion(e *Explosion) *protocol.Message {
	return protocol.NewMessage(protocol.RemoveExplosion).PutShort(e.id)
}

func msgSetExplosionLevel(e *Explosion, level int8) *protocol.Message {
	return protocol.NewMessage(protocol.SetExplosionLevel).PutShort(e.id).PutByte(level)
}

// worldSnapshot lists what a newly logged-in client needs to mirror the
// world: scenery, effects, projectiles, pickups, then every player with
// its score.
func worldSnapshot(w *World) []*protocol.Message {
	var out []*protocol.Message
	for _, s := range w.Stars() {
		out = append(out, msgNewStar(s))
	}
	for _, e := range w.Explosions() {
		out = append(out, msgNewExplosion(e))
	}
	for _, p := range w.Phasers() {
		out = append(out, msgNewPhaser(p))
	}
	for _, b := range w.Bombs() {
		out = append(out, msgNewBomb(b))
	}
	for _, bp := range w.BombPacks() {
		out = append(out, msgNewBombPack(bp))
	}
	for _, p := range w.Players() {
		out = append(out, msgNewPlayer(p), msgSetPlayerScore(p))
	}
	return out
}
