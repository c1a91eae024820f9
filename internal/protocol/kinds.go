package protocol

// Version is the protocol version a client must present in LOGIN.
const Version = 11

// Kind is the one-byte tag at the start of every message.
type Kind int8

// Client -> Server message kinds
const (
	Login       Kind = 0
	SetName     Kind = 1
	SetTurn     Kind = 2
	SetThrust   Kind = 3
	FirePhaser  Kind = 4
	FireBomb    Kind = 5
	ResurrectMe Kind = 6
	Say         Kind = 7
)

// Server -> Client message kinds
const (
	GetLost             Kind = -1
	SetYourID           Kind = 0
	NewPlayer           Kind = 1
	RemovePlayer        Kind = 2
	SetPlayerName       Kind = 3
	SetPlayerPosition   Kind = 4
	SetPlayerScore      Kind = 5
	SetPlayerStatus     Kind = 6
	PlayerHit           Kind = 7
	PlayerDies          Kind = 8
	PlayerResurrects    Kind = 9
	NewStar             Kind = 10
	NewPhaser           Kind = 11
	RemovePhaser        Kind = 12
	SetPhaserPosition   Kind = 13
	NewBomb             Kind = 14
	RemoveBomb          Kind = 15
	SetBombPosition     Kind = 16
	NewBombPack         Kind = 17
	RemoveBombPack      Kind = 18
	SetBombPackPosition Kind = 19
	NewExplosion        Kind = 20
	RemoveExplosion     Kind = 21
	SetExplosionLevel   Kind = 22
	PlayerSays          Kind = 23
)

// Weapon identifies what caused a hit or death.
type Weapon int8

const (
	WeaponNone   Weapon = 0
	WeaponPhaser Weapon = 1
	WeaponBomb   Weapon = 2
)

func (w Weapon) String() string {
	switch w {
	case WeaponPhaser:
		return "phaser"
	case WeaponBomb:
		return "bomb"
	}
	return "magic"
}

var clientKindNames = map[Kind]string{
	Login:       "LOGIN",
	SetName:     "SET_NAME",
	SetTurn:     "SET_TURN",
	SetThrust:   "SET_THRUST",
	FirePhaser:  "FIRE_PHASER",
	FireBomb:    "FIRE_BOMB",
	ResurrectMe: "RESURRECT_ME",
	Say:         "SAY",
}

// ClientKindName names a client -> server kind for logs.
func ClientKindName(k Kind) string {
	if n, ok := clientKindNames[k]; ok {
		return n
	}
	return "UNKNOWN"
}
