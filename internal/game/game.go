package game

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const (
	phaserHeatMin  = 1
	phaserHeatSpan = 3
)

// Options configures a Game.
type Options struct {
	Width, Height int
	Rate          int // ticks per second
	Limits        Limits
	Recorder      Recorder // nil disables the play log
	Logger        *zap.SugaredLogger
}

// Game ties the shared world to its fan-out and its tick loop. Client
// handlers call its action methods; the Updater is the only other writer.
type Game struct {
	World   *World
	Palette *Palette
	Hub     *Hub
	Metrics *Metrics

	rec     Recorder
	log     *zap.SugaredLogger
	updater *Updater
}

// New creates a Game with a fresh world.
func New(opts Options) *Game {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	rec := opts.Recorder
	if rec == nil {
		rec = nopRecorder{}
	}
	limits := opts.Limits
	if limits == (Limits{}) {
		limits = DefaultLimits()
	}
	w := NewWorld(opts.Width, opts.Height)
	g := &Game{
		World:   w,
		Palette: NewPalette(),
		Hub:     NewHub(w, limits),
		Metrics: &Metrics{},
		rec:     rec,
		log:     log,
	}
	g.updater = newUpdater(w, g.Hub, opts.Rate, rec, g.Metrics, log.Named("updater"))
	return g
}

// Run drives the simulation until ctx is done.
func (g *Game) Run(ctx context.Context) {
	g.log.Infow("simulation started", "rate", g.updater.rate,
		"width", g.World.Width(), "height", g.World.Height(), "stars", len(g.World.Stars()))
	g.updater.Run(ctx)
	g.log.Infow("simulation stopped", "ticks", g.updater.tick)
}

// Tick runs a single simulation step outside of Run.
func (g *Game) Tick() { g.updater.Tick() }

// Login creates a player for m at a free spot and joins it to the world.
func (g *Game) Login(m member, name, session string) *Player {
	p := NewPlayer(g.World.NextPlayerID(), name, g.Palette.Acquire(), m)
	p.session = session
	p.ship.place(g.World.FindSpawnLocation(), randomDirection())
	g.Hub.Join(m, p)
	g.Metrics.Logins.Add(1)
	g.rec.Event(EventLogin, session, p.id, p.Name(), "")
	return p
}

// Logout removes p and gives back its color. It is safe to call more than
// once.
func (g *Game) Logout(m member, p *Player) {
	if !g.Hub.Leave(m, p) {
		return
	}
	g.Palette.Release(p.Color())
	score, anti := p.Score()
	g.rec.Event(EventLogout, p.session, p.id, p.Name(), "")
	g.rec.Session(p.Name(), score, anti, time.Since(p.joinedAt))
}

// FirePhaser shoots from p's muzzle. At most one phaser per player and
// tick; an overheated or dead ship cannot fire.
func (g *Game) FirePhaser(p *Player) bool {
	if !p.Alive() || p.Overheated() || !p.phaserOK.CompareAndSwap(true, false) {
		return false
	}
	at, dir := p.ship.Muzzle()
	ph := NewPhaser(g.World.NextPhaserID(), p, at, dir)
	p.heatAfterShot(randInt(phaserHeatMin, phaserHeatSpan))
	g.Hub.Announce(func() { g.World.AddPhaser(ph) }, msgNewPhaser(ph))
	p.send(msgSetPlayerStatus(p))
	return true
}

// FireBomb launches one of p's bombs.
func (g *Game) FireBomb(p *Player) bool {
	if !p.Alive() || !p.takeBomb() {
		return false
	}
	at, dir := p.ship.Muzzle()
	b := NewBomb(g.World.NextBombID(), p, at, dir, p.Color())
	g.Hub.Announce(func() { g.World.AddBomb(b) }, msgNewBomb(b))
	p.send(msgSetPlayerStatus(p))
	return true
}

// Resurrect brings a dead p back at a fresh spawn point.
func (g *Game) Resurrect(p *Player) bool {
	if !p.resurrect(g.World.FindSpawnLocation(), randomDirection()) {
		return false
	}
	g.Hub.Broadcast(msgPlayerResurrects(p))
	p.send(msgSetPlayerStatus(p))
	return true
}

// Say relays text from p to everyone as is.
func (g *Game) Say(p *Player, text string) {
	g.Hub.Broadcast(msgPlayerSays(p, text))
	g.rec.Event(EventSay, p.session, p.id, p.Name(), text)
}
