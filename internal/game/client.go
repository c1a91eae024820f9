package game

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sync/atomic"

	"github.com/segmentio/ksuid"
	"go.uber.org/zap"

	"starfight-server/internal/protocol"
)

type clientState int32

const (
	stateAuthenticating clientState = iota
	stateActive
	stateClosed
)

func (s clientState) String() string {
	switch s {
	case stateAuthenticating:
		return "authenticating"
	case stateActive:
		return "active"
	case stateClosed:
		return "closed"
	}
	return "unknown"
}

// Client is one accepted connection. Its ReadPump goroutine decodes the
// peer's intents; its outbound queue carries everything sent back.
type Client struct {
	game    *Game
	conn    *protocol.Conn
	out     *protocol.Outbound
	log     *zap.SugaredLogger
	session string
	ip      string

	state  atomic.Int32
	player atomic.Pointer[Player]
	failed atomic.Bool
}

func newClient(g *Game, c net.Conn, ip string, log *zap.SugaredLogger) *Client {
	conn := protocol.NewConn(c)
	session := ksuid.New().String()
	return &Client{
		game:    g,
		conn:    conn,
		out:     protocol.NewOutbound(conn),
		log:     log.With("remote", c.RemoteAddr().String(), "session", session),
		session: session,
		ip:      ip,
	}
}

// Player returns the bound player, or nil before login.
func (c *Client) Player() *Player { return c.player.Load() }

func (c *Client) currentState() clientState { return clientState(c.state.Load()) }

// Enqueue queues m. If the writer has failed the connection is closed,
// which ends the read loop and tears the client down.
func (c *Client) Enqueue(m *protocol.Message) error {
	if err := c.out.Enqueue(m); err != nil {
		c.fail(err)
		return err
	}
	return nil
}

// FlushAll wakes the writer; see Enqueue for failures.
func (c *Client) FlushAll() error {
	if err := c.out.FlushAll(); err != nil {
		c.fail(err)
		return err
	}
	return nil
}

func (c *Client) fail(err error) {
	if c.failed.CompareAndSwap(false, true) && !errors.Is(err, protocol.ErrQueueClosed) {
		c.log.Infow("write failed", "err", err)
	}
	c.conn.Close()
}

// ReadPump reads messages until the connection fails or the client is
// rejected, then tears the client down.
func (c *Client) ReadPump() {
	defer c.teardown()
	for {
		r, err := c.conn.ReadMessage()
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) && !c.failed.Load() {
				c.log.Infow("read failed", "state", c.currentState().String(), "err", err)
			}
			return
		}
		if !c.handle(r) {
			return
		}
	}
}

// handle applies one message and reports whether to keep reading.
func (c *Client) handle(r *protocol.Reader) bool {
	kind := r.Kind()
	if c.currentState() == stateAuthenticating {
		if kind != protocol.Login {
			c.log.Warnw("message before login ignored", "kind", protocol.ClientKindName(kind))
			return true
		}
		return c.handleLogin(r)
	}

	p := c.Player()
	switch kind {
	case protocol.Login:
		c.log.Warnw("repeated login ignored")
	case protocol.SetName:
		if name := r.Text(); r.Err() == nil {
			p.SetName(name)
		}
	case protocol.SetTurn:
		if v := r.Byte(); r.Err() == nil {
			p.SetTurn(v)
		}
	case protocol.SetThrust:
		if v := r.Byte(); r.Err() == nil {
			p.SetThrust(v)
		}
	case protocol.FirePhaser:
		c.game.FirePhaser(p)
	case protocol.FireBomb:
		c.game.FireBomb(p)
	case protocol.ResurrectMe:
		c.game.Resurrect(p)
	case protocol.Say:
		if text := r.Text(); r.Err() == nil {
			c.game.Say(p, text)
		}
	default:
		c.game.Metrics.UnknownKinds.Add(1)
		c.log.Warnw("unknown message kind", "kind", int(kind))
		return true
	}
	if err := r.Err(); err != nil {
		c.log.Warnw("malformed message ignored", "kind", protocol.ClientKindName(kind), "err", err)
	}
	return true
}

func (c *Client) handleLogin(r *protocol.Reader) bool {
	version := r.Byte()
	name := r.Text()
	if err := r.Err(); err != nil {
		c.log.Warnw("malformed login", "err", err)
		return false
	}
	if version != protocol.Version {
		c.game.Metrics.BadVersions.Add(1)
		c.game.rec.Event(EventRejected, c.session, noPlayer, name, fmt.Sprintf("version %d", version))
		c.log.Infow("login rejected", "version", version, "name", name)
		if err := c.conn.Send(msgGetLost(versionRejection(version))); err != nil {
			c.log.Debugw("rejection not delivered", "err", err)
		}
		return false
	}
	p := c.game.Login(c, name, c.session)
	c.player.Store(p)
	c.state.Store(int32(stateActive))
	c.log.Infow("player logged in", "id", p.ID(), "name", p.Name())
	return true
}

// teardown removes the player first so nobody else hears from it, then
// stops the connection.
func (c *Client) teardown() {
	c.state.Store(int32(stateClosed))
	if p := c.Player(); p != nil {
		c.game.Logout(c, p)
		c.log.Infow("player left", "id", p.ID(), "name", p.Name())
	}
	c.conn.Close()
	c.out.Close()
	c.game.Hub.TrackDisconnect(c.ip)
}
