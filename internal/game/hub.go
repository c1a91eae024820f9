package game

import (
	"sync"

	"golang.org/x/time/rate"

	"starfight-server/internal/protocol"
)

const (
	maxConnsPerIP = 5
	maxTotalConns = 1000
	maxLimiters   = 4096
)

// member is a connection that receives the game's fan-out.
type member interface {
	Enqueue(m *protocol.Message) error
	FlushAll() error
	Player() *Player
}

// Limits bounds how many connections the server keeps and how fast one
// address may open new ones.
type Limits struct {
	MaxConns      int
	MaxConnsPerIP int
	AcceptRate    float64 // new connections per second and address
	AcceptBurst   int
}

// DefaultLimits returns the limits used when none are configured.
func DefaultLimits() Limits {
	return Limits{
		MaxConns:      maxTotalConns,
		MaxConnsPerIP: maxConnsPerIP,
		AcceptRate:    1,
		AcceptBurst:   3,
	}
}

// Hub mirrors world events to every logged-in connection and tracks
// connection limits.
//
// Additions and removals are announced while holding the hub lock in
// read mode; Join takes it in write mode. A newcomer therefore either
// sees an entity in its snapshot or receives its creation event, never
// both and never neither.
type Hub struct {
	world *World

	mu      sync.RWMutex
	members map[member]struct{}

	// Connection limiting (accessed from the acceptor)
	connMu     sync.Mutex
	limits     Limits
	ipConns    map[string]int
	totalConns int
	limiters   map[string]*rate.Limiter
}

// NewHub creates a Hub broadcasting changes of w.
func NewHub(w *World, limits Limits) *Hub {
	return &Hub{
		world:    w,
		members:  make(map[member]struct{}),
		limits:   limits,
		ipConns:  make(map[string]int),
		limiters: make(map[string]*rate.Limiter),
	}
}

// Join binds p to the world. Under the hub lock it queues the new id and
// a snapshot for m, registers p and announces it to everyone, m included.
// m then gets p's private status.
func (h *Hub) Join(m member, p *Player) {
	h.mu.Lock()
	defer h.mu.Unlock()
	m.Enqueue(msgSetYourID(p.id))
	for _, msg := range worldSnapshot(h.world) {
		m.Enqueue(msg)
	}
	h.world.AddPlayer(p)
	h.members[m] = struct{}{}
	h.broadcastLocked(msgNewPlayer(p))
	m.Enqueue(msgSetPlayerStatus(p))
}

// Leave stops the fan-out to m and, if p is still registered, removes it
// and announces the removal. It reports whether p was removed.
func (h *Hub) Leave(m member, p *Player) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.members, m)
	if p == nil || !h.world.RemovePlayer(p) {
		return false
	}
	h.broadcastLocked(msgRemovePlayer(p))
	return true
}

// Announce applies a registry change and broadcasts the matching event
// as one step with respect to Join.
func (h *Hub) Announce(change func(), m *protocol.Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if change != nil {
		change()
	}
	h.broadcastLocked(m)
}

// Broadcast queues m for every member.
func (h *Hub) Broadcast(m *protocol.Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	h.broadcastLocked(m)
}

func (h *Hub) broadcastLocked(m *protocol.Message) {
	for c := range h.members {
		c.Enqueue(m)
	}
}

// BroadcastInView queues m for the members whose ship can see at.
func (h *Hub) BroadcastInView(m *protocol.Message, at Point) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.members {
		if p := c.Player(); p != nil && p.InView(at) {
			c.Enqueue(m)
		}
	}
}

// FlushAll asks every member to write out what it has queued.
func (h *Hub) FlushAll() {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.members {
		c.FlushAll()
	}
}

// MemberCount returns the number of logged-in connections.
func (h *Hub) MemberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.members)
}

// Allow applies the per-address accept rate.
func (h *Hub) Allow(ip string) bool {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	l, ok := h.limiters[ip]
	if !ok {
		if len(h.limiters) >= maxLimiters {
			h.pruneLimitersLocked()
		}
		l = rate.NewLimiter(rate.Limit(h.limits.AcceptRate), h.limits.AcceptBurst)
		h.limiters[ip] = l
	}
	return l.Allow()
}

// pruneLimitersLocked forgets addresses with no open connection whose
// bucket has refilled, since a fresh limiter would behave the same.
func (h *Hub) pruneLimitersLocked() {
	for ip, l := range h.limiters {
		if h.ipConns[ip] == 0 && l.Tokens() >= float64(h.limits.AcceptBurst) {
			delete(h.limiters, ip)
		}
	}
}

func (h *Hub) CanAccept(ip string) bool {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	if h.totalConns >= h.limits.MaxConns {
		return false
	}
	if h.ipConns[ip] >= h.limits.MaxConnsPerIP {
		return false
	}
	return true
}

func (h *Hub) TrackConnect(ip string) {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	h.ipConns[ip]++
	h.totalConns++
}

func (h *Hub) TrackDisconnect(ip string) {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	h.ipConns[ip]--
	if h.ipConns[ip] <= 0 {
		delete(h.ipConns, ip)
	}
	h.totalConns--
}

// TotalConns returns the tracked connection count
func (h *Hub) TotalConns() int {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	return h.totalConns
}
