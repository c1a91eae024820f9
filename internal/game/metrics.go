package game

import "sync/atomic"

// Metrics records runtime counters of the simulation and the acceptor.
type Metrics struct {
	TickCount    atomic.Int64
	TotalTickNs  atomic.Int64
	Overruns     atomic.Int64 // ticks that took longer than the period
	Recovered    atomic.Int64 // per-entity panics caught by the Updater
	Accepted     atomic.Int64
	Rejected     atomic.Int64 // refused by connection or rate limits
	Logins       atomic.Int64
	BadVersions  atomic.Int64
	UnknownKinds atomic.Int64
}

func (m *Metrics) AddTick(ns int64) {
	m.TickCount.Add(1)
	m.TotalTickNs.Add(ns)
}

// Snapshot returns a read-only copy for HTTP output.
func (m *Metrics) Snapshot() map[string]any {
	tick := m.TickCount.Load()
	total := m.TotalTickNs.Load()
	var avgMs float64
	if tick > 0 {
		avgMs = float64(total) / float64(tick) / 1e6
	}
	return map[string]any{
		"tick_count":    tick,
		"avg_tick_ms":   avgMs,
		"overruns":      m.Overruns.Load(),
		"recovered":     m.Recovered.Load(),
		"accepted":      m.Accepted.Load(),
		"rejected":      m.Rejected.Load(),
		"logins":        m.Logins.Load(),
		"bad_versions":  m.BadVersions.Load(),
		"unknown_kinds": m.UnknownKinds.Load(),
	}
}
