// Package admin serves the read-only operator HTTP surface: metrics, the
// leaderboard, world snapshots, a spectator feed and a connect QR code.
package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"starfight-server/internal/game"
	"starfight-server/internal/store"
)

const (
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100
	defaultEventDays        = 1
	defaultSpectateInterval = 200 * time.Millisecond
	queryTimeout            = 5 * time.Second
)

// Stats is the persisted record the surface can query. *store.DB
// implements it.
type Stats interface {
	Leaderboard(ctx context.Context, limit int) ([]store.Pilot, error)
	EventCounts(ctx context.Context, days int) (map[string]int, error)
}

// Options configures the surface.
type Options struct {
	SpectateInterval time.Duration
	PublicAddr       string // game address encoded in /connect.png
}

// Server holds the handlers. A nil Stats answers store routes with 503.
type Server struct {
	game     *game.Game
	stats    Stats
	log      *zap.SugaredLogger
	interval time.Duration
	public   string
	upgrader websocket.Upgrader
}

// New creates the surface for g.
func New(g *game.Game, stats Stats, opts Options, log *zap.SugaredLogger) *Server {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	interval := opts.SpectateInterval
	if interval <= 0 {
		interval = defaultSpectateInterval
	}
	return &Server{
		game:     g,
		stats:    stats,
		log:      log,
		interval: interval,
		public:   opts.PublicAddr,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Handler returns the routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /metrics", s.handleMetrics)
	mux.HandleFunc("GET /leaderboard", s.handleLeaderboard)
	mux.HandleFunc("GET /events", s.handleEvents)
	mux.HandleFunc("GET /snapshot", s.handleSnapshot)
	mux.HandleFunc("GET /spectate", s.handleSpectate)
	mux.HandleFunc("GET /connect.png", s.handleConnectQR)
	return mux
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	g := s.game
	snap := g.Metrics.Snapshot()
	snap["connections"] = g.Hub.TotalConns()
	snap["players"] = g.Hub.MemberCount()
	entities := make(map[string]int)
	for kind, n := range g.World.Counts() {
		entities[kind.String()] = n
	}
	snap["entities"] = entities
	writeJSON(w, snap)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		http.Error(w, "no store configured", http.StatusServiceUnavailable)
		return
	}
	limit := intParam(r, "limit", defaultLeaderboardLimit)
	if limit <= 0 || limit > maxLeaderboardLimit {
		limit = defaultLeaderboardLimit
	}
	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()
	pilots, err := s.stats.Leaderboard(ctx, limit)
	if err != nil {
		s.log.Errorw("leaderboard query failed", "err", err)
		http.Error(w, "query failed", http.StatusInternalServerError)
		return
	}
	if pilots == nil {
		pilots = []store.Pilot{}
	}
	writeJSON(w, pilots)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		http.Error(w, "no store configured", http.StatusServiceUnavailable)
		return
	}
	days := intParam(r, "days", defaultEventDays)
	if days <= 0 {
		days = defaultEventDays
	}
	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()
	counts, err := s.stats.EventCounts(ctx, days)
	if err != nil {
		s.log.Errorw("event count query failed", "err", err)
		http.Error(w, "query failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, counts)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	json.NewEncoder(w).Encode(v)
}

// intParam reads an integer query parameter, falling back to def when it
// is absent or malformed.
func intParam(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
