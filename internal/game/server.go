package game

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"go.uber.org/zap"
)

// DefaultAddr is the default game listen address.
const DefaultAddr = ":9998"

// Server accepts game connections and runs one Client per connection.
type Server struct {
	game *Game
	log  *zap.SugaredLogger

	mu      sync.Mutex
	clients map[*Client]struct{}
	wg      sync.WaitGroup
}

// NewServer creates the acceptor for g.
func NewServer(g *Game, log *zap.SugaredLogger) *Server {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Server{game: g, log: log, clients: make(map[*Client]struct{})}
}

// ListenAndServe binds addr and serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts on ln until ctx is done or the listener fails. On return
// every client has been disconnected and torn down.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	stop := context.AfterFunc(ctx, func() { ln.Close() })
	defer stop()
	defer s.shutdown()

	s.log.Infow("game server listening", "addr", ln.Addr().String())
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}
		s.handleConn(conn)
	}
}

func (s *Server) handleConn(conn net.Conn) {
	hub := s.game.Hub
	ip := extractIP(conn.RemoteAddr())
	if !hub.Allow(ip) || !hub.CanAccept(ip) {
		s.game.Metrics.Rejected.Add(1)
		s.log.Infow("connection rejected", "remote", conn.RemoteAddr().String())
		conn.Close()
		return
	}
	hub.TrackConnect(ip)
	s.game.Metrics.Accepted.Add(1)

	c := newClient(s.game, conn, ip, s.log)
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		c.log.Debugw("connection accepted")
		c.ReadPump()
		s.mu.Lock()
		delete(s.clients, c)
		s.mu.Unlock()
	}()
}

// shutdown closes every connection and waits for the clients to finish
// their teardown.
func (s *Server) shutdown() {
	s.mu.Lock()
	for c := range s.clients {
		c.conn.Close()
	}
	s.mu.Unlock()
	s.wg.Wait()
	s.log.Infow("game server stopped")
}

func extractIP(addr net.Addr) string {
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String()
	}
	return host
}
