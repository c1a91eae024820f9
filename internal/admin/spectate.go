package admin

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"

	"starfight-server/internal/game"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// handleSpectate streams a full snapshot every spectate interval until the
// viewer goes away.
func (s *Server) handleSpectate(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Infow("spectator upgrade failed", "err", err)
		return
	}
	log := s.log.With("remote", r.RemoteAddr)
	log.Infow("spectator joined")

	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(maxMessageSize)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(pongWait))
			return nil
		})
		// Spectators only talk control frames; reading drives them.
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	s.spectate(conn, done)
	conn.Close()
	<-done
	log.Infow("spectator left")
}

func (s *Server) spectate(conn *websocket.Conn, done <-chan struct{}) {
	frames := time.NewTicker(s.interval)
	defer frames.Stop()
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	world := s.game.World
	whole := game.Rect{W: world.Width(), H: world.Height()}
	send := func() error {
		body, err := msgpack.Marshal(s.snapshot(whole))
		if err != nil {
			return err
		}
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteMessage(websocket.BinaryMessage, body)
	}

	if err := send(); err != nil {
		return
	}
	for {
		select {
		case <-done:
			return
		case <-frames.C:
			if err := send(); err != nil {
				return
			}
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
