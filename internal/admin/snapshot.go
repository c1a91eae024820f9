package admin

import (
	"net/http"

	"github.com/pierrec/lz4/v4"
	"github.com/vmihailenco/msgpack/v5"

	"starfight-server/internal/game"
)

// Object is one world object as seen by operators and spectators.
type Object struct {
	Kind  string  `msgpack:"kind"`
	ID    int16   `msgpack:"id"`
	X     int     `msgpack:"x"`
	Y     int     `msgpack:"y"`
	Dir   float64 `msgpack:"dir,omitempty"`
	Color int32   `msgpack:"color,omitempty"`
	Name  string  `msgpack:"name,omitempty"`
	Alive bool    `msgpack:"alive,omitempty"`
}

// Snapshot is the msgpack body of /snapshot and of each spectator frame.
type Snapshot struct {
	Tick    int64    `msgpack:"tick"`
	Width   int      `msgpack:"width"`
	Height  int      `msgpack:"height"`
	Objects []Object `msgpack:"objects"`
}

type colored interface {
	Color() game.Color
}

type directed interface {
	Direction() float64
}

func (s *Server) snapshot(r game.Rect) Snapshot {
	w := s.game.World
	objs := w.ObjectsInRect(r)
	snap := Snapshot{
		Tick:    s.game.Metrics.TickCount.Load(),
		Width:   w.Width(),
		Height:  w.Height(),
		Objects: make([]Object, 0, len(objs)),
	}
	for _, o := range objs {
		at := o.Location()
		v := Object{Kind: o.Kind().String(), ID: o.ID(), X: at.X, Y: at.Y}
		if c, ok := o.(colored); ok {
			v.Color = c.Color().Wire()
		}
		if d, ok := o.(directed); ok {
			v.Dir = d.Direction()
		}
		if ship, ok := o.(*game.Ship); ok {
			v.Name = ship.Owner().Name()
			v.Alive = ship.Owner().Alive()
		}
		snap.Objects = append(snap.Objects, v)
	}
	return snap
}

// handleSnapshot encodes the objects intersecting ?x=&y=&w=&h= (the whole
// world by default). With ?compress=lz4 the body is an lz4 frame.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	world := s.game.World
	rect := game.Rect{
		X: intParam(r, "x", 0),
		Y: intParam(r, "y", 0),
		W: intParam(r, "w", world.Width()),
		H: intParam(r, "h", world.Height()),
	}
	body, err := msgpack.Marshal(s.snapshot(rect))
	if err != nil {
		s.log.Errorw("snapshot encode failed", "err", err)
		http.Error(w, "encode failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/msgpack")
	w.Header().Set("Cache-Control", "no-cache")
	if r.URL.Query().Get("compress") != "lz4" {
		w.Write(body)
		return
	}
	w.Header().Set("Content-Encoding", "lz4")
	zw := lz4.NewWriter(w)
	if _, err := zw.Write(body); err != nil {
		s.log.Debugw("snapshot write failed", "err", err)
		return
	}
	if err := zw.Close(); err != nil {
		s.log.Debugw("snapshot write failed", "err", err)
	}
}
