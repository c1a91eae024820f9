package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pierrec/lz4/v4"
	"github.com/vmihailenco/msgpack/v5"

	"starfight-server/internal/game"
	"starfight-server/internal/protocol"
	"starfight-server/internal/store"
)

// quietMember is a logged-in connection that discards its fan-out.
type quietMember struct{ p *game.Player }

func (*quietMember) Enqueue(*protocol.Message) error { return nil }
func (*quietMember) FlushAll() error                 { return nil }
func (m *quietMember) Player() *game.Player          { return m.p }

func newTestServer(t *testing.T, stats Stats) (*httptest.Server, *game.Game) {
	t.Helper()
	g := game.New(game.Options{Width: 500, Height: 500})
	m := &quietMember{}
	m.p = g.Login(m, "Ann", "s1")
	srv := httptest.NewServer(New(g, stats, Options{SpectateInterval: 20 * time.Millisecond, PublicAddr: "example.org:9998"}, nil).Handler())
	t.Cleanup(srv.Close)
	return srv, g
}

func get(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestMetrics(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	resp := get(t, srv.URL+"/metrics")
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["tick_count"] == nil || body["players"] != float64(1) {
		t.Errorf("unexpected metrics %v", body)
	}
	entities, _ := body["entities"].(map[string]any)
	if entities["ship"] != float64(1) {
		t.Errorf("expected one ship, got %v", body["entities"])
	}
}

func TestStoreRoutesWithoutStore(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	for _, path := range []string{"/leaderboard", "/events"} {
		if resp := get(t, srv.URL+path); resp.StatusCode != http.StatusServiceUnavailable {
			t.Errorf("%s: expected 503, got %d", path, resp.StatusCode)
		}
	}
}

func TestLeaderboard(t *testing.T) {
	db, err := store.Open(filepath.Join(t.TempDir(), "admin.db"), store.Options{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	ctx := context.Background()
	db.AddSession(ctx, "ann", 1, 0, time.Minute)
	db.AddSession(ctx, "bob", 4, 2, time.Minute)

	srv, _ := newTestServer(t, db)
	resp := get(t, srv.URL+"/leaderboard?limit=5")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	var pilots []store.Pilot
	if err := json.NewDecoder(resp.Body).Decode(&pilots); err != nil {
		t.Fatal(err)
	}
	if len(pilots) != 2 || pilots[0].Name != "bob" || pilots[0].Kills != 4 {
		t.Errorf("unexpected leaderboard %+v", pilots)
	}
}

func TestSnapshot(t *testing.T) {
	srv, g := newTestServer(t, nil)
	ann := g.World.Players()[0]
	at := game.Point{X: 250, Y: 250}
	ann.Ship().SetLocation(at)

	resp := get(t, srv.URL+"/snapshot")
	var snap Snapshot
	if err := msgpack.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatal(err)
	}
	if snap.Width != 500 || snap.Height != 500 {
		t.Errorf("unexpected size %dx%d", snap.Width, snap.Height)
	}
	var ship *Object
	for i := range snap.Objects {
		if snap.Objects[i].Kind == "ship" {
			ship = &snap.Objects[i]
		}
	}
	if ship == nil || ship.Name != "Ann" || !ship.Alive || ship.X != at.X || ship.Y != at.Y {
		t.Fatalf("ship missing or wrong: %+v", ship)
	}
	if ship.Color != ann.Color().Wire() {
		t.Errorf("expected color %x, got %x", ann.Color().Wire(), ship.Color)
	}

	far := get(t, srv.URL+"/snapshot?x=0&y=0&w=10&h=10")
	var corner Snapshot
	if err := msgpack.NewDecoder(far.Body).Decode(&corner); err != nil {
		t.Fatal(err)
	}
	for _, o := range corner.Objects {
		if o.Kind == "ship" {
			t.Error("ship outside the rect was included")
		}
	}
}

func TestSnapshotLZ4(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	resp := get(t, srv.URL+"/snapshot?compress=lz4")
	if enc := resp.Header.Get("Content-Encoding"); enc != "lz4" {
		t.Fatalf("expected lz4 encoding, got %q", enc)
	}
	raw, err := io.ReadAll(lz4.NewReader(resp.Body))
	if err != nil {
		t.Fatal(err)
	}
	var snap Snapshot
	if err := msgpack.Unmarshal(raw, &snap); err != nil {
		t.Fatal(err)
	}
	if snap.Width != 500 {
		t.Errorf("unexpected snapshot %+v", snap)
	}
}

func TestSpectate(t *testing.T) {
	srv, g := newTestServer(t, nil)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/spectate"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	g.Tick()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for range 2 {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatal(err)
		}
		if kind != websocket.BinaryMessage {
			t.Fatalf("expected a binary frame, got %d", kind)
		}
		var snap Snapshot
		if err := msgpack.Unmarshal(data, &snap); err != nil {
			t.Fatal(err)
		}
		if snap.Width != 500 {
			t.Errorf("unexpected frame %+v", snap)
		}
	}
}

func TestConnectQR(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	resp := get(t, srv.URL+"/connect.png")
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("unexpected content type %q", ct)
	}
	data, _ := io.ReadAll(resp.Body)
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Error("expected a PNG body")
	}
}
