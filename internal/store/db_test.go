package store

import (
	"context"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

func openTestDB(t *testing.T, path string) *DB {
	t.Helper()
	db, err := Open(path, Options{BatchSize: 2, FlushInterval: 10 * time.Millisecond}, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return db
}

func TestSessionsAccumulate(t *testing.T) {
	db := openTestDB(t, filepath.Join(t.TempDir(), "pilots.db"))
	defer db.Close()
	ctx := context.Background()

	db.Session("ann", 3, 1, 90*time.Second)
	db.Session("ann", 2, 0, 30*time.Second)
	db.Session("bob", 5, 4, time.Minute)
	db.Session("cid", 5, 2, time.Minute)

	top, err := db.Leaderboard(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, p := range top {
		names = append(names, p.Name)
	}
	if !slices.Equal(names, []string{"ann", "cid", "bob"}) {
		t.Fatalf("unexpected order %v", names)
	}
	ann := top[0]
	if ann.Kills != 5 || ann.Deaths != 1 || ann.Sessions != 2 || ann.Playtime != 120 {
		t.Errorf("unexpected totals %+v", ann)
	}
	if ann.Rank != 1 || ann.LastSeen.IsZero() {
		t.Errorf("expected rank 1 and a last-seen time, got %+v", ann)
	}

	if top, _ := db.Leaderboard(ctx, 1); len(top) != 1 {
		t.Errorf("limit not applied: %d rows", len(top))
	}
}

func TestEventsSurviveClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.db")
	db := openTestDB(t, path)
	db.Event("login", "s1", 0, "ann", "")
	db.Event("say", "s1", 0, "ann", "hi")
	db.Event("rejected", "s2", -1, "bob", "version 3")
	db.Event("logout", "s1", 0, "ann", "")
	if err := db.Close(); err != nil {
		t.Fatal(err)
	}

	db = openTestDB(t, path)
	defer db.Close()
	ctx := context.Background()
	counts, err := db.EventCounts(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if counts["login"] != 1 || counts["say"] != 1 || counts["rejected"] != 1 || counts["logout"] != 1 {
		t.Errorf("unexpected counts %v", counts)
	}
	kinds, err := db.SessionEvents(ctx, "s1")
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(kinds, []string{"login", "say", "logout"}) {
		t.Errorf("unexpected session log %v", kinds)
	}
}

func TestEventDropsWhenFull(t *testing.T) {
	db := &DB{events: make(chan event, 1)}
	db.Event("login", "s", 1, "a", "")
	db.Event("login", "s", 1, "a", "")
	if db.Dropped() != 1 {
		t.Errorf("expected one dropped event, got %d", db.Dropped())
	}
}
