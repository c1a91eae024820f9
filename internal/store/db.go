// Package store keeps the out-of-world record of play in SQLite: per-pilot
// totals and a log of session events.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const (
	defaultBatchSize     = 50
	defaultFlushInterval = 5 * time.Second
	eventQueueSize       = 1024
	sessionWriteTimeout  = 5 * time.Second
)

// Options tunes the background event writer.
type Options struct {
	BatchSize     int
	FlushInterval time.Duration
}

// DB wraps the SQLite database and its event writer.
type DB struct {
	conn *sql.DB
	log  *zap.SugaredLogger

	batchSize int
	interval  time.Duration
	events    chan event
	stop      chan struct{}
	done      chan struct{}
	dropped   atomic.Int64
}

// Pilot is one leaderboard row.
type Pilot struct {
	Rank     int       `json:"rank"`
	Name     string    `json:"name"`
	Kills    int       `json:"kills"`
	Deaths   int       `json:"deaths"`
	Sessions int       `json:"sessions"`
	Playtime float64   `json:"playtime_s"`
	LastSeen time.Time `json:"last_seen"`
}

// Open opens (or creates) the database at path and starts the event
// writer.
func Open(path string, opts Options, log *zap.SugaredLogger) (*DB, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	// One connection serializes writers; SQLite allows a single one anyway.
	conn.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA foreign_keys=ON"} {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	db := &DB{
		conn:      conn,
		log:       log,
		batchSize: opts.BatchSize,
		interval:  opts.FlushInterval,
		events:    make(chan event, eventQueueSize),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	if db.batchSize <= 0 {
		db.batchSize = defaultBatchSize
	}
	if db.interval <= 0 {
		db.interval = defaultFlushInterval
	}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	go db.writer()
	return db, nil
}

// Close drains pending events and closes the database.
func (db *DB) Close() error {
	close(db.stop)
	<-db.done
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS pilots (
		name TEXT PRIMARY KEY,
		kills INTEGER NOT NULL DEFAULT 0,
		deaths INTEGER NOT NULL DEFAULT 0,
		sessions INTEGER NOT NULL DEFAULT 0,
		playtime_s REAL NOT NULL DEFAULT 0,
		last_seen TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		type TEXT NOT NULL,
		session TEXT,
		player_id INTEGER,
		name TEXT NOT NULL DEFAULT '',
		data TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_created ON events(created_at);
	CREATE INDEX IF NOT EXISTS idx_pilots_kills ON pilots(kills DESC, deaths ASC);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// Session adds one finished session to the pilot's totals. It satisfies
// the game's Recorder and logs instead of returning failures.
func (db *DB) Session(name string, kills, deaths int, played time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), sessionWriteTimeout)
	defer cancel()
	if err := db.AddSession(ctx, name, kills, deaths, played); err != nil {
		db.log.Errorw("session not stored", "name", name, "err", err)
	}
}

// AddSession upserts the pilot row for name.
func (db *DB) AddSession(ctx context.Context, name string, kills, deaths int, played time.Duration) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO pilots (name, kills, deaths, sessions, playtime_s, last_seen)
		VALUES (?, ?, ?, 1, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			kills = kills + excluded.kills,
			deaths = deaths + excluded.deaths,
			sessions = sessions + 1,
			playtime_s = playtime_s + excluded.playtime_s,
			last_seen = excluded.last_seen`,
		name, kills, deaths, played.Seconds(), time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// Leaderboard returns the best pilots, most kills first and fewer deaths
// breaking ties.
func (db *DB) Leaderboard(ctx context.Context, limit int) ([]Pilot, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT name, kills, deaths, sessions, playtime_s, last_seen
		FROM pilots
		ORDER BY kills DESC, deaths ASC, name ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Pilot
	for rows.Next() {
		var p Pilot
		var seen string
		if err := rows.Scan(&p.Name, &p.Kills, &p.Deaths, &p.Sessions, &p.Playtime, &seen); err != nil {
			return nil, err
		}
		p.LastSeen, _ = time.Parse(time.RFC3339, seen)
		p.Rank = len(result) + 1
		result = append(result, p)
	}
	return result, rows.Err()
}
