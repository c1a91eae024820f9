package store

import (
	"context"
	"database/sql"
	"time"
)

type event struct {
	kind     string
	session  string
	playerID int16
	name     string
	data     string
	at       time.Time
}

// Event queues one play-log entry. It never blocks: when the queue is full
// the entry is dropped and counted.
func (db *DB) Event(kind, session string, playerID int16, name, data string) {
	select {
	case db.events <- event{kind: kind, session: session, playerID: playerID, name: name, data: data, at: time.Now().UTC()}:
	default:
		db.dropped.Add(1)
	}
}

// Dropped reports how many events were lost to a full queue.
func (db *DB) Dropped() int64 {
	return db.dropped.Load()
}

func (db *DB) writer() {
	defer close(db.done)

	batch := make([]event, 0, db.batchSize)
	ticker := time.NewTicker(db.interval)
	defer ticker.Stop()

	for {
		select {
		case e := <-db.events:
			batch = append(batch, e)
			if len(batch) >= db.batchSize {
				db.flush(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				db.flush(batch)
				batch = batch[:0]
			}
		case <-db.stop:
			for {
				select {
				case e := <-db.events:
					batch = append(batch, e)
				default:
					db.flush(batch)
					return
				}
			}
		}
	}
}

func (db *DB) flush(batch []event) {
	if len(batch) == 0 {
		return
	}
	tx, err := db.conn.Begin()
	if err != nil {
		db.log.Errorw("event batch lost", "events", len(batch), "err", err)
		return
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO events (type, session, player_id, name, data, created_at) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		db.log.Errorw("event batch lost", "events", len(batch), "err", err)
		return
	}
	defer stmt.Close()

	for _, e := range batch {
		session := sql.NullString{String: e.session, Valid: e.session != ""}
		pid := sql.NullInt64{Int64: int64(e.playerID), Valid: e.playerID >= 0}
		data := sql.NullString{String: e.data, Valid: e.data != ""}
		if _, err := stmt.Exec(e.kind, session, pid, e.name, data, e.at.Format(time.RFC3339)); err != nil {
			db.log.Warnw("event not stored", "type", e.kind, "err", err)
		}
	}
	if err := tx.Commit(); err != nil {
		db.log.Errorw("event batch lost", "events", len(batch), "err", err)
	}
}

// EventCounts returns the number of stored events per type over the last
// days days.
func (db *DB) EventCounts(ctx context.Context, days int) (map[string]int, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT type, COUNT(*) FROM events
		WHERE created_at >= date('now', '-' || ? || ' days')
		GROUP BY type`, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, err
		}
		result[kind] = n
	}
	return result, rows.Err()
}

// SessionEvents returns the event types recorded for one session in the
// order they happened.
func (db *DB) SessionEvents(ctx context.Context, session string) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT type FROM events WHERE session = ? ORDER BY id`, session)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var kinds []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		kinds = append(kinds, k)
	}
	return kinds, rows.Err()
}
