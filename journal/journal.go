// Package journal keeps an append-only SQLite log of what happened in a
// simulation: score changes, kills, messages and map loads.
package journal

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Event kinds.
const (
	KindScore     = "score"
	KindTeamScore = "team_score"
	KindKill      = "kill"
	KindMessage   = "message"
	KindPrivate   = "player_message"
	KindMapLoad   = "map_load"
)

var ErrNoSession = errors.New("no such session")

// Event is one journal row. Player and Team are zero-valued when they do
// not apply.
type Event struct {
	ID      int64     `json:"id"`
	Session string    `json:"session"`
	Kind    string    `json:"kind"`
	Frame   int64     `json:"frame"`
	Player  string    `json:"player,omitempty"`
	Team    int       `json:"team,omitempty"`
	Delta   float64   `json:"delta,omitempty"`
	Text    string    `json:"text,omitempty"`
	At      time.Time `json:"at"`
}

// Session is one run of the simulation on one map.
type Session struct {
	ID      string
	Map     string
	Engine  string
	Started time.Time
	Ended   sql.NullTime
}

// Journal wraps the SQLite connection.
type Journal struct {
	conn *sql.DB
}

// Open opens (or creates) the journal database at path.
func Open(path string) (*Journal, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One writer at a time; the batch writer is the only hot path.
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("journal: wal: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("journal: foreign keys: %w", err)
	}

	j := &Journal{conn: conn}
	if err := j.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("journal: migrate: %w", err)
	}
	return j, nil
}

func (j *Journal) Close() error {
	return j.conn.Close()
}

func (j *Journal) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		map TEXT NOT NULL DEFAULT '',
		engine TEXT NOT NULL DEFAULT '',
		started_at DATETIME NOT NULL,
		ended_at DATETIME
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL REFERENCES sessions(id),
		kind TEXT NOT NULL,
		frame INTEGER NOT NULL DEFAULT 0,
		player TEXT,
		team INTEGER,
		delta REAL NOT NULL DEFAULT 0,
		text TEXT,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_session ON events(session_id, id);
	CREATE INDEX IF NOT EXISTS idx_events_kind ON events(kind);
	`
	_, err := j.conn.Exec(schema)
	return err
}

// StartSession records a new session and returns its id.
func (j *Journal) StartSession(mapName, engine string) (string, error) {
	id := uuid.NewString()
	_, err := j.conn.Exec(
		"INSERT INTO sessions (id, map, engine, started_at) VALUES (?, ?, ?, ?)",
		id, mapName, engine, time.Now().UTC(),
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

// EndSession stamps the end time of a session.
func (j *Journal) EndSession(id string) error {
	res, err := j.conn.Exec("UPDATE sessions SET ended_at = ? WHERE id = ?", time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNoSession, id)
	}
	return nil
}

// GetSession returns the session with the given id.
func (j *Journal) GetSession(id string) (*Session, error) {
	s := &Session{}
	err := j.conn.QueryRow(
		"SELECT id, map, engine, started_at, ended_at FROM sessions WHERE id = ?", id,
	).Scan(&s.ID, &s.Map, &s.Engine, &s.Started, &s.Ended)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrNoSession, id)
	}
	return s, err
}

// Append writes a batch of events in one transaction.
func (j *Journal) Append(events []Event) error {
	if len(events) == 0 {
		return nil
	}
	tx, err := j.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO events (session_id, kind, frame, player, team, delta, text, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range events {
		player := sql.NullString{String: e.Player, Valid: e.Player != ""}
		team := sql.NullInt64{Int64: int64(e.Team), Valid: e.Kind == KindTeamScore || e.Team != 0}
		text := sql.NullString{String: e.Text, Valid: e.Text != ""}
		at := e.At
		if at.IsZero() {
			at = time.Now().UTC()
		}
		if _, err := stmt.Exec(e.Session, e.Kind, e.Frame, player, team, e.Delta, text, at); err != nil {
			return fmt.Errorf("insert %s event: %w", e.Kind, err)
		}
	}
	return tx.Commit()
}

// Recent returns up to limit of the newest events of a session, oldest
// first.
func (j *Journal) Recent(session string, limit int) ([]Event, error) {
	rows, err := j.conn.Query(`
		SELECT id, session_id, kind, frame, player, team, delta, text, created_at FROM (
			SELECT * FROM events WHERE session_id = ? ORDER BY id DESC LIMIT ?
		) ORDER BY id`,
		session, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Event
	for rows.Next() {
		var e Event
		var player, text sql.NullString
		var team sql.NullInt64
		if err := rows.Scan(&e.ID, &e.Session, &e.Kind, &e.Frame, &player, &team, &e.Delta, &text, &e.At); err != nil {
			return nil, err
		}
		e.Player = player.String
		e.Team = int(team.Int64)
		e.Text = text.String
		result = append(result, e)
	}
	return result, rows.Err()
}

// ScoreTotals sums the score deltas per player over a session.
func (j *Journal) ScoreTotals(session string) (map[string]float64, error) {
	rows, err := j.conn.Query(`
		SELECT player, SUM(delta) FROM events
		WHERE session_id = ? AND kind = ? AND player IS NOT NULL
		GROUP BY player`,
		session, KindScore,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := make(map[string]float64)
	for rows.Next() {
		var name string
		var sum float64
		if err := rows.Scan(&name, &sum); err != nil {
			return nil, err
		}
		totals[name] = sum
	}
	return totals, rows.Err()
}

// CountByKind returns how many events of each kind a session has.
func (j *Journal) CountByKind(session string) (map[string]int, error) {
	rows, err := j.conn.Query(
		"SELECT kind, COUNT(*) FROM events WHERE session_id = ? GROUP BY kind", session,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, err
		}
		counts[kind] = n
	}
	return counts, rows.Err()
}
