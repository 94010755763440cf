// Package persistence records finished and running sessions to SQLite and
// streams session events to a compressed journal. Field state itself is
// never saved; a session is rebuilt from scratch on every start.
package persistence

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite connection for the session scoreboard.
type DB struct {
	conn *sqlx.DB
}

// SessionRecord is one row of the scoreboard.
type SessionRecord struct {
	ID          string    `db:"id" json:"id"`
	Seed        int64     `db:"seed" json:"seed"`
	StartedAt   time.Time `db:"started_at" json:"started_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
	Ticks       uint64    `db:"ticks" json:"ticks"`
	Placements  int       `db:"placements" json:"placements"`
	Rejections  int       `db:"rejections" json:"rejections"`
	Disasters   int       `db:"disasters" json:"disasters"`
	DangerLevel int       `db:"danger_level" json:"danger_level"`
	Anchors     int       `db:"anchors" json:"anchors"`
	Hazards     int       `db:"hazards" json:"hazards"`
	Status      string    `db:"status" json:"status"`
}

// DisasterRecord is one disaster firing within a session.
type DisasterRecord struct {
	SessionID   string
	Tick        uint64
	DangerLevel int
	Spread      int
	Seeded      bool
	Collapsed   int
	Warped      int
	Exhausted   bool
	Hazards     any // coordinates converted by the firing, stored as JSON
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		seed INTEGER NOT NULL,
		started_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		ticks INTEGER NOT NULL,
		placements INTEGER NOT NULL,
		rejections INTEGER NOT NULL,
		disasters INTEGER NOT NULL,
		danger_level INTEGER NOT NULL,
		anchors INTEGER NOT NULL,
		hazards INTEGER NOT NULL,
		status TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS disasters (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		tick INTEGER NOT NULL,
		danger_level INTEGER NOT NULL,
		spread INTEGER NOT NULL,
		seeded INTEGER NOT NULL,
		collapsed INTEGER NOT NULL,
		warped INTEGER NOT NULL,
		exhausted INTEGER NOT NULL,
		hazards_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_disasters_session ON disasters(session_id);
	CREATE INDEX IF NOT EXISTS idx_sessions_updated ON sessions(updated_at);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveSession inserts or replaces the scoreboard row for a session.
func (db *DB) SaveSession(rec SessionRecord) error {
	_, err := db.conn.NamedExec(`INSERT OR REPLACE INTO sessions
		(id, seed, started_at, updated_at, ticks, placements, rejections,
		 disasters, danger_level, anchors, hazards, status)
		VALUES (:id, :seed, :started_at, :updated_at, :ticks, :placements, :rejections,
		 :disasters, :danger_level, :anchors, :hazards, :status)`, rec)
	if err != nil {
		return fmt.Errorf("save session %s: %w", rec.ID, err)
	}
	slog.Debug("session saved", "id", rec.ID, "ticks", rec.Ticks, "status", rec.Status)
	return nil
}

// RecordDisaster appends a disaster firing.
func (db *DB) RecordDisaster(rec DisasterRecord) error {
	hazardsJSON, err := json.Marshal(rec.Hazards)
	if err != nil {
		return fmt.Errorf("marshal hazards: %w", err)
	}
	_, err = db.conn.Exec(`INSERT INTO disasters
		(session_id, tick, danger_level, spread, seeded, collapsed, warped, exhausted, hazards_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.SessionID, rec.Tick, rec.DangerLevel, rec.Spread, boolInt(rec.Seeded),
		rec.Collapsed, rec.Warped, boolInt(rec.Exhausted), string(hazardsJSON),
	)
	if err != nil {
		return fmt.Errorf("record disaster: %w", err)
	}
	return nil
}

// RecentSessions returns the most recently updated sessions.
func (db *DB) RecentSessions(limit int) ([]SessionRecord, error) {
	var sessions []SessionRecord
	err := db.conn.Select(&sessions,
		`SELECT id, seed, started_at, updated_at, ticks, placements, rejections,
		        disasters, danger_level, anchors, hazards, status
		 FROM sessions ORDER BY updated_at DESC LIMIT ?`,
		limit,
	)
	return sessions, err
}

// DisasterCount returns how many firings were recorded for a session.
func (db *DB) DisasterCount(sessionID string) (int, error) {
	var n int
	err := db.conn.Get(&n, "SELECT COUNT(*) FROM disasters WHERE session_id = ?", sessionID)
	return n, err
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
