// Package archive persists finished refinement cycles to SQLite for
// audit. It is owned by the application drivers; the refinement session
// itself never touches it and stays memory-only.
package archive

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"JokeSmith/internal/refine"
)

// Archive is a write-mostly store of past refinement sessions.
type Archive struct {
	db *sql.DB
}

// SessionSummary describes one archived session for listing.
type SessionSummary struct {
	ID        string
	Topic     string
	StartedAt time.Time
	Cycles    int
	BestScore int
}

// Open creates or opens the archive database at path.
func Open(path string) (*Archive, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create archive directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	createSessionsTable := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		topic TEXT,
		started_at DATETIME
	);`

	createCyclesTable := `
	CREATE TABLE IF NOT EXISTS cycles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT,
		seq INTEGER,
		kind TEXT,
		joke TEXT,
		score INTEGER,
		feedback_json TEXT,
		created_at DATETIME,
		FOREIGN KEY(session_id) REFERENCES sessions(id)
	);`

	if _, err := db.Exec(createSessionsTable); err != nil {
		return nil, fmt.Errorf("failed to create sessions table: %w", err)
	}
	if _, err := db.Exec(createCyclesTable); err != nil {
		return nil, fmt.Errorf("failed to create cycles table: %w", err)
	}

	return &Archive{db: db}, nil
}

// Close releases the database handle.
func (a *Archive) Close() error {
	return a.db.Close()
}

// RecordCycle appends one cycle of a session, creating the session row
// on first write.
func (a *Archive) RecordCycle(sessionID, topic string, seq int, cycle refine.Cycle) error {
	tx, err := a.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		"INSERT OR IGNORE INTO sessions (id, topic, started_at) VALUES (?, ?, ?)",
		sessionID, topic, cycle.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	fbJSON, err := json.Marshal(cycle.Feedback)
	if err != nil {
		return fmt.Errorf("failed to marshal feedback: %w", err)
	}

	_, err = tx.Exec(
		"INSERT INTO cycles (session_id, seq, kind, joke, score, feedback_json, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		sessionID, seq, string(cycle.Kind), cycle.Joke, cycle.Feedback.Score, string(fbJSON), cycle.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save cycle: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// RecentSessions lists the latest archived sessions, newest first.
func (a *Archive) RecentSessions(limit int) ([]SessionSummary, error) {
	rows, err := a.db.Query(`
		SELECT s.id, s.topic, s.started_at, COUNT(c.id), COALESCE(MAX(c.score), 0)
		FROM sessions s
		LEFT JOIN cycles c ON c.session_id = s.id
		GROUP BY s.id
		ORDER BY s.started_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionSummary
	for rows.Next() {
		var s SessionSummary
		if err := rows.Scan(&s.ID, &s.Topic, &s.StartedAt, &s.Cycles, &s.BestScore); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Cycles loads the archived cycles of one session in append order.
func (a *Archive) Cycles(sessionID string) ([]refine.Cycle, error) {
	rows, err := a.db.Query(
		"SELECT kind, joke, feedback_json, created_at FROM cycles WHERE session_id = ? ORDER BY seq",
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load cycles: %w", err)
	}
	defer rows.Close()

	var out []refine.Cycle
	for rows.Next() {
		var (
			cycle  refine.Cycle
			kind   string
			fbJSON string
		)
		if err := rows.Scan(&kind, &cycle.Joke, &fbJSON, &cycle.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan cycle: %w", err)
		}
		cycle.Kind = refine.CycleKind(kind)
		if err := json.Unmarshal([]byte(fbJSON), &cycle.Feedback); err != nil {
			return nil, fmt.Errorf("failed to unmarshal feedback: %w", err)
		}
		out = append(out, cycle)
	}
	return out, rows.Err()
}
