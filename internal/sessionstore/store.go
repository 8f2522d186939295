// Package sessionstore keeps a SQLite log of past reminder sessions, one
// row per start, finalized when the session completes or is stopped.
package sessionstore

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/hochfrequenz/nudge/internal/domain"
)

// Outcome is how a session ended.
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeStopped   Outcome = "stopped"
)

// Session is one logged reminder session.
type Session struct {
	ID        string
	URL       string
	TotalSec  int
	StartedAt time.Time
	EndedAt   *time.Time
	FireCount int
	Outcome   Outcome
}

// Store provides SQLite-backed session persistence
type Store struct {
	db *sql.DB
}

// New creates a new Store with the given database path
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Start logs the beginning of a session and returns its ID.
func (s *Store) Start(cfg domain.SessionConfig) (string, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(`
		INSERT INTO sessions (id, url, total_sec, started_at)
		VALUES (?, ?, ?, ?)
	`, id, cfg.URL, cfg.TotalSec, time.Now())
	if err != nil {
		return "", err
	}
	return id, nil
}

// Finish finalizes a session with its firing count and outcome.
func (s *Store) Finish(id string, fireCount int, outcome Outcome) error {
	_, err := s.db.Exec(`
		UPDATE sessions SET ended_at = ?, fire_count = ?, outcome = ? WHERE id = ?
	`, time.Now(), fireCount, string(outcome), id)
	return err
}

// List returns the most recent sessions, newest first.
func (s *Store) List(limit int) ([]Session, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT id, url, total_sec, started_at, ended_at, fire_count, outcome
		FROM sessions ORDER BY started_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var sess Session
		var endedAt sql.NullTime
		var outcome string
		if err := rows.Scan(&sess.ID, &sess.URL, &sess.TotalSec, &sess.StartedAt, &endedAt, &sess.FireCount, &outcome); err != nil {
			return nil, err
		}
		if endedAt.Valid {
			t := endedAt.Time
			sess.EndedAt = &t
		}
		sess.Outcome = Outcome(outcome)
		sessions = append(sessions, sess)
	}

	return sessions, rows.Err()
}
