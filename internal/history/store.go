// Package history provides the append-only firing log. The log is a JSON
// array file rewritten in full on every mutation; persistence is best-effort
// and failures never propagate to the timing loop.
package history

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/hochfrequenz/nudge/internal/domain"
)

// DefaultMaxRecords caps the retained history when no cap is configured.
const DefaultMaxRecords = 500

// defaultExpectedSec backfills legacy records missing an expected interval.
const defaultExpectedSec = 600

// Store is a size-capped, file-backed history of firings.
type Store struct {
	path       string
	maxRecords int

	mu      sync.Mutex
	records []domain.Record
}

// New creates a Store backed by the given file, loading any existing
// records. A zero or negative cap falls back to DefaultMaxRecords. An
// unreadable or malformed file starts the store empty.
func New(path string, maxRecords int) *Store {
	if maxRecords <= 0 {
		maxRecords = DefaultMaxRecords
	}
	s := &Store{path: path, maxRecords: maxRecords}
	s.load()
	return s
}

func (s *Store) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return
	}
	var records []domain.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return
	}
	if len(records) > s.maxRecords {
		records = records[len(records)-s.maxRecords:]
	}
	s.records = records
}

// Add appends a record, trimming the oldest beyond the cap, and persists.
func (s *Store) Add(record domain.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, record)
	if len(s.records) > s.maxRecords {
		s.records = s.records[len(s.records)-s.maxRecords:]
	}
	s.persistLocked()
}

// Clear empties the history and persists.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = nil
	s.persistLocked()
}

// Records returns a copy of all records in insertion order.
func (s *Store) Records() []domain.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Record, len(s.records))
	copy(out, s.records)
	return out
}

// Last returns the most recent record, if any.
func (s *Store) Last() (domain.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.records) == 0 {
		return domain.Record{}, false
	}
	return s.records[len(s.records)-1], true
}

// UpdateNote rewrites the note of the record matching the timestamp
// selector. An empty selector targets the most recent record; otherwise the
// newest match wins. Returns domain.ErrNotFound if nothing matches.
func (s *Store) UpdateNote(timestamp, note string) (domain.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.records) == 0 {
		return domain.Record{}, domain.ErrNotFound
	}

	if timestamp == "" {
		s.records[len(s.records)-1].Note = note
		s.persistLocked()
		return s.records[len(s.records)-1], nil
	}

	for i := len(s.records) - 1; i >= 0; i-- {
		if s.records[i].Timestamp == timestamp {
			s.records[i].Note = note
			s.persistLocked()
			return s.records[i], nil
		}
	}
	return domain.Record{}, domain.ErrNotFound
}

// EnrichIntervals backfills expected_sec and actual_sec on records read from
// older files, persisting only if something changed. Returns the records.
func (s *Store) EnrichIntervals() []domain.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := false
	var prev time.Time
	for i := range s.records {
		r := &s.records[i]
		t := r.Time()

		if r.ExpectedSec == nil {
			expected := defaultExpectedSec
			r.ExpectedSec = &expected
			changed = true
		}
		if r.ActualSec == nil && !prev.IsZero() && !t.IsZero() {
			actual := int(t.Sub(prev).Seconds())
			r.ActualSec = &actual
			changed = true
		}
		if !t.IsZero() {
			prev = t
		}
	}
	if changed {
		s.persistLocked()
	}

	out := make([]domain.Record, len(s.records))
	copy(out, s.records)
	return out
}

// persistLocked rewrites the whole file. History is best-effort: failures
// are logged and swallowed.
func (s *Store) persistLocked() {
	records := s.records
	if records == nil {
		records = []domain.Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		log.Printf("history: marshal failed: %v", err)
		return
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		log.Printf("history: mkdir failed: %v", err)
		return
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		log.Printf("history: write failed: %v", err)
	}
}
