package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// TimestampLayout is the ISO-8601 second-precision format used for history
// records and API payloads.
const TimestampLayout = "2006-01-02T15:04:05"

// ErrAlreadyRunning is returned by Start while a session is active.
var ErrAlreadyRunning = errors.New("a session is already running")

// ErrNotFound is returned when a history selector matches no record.
var ErrNotFound = errors.New("record not found")

// ValidationError describes a rejected session config field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// SessionConfig holds the parameters for one reminder session.
// All durations are in seconds.
type SessionConfig struct {
	URL          string `json:"url" toml:"url"`
	TotalSec     int    `json:"total_sec" toml:"total_sec"`
	FirstSec     int    `json:"first_sec" toml:"first_sec"`
	SecondSec    int    `json:"second_sec" toml:"second_sec"`
	SubseqSec    int    `json:"subseq_sec" toml:"subseq_sec"`
	BrowserPath  string `json:"browser_path" toml:"browser_path"`
	SoundEnabled bool   `json:"sound_enabled" toml:"sound_enabled"`
	SoundFile    string `json:"sound_file" toml:"sound_file"`
	Expectation  string `json:"expectation,omitempty" toml:"-"`
}

// Validate checks the config before a session starts. It reports the first
// problem found; the engine state is untouched on failure.
func (c SessionConfig) Validate() error {
	if !strings.HasPrefix(c.URL, "http://") && !strings.HasPrefix(c.URL, "https://") {
		return &ValidationError{Field: "url", Reason: "must start with http:// or https://"}
	}
	for _, f := range []struct {
		name string
		val  int
	}{
		{"total_sec", c.TotalSec},
		{"first_sec", c.FirstSec},
		{"second_sec", c.SecondSec},
		{"subseq_sec", c.SubseqSec},
	} {
		if f.val <= 0 {
			return &ValidationError{Field: f.name, Reason: "must be a positive number of seconds"}
		}
	}
	return nil
}

// RecordStatus marks whether a firing's side effects succeeded.
type RecordStatus string

const (
	RecordSuccess RecordStatus = "success"
	RecordFailed  RecordStatus = "failed"
)

// Record is one history entry written at each firing. Records are immutable
// once written except for Note, which may be amended afterwards.
type Record struct {
	Timestamp   string       `json:"timestamp"`
	Count       int          `json:"count"`
	URL         string       `json:"url"`
	Status      RecordStatus `json:"status"`
	Note        string       `json:"note"`
	ExpectedSec *int         `json:"expected_sec"`
	ActualSec   *int         `json:"actual_sec"`
	Expectation string       `json:"expectation,omitempty"`
}

// Time parses the record timestamp. The zero time is returned for
// unparseable values.
func (r Record) Time() time.Time {
	t, err := time.ParseInLocation(TimestampLayout, r.Timestamp, time.Local)
	if err != nil {
		return time.Time{}
	}
	return t
}
