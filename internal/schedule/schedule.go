// Package schedule starts reminder sessions on cron expressions, used by
// serve mode to kick off recurring sessions without manual interaction.
package schedule

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/hochfrequenz/nudge/internal/config"
)

// Scheduler manages cron-triggered session starts
type Scheduler struct {
	entries  map[string]config.ScheduleEntry
	parser   cron.Parser
	lastRun  map[string]time.Time
	mu       sync.RWMutex
	stopChan chan struct{}
}

// NewScheduler validates the entries and creates a scheduler
func NewScheduler(entries []config.ScheduleEntry) (*Scheduler, error) {
	s := &Scheduler{
		entries:  make(map[string]config.ScheduleEntry),
		parser:   cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow),
		lastRun:  make(map[string]time.Time),
		stopChan: make(chan struct{}),
	}

	for _, entry := range entries {
		if entry.Name == "" {
			return nil, fmt.Errorf("schedule entry missing name")
		}
		if _, err := s.parser.Parse(entry.Cron); err != nil {
			return nil, fmt.Errorf("schedule %q: %w", entry.Name, err)
		}
		s.entries[entry.Name] = entry
	}

	return s, nil
}

// ParseCron parses a cron expression
func ParseCron(expr string) (cron.Schedule, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	return parser.Parse(expr)
}

// NextRun returns the next scheduled start time for an entry
func (s *Scheduler) NextRun(name string) time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[name]
	if !ok {
		return time.Time{}
	}

	sched, err := s.parser.Parse(entry.Cron)
	if err != nil {
		return time.Time{}
	}

	return sched.Next(time.Now())
}

// ShouldRun returns true if an entry is due
func (s *Scheduler) ShouldRun(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[name]
	if !ok || !entry.Enabled {
		return false
	}

	sched, err := s.parser.Parse(entry.Cron)
	if err != nil {
		return false
	}

	lastRun := s.lastRun[name]
	if lastRun.IsZero() {
		lastRun = time.Now().Add(-time.Minute)
	}

	return time.Now().After(sched.Next(lastRun))
}

// MarkStarted records that an entry triggered a session
func (s *Scheduler) MarkStarted(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastRun[name] = time.Now()
}

// ListEntries returns all entry names
func (s *Scheduler) ListEntries() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.entries))
	for name := range s.entries {
		names = append(names, name)
	}
	return names
}

// Start begins the scheduler loop. runFunc starts a session; a false return
// (engine busy) leaves the entry due for the next check.
func (s *Scheduler) Start(runFunc func(name string) bool) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			for name := range s.entries {
				if s.ShouldRun(name) && runFunc(name) {
					s.MarkStarted(name)
				}
			}
		}
	}
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	close(s.stopChan)
}
