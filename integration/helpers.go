//go:build integration

package integration

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/hochfrequenz/nudge/internal/engine"
	"github.com/hochfrequenz/nudge/internal/history"
	"github.com/hochfrequenz/nudge/internal/notify"
)

// TempHistoryPath creates a temporary history file path for testing
func TempHistoryPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "history.json")
}

// NewFastEngine wires an engine with millisecond ticks to a file-backed
// history store, so full sessions finish in test time.
func NewFastEngine(t *testing.T, historyPath string) (*engine.Engine, *history.Store) {
	t.Helper()
	store := history.New(historyPath, 0)
	eng := engine.New(store, notify.NoopSink{}, engine.Options{TickInterval: time.Millisecond})
	t.Cleanup(eng.Stop)
	return eng, store
}

// WaitFor polls cond until it holds or the deadline passes
func WaitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}
