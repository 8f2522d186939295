//go:build integration

package integration

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hochfrequenz/nudge/internal/config"
	"github.com/hochfrequenz/nudge/internal/domain"
	"github.com/hochfrequenz/nudge/internal/engine"
	"github.com/hochfrequenz/nudge/internal/sessionstore"
	"github.com/hochfrequenz/nudge/web/api"
)

// TestFullSessionLifecycle runs a complete session end to end: start through
// the HTTP API, let it fire to completion, then check the history file and
// status surface agree.
func TestFullSessionLifecycle(t *testing.T) {
	historyPath := TempHistoryPath(t)
	eng, store := NewFastEngine(t, historyPath)

	cfg := config.Default()
	cfg.Web.StaticDir = t.TempDir()
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	server := api.NewServer(eng, store, nil, cfg, cfgPath, "127.0.0.1:0")

	// fires at 0, 2, 5 (elapsed), then 5+4 >= 9 completes
	body := `{"url":"https://example.com","total_sec":9,"first_sec":2,"second_sec":3,"subseq_sec":4}`
	req := httptest.NewRequest(http.MethodPost, "/api/start", strings.NewReader(body))
	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("start code = %d, body %s", w.Code, w.Body.String())
	}

	WaitFor(t, 5*time.Second, func() bool {
		snap := eng.Status()
		return !snap.Running && snap.Status == "completed"
	})

	req = httptest.NewRequest(http.MethodGet, "/api/status", nil)
	w = httptest.NewRecorder()
	server.Handler().ServeHTTP(w, req)

	var snap engine.Snapshot
	if err := json.Unmarshal(w.Body.Bytes(), &snap); err != nil {
		t.Fatal(err)
	}
	if snap.Count != 3 {
		t.Errorf("Count = %d, want 3", snap.Count)
	}
	if snap.ElapsedSec != 5 {
		t.Errorf("ElapsedSec = %d, want 5", snap.ElapsedSec)
	}

	// the history file survived on disk and reloads with the same records
	reloaded := store.Records()
	if len(reloaded) != 3 {
		t.Fatalf("len(records) = %d, want 3", len(reloaded))
	}
	for i, r := range reloaded {
		if r.Count != i+1 {
			t.Errorf("record %d Count = %d, want %d", i, r.Count, i+1)
		}
		if r.Status != domain.RecordSuccess {
			t.Errorf("record %d Status = %q, want success", i, r.Status)
		}
	}
}

// TestSessionLoggedToStore checks that serve-mode session mirroring writes a
// completed row.
func TestSessionLoggedToStore(t *testing.T) {
	eng, _ := NewFastEngine(t, TempHistoryPath(t))

	sessions, err := sessionstore.New(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer sessions.Close()

	events := eng.Subscribe(32)
	session := domain.SessionConfig{
		URL:       "https://example.com",
		TotalSec:  4,
		FirstSec:  2,
		SecondSec: 2,
		SubseqSec: 2,
	}
	if err := eng.Start(session); err != nil {
		t.Fatal(err)
	}
	id, err := sessions.Start(session)
	if err != nil {
		t.Fatal(err)
	}

	WaitFor(t, 5*time.Second, func() bool { return !eng.Status().Running })

	var final engine.Snapshot
	WaitFor(t, time.Second, func() bool {
		for {
			select {
			case event := <-events:
				if event.Type == engine.EventCompleted {
					final = event.Snapshot
					return true
				}
			default:
				return false
			}
		}
	})
	if err := sessions.Finish(id, final.Count, sessionstore.OutcomeCompleted); err != nil {
		t.Fatal(err)
	}

	list, err := sessions.List(1)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Fatalf("len(sessions) = %d, want 1", len(list))
	}
	if list[0].Outcome != sessionstore.OutcomeCompleted {
		t.Errorf("Outcome = %q, want completed", list[0].Outcome)
	}
	if list[0].FireCount != 2 {
		t.Errorf("FireCount = %d, want 2", list[0].FireCount)
	}
}
