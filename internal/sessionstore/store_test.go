package sessionstore

import (
	"testing"

	"github.com/hochfrequenz/nudge/internal/domain"
)

func memStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStartAndList(t *testing.T) {
	store := memStore(t)

	id, err := store.Start(domain.SessionConfig{URL: "https://example.com", TotalSec: 3600})
	if err != nil {
		t.Fatal(err)
	}
	if id == "" {
		t.Fatal("Start returned an empty ID")
	}

	sessions, err := store.List(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 1 {
		t.Fatalf("len(sessions) = %d, want 1", len(sessions))
	}

	sess := sessions[0]
	if sess.ID != id {
		t.Errorf("ID = %q, want %q", sess.ID, id)
	}
	if sess.URL != "https://example.com" {
		t.Errorf("URL = %q", sess.URL)
	}
	if sess.TotalSec != 3600 {
		t.Errorf("TotalSec = %d, want 3600", sess.TotalSec)
	}
	if sess.EndedAt != nil {
		t.Errorf("EndedAt = %v, want nil before Finish", sess.EndedAt)
	}
	if sess.Outcome != "" {
		t.Errorf("Outcome = %q, want empty before Finish", sess.Outcome)
	}
}

func TestFinish(t *testing.T) {
	store := memStore(t)

	id, err := store.Start(domain.SessionConfig{URL: "https://example.com", TotalSec: 60})
	if err != nil {
		t.Fatal(err)
	}

	if err := store.Finish(id, 4, OutcomeCompleted); err != nil {
		t.Fatal(err)
	}

	sessions, err := store.List(1)
	if err != nil {
		t.Fatal(err)
	}
	sess := sessions[0]
	if sess.FireCount != 4 {
		t.Errorf("FireCount = %d, want 4", sess.FireCount)
	}
	if sess.Outcome != OutcomeCompleted {
		t.Errorf("Outcome = %q, want completed", sess.Outcome)
	}
	if sess.EndedAt == nil {
		t.Error("EndedAt should be set after Finish")
	}
}

func TestListLimit(t *testing.T) {
	store := memStore(t)

	for i := 0; i < 5; i++ {
		if _, err := store.Start(domain.SessionConfig{URL: "https://example.com", TotalSec: 60}); err != nil {
			t.Fatal(err)
		}
	}

	sessions, err := store.List(3)
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 3 {
		t.Errorf("len(sessions) = %d, want 3", len(sessions))
	}
}
