package encourage

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hochfrequenz/nudge/internal/domain"
)

func testRecords() []domain.Record {
	return []domain.Record{
		{Timestamp: "2026-08-30T09:00:00", Status: domain.RecordSuccess, Note: "planned the day"},
		{Timestamp: "2026-08-30T09:05:00", Status: domain.RecordSuccess, Expectation: "clear inbox"},
	}
}

func TestEncourage(t *testing.T) {
	var gotAuth string
	var gotReq chatRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q, want /chat/completions", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "Keep going!"}},
			},
		})
	}))
	defer server.Close()

	t.Setenv("OPENROUTER_API_KEY", "test-key")

	client := NewClient(server.URL, "openai/gpt-5-mini", "")
	line, err := client.Encourage(testRecords())
	if err != nil {
		t.Fatal(err)
	}

	if line != "Keep going!" {
		t.Errorf("line = %q, want Keep going!", line)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("Authorization = %q, want Bearer test-key", gotAuth)
	}
	if gotReq.Model != "openai/gpt-5-mini" {
		t.Errorf("model = %q", gotReq.Model)
	}
	if len(gotReq.Messages) != 2 {
		t.Fatalf("len(messages) = %d, want 2", len(gotReq.Messages))
	}
	if !strings.Contains(gotReq.Messages[1].Content, "planned the day") {
		t.Error("prompt should include recent record notes")
	}
}

func TestEncourage_OnlyRecentRecordsInPrompt(t *testing.T) {
	var gotReq chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotReq)
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]string{"content": "ok"}}},
		})
	}))
	defer server.Close()

	t.Setenv("OPENROUTER_API_KEY", "test-key")

	records := make([]domain.Record, 8)
	for i := range records {
		records[i] = domain.Record{Timestamp: "2026-08-30T09:00:00", Note: strings.Repeat("x", i+1)}
	}

	client := NewClient(server.URL, "m", "")
	if _, err := client.Encourage(records); err != nil {
		t.Fatal(err)
	}

	prompt := gotReq.Messages[1].Content
	if strings.Count(prompt, "note:") != recentRecords {
		t.Errorf("prompt has %d record lines, want %d", strings.Count(prompt, "note:"), recentRecords)
	}
}

func TestEncourage_NoKey(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "")

	client := NewClient("http://unused", "m", filepath.Join(t.TempDir(), "absent.key"))
	if _, err := client.Encourage(testRecords()); !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("err = %v, want ErrNoAPIKey", err)
	}
}

func TestEncourage_KeyFile(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "")

	keyFile := filepath.Join(t.TempDir(), "openrouter.key")
	content := "# my key\n\nsk-file-key\n"
	if err := os.WriteFile(keyFile, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]string{"content": "ok"}}},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "m", keyFile)
	if _, err := client.Encourage(testRecords()); err != nil {
		t.Fatal(err)
	}
	if gotAuth != "Bearer sk-file-key" {
		t.Errorf("Authorization = %q, want key from file", gotAuth)
	}
}

func TestEncourage_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	t.Setenv("OPENROUTER_API_KEY", "test-key")

	client := NewClient(server.URL, "m", "")
	if _, err := client.Encourage(testRecords()); err == nil {
		t.Error("non-200 upstream should surface an error")
	}
}

func TestEncourage_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer server.Close()

	t.Setenv("OPENROUTER_API_KEY", "test-key")

	client := NewClient(server.URL, "m", "")
	if _, err := client.Encourage(testRecords()); err == nil {
		t.Error("empty choices should surface an error")
	}
}
