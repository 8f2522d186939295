package notify

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNoopSink(t *testing.T) {
	var sink Sink = NoopSink{}
	if err := sink.OpenURL("https://example.com"); err != nil {
		t.Errorf("OpenURL = %v, want nil", err)
	}
	sink.PlaySound("whatever.mp3")
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()

	file := filepath.Join(dir, "sound.mp3")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if !fileExists(file) {
		t.Error("fileExists should report existing files")
	}
	if fileExists(filepath.Join(dir, "absent.mp3")) {
		t.Error("fileExists should be false for missing files")
	}
	if fileExists(dir) {
		t.Error("fileExists should be false for directories")
	}
}

func TestPlaySound_NoCandidates(t *testing.T) {
	// neither file exists, so PlaySound must return without running anything
	s := NewSystem("", filepath.Join(t.TempDir(), "missing.mp3"))
	s.PlaySound(filepath.Join(t.TempDir(), "also-missing.mp3"))
}
