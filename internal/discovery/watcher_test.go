package discovery

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherCollapsesBurst(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir, nil)
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	w.debounce = 250 * time.Millisecond
	w.Start()
	t.Cleanup(w.Close)

	for _, name := range []string{"Nurse.png", "Oni.png", "GhostFace.png"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	select {
	case <-w.Events():
	case <-time.After(3 * time.Second):
		t.Fatalf("expected a notification after png burst")
	}

	// The burst settled in one notification; nothing else is pending.
	select {
	case <-w.Events():
		t.Fatalf("expected burst to collapse into a single notification")
	case <-time.After(600 * time.Millisecond):
	}
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir, nil)
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	w.debounce = 100 * time.Millisecond
	w.Start()
	t.Cleanup(w.Close)

	if err := os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case <-w.Events():
		t.Fatalf("expected no notification for non-png file")
	case <-time.After(500 * time.Millisecond):
	}
}
