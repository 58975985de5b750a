package state

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func openFileStore(t *testing.T, path string) *FileStore {
	t.Helper()
	s, err := NewFileStore(path, discardLogger())
	if err != nil {
		t.Fatalf("opening file store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestFileStoreFirstRunIsEmpty(t *testing.T) {
	s := openFileStore(t, filepath.Join(t.TempDir(), "seen.json"))
	seen, err := s.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(seen) != 0 {
		t.Errorf("expected empty set, got %v", seen)
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seen.json")
	s := openFileStore(t, path)

	ids := map[string]bool{"b:2": true, "a:1": true, "c:3": true}
	if err := s.Commit(ids); err != nil {
		t.Fatalf("commit: %v", err)
	}

	seen, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(seen) != 3 || !seen["a:1"] || !seen["b:2"] || !seen["c:3"] {
		t.Errorf("round trip lost ids: %v", seen)
	}
}

func TestFileStoreWritesSortedArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seen.json")
	s := openFileStore(t, path)

	if err := s.Commit(map[string]bool{"z:9": true, "a:1": true, "m:5": true}); err != nil {
		t.Fatalf("commit: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading state file: %v", err)
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		t.Fatalf("state file is not a JSON string array: %v", err)
	}
	want := []string{"a:1", "m:5", "z:9"}
	if len(ids) != len(want) {
		t.Fatalf("expected %d ids, got %d", len(want), len(ids))
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("ids[%d] = %q, want %q (array must be sorted)", i, ids[i], want[i])
		}
	}
}

func TestFileStoreCorruptionFallsBackToEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seen.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("writing corrupt file: %v", err)
	}

	s := openFileStore(t, path)
	seen, err := s.Load()
	if err != nil {
		t.Fatalf("corruption must not be an error: %v", err)
	}
	if len(seen) != 0 {
		t.Errorf("expected empty fallback set, got %v", seen)
	}
}

func TestFileStoreCommitReplacesPriorState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seen.json")
	s := openFileStore(t, path)

	if err := s.Commit(map[string]bool{"a:1": true}); err != nil {
		t.Fatalf("first commit: %v", err)
	}
	if err := s.Commit(map[string]bool{"a:1": true, "a:2": true}); err != nil {
		t.Fatalf("second commit: %v", err)
	}

	seen, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(seen) != 2 {
		t.Errorf("expected 2 ids after second commit, got %v", seen)
	}
}

func TestFileStoreLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "seen.json")
	s := openFileStore(t, path)

	if err := s.Commit(map[string]bool{"a:1": true}); err != nil {
		t.Fatalf("commit: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading dir: %v", err)
	}
	for _, e := range entries {
		if e.Name() != "seen.json" && e.Name() != "seen.json.lock" {
			t.Errorf("unexpected leftover file %q", e.Name())
		}
	}
}

func TestFileStoreLockReleasedOnClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seen.json")
	s, err := NewFileStore(path, discardLogger())
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// A second open must not block once the first store is closed.
	s2 := openFileStore(t, path)
	if _, err := s2.Load(); err != nil {
		t.Fatalf("second open load: %v", err)
	}
}
