package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/gofrs/flock"

	"internwatch/internal/model"
)

// Ensure FileStore implements model.StateStore.
var _ model.StateStore = (*FileStore)(nil)

// FileStore persists the seen-set as a sorted JSON array of posting ids.
// The file is held under an advisory lock for the lifetime of the store so
// two overlapping runs cannot interleave a load and a commit.
type FileStore struct {
	path   string
	lock   *flock.Flock
	logger *slog.Logger
}

// NewFileStore opens a file-backed store at path and acquires its lock.
func NewFileStore(path string, logger *slog.Logger) (*FileStore, error) {
	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return nil, fmt.Errorf("locking state file %s: %w", path, err)
	}
	return &FileStore{path: path, lock: lock, logger: logger}, nil
}

// Load reads the persisted id set. A missing file is a first run (empty
// set). An unreadable or malformed file falls back to an empty set as well,
// which re-enters bootstrap: already-notified postings will be re-primed
// silently. The corruption is logged so the operator knows it happened.
func (s *FileStore) Load() (map[string]bool, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return make(map[string]bool), nil
	}
	if err != nil {
		s.logger.Warn("state file unreadable, starting from empty set", "path", s.path, "error", err)
		return make(map[string]bool), nil
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		s.logger.Warn("state file corrupted, starting from empty set (postings may be re-announced once)",
			"path", s.path, "error", err)
		return make(map[string]bool), nil
	}

	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		seen[id] = true
	}
	return seen, nil
}

// Commit replaces the durable state with the given set, written as a sorted,
// indented JSON array for reproducible diffs. The write goes to a temp file
// in the same directory and is renamed into place, so a crashed run can never
// leave a partially-written state visible.
func (s *FileStore) Commit(ids map[string]bool) error {
	sorted := make([]string, 0, len(ids))
	for id := range ids {
		sorted = append(sorted, id)
	}
	sort.Strings(sorted)

	data, err := json.MarshalIndent(sorted, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".seen-*.json")
	if err != nil {
		return fmt.Errorf("creating temp state file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing temp state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing temp state file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replacing state file: %w", err)
	}
	return nil
}

// Close releases the advisory lock.
func (s *FileStore) Close() error {
	return s.lock.Unlock()
}
