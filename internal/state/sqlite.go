package state

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"internwatch/internal/model"
)

// Ensure SQLiteStore implements model.StateStore.
var _ model.StateStore = (*SQLiteStore)(nil)

// SQLiteStore keeps the seen-set in a SQLite database. An alternative to the
// JSON file backend for deployments that already carry a database around.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures
// the seen_postings table exists.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Verify the connection is alive.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	createTable := `CREATE TABLE IF NOT EXISTS seen_postings (
		id         TEXT PRIMARY KEY,
		first_seen DATETIME DEFAULT CURRENT_TIMESTAMP
	)`
	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating seen_postings table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Load returns every recorded posting id.
func (s *SQLiteStore) Load() (map[string]bool, error) {
	rows, err := s.db.Query("SELECT id FROM seen_postings")
	if err != nil {
		return nil, fmt.Errorf("loading seen postings: %w", err)
	}
	defer rows.Close()

	seen := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning seen posting: %w", err)
		}
		seen[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("loading seen postings: %w", err)
	}
	return seen, nil
}

// Commit records every id in one transaction. Ids already present are
// ignored, so the set stays monotonically non-decreasing.
func (s *SQLiteStore) Commit(ids map[string]bool) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning commit: %w", err)
	}
	stmt, err := tx.Prepare("INSERT OR IGNORE INTO seen_postings (id) VALUES (?)")
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("preparing commit: %w", err)
	}
	defer stmt.Close()

	for id := range ids {
		if _, err := stmt.Exec(id); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording posting %s: %w", id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing state: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
