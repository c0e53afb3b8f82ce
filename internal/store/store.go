// Package store implements the SQLite-backed note store. Every mutation
// runs as one transaction covering both the notes table and the FTS5
// full-text index, so the two can never diverge.
//
// FTS5 must be compiled into the SQLite driver (go build -tags
// sqlite_fts5); Open probes for it and fails otherwise. There is no
// degraded search mode.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS notes (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	title      TEXT NOT NULL DEFAULT 'Untitled',
	body       TEXT NOT NULL DEFAULT '',
	tags       TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
`

// Store owns the database handle. It assumes a single logical writer:
// callers may hand the handle between goroutines but must not run
// mutations concurrently.
type Store struct {
	db *sql.DB
}

// Open creates (or opens) the database at path, applies the schema and
// verifies FTS5 availability. Parent directories are created as needed.
// Idempotent: safe to call on an already-initialized file.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("store: create data dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	// One connection keeps all transactions on a single writer.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	if err := initFTS(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the database handle. Safe to call more than once.
func (s *Store) Close() error {
	return s.db.Close()
}
