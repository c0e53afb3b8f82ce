package store

import (
	"database/sql"
	"fmt"
	"strings"
)

const ftsSchemaSQL = `
CREATE VIRTUAL TABLE IF NOT EXISTS notes_fts USING fts5(
	note_id UNINDEXED,
	title,
	body,
	tags,
	tokenize = 'unicode61 remove_diacritics 2'
);
`

// initFTS creates the full-text table. A SQLite build without FTS5 is a
// configuration error surfaced at startup, never a silent fallback to
// different search behavior.
func initFTS(db *sql.DB) error {
	if _, err := db.Exec(ftsSchemaSQL); err != nil {
		return fmt.Errorf("store: fts5 unavailable, rebuild with -tags sqlite_fts5: %w", err)
	}
	// CREATE ... IF NOT EXISTS is a no-op when the table already exists
	// in the schema, so it does not instantiate the module on reopen.
	// Query the table so a missing FTS5 fails here, not on first search.
	var n int
	if err := db.QueryRow(`SELECT count(*) FROM notes_fts`).Scan(&n); err != nil {
		return fmt.Errorf("store: fts5 unavailable, rebuild with -tags sqlite_fts5: %w", err)
	}
	return nil
}

// ftsUpsert replaces the index entry for a note. The stale row is
// removed first so an update never leaves duplicate matches.
func ftsUpsert(tx *sql.Tx, id int64, title, body, tags string) error {
	if _, err := tx.Exec(`DELETE FROM notes_fts WHERE note_id = ?`, id); err != nil {
		return fmt.Errorf("store: clear fts entry: %w", err)
	}
	if _, err := tx.Exec(`INSERT INTO notes_fts (note_id, title, body, tags) VALUES (?, ?, ?, ?)`,
		id, title, body, tags); err != nil {
		return fmt.Errorf("store: insert fts entry: %w", err)
	}
	return nil
}

func ftsDelete(tx *sql.Tx, id int64) error {
	if _, err := tx.Exec(`DELETE FROM notes_fts WHERE note_id = ?`, id); err != nil {
		return fmt.Errorf("store: delete fts entry: %w", err)
	}
	return nil
}

// matchExpr turns user input into an FTS5 MATCH expression. Plain text
// becomes a phrase query; input that already carries FTS5 query syntax
// is passed through for the engine's own grammar to interpret
// (column filters, booleans, prefix wildcards, NEAR).
func matchExpr(search string) string {
	if hasQuerySyntax(search) {
		return search
	}
	return `"` + search + `"`
}

// hasQuerySyntax reports whether search contains FTS5 operators: a
// quote, wildcard, column filter, grouping, or the whole-word boolean
// and proximity operators.
func hasQuerySyntax(search string) bool {
	if strings.ContainsAny(search, `"*:()`) {
		return true
	}
	padded := " " + search + " "
	for _, op := range []string{" AND ", " OR ", " NOT ", " NEAR "} {
		if strings.Contains(padded, op) {
			return true
		}
	}
	return false
}

// RebuildIndex drops every index entry and repopulates it from the
// notes table. The index holds nothing that is not derivable from
// notes, so a rebuild is always safe.
func (s *Store) RebuildIndex() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if _, err := tx.Exec(`DELETE FROM notes_fts`); err != nil {
		return fmt.Errorf("store: clear fts: %w", err)
	}
	if _, err := tx.Exec(`INSERT INTO notes_fts (note_id, title, body, tags)
		SELECT id, title, body, tags FROM notes`); err != nil {
		return fmt.Errorf("store: rebuild fts: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit rebuild: %w", err)
	}
	return nil
}
