package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/starford/noteforge/internal/apperr"
	"github.com/starford/noteforge/internal/models"
)

// PlaceholderTitle replaces blank titles at write time.
const PlaceholderTitle = "Untitled"

// timeLayout is RFC 3339 at second precision; all stored times are UTC.
const timeLayout = time.RFC3339

func now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

func normalizeTitle(title string) string {
	if strings.TrimSpace(title) == "" {
		return PlaceholderTitle
	}
	return title
}

// Create inserts a new note together with its index entry and returns
// the assigned id. Ids are never reused, even after deletion.
func (s *Store) Create(title, body, tags string) (int64, error) {
	t := normalizeTitle(title)
	ts := now().Format(timeLayout)

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	res, err := tx.Exec(`INSERT INTO notes (title, body, tags, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		t, body, tags, ts, ts)
	if err != nil {
		return 0, fmt.Errorf("store: insert note: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("store: last insert id: %w", err)
	}
	if err := ftsUpsert(tx, id, t, body, tags); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("store: commit create: %w", err)
	}
	return id, nil
}

// Get returns the note with the given id, or apperr.ErrNotFound.
func (s *Store) Get(id int64) (*models.Note, error) {
	row := s.db.QueryRow(`SELECT id, title, body, tags, created_at, updated_at FROM notes WHERE id = ?`, id)
	n, err := scanNote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get note: %w", err)
	}
	return n, nil
}

// Update overwrites title/body/tags and refreshes updated_at, keeping
// the index entry in step. It returns apperr.ErrNotFound when no note
// has the given id; it never creates one.
func (s *Store) Update(id int64, title, body, tags string) error {
	t := normalizeTitle(title)
	ts := now().Format(timeLayout)

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.Exec(`UPDATE notes SET title = ?, body = ?, tags = ?, updated_at = ? WHERE id = ?`,
		t, body, tags, ts, id)
	if err != nil {
		return fmt.Errorf("store: update note: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: rows affected: %w", err)
	}
	if affected == 0 {
		return apperr.ErrNotFound
	}
	if err := ftsUpsert(tx, id, t, body, tags); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit update: %w", err)
	}
	return nil
}

// Delete removes the note and its index entry irreversibly and reports
// whether a note was actually removed. Deleting an absent id is a
// no-op.
func (s *Store) Delete(id int64) (bool, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return false, fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := ftsDelete(tx, id); err != nil {
		return false, err
	}
	res, err := tx.Exec(`DELETE FROM notes WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("store: delete note: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("store: rows affected: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("store: commit delete: %w", err)
	}
	return affected > 0, nil
}

// List returns notes ordered by updated_at descending, ties broken by
// insertion order. A non-empty search runs against the full-text index
// (phrase query by default, see matchExpr); tagFilter restricts results
// to notes whose tags contain it as a case-insensitive substring.
func (s *Store) List(search, tagFilter string) ([]models.Note, error) {
	search = strings.TrimSpace(search)
	tagFilter = strings.ToLower(strings.TrimSpace(tagFilter))

	var (
		query string
		args  []any
	)
	switch {
	case search == "" && tagFilter == "":
		query = `SELECT id, title, body, tags, created_at, updated_at FROM notes
			ORDER BY updated_at DESC, id ASC`
	case search == "":
		query = `SELECT id, title, body, tags, created_at, updated_at FROM notes
			WHERE instr(lower(tags), ?) > 0
			ORDER BY updated_at DESC, id ASC`
		args = append(args, tagFilter)
	default:
		query = `SELECT n.id, n.title, n.body, n.tags, n.created_at, n.updated_at
			FROM notes n
			JOIN notes_fts ON notes_fts.note_id = n.id
			WHERE notes_fts MATCH ?`
		args = append(args, matchExpr(search))
		if tagFilter != "" {
			query += ` AND instr(lower(n.tags), ?) > 0`
			args = append(args, tagFilter)
		}
		query += ` ORDER BY n.updated_at DESC, n.id ASC`
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list notes: %w", err)
	}
	defer rows.Close()

	var out []models.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan note: %w", err)
		}
		out = append(out, *n)
	}
	return out, rows.Err()
}

// All returns every note ordered by id, for export.
func (s *Store) All() ([]models.Note, error) {
	rows, err := s.db.Query(`SELECT id, title, body, tags, created_at, updated_at FROM notes ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("store: all notes: %w", err)
	}
	defer rows.Close()

	var out []models.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan note: %w", err)
		}
		out = append(out, *n)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNote(r rowScanner) (*models.Note, error) {
	var (
		n                models.Note
		created, updated string
	)
	if err := r.Scan(&n.ID, &n.Title, &n.Body, &n.Tags, &created, &updated); err != nil {
		return nil, err
	}
	var err error
	if n.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if n.UpdatedAt, err = time.Parse(timeLayout, updated); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &n, nil
}
