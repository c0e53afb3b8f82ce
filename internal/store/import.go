package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/starford/noteforge/internal/models"
)

// ImportStats reports how a bulk import was applied.
type ImportStats struct {
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
}

// BulkImport merges records into the store. With merge set, a record
// whose id matches an existing note overwrites its title/body/tags and
// refreshes updated_at; every other record (including all records when
// merge is false) is inserted under a fresh id — imported ids are never
// reused for new rows. Each record is applied in its own transaction,
// so records already applied stay applied if a later one fails on a
// storage error.
func (s *Store) BulkImport(records []models.ImportRecord, merge bool) (ImportStats, error) {
	var stats ImportStats
	for _, rec := range records {
		if merge && rec.ID != nil {
			ok, err := s.exists(*rec.ID)
			if err != nil {
				return stats, err
			}
			if ok {
				if err := s.Update(*rec.ID, rec.Title, rec.Body, rec.Tags); err != nil {
					return stats, err
				}
				stats.Updated++
				continue
			}
		}
		if _, err := s.Create(rec.Title, rec.Body, rec.Tags); err != nil {
			return stats, err
		}
		stats.Inserted++
	}
	return stats, nil
}

func (s *Store) exists(id int64) (bool, error) {
	var one int
	err := s.db.QueryRow(`SELECT 1 FROM notes WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("store: check note exists: %w", err)
	}
	return true, nil
}
