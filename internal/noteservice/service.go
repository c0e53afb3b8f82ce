// Package noteservice coordinates store operations for the API, MCP and
// watcher surfaces and publishes change events after mutations.
package noteservice

import (
	"context"

	"github.com/starford/noteforge/internal/codec"
	"github.com/starford/noteforge/internal/models"
	"github.com/starford/noteforge/internal/store"
)

// Events receives a notification after each successful mutation.
// Implementations must not block.
type Events interface {
	PublishNoteEvent(kind string, id int64)
	PublishImportEvent(inserted, updated int)
}

// Service wraps the store with event publication. It adds no store
// semantics of its own.
type Service struct {
	st     *store.Store
	events Events
}

// NewService creates a note service. events may be nil.
func NewService(st *store.Store, events Events) *Service {
	return &Service{st: st, events: events}
}

// Create inserts a note and returns the stored record.
func (s *Service) Create(_ context.Context, title, body, tags string) (*models.Note, error) {
	id, err := s.st.Create(title, body, tags)
	if err != nil {
		return nil, err
	}
	n, err := s.st.Get(id)
	if err != nil {
		return nil, err
	}
	s.publish("created", id)
	return n, nil
}

// Get returns a note, or apperr.ErrNotFound.
func (s *Service) Get(_ context.Context, id int64) (*models.Note, error) {
	return s.st.Get(id)
}

// Update overwrites a note's fields and returns the stored record.
func (s *Service) Update(_ context.Context, id int64, title, body, tags string) (*models.Note, error) {
	if err := s.st.Update(id, title, body, tags); err != nil {
		return nil, err
	}
	s.publish("updated", id)
	return s.st.Get(id)
}

// Delete removes a note. Deleting an absent id is a no-op and publishes
// no event.
func (s *Service) Delete(_ context.Context, id int64) error {
	removed, err := s.st.Delete(id)
	if err != nil {
		return err
	}
	if removed {
		s.publish("deleted", id)
	}
	return nil
}

// List returns notes matching the combined text/tag filters, newest
// first.
func (s *Service) List(_ context.Context, search, tagFilter string) ([]models.Note, error) {
	notes, err := s.st.List(search, tagFilter)
	if err != nil {
		return nil, err
	}
	if notes == nil {
		notes = []models.Note{}
	}
	return notes, nil
}

// ExportDocument returns the full note set in the export envelope.
func (s *Service) ExportDocument(_ context.Context) (codec.Document, error) {
	notes, err := s.st.All()
	if err != nil {
		return codec.Document{}, err
	}
	return codec.NewDocument(notes), nil
}

// Import merges parsed records into the store.
func (s *Service) Import(_ context.Context, records []models.ImportRecord, merge bool) (store.ImportStats, error) {
	stats, err := s.st.BulkImport(records, merge)
	if err != nil {
		return stats, err
	}
	if s.events != nil {
		s.events.PublishImportEvent(stats.Inserted, stats.Updated)
	}
	return stats, nil
}

func (s *Service) publish(kind string, id int64) {
	if s.events != nil {
		s.events.PublishNoteEvent(kind, id)
	}
}
