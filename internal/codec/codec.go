// Package codec serializes notes to and from the portable JSON export
// document.
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/natefinch/atomic"

	"github.com/starford/noteforge/internal/apperr"
	"github.com/starford/noteforge/internal/models"
)

// Document identity, shared with every export the desktop app ever
// produced. Importers only require the notes array; app and version are
// informational.
const (
	AppName = "Noteforge"
	Version = 1
)

// Document is the top-level export/import shape.
type Document struct {
	App     string        `json:"app"`
	Version int           `json:"version"`
	Notes   []models.Note `json:"notes"`
}

// NewDocument wraps notes in the canonical export envelope.
func NewDocument(notes []models.Note) Document {
	if notes == nil {
		notes = []models.Note{}
	}
	return Document{App: AppName, Version: Version, Notes: notes}
}

// Export writes the notes to path as a pretty-printed UTF-8 JSON
// document, atomically (tmp file then rename). It returns the number of
// notes written.
func Export(path string, notes []models.Note) (int, error) {
	doc := NewDocument(notes)
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("codec: encode export: %w", err)
	}
	data = append(data, '\n')
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return 0, fmt.Errorf("codec: write export: %w", err)
	}
	return len(doc.Notes), nil
}

// Parse reads an import document. The top level must be an object with
// a notes array; anything else is apperr.ErrInvalidFormat. Elements
// that are not well-formed note records are dropped, so a partially
// corrupt file still yields its salvageable notes.
func Parse(r io.Reader) ([]models.ImportRecord, error) {
	var doc struct {
		Notes []json.RawMessage `json:"notes"`
	}
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("codec: %w: %v", apperr.ErrInvalidFormat, err)
	}
	if doc.Notes == nil {
		return nil, fmt.Errorf("codec: %w: missing notes array", apperr.ErrInvalidFormat)
	}

	records := make([]models.ImportRecord, 0, len(doc.Notes))
	for _, raw := range doc.Notes {
		// Only objects are note records. A bare null would otherwise
		// decode as a zero record and import an empty "Untitled" note.
		trimmed := bytes.TrimSpace(raw)
		if len(trimmed) == 0 || trimmed[0] != '{' {
			continue
		}
		var rec models.ImportRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			// Malformed record: skip it, keep the rest.
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// ParseFile opens and parses an import file.
func ParseFile(path string) ([]models.ImportRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("codec: open import: %w", err)
	}
	defer f.Close()
	return Parse(f)
}
