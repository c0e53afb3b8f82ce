package api

import (
	"github.com/starford/noteforge/internal/models"
	"github.com/starford/noteforge/internal/store"
)

// NoteRequest is the request body for creating or updating a note.
// A blank or whitespace-only title is stored as the placeholder.
type NoteRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Tags  string `json:"tags"`
}

// NoteListResponse wraps a note listing.
type NoteListResponse struct {
	Notes []models.Note `json:"notes"`
	Total int           `json:"total"`
}

// ImportResponse reports the merge-upsert accounting of an import.
type ImportResponse = store.ImportStats
