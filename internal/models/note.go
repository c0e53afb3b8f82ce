// Package models defines the domain types for Noteforge.
package models

import "time"

// Note is the persisted note record. Tags is a comma-separated list of
// free-form labels; there is no tag entity, tags are matched by
// substring. Timestamps are UTC at second precision.
type Note struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Tags      string    `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ImportRecord is one element of an import document after defensive
// per-field decoding. A nil ID means the record is treated as new.
// Timestamps from the file are ignored: merged notes get a refreshed
// updated_at and inserted notes get fresh timestamps.
type ImportRecord struct {
	ID    *int64 `json:"id"`
	Title string `json:"title"`
	Body  string `json:"body"`
	Tags  string `json:"tags"`
}
