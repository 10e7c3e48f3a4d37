package models

import "time"

// Document represents one uploaded caption file within a validation run.
type Document struct {
	ID          string    `json:"id" db:"id"`
	RunID       string    `json:"run_id" db:"run_id"`
	Filename    string    `json:"filename" db:"filename"`
	Role        string    `json:"role" db:"role"`
	Language    string    `json:"language" db:"language"`
	StorageKey  string    `json:"storage_key" db:"storage_key"`
	Size        int64     `json:"size" db:"size"`
	CueCount    int       `json:"cue_count" db:"cue_count"`
	ContentHash string    `json:"content_hash" db:"content_hash"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Document role constants
const (
	DocumentRoleReference  = "reference"
	DocumentRoleTranslated = "translated"
)
