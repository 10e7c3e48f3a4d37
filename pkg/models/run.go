package models

import "time"

// ValidationRun represents one batch validation: a reference document checked
// against one or more translated documents.
type ValidationRun struct {
	ID             string     `json:"id" db:"id"`
	Status         string     `json:"status" db:"status"`
	ReferenceID    string     `json:"reference_id" db:"reference_id"`
	FileCount      int        `json:"file_count" db:"file_count"`
	CompletedCount int        `json:"completed_count" db:"completed_count"`
	ErrorMsg       string     `json:"error_msg,omitempty" db:"error_msg"`
	StartedAt      *time.Time `json:"started_at,omitempty" db:"started_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

// RunStatus constants
const (
	RunStatusPending    = "pending"
	RunStatusQueued     = "queued"
	RunStatusProcessing = "processing"
	RunStatusCompleted  = "completed"
	RunStatusFailed     = "failed"
)

// ValidationJob is the queue payload for validating one translated document
// against its run's reference.
type ValidationJob struct {
	ID           string     `json:"id"`
	RunID        string     `json:"run_id"`
	DocumentID   string     `json:"document_id"`
	ReferenceID  string     `json:"reference_id"`
	Priority     int        `json:"priority"`
	RetryCount   int        `json:"retry_count"`
	CreatedAt    time.Time  `json:"created_at"`
	DispatchedAt *time.Time `json:"dispatched_at,omitempty"`
}

// JobPriority constants
const (
	JobPriorityLow    = 0
	JobPriorityNormal = 5
	JobPriorityHigh   = 10
)
