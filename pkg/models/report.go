package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// Report represents the validation outcome for one translated document.
type Report struct {
	ID           string        `json:"id" db:"id"`
	RunID        string        `json:"run_id" db:"run_id"`
	DocumentID   string        `json:"document_id" db:"document_id"`
	Filename     string        `json:"filename" db:"filename"`
	Language     string        `json:"language" db:"language"`
	LanguageOK   bool          `json:"language_ok" db:"language_ok"`
	Passed       bool          `json:"passed" db:"passed"`
	ErrorMsg     string        `json:"error_msg,omitempty" db:"error_msg"`
	Details      ReportDetails `json:"details" db:"details"`
	CorrectedKey string        `json:"corrected_key,omitempty" db:"corrected_key"`
	CreatedAt    time.Time     `json:"created_at" db:"created_at"`
}

// ReportDetails holds the structural findings for one translated document.
type ReportDetails struct {
	LineCountMatch bool      `json:"line_count_match"`
	TimecodeIssues []CuePair `json:"timecode_issues,omitempty"`
	ExtraLines     []CueRef  `json:"extra_lines,omitempty"`
	MissingLines   []CueRef  `json:"missing_lines,omitempty"`
	Overlap        bool      `json:"overlap"`
	OverlapIndex   int       `json:"overlap_index,omitempty"`
	ReferenceCues  int       `json:"reference_cues"`
	TranslatedCues int       `json:"translated_cues"`
}

// CuePair pairs the reference and translated text of an index-aligned cue
// whose timing drifted past the tolerance.
type CuePair struct {
	ReferenceText  string `json:"reference_text"`
	TranslatedText string `json:"translated_text"`
}

// CueRef identifies a cue that exists in only one of the two documents.
type CueRef struct {
	Begin string `json:"begin"`
	End   string `json:"end"`
	Text  string `json:"text"`
}

// Value implements driver.Valuer for database storage
func (rd ReportDetails) Value() (driver.Value, error) {
	return json.Marshal(rd)
}

// Scan implements sql.Scanner for database retrieval
func (rd *ReportDetails) Scan(value interface{}) error {
	if value == nil {
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, rd)
}

// RunSummary is the one-line-per-file view of a run, mirroring the summary
// table the validator renders for a batch.
type RunSummary struct {
	Filename string `json:"filename"`
	Language string `json:"language"`
	Passed   bool   `json:"passed"`
}
