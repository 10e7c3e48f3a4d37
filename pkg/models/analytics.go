package models

import "time"

// RunStats aggregates the outcome of one validation run
type RunStats struct {
	RunID               string    `json:"run_id"`
	TotalDocuments      int       `json:"total_documents"`
	PassedDocuments     int       `json:"passed_documents"`
	FailedDocuments     int       `json:"failed_documents"`
	PassRate            float64   `json:"pass_rate"`
	TimecodeIssues      int       `json:"timecode_issues"`
	Overlaps            int       `json:"overlaps"`
	LineCountMismatches int       `json:"line_count_mismatches"`
	LanguageMismatches  int       `json:"language_mismatches"`
	DecodeErrors        int       `json:"decode_errors"`
	GeneratedAt         time.Time `json:"generated_at"`
}

// LanguageStats aggregates report outcomes per translation language
type LanguageStats struct {
	Language      string  `json:"language"`
	TotalReports  int64   `json:"total_reports"`
	PassedReports int64   `json:"passed_reports"`
	PassRate      float64 `json:"pass_rate"`
}
