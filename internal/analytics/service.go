package analytics

import (
	"context"
	"time"

	"github.com/subtitleops/captionlint/pkg/models"
)

// Service aggregates validation outcomes into quality statistics
type Service struct {
	repo Repository
}

// Repository defines the interface for report retrieval
type Repository interface {
	GetReportsByRunID(ctx context.Context, runID string) ([]*models.Report, error)
	GetLanguageStats(ctx context.Context) ([]*models.LanguageStats, error)
}

// NewService creates a new analytics service
func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
	}
}

// AggregateRunStats computes summary statistics for a validation run
func (s *Service) AggregateRunStats(ctx context.Context, runID string) (*models.RunStats, error) {
	reports, err := s.repo.GetReportsByRunID(ctx, runID)
	if err != nil {
		return nil, err
	}

	stats := &models.RunStats{
		RunID:          runID,
		TotalDocuments: len(reports),
		GeneratedAt:    time.Now(),
	}

	if len(reports) == 0 {
		return stats, nil
	}

	for _, report := range reports {
		if report.Passed {
			stats.PassedDocuments++
		} else {
			stats.FailedDocuments++
		}

		if !report.LanguageOK {
			stats.LanguageMismatches++
		}

		if report.ErrorMsg != "" {
			stats.DecodeErrors++
			continue
		}

		stats.TimecodeIssues += len(report.Details.TimecodeIssues)
		if report.Details.Overlap {
			stats.Overlaps++
		}
		if !report.Details.LineCountMatch {
			stats.LineCountMismatches++
		}
	}

	stats.PassRate = (float64(stats.PassedDocuments) / float64(stats.TotalDocuments)) * 100

	return stats, nil
}

// GetLanguageStats returns per-language pass rates across all reports
func (s *Service) GetLanguageStats(ctx context.Context) ([]*models.LanguageStats, error) {
	return s.repo.GetLanguageStats(ctx)
}

// CalculateQualityScore computes an overall quality score (0-100) for a report.
// Higher score = closer to the reference timing.
func (s *Service) CalculateQualityScore(report *models.Report) float64 {
	if report.ErrorMsg != "" {
		return 0
	}

	score := 100.0

	// Penalize for timecode drift (2 points per drifting cue, up to -40)
	driftPenalty := float64(len(report.Details.TimecodeIssues)) * 2
	if driftPenalty > 40 {
		driftPenalty = 40
	}
	score -= driftPenalty

	// Penalize for overlapping cues (-25 points)
	if report.Details.Overlap {
		score -= 25
	}

	// Penalize for a line count mismatch (-20 points)
	if !report.Details.LineCountMatch {
		score -= 20
	}

	// Penalize for an unrecognized language tag (-10 points)
	if !report.LanguageOK {
		score -= 10
	}

	if score < 0 {
		score = 0
	}

	return score
}
