package analytics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/subtitleops/captionlint/pkg/models"
)

type mockRepository struct {
	reports []*models.Report
	stats   []*models.LanguageStats
}

func (m *mockRepository) GetReportsByRunID(ctx context.Context, runID string) ([]*models.Report, error) {
	return m.reports, nil
}

func (m *mockRepository) GetLanguageStats(ctx context.Context) ([]*models.LanguageStats, error) {
	return m.stats, nil
}

func TestCalculateQualityScore(t *testing.T) {
	service := &Service{}

	tests := []struct {
		name     string
		report   *models.Report
		minScore float64
		maxScore float64
	}{
		{
			name: "Clean report",
			report: &models.Report{
				LanguageOK: true,
				Passed:     true,
				Details: models.ReportDetails{
					LineCountMatch: true,
				},
			},
			minScore: 100,
			maxScore: 100,
		},
		{
			name: "Report with timecode drift",
			report: &models.Report{
				LanguageOK: true,
				Details: models.ReportDetails{
					LineCountMatch: true,
					TimecodeIssues: []models.CuePair{{}, {}, {}},
				},
			},
			minScore: 90,
			maxScore: 95,
		},
		{
			name: "Report with overlap",
			report: &models.Report{
				LanguageOK: true,
				Details: models.ReportDetails{
					LineCountMatch: true,
					Overlap:        true,
				},
			},
			minScore: 75,
			maxScore: 75,
		},
		{
			name: "Report with line count mismatch and bad language tag",
			report: &models.Report{
				LanguageOK: false,
				Details: models.ReportDetails{
					LineCountMatch: false,
				},
			},
			minScore: 70,
			maxScore: 70,
		},
		{
			name: "Report with decode error",
			report: &models.Report{
				ErrorMsg: "file is not valid UTF-8",
			},
			minScore: 0,
			maxScore: 0,
		},
		{
			name: "Heavily drifting report bottoms out at zero",
			report: &models.Report{
				LanguageOK: false,
				Details: models.ReportDetails{
					LineCountMatch: false,
					Overlap:        true,
					TimecodeIssues: make([]models.CuePair, 50),
				},
			},
			minScore: 0,
			maxScore: 10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := service.CalculateQualityScore(tt.report)
			assert.GreaterOrEqual(t, score, 0.0, "Score should be >= 0")
			assert.LessOrEqual(t, score, 100.0, "Score should be <= 100")
			assert.GreaterOrEqual(t, score, tt.minScore, "Score should be >= min expected")
			assert.LessOrEqual(t, score, tt.maxScore, "Score should be <= max expected")
		})
	}
}

func TestAggregateRunStats(t *testing.T) {
	repo := &mockRepository{
		reports: []*models.Report{
			{
				Language:   "de",
				LanguageOK: true,
				Passed:     true,
				Details:    models.ReportDetails{LineCountMatch: true},
			},
			{
				Language:   "fr",
				LanguageOK: true,
				Passed:     false,
				Details: models.ReportDetails{
					LineCountMatch: true,
					TimecodeIssues: []models.CuePair{{}, {}},
					Overlap:        true,
				},
			},
			{
				Language:   "en",
				LanguageOK: false,
				Passed:     false,
				Details:    models.ReportDetails{LineCountMatch: false},
			},
			{
				Language: "Unknown",
				Passed:   false,
				ErrorMsg: "file is not valid UTF-8",
			},
		},
	}

	service := NewService(repo)

	stats, err := service.AggregateRunStats(context.Background(), "run-1")
	assert.NoError(t, err)
	assert.Equal(t, "run-1", stats.RunID)
	assert.Equal(t, 4, stats.TotalDocuments)
	assert.Equal(t, 1, stats.PassedDocuments)
	assert.Equal(t, 3, stats.FailedDocuments)
	assert.Equal(t, 25.0, stats.PassRate)
	assert.Equal(t, 2, stats.TimecodeIssues)
	assert.Equal(t, 1, stats.Overlaps)
	assert.Equal(t, 1, stats.LineCountMismatches)
	assert.Equal(t, 2, stats.LanguageMismatches)
	assert.Equal(t, 1, stats.DecodeErrors)
	assert.False(t, stats.GeneratedAt.IsZero())
}

func TestAggregateRunStats_Empty(t *testing.T) {
	service := NewService(&mockRepository{})

	stats, err := service.AggregateRunStats(context.Background(), "run-empty")
	assert.NoError(t, err)
	assert.Equal(t, 0, stats.TotalDocuments)
	assert.Equal(t, 0.0, stats.PassRate)
}

func TestGetLanguageStats(t *testing.T) {
	repo := &mockRepository{
		stats: []*models.LanguageStats{
			{Language: "de", TotalReports: 10, PassedReports: 8, PassRate: 80},
			{Language: "fr", TotalReports: 4, PassedReports: 4, PassRate: 100},
		},
	}

	service := NewService(repo)

	stats, err := service.GetLanguageStats(context.Background())
	assert.NoError(t, err)
	assert.Len(t, stats, 2)
	assert.Equal(t, "de", stats[0].Language)
	assert.Equal(t, 80.0, stats[0].PassRate)
}
