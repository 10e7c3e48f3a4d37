package validator

import (
	"fmt"

	"github.com/subtitleops/captionlint/internal/caption"
	"github.com/subtitleops/captionlint/pkg/models"
)

// Service runs the validation engine over uploaded document contents. It is
// deliberately free of I/O: callers hand it raw bytes and receive plain
// results, so the API can run it inline and the worker can run it per job.
type Service struct{}

// NewService creates a new validator service
func NewService() *Service {
	return &Service{}
}

// NamedContent is one translated file queued for validation.
type NamedContent struct {
	Filename string
	Content  []byte
}

// FileResult is the validation outcome for one translated file.
type FileResult struct {
	Filename  string
	Language  string
	// LanguageOK is false for "en", "Unknown", and anything outside the
	// accepted locale table. It does not affect Passed; structural timing
	// findings alone decide pass/fail.
	LanguageOK bool
	Passed     bool
	ErrorMsg   string
	Details    models.ReportDetails
	// Corrected carries the re-translation scaffold, generated only when
	// structural errors were found.
	Corrected string
}

// BatchResult is the outcome of validating a whole upload batch against one
// reference document.
type BatchResult struct {
	ReferenceLanguage string
	ReferenceCues     int
	Results           []FileResult
	Summary           []models.RunSummary
}

// ParseReference extracts the reference document once so a batch can reuse it
// across every translated file.
func (s *Service) ParseReference(content []byte) (*caption.Document, error) {
	doc, err := caption.Extract(content)
	if err != nil {
		return nil, fmt.Errorf("reference document: %w", err)
	}
	return doc, nil
}

// ValidateDocument validates one translated file against an already-parsed
// reference. Extraction and timecode failures are captured in the result
// rather than returned, so one bad file never aborts a batch.
func (s *Service) ValidateDocument(reference *caption.Document, filename string, content []byte) FileResult {
	result := FileResult{Filename: filename, Language: caption.LanguageUnknown}

	doc, err := caption.Extract(content)
	if err != nil {
		result.ErrorMsg = err.Error()
		return result
	}

	result.Language = doc.Language
	result.LanguageOK = caption.IsValidLanguageCode(doc.Language)

	comparison, err := caption.Compare(reference.Cues, doc.Cues)
	if err != nil {
		result.ErrorMsg = err.Error()
		return result
	}

	overlap, overlapIndex, err := caption.CheckOverlap(doc.Cues)
	if err != nil {
		result.ErrorMsg = err.Error()
		return result
	}

	result.Details = models.ReportDetails{
		LineCountMatch: comparison.LineCountMatch,
		TimecodeIssues: toCuePairs(comparison.TimecodeIssues),
		ExtraLines:     toCueRefs(comparison.ExtraLines),
		MissingLines:   toCueRefs(comparison.MissingLines),
		Overlap:        overlap,
		OverlapIndex:   overlapIndex,
		ReferenceCues:  len(reference.Cues),
		TranslatedCues: len(doc.Cues),
	}

	errorsFound := comparison.HasIssues() || overlap
	result.Passed = !errorsFound

	if errorsFound {
		result.Corrected = caption.GenerateCorrected(reference.Cues)
	}

	return result
}

// ValidateBatch validates every translated file against the reference bytes.
// A reference that cannot be extracted fails the whole batch; translated
// failures stay scoped to their own file.
func (s *Service) ValidateBatch(referenceContent []byte, files []NamedContent) (*BatchResult, error) {
	reference, err := s.ParseReference(referenceContent)
	if err != nil {
		return nil, err
	}

	batch := &BatchResult{
		ReferenceLanguage: reference.Language,
		ReferenceCues:     len(reference.Cues),
	}

	for _, file := range files {
		result := s.ValidateDocument(reference, file.Filename, file.Content)
		batch.Results = append(batch.Results, result)
		batch.Summary = append(batch.Summary, models.RunSummary{
			Filename: result.Filename,
			Language: result.Language,
			Passed:   result.Passed && result.ErrorMsg == "",
		})
	}

	return batch, nil
}

func toCuePairs(issues []caption.TimecodeIssue) []models.CuePair {
	if len(issues) == 0 {
		return nil
	}
	pairs := make([]models.CuePair, len(issues))
	for i, issue := range issues {
		pairs[i] = models.CuePair{
			ReferenceText:  issue.ReferenceText,
			TranslatedText: issue.TranslatedText,
		}
	}
	return pairs
}

func toCueRefs(cues []caption.Cue) []models.CueRef {
	if len(cues) == 0 {
		return nil
	}
	refs := make([]models.CueRef, len(cues))
	for i, c := range cues {
		refs[i] = models.CueRef{Begin: c.Begin, End: c.End, Text: c.Text}
	}
	return refs
}
