package caption

import "fmt"

// FrameTolerance is the maximum allowed drift, in frames, between a
// reference cue and its positional counterpart before the pair is flagged.
// A delta of exactly FrameTolerance is not flagged.
const FrameTolerance = 3

// TimecodeIssue pairs the text of index-aligned cues whose timing drifted
// beyond the tolerance.
type TimecodeIssue struct {
	ReferenceText  string `json:"reference_text"`
	TranslatedText string `json:"translated_text"`
}

// ComparisonResult holds the divergences between a reference and a
// translated cue sequence.
type ComparisonResult struct {
	LineCountMatch bool            `json:"line_count_match"`
	TimecodeIssues []TimecodeIssue `json:"timecode_issues,omitempty"`
	ExtraLines     []Cue           `json:"extra_lines,omitempty"`
	MissingLines   []Cue           `json:"missing_lines,omitempty"`
}

// Compare aligns two cue sequences positionally and reports divergences.
// Alignment is strictly by index: one inserted or deleted cue upstream
// cascades into mismatches for everything after it. That is the contract,
// not a defect; content- or time-based matching would change which pairs
// are flagged. The whole overlap region is always scanned so the report is
// complete.
func Compare(reference, translated []Cue) (*ComparisonResult, error) {
	result := &ComparisonResult{
		LineCountMatch: len(reference) == len(translated),
	}

	n := len(reference)
	if len(translated) < n {
		n = len(translated)
	}

	for i := 0; i < n; i++ {
		ref, tr := reference[i], translated[i]

		refStart, err := ref.StartFrames()
		if err != nil {
			return nil, fmt.Errorf("reference cue %d: %w", i, err)
		}
		refEnd, err := ref.EndFrames()
		if err != nil {
			return nil, fmt.Errorf("reference cue %d: %w", i, err)
		}
		trStart, err := tr.StartFrames()
		if err != nil {
			return nil, fmt.Errorf("translated cue %d: %w", i, err)
		}
		trEnd, err := tr.EndFrames()
		if err != nil {
			return nil, fmt.Errorf("translated cue %d: %w", i, err)
		}

		if abs(refStart-trStart) > FrameTolerance || abs(refEnd-trEnd) > FrameTolerance {
			result.TimecodeIssues = append(result.TimecodeIssues, TimecodeIssue{
				ReferenceText:  ref.Text,
				TranslatedText: tr.Text,
			})
		}
	}

	if len(translated) > len(reference) {
		result.ExtraLines = append(result.ExtraLines, translated[len(reference):]...)
	}
	if len(reference) > len(translated) {
		result.MissingLines = append(result.MissingLines, reference[len(translated):]...)
	}

	return result, nil
}

// HasIssues reports whether the comparison found any divergence.
func (r *ComparisonResult) HasIssues() bool {
	return !r.LineCountMatch || len(r.TimecodeIssues) > 0
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
