package caption

import "fmt"

// CheckOverlap scans cues in document order and reports whether any cue
// starts strictly before the previous cue has ended. Abutting cues, where a
// start equals the previous end, do not overlap. The scan stops at the first
// violation; its cue index is returned alongside the flag.
func CheckOverlap(cues []Cue) (bool, int, error) {
	prevEnd := -1
	for i, cue := range cues {
		start, err := cue.StartFrames()
		if err != nil {
			return false, 0, fmt.Errorf("cue %d: %w", i, err)
		}
		end, err := cue.EndFrames()
		if err != nil {
			return false, 0, fmt.Errorf("cue %d: %w", i, err)
		}

		if prevEnd >= 0 && start < prevEnd {
			return true, i, nil
		}
		prevEnd = end
	}
	return false, 0, nil
}
