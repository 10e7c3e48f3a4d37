package caption

import (
	"errors"
	"fmt"
	"regexp"
	"unicode/utf8"
)

// ErrInvalidEncoding indicates document bytes that are not valid UTF-8.
var ErrInvalidEncoding = errors.New("document is not valid UTF-8")

// Cue is one timed text entry. Begin and End keep the exact textual
// timecodes from the document; Text is the raw inner markup, not unescaped.
type Cue struct {
	Begin string `json:"begin"`
	End   string `json:"end"`
	Text  string `json:"text"`
}

// Document is an ordered cue sequence plus the declared language tag.
// Cue order is document order and is the alignment key for comparison.
type Document struct {
	Cues     []Cue  `json:"cues"`
	Language string `json:"language"`
}

// The scan is intentionally textual, not an XML parse: non-greedy up to the
// first </p>, so nested <p> elements are not supported. Richer parsing would
// change which cues are seen and is out of scope.
var (
	cueRe  = regexp.MustCompile(`<p begin="(\d{2}:\d{2}:\d{2}:\d{2})" end="(\d{2}:\d{2}:\d{2}:\d{2})">(.*?)</p>`)
	langRe = regexp.MustCompile(`xml:lang=["']([a-zA-Z0-9-]+)["']`)
)

// Extract parses raw document bytes into an ordered cue sequence and the
// declared language tag. The language scan is single-shot: the first
// xml:lang occurrence anywhere in the document wins, and the sentinel
// "Unknown" is used when none is present.
func Extract(content []byte) (*Document, error) {
	if !utf8.Valid(content) {
		return nil, ErrInvalidEncoding
	}
	text := string(content)

	var cues []Cue
	for _, m := range cueRe.FindAllStringSubmatch(text, -1) {
		cues = append(cues, Cue{Begin: m[1], End: m[2], Text: m[3]})
	}

	lang := LanguageUnknown
	if m := langRe.FindStringSubmatch(text); m != nil {
		lang = m[1]
	}

	return &Document{Cues: cues, Language: lang}, nil
}

// StartFrames parses the cue's begin timecode into a frame count.
func (c Cue) StartFrames() (int, error) {
	frames, err := ParseTimecode(c.Begin)
	if err != nil {
		return 0, fmt.Errorf("cue begin: %w", err)
	}
	return frames, nil
}

// EndFrames parses the cue's end timecode into a frame count.
func (c Cue) EndFrames() (int, error) {
	frames, err := ParseTimecode(c.End)
	if err != nil {
		return 0, fmt.Errorf("cue end: %w", err)
	}
	return frames, nil
}
