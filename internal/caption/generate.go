package caption

import (
	"fmt"
	"strings"
)

// PlaceholderText fills each cue of a generated correction scaffold.
const PlaceholderText = "TRANSLATED TEXT HERE"

// GenerateCorrected emits a minimal caption document carrying the reference
// timing with placeholder text, used as a re-translation scaffold. Begin and
// end timecodes are re-emitted verbatim from the reference cues, never
// round-tripped through frame counts, so the reference formatting survives
// exactly.
func GenerateCorrected(reference []Cue) string {
	var b strings.Builder
	b.WriteString("<?xml version='1.0' encoding='utf-8'?>\n<tt>\n<body>\n")
	for _, cue := range reference {
		fmt.Fprintf(&b, "    <p begin=\"%s\" end=\"%s\">%s</p>\n", cue.Begin, cue.End, PlaceholderText)
	}
	b.WriteString("</body>\n</tt>")
	return b.String()
}
