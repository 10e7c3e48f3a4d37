package caption

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// FrameRate is the fixed frame rate all timecodes are interpreted under.
// It is never read from the document.
const FrameRate = 30

// ErrMalformedTimecode indicates a timecode that does not split into four
// integer parts.
var ErrMalformedTimecode = errors.New("malformed timecode")

// ParseTimecode converts a textual HH:MM:SS:FF timecode into an absolute
// frame count at 30fps. Frame values of 30 or above are accepted as-is;
// the frame rate is assumed, not validated.
func ParseTimecode(tc string) (int, error) {
	parts := strings.Split(tc, ":")
	if len(parts) != 4 {
		return 0, fmt.Errorf("%w: %q", ErrMalformedTimecode, tc)
	}

	var fields [4]int
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrMalformedTimecode, tc)
		}
		fields[i] = n
	}

	h, m, s, f := fields[0], fields[1], fields[2], fields[3]
	return (h*3600+m*60+s)*FrameRate + f, nil
}
