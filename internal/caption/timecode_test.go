package caption

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimecode(t *testing.T) {
	tests := []struct {
		name     string
		tc       string
		expected int
	}{
		{"zero", "00:00:00:00", 0},
		{"one second", "00:00:01:00", 30},
		{"one minute", "00:01:00:00", 1800},
		{"one hour", "01:00:00:00", 108000},
		{"frames only", "00:00:00:15", 15},
		{"mixed", "01:02:03:04", 108000 + 2*1800 + 3*30 + 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frames, err := ParseTimecode(tt.tc)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, frames)
		})
	}
}

func TestParseTimecode_Malformed(t *testing.T) {
	tests := []struct {
		name string
		tc   string
	}{
		{"too few parts", "00:00:01"},
		{"too many parts", "00:00:00:01:02"},
		{"not a number", "00:00:xx:00"},
		{"empty", ""},
		{"empty part", "00::00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTimecode(tt.tc)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedTimecode))
		})
	}
}

// Frame values at or above the frame rate are accepted; the frame rate is
// assumed, never validated against the document.
func TestParseTimecode_PermissiveFrameField(t *testing.T) {
	frames, err := ParseTimecode("00:00:00:45")
	require.NoError(t, err)
	assert.Equal(t, 45, frames)
}

func TestParseTimecode_Monotonic(t *testing.T) {
	ordered := []string{
		"00:00:00:00",
		"00:00:00:29",
		"00:00:01:00",
		"00:00:59:29",
		"00:01:00:00",
		"00:59:59:29",
		"01:00:00:00",
		"10:00:00:00",
	}

	prev := -1
	for _, tc := range ordered {
		frames, err := ParseTimecode(tc)
		require.NoError(t, err)
		assert.Greater(t, frames, prev, "parse should be monotonic at %s", tc)
		prev = frames
	}
}
