package caption

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cue(begin, end string) Cue {
	return Cue{Begin: begin, End: end, Text: "text"}
}

func TestCheckOverlap_Found(t *testing.T) {
	cues := []Cue{
		cue("00:00:00:00", "00:00:02:00"),
		cue("00:00:01:00", "00:00:03:00"),
	}

	overlap, index, err := CheckOverlap(cues)
	require.NoError(t, err)
	assert.True(t, overlap)
	assert.Equal(t, 1, index)
}

func TestCheckOverlap_AbuttingIsNotOverlap(t *testing.T) {
	cues := []Cue{
		cue("00:00:00:00", "00:00:02:00"),
		cue("00:00:02:00", "00:00:04:00"),
	}

	overlap, _, err := CheckOverlap(cues)
	require.NoError(t, err)
	assert.False(t, overlap)
}

func TestCheckOverlap_Empty(t *testing.T) {
	overlap, _, err := CheckOverlap(nil)
	require.NoError(t, err)
	assert.False(t, overlap)
}

func TestCheckOverlap_SingleCue(t *testing.T) {
	overlap, _, err := CheckOverlap([]Cue{cue("00:00:05:00", "00:00:06:00")})
	require.NoError(t, err)
	assert.False(t, overlap)
}

func TestCheckOverlap_StopsAtFirstViolation(t *testing.T) {
	cues := []Cue{
		cue("00:00:00:00", "00:00:02:00"),
		cue("00:00:03:00", "00:00:05:00"),
		cue("00:00:04:00", "00:00:06:00"),
		cue("00:00:05:00", "00:00:07:00"),
	}

	overlap, index, err := CheckOverlap(cues)
	require.NoError(t, err)
	assert.True(t, overlap)
	assert.Equal(t, 2, index)
}

func TestCheckOverlap_MalformedTimecode(t *testing.T) {
	cues := []Cue{
		cue("00:00:00:00", "bad"),
	}

	_, _, err := CheckOverlap(cues)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedTimecode)
}
