package caption

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDoc = `<?xml version="1.0" encoding="utf-8"?>
<tt xmlns="http://www.w3.org/ns/ttml" xml:lang="fr-FR">
<body>
    <p begin="00:00:01:00" end="00:00:03:15">Bonjour</p>
    <p begin="00:00:04:00" end="00:00:06:00">Comment <span>allez</span>-vous ?</p>
</body>
</tt>`

func TestExtract(t *testing.T) {
	doc, err := Extract([]byte(sampleDoc))
	require.NoError(t, err)

	assert.Equal(t, "fr-FR", doc.Language)
	require.Len(t, doc.Cues, 2)

	assert.Equal(t, "00:00:01:00", doc.Cues[0].Begin)
	assert.Equal(t, "00:00:03:15", doc.Cues[0].End)
	assert.Equal(t, "Bonjour", doc.Cues[0].Text)

	// Inner markup stays raw.
	assert.Equal(t, "Comment <span>allez</span>-vous ?", doc.Cues[1].Text)
}

func TestExtract_NoLanguage(t *testing.T) {
	doc, err := Extract([]byte(`<tt><body><p begin="00:00:00:00" end="00:00:01:00">Hi</p></body></tt>`))
	require.NoError(t, err)
	assert.Equal(t, LanguageUnknown, doc.Language)
}

func TestExtract_SingleQuotedLanguage(t *testing.T) {
	doc, err := Extract([]byte(`<tt xml:lang='es-419'></tt>`))
	require.NoError(t, err)
	assert.Equal(t, "es-419", doc.Language)
}

func TestExtract_FirstLanguageWins(t *testing.T) {
	content := `<tt xml:lang="de-DE"><div xml:lang="it-IT"></div></tt>`
	doc, err := Extract([]byte(content))
	require.NoError(t, err)
	assert.Equal(t, "de-DE", doc.Language)
}

func TestExtract_NoCues(t *testing.T) {
	doc, err := Extract([]byte(`<tt xml:lang="ja-JP"><body></body></tt>`))
	require.NoError(t, err)
	assert.Empty(t, doc.Cues)
	assert.Equal(t, "ja-JP", doc.Language)
}

func TestExtract_InvalidEncoding(t *testing.T) {
	_, err := Extract([]byte{0xff, 0xfe, 0xfd})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidEncoding))
}

// Only cues with attributes in the exact begin/end shape are seen; anything
// else is ignored rather than reported.
func TestExtract_IgnoresNonMatchingParagraphs(t *testing.T) {
	content := `<tt>
    <p begin="00:00:01:00" end="00:00:02:00">kept</p>
    <p begin="0:0:1:0" end="00:00:02:00">dropped</p>
    <p end="00:00:02:00" begin="00:00:01:00">dropped too</p>
</tt>`
	doc, err := Extract([]byte(content))
	require.NoError(t, err)
	require.Len(t, doc.Cues, 1)
	assert.Equal(t, "kept", doc.Cues[0].Text)
}

// Non-greedy matching stops at the first closing tag, so a nested <p> splits
// the outer cue. This mirrors the textual scan contract.
func TestExtract_NonGreedy(t *testing.T) {
	content := `<p begin="00:00:01:00" end="00:00:02:00">a</p><p begin="00:00:03:00" end="00:00:04:00">b</p>`
	doc, err := Extract([]byte(content))
	require.NoError(t, err)
	require.Len(t, doc.Cues, 2)
	assert.Equal(t, "a", doc.Cues[0].Text)
	assert.Equal(t, "b", doc.Cues[1].Text)
}

func TestIsValidLanguageCode(t *testing.T) {
	assert.True(t, IsValidLanguageCode("fr-FR"))
	assert.True(t, IsValidLanguageCode("cmn-Hant"))
	assert.True(t, IsValidLanguageCode("ar-001"))

	// English is never a valid translation language.
	assert.False(t, IsValidLanguageCode("en"))
	assert.False(t, IsValidLanguageCode("en-US"))
	assert.False(t, IsValidLanguageCode(LanguageUnknown))
	assert.False(t, IsValidLanguageCode(""))
}
