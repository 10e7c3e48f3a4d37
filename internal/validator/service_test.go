package validator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const referenceDoc = `<?xml version="1.0" encoding="utf-8"?>
<tt xml:lang="en">
<body>
    <p begin="00:00:01:00" end="00:00:03:00">Hello there.</p>
    <p begin="00:00:04:00" end="00:00:06:00">How are you?</p>
</body>
</tt>`

const cleanTranslation = `<?xml version="1.0" encoding="utf-8"?>
<tt xml:lang="fr-FR">
<body>
    <p begin="00:00:01:00" end="00:00:03:00">Bonjour.</p>
    <p begin="00:00:04:02" end="00:00:06:00">Comment allez-vous ?</p>
</body>
</tt>`

const driftedTranslation = `<?xml version="1.0" encoding="utf-8"?>
<tt xml:lang="de-DE">
<body>
    <p begin="00:00:01:10" end="00:00:03:10">Hallo.</p>
    <p begin="00:00:04:00" end="00:00:06:00">Wie geht es dir?</p>
</body>
</tt>`

func TestValidateDocument_Clean(t *testing.T) {
	s := NewService()

	reference, err := s.ParseReference([]byte(referenceDoc))
	require.NoError(t, err)

	result := s.ValidateDocument(reference, "clean_fr.itt", []byte(cleanTranslation))

	assert.True(t, result.Passed)
	assert.Empty(t, result.ErrorMsg)
	assert.Equal(t, "fr-FR", result.Language)
	assert.True(t, result.LanguageOK)
	assert.True(t, result.Details.LineCountMatch)
	assert.Empty(t, result.Details.TimecodeIssues)
	assert.False(t, result.Details.Overlap)
	assert.Empty(t, result.Corrected, "passing files get no corrected scaffold")
}

func TestValidateDocument_TimecodeDrift(t *testing.T) {
	s := NewService()

	reference, err := s.ParseReference([]byte(referenceDoc))
	require.NoError(t, err)

	result := s.ValidateDocument(reference, "drifted_de.itt", []byte(driftedTranslation))

	assert.False(t, result.Passed)
	require.Len(t, result.Details.TimecodeIssues, 1)
	assert.Equal(t, "Hello there.", result.Details.TimecodeIssues[0].ReferenceText)
	assert.Equal(t, "Hallo.", result.Details.TimecodeIssues[0].TranslatedText)

	// The scaffold carries the reference timing with placeholder text.
	assert.Contains(t, result.Corrected, `<p begin="00:00:01:00" end="00:00:03:00">TRANSLATED TEXT HERE</p>`)
	assert.NotContains(t, result.Corrected, "Hallo")
}

func TestValidateDocument_EnglishTranslationFlagged(t *testing.T) {
	s := NewService()

	reference, err := s.ParseReference([]byte(referenceDoc))
	require.NoError(t, err)

	english := strings.Replace(cleanTranslation, `xml:lang="fr-FR"`, `xml:lang="en"`, 1)
	result := s.ValidateDocument(reference, "still_english.itt", []byte(english))

	assert.Equal(t, "en", result.Language)
	assert.False(t, result.LanguageOK)
	// Language problems never fail structural validation on their own.
	assert.True(t, result.Passed)
}

func TestValidateDocument_LineCountMismatch(t *testing.T) {
	s := NewService()

	reference, err := s.ParseReference([]byte(referenceDoc))
	require.NoError(t, err)

	short := `<tt xml:lang="it-IT"><body>
    <p begin="00:00:01:00" end="00:00:03:00">Ciao.</p>
</body></tt>`

	result := s.ValidateDocument(reference, "short_it.itt", []byte(short))

	assert.False(t, result.Passed)
	assert.False(t, result.Details.LineCountMatch)
	assert.Len(t, result.Details.MissingLines, 1)
	assert.Equal(t, "How are you?", result.Details.MissingLines[0].Text)
	assert.NotEmpty(t, result.Corrected)
}

func TestValidateDocument_Overlap(t *testing.T) {
	s := NewService()

	reference, err := s.ParseReference([]byte(referenceDoc))
	require.NoError(t, err)

	overlapping := `<tt xml:lang="es-ES"><body>
    <p begin="00:00:01:00" end="00:00:05:00">Hola.</p>
    <p begin="00:00:04:00" end="00:00:06:00">¿Cómo estás?</p>
</body></tt>`

	result := s.ValidateDocument(reference, "overlap_es.itt", []byte(overlapping))

	assert.False(t, result.Passed)
	assert.True(t, result.Details.Overlap)
	assert.Equal(t, 1, result.Details.OverlapIndex)
}

func TestValidateDocument_DecodeErrorScoped(t *testing.T) {
	s := NewService()

	reference, err := s.ParseReference([]byte(referenceDoc))
	require.NoError(t, err)

	result := s.ValidateDocument(reference, "broken.itt", []byte{0xff, 0xfe})

	assert.False(t, result.Passed)
	assert.NotEmpty(t, result.ErrorMsg)
	assert.Equal(t, "Unknown", result.Language)
}

func TestValidateBatch(t *testing.T) {
	s := NewService()

	batch, err := s.ValidateBatch([]byte(referenceDoc), []NamedContent{
		{Filename: "clean_fr.itt", Content: []byte(cleanTranslation)},
		{Filename: "drifted_de.itt", Content: []byte(driftedTranslation)},
		{Filename: "broken.itt", Content: []byte{0xff, 0xfe}},
	})
	require.NoError(t, err)

	assert.Equal(t, "en", batch.ReferenceLanguage)
	assert.Equal(t, 2, batch.ReferenceCues)
	require.Len(t, batch.Results, 3)
	require.Len(t, batch.Summary, 3)

	assert.True(t, batch.Summary[0].Passed)
	assert.False(t, batch.Summary[1].Passed)
	assert.False(t, batch.Summary[2].Passed)

	// The bad file stayed scoped: the batch itself succeeded.
	assert.NotEmpty(t, batch.Results[2].ErrorMsg)
}

func TestValidateBatch_BadReference(t *testing.T) {
	s := NewService()

	_, err := s.ValidateBatch([]byte{0xff, 0xfe}, []NamedContent{
		{Filename: "clean_fr.itt", Content: []byte(cleanTranslation)},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reference document")
}
