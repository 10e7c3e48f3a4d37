package caption

// LanguageUnknown is the sentinel returned when a document declares no
// xml:lang attribute.
const LanguageUnknown = "Unknown"

// validLanguageCodes is the set of locale identifiers accepted for
// translated documents. The reference document is expected to be English,
// so "en" is deliberately absent.
var validLanguageCodes = map[string]struct{}{
	"ar-001": {}, "id-ID": {}, "ms-MY": {}, "bn-IN": {}, "ca-ES": {},
	"cs-CZ": {}, "da-DK": {}, "nl-NL": {}, "eu-ES": {}, "fil-PH": {},
	"fi-FI": {}, "fr-FR": {}, "fr-CA": {}, "gl-ES": {}, "de-DE": {},
	"el-GR": {}, "gu-IN": {}, "he-IL": {}, "hi-IN": {}, "hu-HU": {},
	"it-IT": {}, "ja-JP": {}, "kn-IN": {}, "ko-KR": {}, "ml-IN": {},
	"cmn-CN": {}, "cmn-Hant": {}, "mr-IN": {}, "ne-NP": {}, "nb-NO": {},
	"pl-PL": {}, "pt-BR": {}, "pt-PT": {}, "pa-IN": {}, "ro-RO": {},
	"ru-RU": {}, "sr-RS": {}, "es-ES": {}, "es-419": {}, "sv-SE": {},
	"ta-IN": {}, "te-IN": {}, "th-TH": {}, "tr-TR": {}, "uk-UA": {},
	"ur-PK": {}, "vi-VN": {},
}

// IsValidLanguageCode reports whether code is one of the locale identifiers
// accepted for translated documents.
func IsValidLanguageCode(code string) bool {
	_, ok := validLanguageCodes[code]
	return ok
}
