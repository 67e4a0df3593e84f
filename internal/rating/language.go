package rating

// UnknownLanguage is the display name for unmapped language codes.
const UnknownLanguage = "Unknown"

var languageCodes = []struct {
	code string
	name string
}{
	{"en", "English"},
	{"es", "Spanish"},
	{"fr", "French"},
	{"de", "German"},
	{"it", "Italian"},
	{"ja", "Japanese"},
	{"ko", "Korean"},
	{"hi", "Hindi"},
	{"zh", "Mandarin"},
	{"pt", "Portuguese"},
	{"nl", "Dutch"},
	{"ar", "Arabic"},
	{"kn", "Kannada"},
	{"te", "Telugu"},
	{"ta", "Tamil"},
	{"ml", "Malayalam"},
	{"bn", "Bengali"},
	{"mr", "Marathi"},
	{"gu", "Gujarati"},
	{"pa", "Punjabi"},
	{"th", "Thai"},
	{"vi", "Vietnamese"},
	{"id", "Indonesian"},
	{"ms", "Malay"},
	{"tl", "Filipino"},
}

var languageMap = func() map[string]string {
	m := make(map[string]string, len(languageCodes))
	for _, l := range languageCodes {
		m[l.code] = l.name
	}
	return m
}()

// MapLanguage returns the display name for an ISO 639-1 code.
// Lookups are case-sensitive; anything unmapped is UnknownLanguage.
func MapLanguage(code string) string {
	if name, ok := languageMap[code]; ok {
		return name
	}
	return UnknownLanguage
}

// Languages returns every display name MapLanguage can produce, in table order.
func Languages() []string {
	names := make([]string, 0, len(languageCodes)+1)
	for _, l := range languageCodes {
		names = append(names, l.name)
	}
	return append(names, UnknownLanguage)
}
