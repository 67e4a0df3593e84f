package rating

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapCertification_Table(t *testing.T) {
	tests := map[Rating][]string{
		U:        {"U", "G", "TV-Y", "TV-G"},
		PG:       {"PG", "TV-Y7", "TV-PG", "6"},
		Twelve:   {"12", "12A", "PG-13", "TV-14", "M"},
		Fifteen:  {"15", "R", "16", "MA15+"},
		Eighteen: {"18", "NC-17", "TV-MA"},
	}

	for want, codes := range tests {
		for _, code := range codes {
			t.Run(code, func(t *testing.T) {
				assert.Equal(t, want, MapCertification(code))
				assert.True(t, IsKnownCertification(code))
				// deterministic
				assert.Equal(t, MapCertification(code), MapCertification(code))
			})
		}
	}
}

func TestMapCertification_UnknownDefaultsTo15(t *testing.T) {
	for _, code := range []string{"", "NR", "X", "pg", "tv-ma", "12a", " 15", "FSK18", "R18+"} {
		t.Run(code, func(t *testing.T) {
			assert.Equal(t, Fifteen, MapCertification(code))
			assert.False(t, IsKnownCertification(code))
		})
	}
}

func TestMapCertification_AlwaysValid(t *testing.T) {
	for _, code := range []string{"U", "garbage", "", "NC-17", "TV-Y7-FV"} {
		assert.True(t, MapCertification(code).Valid(), "code %q", code)
	}
}

func TestRating_Valid(t *testing.T) {
	for _, r := range All {
		assert.True(t, r.Valid())
		assert.NotEmpty(t, r.Description())
	}
	assert.False(t, Rating("").Valid())
	assert.False(t, Rating("12A").Valid())
}

func TestMapLanguage(t *testing.T) {
	assert.Equal(t, "English", MapLanguage("en"))
	assert.Equal(t, "Japanese", MapLanguage("ja"))
	assert.Equal(t, "Mandarin", MapLanguage("zh"))
	assert.Equal(t, "Filipino", MapLanguage("tl"))

	for _, code := range []string{"", "EN", "Ja", "xx", "sv", "eng"} {
		assert.Equal(t, UnknownLanguage, MapLanguage(code), "code %q", code)
	}
}

func TestLanguages(t *testing.T) {
	names := Languages()
	assert.Len(t, names, 26)
	assert.Equal(t, "English", names[0])
	assert.Equal(t, UnknownLanguage, names[len(names)-1])
}
