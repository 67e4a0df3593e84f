// Package rating derives BBFC-style age classifications from third-party
// certification data and content heuristics.
package rating

// Rating is a canonical BBFC-style classification.
type Rating string

const (
	U        Rating = "U"
	PG       Rating = "PG"
	Twelve   Rating = "12"
	Fifteen  Rating = "15"
	Eighteen Rating = "18"
)

// DefaultRating is returned for certification tokens with no mapping.
const DefaultRating = Fifteen

// All lists every canonical rating from least to most restrictive.
var All = []Rating{U, PG, Twelve, Fifteen, Eighteen}

// Valid reports whether r is one of the canonical ratings.
func (r Rating) Valid() bool {
	switch r {
	case U, PG, Twelve, Fifteen, Eighteen:
		return true
	}
	return false
}

func (r Rating) String() string {
	return string(r)
}

// Description is the short label shown next to a rating in filter UIs.
func (r Rating) Description() string {
	switch r {
	case U:
		return "Universal - suitable for all ages"
	case PG:
		return "Parental Guidance"
	case Twelve:
		return "Suitable for 12 years and over"
	case Fifteen:
		return "Suitable for 15 years and over"
	case Eighteen:
		return "Suitable only for adults"
	}
	return ""
}

var certificationMap = map[string]Rating{
	// BBFC
	"U":   U,
	"PG":  PG,
	"12":  Twelve,
	"12A": Twelve,
	"15":  Fifteen,
	"18":  Eighteen,

	// US MPAA
	"G":     U,
	"PG-13": Twelve,
	"R":     Fifteen,
	"NC-17": Eighteen,

	// US TV parental guidelines
	"TV-Y":  U,
	"TV-G":  U,
	"TV-Y7": PG,
	"TV-PG": PG,
	"TV-14": Twelve,
	"TV-MA": Eighteen,

	// FSK and ACB
	"6":     PG,
	"16":    Fifteen,
	"M":     Twelve,
	"MA15+": Fifteen,
}

// MapCertification maps a certification token onto the canonical scale.
// Matching is exact; unknown tokens map to DefaultRating.
func MapCertification(code string) Rating {
	if r, ok := certificationMap[code]; ok {
		return r
	}
	return DefaultRating
}

// IsKnownCertification reports whether code has an explicit mapping.
func IsKnownCertification(code string) bool {
	_, ok := certificationMap[code]
	return ok
}
