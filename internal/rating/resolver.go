package rating

import "strings"

// Tier identifies which stage of the fallback chain produced a rating.
type Tier int

const (
	TierPrimary   Tier = 1
	TierSecondary Tier = 2
	TierHeuristic Tier = 3
)

func (t Tier) String() string {
	switch t {
	case TierPrimary:
		return "primary"
	case TierSecondary:
		return "secondary"
	case TierHeuristic:
		return "heuristic"
	}
	return "unknown"
}

// RegionReleases is the dated certification list for one country, in the
// order the provider returned it. Used for film-shaped titles.
type RegionReleases struct {
	Region         string
	Certifications []string
}

// RegionRating is the single current rating for one country. Used for
// series-shaped titles.
type RegionRating struct {
	Region string
	Rating string
}

// Bundle is the subset of provider metadata the resolver looks at.
type Bundle struct {
	Genres      []string
	Overview    string
	VoteAverage float64
	Releases    []RegionReleases
	Ratings     []RegionRating
}

// Resolver derives a canonical rating through three tiers: the primary
// jurisdiction's certification, the secondary jurisdiction's, then content
// heuristics. The zero value is not useful; use NewResolver.
type Resolver struct {
	Primary   string
	Secondary string
}

// NewResolver creates a resolver for the given jurisdiction codes
// (ISO 3166-1, e.g. "GB" and "US").
func NewResolver(primary, secondary string) Resolver {
	return Resolver{Primary: primary, Secondary: secondary}
}

// Resolve returns exactly one canonical rating for b.
func (r Resolver) Resolve(b Bundle, isMovie bool) Rating {
	rating, _ := r.ResolveTier(b, isMovie)
	return rating
}

// ResolveTier is Resolve that also reports the tier that decided.
func (r Resolver) ResolveTier(b Bundle, isMovie bool) (Rating, Tier) {
	if cert := certificationFor(b, r.Primary, isMovie); cert != "" {
		return MapCertification(cert), TierPrimary
	}
	if cert := certificationFor(b, r.Secondary, isMovie); cert != "" {
		return MapCertification(cert), TierSecondary
	}
	return Heuristic(b), TierHeuristic
}

// certificationFor finds the raw certification for region in the shape that
// matches the title type. Only the first dated entry is consulted for films.
func certificationFor(b Bundle, region string, isMovie bool) string {
	if region == "" {
		return ""
	}

	if isMovie {
		for _, rr := range b.Releases {
			if rr.Region != region {
				continue
			}
			if len(rr.Certifications) > 0 {
				return rr.Certifications[0]
			}
			return ""
		}
		return ""
	}

	for _, cr := range b.Ratings {
		if cr.Region == region {
			return cr.Rating
		}
	}
	return ""
}

var (
	familyGenres   = []string{"animation", "family", "kids", "children"}
	familyKeywords = []string{"family", "kids", "children", "disney", "pixar", "educational"}
	adultGenres    = []string{"horror", "thriller", "crime", "war"}
	adultKeywords  = []string{"violence", "blood", "murder", "killer", "terror", "death"}
)

// Heuristic classifies a title from its genres, synopsis and vote average.
// Family signals are checked before adult signals, so a title carrying both
// is treated as family content.
func Heuristic(b Bundle) Rating {
	genres := make(map[string]bool, len(b.Genres))
	for _, g := range b.Genres {
		genres[strings.ToLower(g)] = true
	}
	overview := strings.ToLower(b.Overview)

	if anyGenre(genres, familyGenres) || anyKeyword(overview, familyKeywords) {
		if b.VoteAverage >= 7.0 {
			return U
		}
		return PG
	}

	if anyGenre(genres, adultGenres) || anyKeyword(overview, adultKeywords) {
		if genres["horror"] {
			return Eighteen
		}
		return Fifteen
	}

	switch {
	case genres["documentary"]:
		return PG
	case genres["comedy"] && b.VoteAverage >= 6.0:
		return Twelve
	case genres["drama"]:
		if b.VoteAverage >= 7.0 {
			return Twelve
		}
		return Fifteen
	}

	return DefaultRating
}

func anyGenre(genres map[string]bool, candidates []string) bool {
	for _, c := range candidates {
		if genres[c] {
			return true
		}
	}
	return false
}

func anyKeyword(text string, keywords []string) bool {
	if text == "" {
		return false
	}
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}
