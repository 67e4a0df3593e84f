package rating

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var ukResolver = NewResolver("GB", "US")

func filmCert(region string, certs ...string) RegionReleases {
	return RegionReleases{Region: region, Certifications: certs}
}

func TestResolve_EmptyBundleNeverAbsent(t *testing.T) {
	got, tier := ukResolver.ResolveTier(Bundle{}, true)
	assert.Equal(t, Fifteen, got)
	assert.Equal(t, TierHeuristic, tier)

	got, tier = ukResolver.ResolveTier(Bundle{}, false)
	assert.Equal(t, Fifteen, got)
	assert.Equal(t, TierHeuristic, tier)
}

func TestResolve_UKFilmCertificationRegardlessOfGenre(t *testing.T) {
	b := Bundle{
		Genres:   []string{"Animation", "Family"},
		Overview: "A heartwarming family adventure.",
		Releases: []RegionReleases{filmCert("GB", "15")},
	}

	got, tier := ukResolver.ResolveTier(b, true)
	assert.Equal(t, Fifteen, got)
	assert.Equal(t, TierPrimary, tier)
}

func TestResolve_PrimaryDominatesHeuristics(t *testing.T) {
	b := Bundle{
		Genres:      []string{"Horror"},
		Overview:    "A killer stalks the town.",
		VoteAverage: 3,
		Releases:    []RegionReleases{filmCert("US", "R"), filmCert("GB", "12A")},
	}
	assert.Equal(t, Twelve, ukResolver.Resolve(b, true))
}

func TestResolve_SecondaryFallback(t *testing.T) {
	b := Bundle{
		Genres:   []string{"Documentary"},
		Releases: []RegionReleases{filmCert("US", "PG-13")},
	}
	got, tier := ukResolver.ResolveTier(b, true)
	assert.Equal(t, Twelve, got)
	assert.Equal(t, TierSecondary, tier)
}

func TestResolve_EmptyPrimaryFallsThrough(t *testing.T) {
	b := Bundle{
		Releases: []RegionReleases{filmCert("GB", ""), filmCert("US", "NC-17")},
	}
	got, tier := ukResolver.ResolveTier(b, true)
	assert.Equal(t, Eighteen, got)
	assert.Equal(t, TierSecondary, tier)

	// GB present with no dated entries at all
	b = Bundle{Releases: []RegionReleases{filmCert("GB"), filmCert("US", "G")}}
	assert.Equal(t, U, ukResolver.Resolve(b, true))
}

func TestResolve_OnlyFirstDatedEntryConsulted(t *testing.T) {
	b := Bundle{
		Genres:   []string{"Documentary"},
		Releases: []RegionReleases{filmCert("GB", "", "18")},
	}
	got, tier := ukResolver.ResolveTier(b, true)
	assert.Equal(t, PG, got)
	assert.Equal(t, TierHeuristic, tier)
}

func TestResolve_SeriesShape(t *testing.T) {
	b := Bundle{
		Ratings: []RegionRating{{Region: "US", Rating: "TV-MA"}, {Region: "GB", Rating: "12"}},
	}
	got, tier := ukResolver.ResolveTier(b, false)
	assert.Equal(t, Twelve, got)
	assert.Equal(t, TierPrimary, tier)

	b = Bundle{Ratings: []RegionRating{{Region: "US", Rating: "TV-Y7"}}}
	got, tier = ukResolver.ResolveTier(b, false)
	assert.Equal(t, PG, got)
	assert.Equal(t, TierSecondary, tier)
}

func TestResolve_ShapeFollowsIsMovie(t *testing.T) {
	// film certification is ignored for a series and vice versa
	b := Bundle{
		Releases: []RegionReleases{filmCert("GB", "18")},
		Ratings:  []RegionRating{{Region: "GB", Rating: "U"}},
	}
	assert.Equal(t, Eighteen, ukResolver.Resolve(b, true))
	assert.Equal(t, U, ukResolver.Resolve(b, false))
}

func TestResolve_UnknownCertificationMapsToDefault(t *testing.T) {
	b := Bundle{
		Genres:   []string{"Animation"},
		Releases: []RegionReleases{filmCert("GB", "NR")},
	}
	got, tier := ukResolver.ResolveTier(b, true)
	assert.Equal(t, Fifteen, got)
	assert.Equal(t, TierPrimary, tier)
}

func TestHeuristic(t *testing.T) {
	tests := []struct {
		name     string
		genres   []string
		overview string
		vote     float64
		want     Rating
	}{
		{"documentary", []string{"Documentary"}, "", 5.0, PG},
		{"comedy well rated", []string{"Comedy"}, "", 6.5, Twelve},
		{"comedy poorly rated", []string{"Comedy"}, "", 5.9, Fifteen},
		{"drama well rated", []string{"Drama"}, "", 8.0, Twelve},
		{"drama poorly rated", []string{"Drama"}, "", 4.0, Fifteen},
		{"drama boundary", []string{"Drama"}, "", 7.0, Twelve},
		{"family well rated", []string{"Family"}, "", 7.5, U},
		{"family poorly rated", []string{"Animation"}, "", 6.9, PG},
		{"family keyword", []string{"Adventure"}, "A Pixar classic", 8.0, U},
		{"horror", []string{"Horror"}, "", 9.0, Eighteen},
		{"thriller", []string{"Thriller"}, "", 9.0, Fifteen},
		{"adult keyword horror genre", []string{"Horror", "Mystery"}, "blood everywhere", 5, Eighteen},
		{"adult keyword", []string{"Romance"}, "A murder in Paris", 5, Fifteen},
		{"genre case-insensitive", []string{"HORROR"}, "", 5, Eighteen},
		{"keyword case-insensitive", nil, "Disney+ original", 7, U},
		{"nothing matches", []string{"Romance"}, "Two people meet.", 9, Fifteen},
		{"no data", nil, "", 0, Fifteen},
		{"documentary beats comedy", []string{"Comedy", "Documentary"}, "", 8, PG},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Heuristic(Bundle{Genres: tt.genres, Overview: tt.overview, VoteAverage: tt.vote})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHeuristic_FamilyBeatsAdult(t *testing.T) {
	b := Bundle{
		Genres:      []string{"Animation", "Horror"},
		Overview:    "A family must survive the night.",
		VoteAverage: 5.0,
	}
	got := Heuristic(b)
	assert.Equal(t, PG, got)
	assert.NotEqual(t, Eighteen, got)

	b.VoteAverage = 7.2
	assert.Equal(t, U, Heuristic(b))
}

func TestResolve_EndToEndScenarios(t *testing.T) {
	assert.Equal(t, PG, ukResolver.Resolve(Bundle{Genres: []string{"Documentary"}, VoteAverage: 5.0}, true))
	assert.Equal(t, Twelve, ukResolver.Resolve(Bundle{Genres: []string{"Comedy"}, VoteAverage: 6.5}, true))
	assert.Equal(t, Twelve, ukResolver.Resolve(Bundle{Genres: []string{"Drama"}, VoteAverage: 8.0}, false))
	assert.Equal(t, Fifteen, ukResolver.Resolve(Bundle{Genres: []string{"Drama"}, VoteAverage: 4.0}, false))
}

func TestTier_String(t *testing.T) {
	assert.Equal(t, "primary", TierPrimary.String())
	assert.Equal(t, "secondary", TierSecondary.String())
	assert.Equal(t, "heuristic", TierHeuristic.String())
	assert.Equal(t, "unknown", Tier(0).String())
}
