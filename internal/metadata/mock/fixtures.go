// Package mock provides in-memory metadata providers for developer mode and
// tests. Both providers read the same fixture catalog so that discovery ids
// resolve to details.
package mock

import (
	"github.com/slipstream/flixcat/internal/metadata/tmdb"
	"github.com/slipstream/flixcat/internal/metadata/watchmode"
)

// Fixture pairs a discovered title with the details the metadata provider
// returns for it.
type Fixture struct {
	Discovery watchmode.Title
	Details   tmdb.TitleDetails
}

var mockGenres = map[int]string{
	10759: "Action & Adventure",
	16:    "Animation",
	35:    "Comedy",
	80:    "Crime",
	99:    "Documentary",
	18:    "Drama",
	10751: "Family",
	14:    "Fantasy",
	27:    "Horror",
	9648:  "Mystery",
	878:   "Science Fiction",
	10765: "Sci-Fi & Fantasy",
	53:    "Thriller",
	10752: "War",
}

func releases(region string, certs ...string) tmdb.ReleaseDatesByRegion {
	r := tmdb.ReleaseDatesByRegion{Iso31661: region}
	for _, c := range certs {
		r.ReleaseDates = append(r.ReleaseDates, tmdb.ReleaseDate{Certification: c, Type: 3})
	}
	return r
}

func cast(names ...string) *tmdb.CreditsResponse {
	c := &tmdb.CreditsResponse{}
	for i, n := range names {
		c.Cast = append(c.Cast, tmdb.CastMember{ID: i + 1, Name: n, Order: i})
	}
	return c
}

// DefaultFixtures is a small Netflix UK catalog covering every resolution tier.
var DefaultFixtures = []Fixture{
	{
		Discovery: watchmode.Title{ID: 3173903, Title: "Stranger Things", Year: 2016, Type: "tv_series", TmdbID: 66732, TmdbType: "tv"},
		Details: tmdb.TitleDetails{
			ID: 66732, Name: "Stranger Things", FirstAirDate: "2016-07-15", OriginalLanguage: "en", VoteAverage: 8.6,
			Overview:       "When a young boy vanishes, a small town uncovers a mystery involving secret experiments.",
			PosterPath:     "/49WJfeN0moxb9IPfGn8AIqMGskD.jpg",
			Genres:         []tmdb.Genre{{ID: 18, Name: "Drama"}, {ID: 10765, Name: "Sci-Fi & Fantasy"}, {ID: 9648, Name: "Mystery"}},
			Credits:        cast("Winona Ryder", "David Harbour", "Millie Bobby Brown"),
			ContentRatings: &tmdb.ContentRatingsResponse{Results: []tmdb.ContentRating{{Iso31661: "GB", Rating: "15"}, {Iso31661: "US", Rating: "TV-14"}}},
		},
	},
	{
		Discovery: watchmode.Title{ID: 3159816, Title: "The Crown", Year: 2016, Type: "tv_series", TmdbID: 65494, TmdbType: "tv"},
		Details: tmdb.TitleDetails{
			ID: 65494, Name: "The Crown", FirstAirDate: "2016-11-04", OriginalLanguage: "en", VoteAverage: 8.2,
			Overview:       "The gripping, decades-spanning inside story of Her Majesty Queen Elizabeth II.",
			PosterPath:     "/1M876KPjulVwppEpldhdc8V4o68.jpg",
			Genres:         []tmdb.Genre{{ID: 18, Name: "Drama"}},
			Credits:        cast("Claire Foy", "Olivia Colman", "Imelda Staunton"),
			ContentRatings: &tmdb.ContentRatingsResponse{Results: []tmdb.ContentRating{{Iso31661: "US", Rating: "TV-MA"}}},
		},
	},
	{
		Discovery: watchmode.Title{ID: 1616666, Title: "Money Heist", Year: 2017, Type: "tv_series", TmdbID: 71446, TmdbType: "tv"},
		Details: tmdb.TitleDetails{
			ID: 71446, Name: "Money Heist", FirstAirDate: "2017-05-02", OriginalLanguage: "es", VoteAverage: 8.2,
			Overview:   "To carry out the biggest heist in history, a mysterious man called The Professor recruits a band of robbers.",
			PosterPath: "/reEMJA1uzscCbkpeRJeTT2bjqUp.jpg",
			Genres:     []tmdb.Genre{{ID: 80, Name: "Crime"}, {ID: 18, Name: "Drama"}},
			Credits:    cast("Úrsula Corberó", "Álvaro Morte", "Itziar Ituño"),
		},
	},
	{
		Discovery: watchmode.Title{ID: 1295258, Title: "Squid Game", Year: 2021, Type: "tv_series", TmdbID: 93405, TmdbType: "tv"},
		Details: tmdb.TitleDetails{
			ID: 93405, Name: "Squid Game", FirstAirDate: "2021-09-17", OriginalLanguage: "ko", VoteAverage: 7.8,
			Overview:       "Hundreds of cash-strapped players accept a strange invitation to compete in children's games.",
			PosterPath:     "/dDlEmu3EZ0Pgg93K2SVNLCjCSvE.jpg",
			Genres:         []tmdb.Genre{{ID: 10759, Name: "Action & Adventure"}, {ID: 9648, Name: "Mystery"}, {ID: 18, Name: "Drama"}},
			Credits:        cast("Lee Jung-jae", "Park Hae-soo", "Wi Ha-joon"),
			ContentRatings: &tmdb.ContentRatingsResponse{Results: []tmdb.ContentRating{{Iso31661: "GB", Rating: "15"}}},
		},
	},
	{
		Discovery: watchmode.Title{ID: 1571237, Title: "Glass Onion", Year: 2022, Type: "movie", TmdbID: 661374, TmdbType: "movie"},
		Details: tmdb.TitleDetails{
			ID: 661374, Title: "Glass Onion: A Knives Out Mystery", ReleaseDate: "2022-11-23", OriginalLanguage: "en", VoteAverage: 7.0,
			Overview:     "World-famous detective Benoit Blanc heads to Greece to peel back the layers of a mystery.",
			PosterPath:   "/vDGr1YdrlfbU9wxTOdpf3zChmv9.jpg",
			Genres:       []tmdb.Genre{{ID: 35, Name: "Comedy"}, {ID: 80, Name: "Crime"}, {ID: 9648, Name: "Mystery"}},
			Credits:      cast("Daniel Craig", "Edward Norton", "Janelle Monáe"),
			ReleaseDates: &tmdb.ReleaseDatesResponse{Results: []tmdb.ReleaseDatesByRegion{releases("GB", "12A"), releases("US", "PG-13")}},
		},
	},
	{
		Discovery: watchmode.Title{ID: 1600245, Title: "Extraction", Year: 2020, Type: "movie", TmdbID: 545609, TmdbType: "movie"},
		Details: tmdb.TitleDetails{
			ID: 545609, Title: "Extraction", ReleaseDate: "2020-04-24", OriginalLanguage: "en", VoteAverage: 7.3,
			Overview:     "A black-market mercenary who has nothing to lose is hired to rescue the kidnapped son of a crime lord.",
			PosterPath:   "/nygOUcBKPHFTbxsYRFZVePqgPK6.jpg",
			Genres:       []tmdb.Genre{{ID: 28, Name: "Action"}, {ID: 53, Name: "Thriller"}},
			Credits:      cast("Chris Hemsworth", "Rudhraksh Jaiswal", "Randeep Hooda"),
			ReleaseDates: &tmdb.ReleaseDatesResponse{Results: []tmdb.ReleaseDatesByRegion{releases("US", "R")}},
		},
	},
	{
		Discovery: watchmode.Title{ID: 1622381, Title: "The Mitchells vs. the Machines", Year: 2021, Type: "movie", TmdbID: 501929, TmdbType: "movie"},
		Details: tmdb.TitleDetails{
			ID: 501929, Title: "The Mitchells vs. the Machines", ReleaseDate: "2021-04-22", OriginalLanguage: "en", VoteAverage: 8.0,
			Overview:   "A quirky, dysfunctional family's road trip is upended when they find themselves in the middle of the robot apocalypse.",
			PosterPath: "/mI2Di7HmskQQ34kz0iau6J1vr70.jpg",
			Genres:     []tmdb.Genre{{ID: 16, Name: "Animation"}, {ID: 10751, Name: "Family"}, {ID: 878, Name: "Science Fiction"}},
			Credits:    cast("Abbi Jacobson", "Danny McBride", "Maya Rudolph"),
		},
	},
	{
		Discovery: watchmode.Title{ID: 1620418, Title: "His House", Year: 2020, Type: "movie", TmdbID: 575088, TmdbType: "movie"},
		Details: tmdb.TitleDetails{
			ID: 575088, Title: "His House", ReleaseDate: "2020-10-30", OriginalLanguage: "en", VoteAverage: 6.9,
			Overview:   "A refugee couple makes a harrowing escape from war-torn South Sudan, but then they struggle to adjust.",
			PosterPath: "/3Bc3CGYR3iBQr2rWB2drjM3grl4.jpg",
			Genres:     []tmdb.Genre{{ID: 27, Name: "Horror"}, {ID: 53, Name: "Thriller"}},
			Credits:    cast("Wunmi Mosaku", "Sope Dirisu", "Matt Smith"),
		},
	},
	{
		Discovery: watchmode.Title{ID: 1612037, Title: "My Octopus Teacher", Year: 2020, Type: "movie", TmdbID: 682110, TmdbType: "movie"},
		Details: tmdb.TitleDetails{
			ID: 682110, Title: "My Octopus Teacher", ReleaseDate: "2020-09-04", OriginalLanguage: "en", VoteAverage: 7.9,
			Overview:   "A filmmaker forges an unusual friendship with an octopus living in a South African kelp forest.",
			PosterPath: "/vv4dBdrJCHkXmAtQjxDVTKS7QdY.jpg",
			Genres:     []tmdb.Genre{{ID: 99, Name: "Documentary"}},
			Credits:    cast("Craig Foster", "Tom Foster"),
		},
	},
	{
		Discovery: watchmode.Title{ID: 3158711, Title: "Dark", Year: 2017, Type: "tv_series", TmdbID: 70523, TmdbType: "tv"},
		Details: tmdb.TitleDetails{
			ID: 70523, Name: "Dark", FirstAirDate: "2017-12-01", OriginalLanguage: "de", VoteAverage: 8.4,
			Overview:       "A missing child causes four families to help each other for answers.",
			PosterPath:     "/apbrbWs8M9lyOpJYU5WXrpFbk1Z.jpg",
			Genres:         []tmdb.Genre{{ID: 80, Name: "Crime"}, {ID: 18, Name: "Drama"}, {ID: 10765, Name: "Sci-Fi & Fantasy"}},
			Credits:        cast("Louis Hofmann", "Karoline Eichhorn", "Lisa Vicari"),
			ContentRatings: &tmdb.ContentRatingsResponse{Results: []tmdb.ContentRating{{Iso31661: "US", Rating: "TV-MA"}}},
		},
	},
	{
		Discovery: watchmode.Title{ID: 1624519, Title: "Lupin", Year: 2021, Type: "tv_series", TmdbID: 96677, TmdbType: "tv"},
		Details: tmdb.TitleDetails{
			ID: 96677, Name: "Lupin", FirstAirDate: "2021-01-08", OriginalLanguage: "fr", VoteAverage: 7.7,
			Overview:       "Inspired by the adventures of Arsène Lupin, gentleman thief Assane Diop sets out to avenge his father.",
			PosterPath:     "/sgxawbFB5Vi5OkPWQLNfl3dvkNJ.jpg",
			Genres:         []tmdb.Genre{{ID: 80, Name: "Crime"}, {ID: 18, Name: "Drama"}, {ID: 9648, Name: "Mystery"}},
			Credits:        cast("Omar Sy", "Ludivine Sagnier", "Clotilde Hesme"),
			ContentRatings: &tmdb.ContentRatingsResponse{Results: []tmdb.ContentRating{{Iso31661: "GB", Rating: "15"}}},
		},
	},
	{
		Discovery: watchmode.Title{ID: 1633412, Title: "Klaus", Year: 2019, Type: "movie", TmdbID: 508965, TmdbType: "movie"},
		Details: tmdb.TitleDetails{
			ID: 508965, Title: "Klaus", ReleaseDate: "2019-11-08", OriginalLanguage: "en", VoteAverage: 8.2,
			Overview:     "A selfish postman and a reclusive toymaker form an unlikely friendship, delivering joy to a cold, dark town.",
			PosterPath:   "/q125RHUDgR4gjwh1QkfYuJLYkL.jpg",
			GenreIDs:     []int{16, 10751, 35},
			Credits:      cast("Jason Schwartzman", "J. K. Simmons", "Rashida Jones"),
			ReleaseDates: &tmdb.ReleaseDatesResponse{Results: []tmdb.ReleaseDatesByRegion{releases("GB", "PG")}},
		},
	},
	{
		Discovery: watchmode.Title{ID: 1640001, Title: "Unmatched Listing", Year: 2023, Type: "movie"},
	},
}
