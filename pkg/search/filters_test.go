package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentmatch/searchkit/pkg/query"
)

func TestSkillFilterAndVsOr(t *testing.T) {
	results := []Freelancer{{ID: "only-react", Skills: []string{"react"}, Active: true}}
	skills := []query.SkillFilter{{Name: "react"}, {Name: "node"}}

	and := ApplyFilters(results, query.AdvancedSearchFilters{
		Skills:          skills,
		LogicalOperator: query.OperatorAnd,
	})
	assert.Empty(t, and, "AND requires every skill filter to match")

	or := ApplyFilters(results, query.AdvancedSearchFilters{
		Skills:          skills,
		LogicalOperator: query.OperatorOr,
	})
	assert.Len(t, or, 1, "OR requires at least one skill filter to match")
}

func TestPriceFilterConvertsCurrency(t *testing.T) {
	// 100 USD is ~92 EUR with the fixed table, below a 150 EUR minimum.
	results := []Freelancer{{ID: "cheap", HourlyRate: 100, Currency: "USD"}}

	filtered := ApplyFilters(results, query.AdvancedSearchFilters{
		PriceRange: &query.PriceRange{Min: 150, Max: 200, Currency: "EUR"},
	})
	assert.Empty(t, filtered)

	// 180 USD is ~165.6 EUR, inside the range.
	results[0].HourlyRate = 180
	filtered = ApplyFilters(results, query.AdvancedSearchFilters{
		PriceRange: &query.PriceRange{Min: 150, Max: 200, Currency: "EUR"},
	})
	assert.Len(t, filtered, 1)
}

func TestRatingFilter(t *testing.T) {
	results := []Freelancer{
		{ID: "rated", Rating: 4.5, ReviewCount: 20},
		{ID: "unrated"},
		{ID: "low", Rating: 3.0, ReviewCount: 5},
	}

	filtered := ApplyFilters(results, query.AdvancedSearchFilters{
		Rating: &query.RatingFilter{MinimumRating: 4.0, MinimumReviews: 10},
	})
	require.Len(t, filtered, 1)
	assert.Equal(t, "rated", filtered[0].ID)

	withUnrated := ApplyFilters(results, query.AdvancedSearchFilters{
		Rating: &query.RatingFilter{MinimumRating: 4.0, IncludeUnrated: true},
	})
	assert.Len(t, withUnrated, 2)
}

func TestLocationFilterRadiusAndDistance(t *testing.T) {
	// Origin: Berlin. Potsdam is ~26 km away; Leipzig ~150 km.
	results := []Freelancer{
		{ID: "potsdam", Location: Location{Latitude: 52.3906, Longitude: 13.0645}},
		{ID: "leipzig", Location: Location{Latitude: 51.3397, Longitude: 12.3731}},
		{ID: "nowhere"}, // no coordinates
	}

	filtered := ApplyFilters(results, query.AdvancedSearchFilters{
		Location: &query.LocationFilter{
			Latitude:  52.5200,
			Longitude: 13.4050,
			Radius:    50,
			Unit:      query.UnitKilometers,
		},
	})
	require.Len(t, filtered, 1)
	assert.Equal(t, "potsdam", filtered[0].ID)
	require.NotNil(t, filtered[0].Location.DistanceKm)
	assert.InDelta(t, 26, *filtered[0].Location.DistanceKm, 5)
}

func TestLocationFilterSkippedForRemote(t *testing.T) {
	results := []Freelancer{{ID: "anywhere"}}

	filtered := ApplyFilters(results, query.AdvancedSearchFilters{
		Location: &query.LocationFilter{
			Latitude: 52.52, Longitude: 13.40, Radius: 10, AllowRemote: true,
		},
	})
	assert.Len(t, filtered, 1)
}

func TestLocationFilterMilesRadius(t *testing.T) {
	// ~26 km is ~16 miles; a 20-mile radius keeps it, a 10-mile drops it.
	results := []Freelancer{
		{ID: "potsdam", Location: Location{Latitude: 52.3906, Longitude: 13.0645}},
	}
	base := query.LocationFilter{Latitude: 52.5200, Longitude: 13.4050, Unit: query.UnitMiles}

	wide := base
	wide.Radius = 20
	assert.Len(t, ApplyFilters(results, query.AdvancedSearchFilters{Location: &wide}), 1)

	tight := base
	tight.Radius = 10
	assert.Empty(t, ApplyFilters(results, query.AdvancedSearchFilters{Location: &tight}))
}

func TestSimplePredicateFilters(t *testing.T) {
	results := []Freelancer{
		{
			ID: "match", Availability: "full-time",
			Languages:       []string{"English (fluent)", "German"},
			ExperienceLevel: "senior", VerificationStatus: "verified",
			TopRated: true, HasPortfolio: true, TestTaken: true,
			ResponseTime: "2 hours",
		},
		{ID: "other", Availability: "part-time", ResponseTime: "3 days"},
	}

	filtered := ApplyFilters(results, query.AdvancedSearchFilters{
		Availability:       []string{"full-time"},
		Languages:          []string{"english"},
		ExperienceLevel:    "Senior",
		VerificationStatus: "verified",
		TopRatedOnly:       true,
		PortfolioRequired:  true,
		TestTaken:          true,
		ResponseTime:       &query.ResponseTimeFilter{MaxHours: 4},
	})
	require.Len(t, filtered, 1)
	assert.Equal(t, "match", filtered[0].ID)
}

func TestParseResponseHours(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"2 hours", 2, true},
		{"1 hour", 1, true},
		{"30 minutes", 0.5, true},
		{"3 days", 72, true},
		{"fast", 0, false},
		{"", 0, false},
		{"soon enough", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseResponseHours(tt.in)
		assert.Equal(t, tt.ok, ok, "ParseResponseHours(%q)", tt.in)
		if tt.ok {
			assert.InDelta(t, tt.want, got, 1e-9, "ParseResponseHours(%q)", tt.in)
		}
	}
}

func TestSortResultsAuthoritativeAfterLocation(t *testing.T) {
	d1, d2 := 10.0, 80.0
	results := []Freelancer{
		{ID: "far-cheap", HourlyRate: 20, Location: Location{DistanceKm: &d2}},
		{ID: "near-pricey", HourlyRate: 90, Location: Location{DistanceKm: &d1}},
	}

	byPrice := SortResults(results, query.SortByPriceAsc)
	assert.Equal(t, "far-cheap", byPrice[0].ID, "explicit sort overrides location ordering")

	byDistance := SortResults(results, query.SortByDistance)
	assert.Equal(t, "near-pricey", byDistance[0].ID)
}

func TestSortResultsRelevanceDefault(t *testing.T) {
	results := []Freelancer{
		{ID: "low", RelevanceScore: 10},
		{ID: "high", RelevanceScore: 90},
	}
	sorted := SortResults(results, "")
	assert.Equal(t, "high", sorted[0].ID)
}
