// Package query defines the structured search query model and its
// canonical form. A SearchQuery is treated as an immutable value:
// normalization returns a new value and never mutates in place, so a
// query can serve as a stable cache and history identity.
package query

// SortField selects the authoritative ordering of search results.
type SortField string

const (
	SortByRelevance SortField = "relevance"
	SortByPriceAsc  SortField = "price_asc"
	SortByPriceDesc SortField = "price_desc"
	SortByRating    SortField = "rating"
	SortByDistance  SortField = "distance"
	SortByRecent    SortField = "recent"
)

// LogicalOperator governs how multiple skill filters combine.
type LogicalOperator string

const (
	OperatorAnd LogicalOperator = "AND"
	OperatorOr  LogicalOperator = "OR"
)

// DistanceUnit is the unit of a location filter radius.
type DistanceUnit string

const (
	UnitKilometers DistanceUnit = "km"
	UnitMiles      DistanceUnit = "miles"
)

// SkillFilter matches one skill, optionally weighted and required.
type SkillFilter struct {
	Name      string  `json:"name"`
	Required  bool    `json:"required,omitempty"`
	Weight    float64 `json:"weight,omitempty"`
	MinYears  int     `json:"min_years,omitempty"`
	Certified bool    `json:"certified,omitempty"`
}

// LocationFilter restricts results to a radius around a point, or to a
// city/country by name. AllowRemote disables geo filtering entirely.
type LocationFilter struct {
	City        string       `json:"city,omitempty"`
	Country     string       `json:"country,omitempty"`
	Latitude    float64      `json:"latitude,omitempty"`
	Longitude   float64      `json:"longitude,omitempty"`
	Radius      float64      `json:"radius,omitempty"`
	Unit        DistanceUnit `json:"unit,omitempty"`
	AllowRemote bool         `json:"allow_remote,omitempty"`
}

// HasCoordinates reports whether the filter carries a usable origin point.
func (l *LocationFilter) HasCoordinates() bool {
	return l != nil && (l.Latitude != 0 || l.Longitude != 0)
}

// PriceRange bounds an hourly rate, expressed in Currency.
// Invariant: Min <= Max when both are set.
type PriceRange struct {
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Currency string  `json:"currency"`
}

// RatingFilter bounds rating and review count.
// Invariant: 0 <= MinimumRating <= 5.
type RatingFilter struct {
	MinimumRating  float64 `json:"minimum_rating"`
	MinimumReviews int     `json:"minimum_reviews,omitempty"`
	IncludeUnrated bool    `json:"include_unrated,omitempty"`
}

// ResponseTimeFilter keeps candidates whose advertised response time,
// parsed into hours, is at or below MaxHours.
type ResponseTimeFilter struct {
	MaxHours float64 `json:"max_hours"`
}

// AdvancedSearchFilters is the composite of all optional sub-filters.
type AdvancedSearchFilters struct {
	Skills             []SkillFilter       `json:"skills,omitempty"`
	Location           *LocationFilter     `json:"location,omitempty"`
	PriceRange         *PriceRange         `json:"price_range,omitempty"`
	Rating             *RatingFilter       `json:"rating,omitempty"`
	Availability       []string            `json:"availability,omitempty"`
	Languages          []string            `json:"languages,omitempty"`
	ExperienceLevel    string              `json:"experience_level,omitempty"`
	VerificationStatus string              `json:"verification_status,omitempty"`
	TopRatedOnly       bool                `json:"top_rated_only,omitempty"`
	PortfolioRequired  bool                `json:"portfolio_required,omitempty"`
	TestTaken          bool                `json:"test_taken,omitempty"`
	ResponseTime       *ResponseTimeFilter `json:"response_time,omitempty"`
	LogicalOperator    LogicalOperator     `json:"logical_operator,omitempty"`
}

// SearchQuery is the structured query a caller builds. The canonical
// form is derived via Normalize; callers should not rely on field
// casing or filter-array order for identity.
type SearchQuery struct {
	Query           string                `json:"query"`
	Filters         AdvancedSearchFilters `json:"filters"`
	SortBy          SortField             `json:"sort_by,omitempty"`
	Page            int                   `json:"page"`
	Limit           int                   `json:"limit"`
	IncludeInactive bool                  `json:"include_inactive,omitempty"`
}
