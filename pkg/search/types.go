// Package search implements freelancer relevance scoring, the
// multi-criteria filter pipeline, result sorting, the search-results
// cache and the Engine that composes them around an injected backend
// search function.
package search

import (
	"context"
	"time"

	"github.com/talentmatch/searchkit/pkg/query"
)

// Location is a freelancer's place of residence. DistanceKm is computed
// by the location filter when geo-filtering applies; it is never
// persisted with the source record.
type Location struct {
	City       string   `json:"city,omitempty"`
	Country    string   `json:"country,omitempty"`
	Latitude   float64  `json:"latitude,omitempty"`
	Longitude  float64  `json:"longitude,omitempty"`
	DistanceKm *float64 `json:"distance_km,omitempty"`
}

// Freelancer is the result projection the core annotates, filters and
// sorts. The core works on copies and never mutates a caller's record.
type Freelancer struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Skills      []string `json:"skills,omitempty"`

	HourlyRate float64 `json:"hourly_rate"`
	Currency   string  `json:"currency"`

	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"review_count"`

	Location     Location `json:"location"`
	Availability string   `json:"availability,omitempty"`
	Languages    []string `json:"languages,omitempty"`

	ExperienceLevel    string `json:"experience_level,omitempty"`
	VerificationStatus string `json:"verification_status,omitempty"`
	ResponseTime       string `json:"response_time,omitempty"`

	TopRated     bool `json:"top_rated,omitempty"`
	Verified     bool `json:"verified,omitempty"`
	HasPortfolio bool `json:"has_portfolio,omitempty"`
	TestTaken    bool `json:"test_taken,omitempty"`
	Active       bool `json:"active"`

	MemberSince time.Time `json:"member_since,omitempty"`

	// RelevanceScore is computed per query, not persisted.
	RelevanceScore float64 `json:"relevance_score,omitempty"`
}

// Results is the scored, filtered, sorted outcome of one search.
type Results struct {
	Query      query.SearchQuery `json:"query"`
	Items      []Freelancer      `json:"items"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TookMS     int64             `json:"took_ms"`
	FromCache  bool              `json:"from_cache,omitempty"`
	Prewarmed  bool              `json:"prewarmed,omitempty"`
	ComputedAt time.Time         `json:"computed_at"`
}

// PageItems returns the slice of Items covered by the results' Page and
// Limit (1-based pages). A non-positive limit returns everything.
func (r Results) PageItems() []Freelancer {
	if r.Limit <= 0 {
		return r.Items
	}
	page := r.Page
	if page < 1 {
		page = 1
	}
	start := (page - 1) * r.Limit
	if start >= len(r.Items) {
		return nil
	}
	end := start + r.Limit
	if end > len(r.Items) {
		end = len(r.Items)
	}
	return r.Items[start:end]
}

// SearchFunc is the injected backend collaborator: given a query it
// returns the raw candidate set, typically from a database or remote
// service. The core owns everything after this call.
type SearchFunc func(ctx context.Context, q query.SearchQuery) ([]Freelancer, error)
