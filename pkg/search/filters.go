package search

import (
	"sort"
	"strconv"
	"strings"

	"github.com/talentmatch/searchkit/pkg/currency"
	"github.com/talentmatch/searchkit/pkg/geo"
	"github.com/talentmatch/searchkit/pkg/query"
	"github.com/talentmatch/searchkit/pkg/textmatch"
)

// ApplyFilters sequentially narrows results by every sub-filter present
// in filters, returning a new slice of (possibly annotated) copies.
//
// The location step attaches DistanceKm to survivors and leaves them
// ordered nearest-first; that ordering is a filtering artifact, not the
// authoritative sort. Callers applying a SortBy must run SortResults
// afterward.
func ApplyFilters(results []Freelancer, filters query.AdvancedSearchFilters) []Freelancer {
	out := make([]Freelancer, len(results))
	copy(out, results)

	if len(filters.Skills) > 0 {
		out = filterSkills(out, filters.Skills, filters.LogicalOperator)
	}
	if filters.PriceRange != nil {
		out = filterPrice(out, *filters.PriceRange)
	}
	if filters.Rating != nil {
		out = filterRating(out, *filters.Rating)
	}
	out = filterLocation(out, filters.Location)

	if len(filters.Availability) > 0 {
		out = keep(out, func(f Freelancer) bool {
			for _, a := range filters.Availability {
				if strings.EqualFold(f.Availability, a) {
					return true
				}
			}
			return false
		})
	}
	if len(filters.Languages) > 0 {
		out = keep(out, func(f Freelancer) bool {
			return hasAllLanguages(f.Languages, filters.Languages)
		})
	}
	if filters.ExperienceLevel != "" {
		out = keep(out, func(f Freelancer) bool {
			return strings.EqualFold(f.ExperienceLevel, filters.ExperienceLevel)
		})
	}
	if filters.VerificationStatus != "" {
		out = keep(out, func(f Freelancer) bool {
			return strings.EqualFold(f.VerificationStatus, filters.VerificationStatus)
		})
	}
	if filters.TopRatedOnly {
		out = keep(out, func(f Freelancer) bool { return f.TopRated })
	}
	if filters.PortfolioRequired {
		out = keep(out, func(f Freelancer) bool { return f.HasPortfolio })
	}
	if filters.TestTaken {
		out = keep(out, func(f Freelancer) bool { return f.TestTaken })
	}
	if filters.ResponseTime != nil {
		out = keep(out, func(f Freelancer) bool {
			hours, ok := ParseResponseHours(f.ResponseTime)
			return ok && hours <= filters.ResponseTime.MaxHours
		})
	}

	return out
}

// filterSkills keeps candidates whose skills fuzzy-match the skill
// filters under the given combinator: AND requires every filter to
// match some skill, OR requires at least one. The empty operator
// defaults to AND.
func filterSkills(results []Freelancer, skills []query.SkillFilter, op query.LogicalOperator) []Freelancer {
	return keep(results, func(f Freelancer) bool {
		matched := 0
		for _, sf := range skills {
			if matchesAnySkill(sf.Name, f.Skills, textmatch.FilterThreshold) {
				matched++
			}
		}
		if op == query.OperatorOr {
			return matched > 0
		}
		return matched == len(skills)
	})
}

// filterPrice compares each candidate's rate converted into the filter
// currency. Candidates whose currency cannot be converted are excluded
// rather than passed through unpriced.
func filterPrice(results []Freelancer, pr query.PriceRange) []Freelancer {
	return keep(results, func(f Freelancer) bool {
		rate, err := currency.Convert(f.HourlyRate, f.Currency, pr.Currency)
		if err != nil {
			return false
		}
		if pr.Min > 0 && rate < pr.Min {
			return false
		}
		if pr.Max > 0 && rate > pr.Max {
			return false
		}
		return true
	})
}

func filterRating(results []Freelancer, rf query.RatingFilter) []Freelancer {
	return keep(results, func(f Freelancer) bool {
		if f.Rating == 0 && f.ReviewCount == 0 {
			return rf.IncludeUnrated
		}
		if f.Rating < rf.MinimumRating {
			return false
		}
		if rf.MinimumReviews > 0 && f.ReviewCount < rf.MinimumReviews {
			return false
		}
		return true
	})
}

// filterLocation computes haversine distances from the filter origin,
// annotates survivors with DistanceKm and drops anyone outside the
// radius. Skipped entirely when remote work is allowed or the filter
// carries no coordinates.
func filterLocation(results []Freelancer, loc *query.LocationFilter) []Freelancer {
	if loc == nil || loc.AllowRemote || !loc.HasCoordinates() {
		return results
	}

	radiusKm := loc.Radius
	if loc.Unit == query.UnitMiles {
		radiusKm = geo.MilesToKm(loc.Radius)
	}

	out := make([]Freelancer, 0, len(results))
	for _, f := range results {
		if f.Location.Latitude == 0 && f.Location.Longitude == 0 {
			continue
		}
		d := geo.Distance(loc.Latitude, loc.Longitude, f.Location.Latitude, f.Location.Longitude)
		if radiusKm > 0 && d > radiusKm {
			continue
		}
		dist := d
		f.Location.DistanceKm = &dist
		out = append(out, f)
	}

	// Nearest-first as a side effect; SortResults remains authoritative.
	sort.SliceStable(out, func(i, j int) bool {
		return *out[i].Location.DistanceKm < *out[j].Location.DistanceKm
	})
	return out
}

// hasAllLanguages reports whether every wanted language appears as a
// case-insensitive substring of some spoken language.
func hasAllLanguages(spoken, wanted []string) bool {
	for _, w := range wanted {
		w = strings.ToLower(strings.TrimSpace(w))
		found := false
		for _, s := range spoken {
			if strings.Contains(strings.ToLower(s), w) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// ParseResponseHours parses free-text response times such as "2 hours",
// "3 days" or "30 minutes" into hours. Unparseable text returns ok=false;
// the response-time filter excludes such candidates.
func ParseResponseHours(s string) (float64, bool) {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(s)))
	if len(fields) < 2 {
		return 0, false
	}

	n, err := strconv.ParseFloat(fields[0], 64)
	if err != nil || n < 0 {
		return 0, false
	}

	unit := fields[1]
	switch {
	case strings.HasPrefix(unit, "minute"), strings.HasPrefix(unit, "min"):
		return n / 60, true
	case strings.HasPrefix(unit, "hour"), strings.HasPrefix(unit, "hr"):
		return n, true
	case strings.HasPrefix(unit, "day"):
		return n * 24, true
	default:
		return 0, false
	}
}

func keep(results []Freelancer, pred func(Freelancer) bool) []Freelancer {
	out := results[:0:0]
	for _, f := range results {
		if pred(f) {
			out = append(out, f)
		}
	}
	return out
}
