package query

import "fmt"

// maxRadius caps the location filter radius; anything larger than this
// is a mistake, not a search area.
const maxRadius = 10000

// ValidateFilters checks filter ranges and returns human-readable
// violations. It never fails hard: the caller decides whether a
// violation blocks the search or is merely reported.
func ValidateFilters(f AdvancedSearchFilters) []string {
	var violations []string

	if pr := f.PriceRange; pr != nil && pr.Min > pr.Max {
		violations = append(violations,
			fmt.Sprintf("price range minimum (%.2f) exceeds maximum (%.2f)", pr.Min, pr.Max))
	}

	if r := f.Rating; r != nil && (r.MinimumRating < 0 || r.MinimumRating > 5) {
		violations = append(violations,
			fmt.Sprintf("minimum rating %.1f is outside the valid range [0, 5]", r.MinimumRating))
	}

	if loc := f.Location; loc != nil {
		if loc.Radius < 0 {
			violations = append(violations,
				fmt.Sprintf("location radius %.1f is negative", loc.Radius))
		}
		if loc.Radius > maxRadius {
			violations = append(violations,
				fmt.Sprintf("location radius %.1f exceeds the maximum of %d", loc.Radius, maxRadius))
		}
	}

	if rt := f.ResponseTime; rt != nil && rt.MaxHours < 0 {
		violations = append(violations,
			fmt.Sprintf("response time %.1f hours is negative", rt.MaxHours))
	}

	return violations
}
