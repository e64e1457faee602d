package search

import (
	"sort"

	"github.com/talentmatch/searchkit/pkg/query"
)

// SortResults orders results by sortBy and returns a new slice. This is
// the authoritative final ordering: it runs after all filters precisely
// because the location filter leaves a provisional nearest-first order
// behind. An unknown or empty sortBy falls back to relevance.
func SortResults(results []Freelancer, sortBy query.SortField) []Freelancer {
	out := make([]Freelancer, len(results))
	copy(out, results)

	switch sortBy {
	case query.SortByPriceAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].HourlyRate < out[j].HourlyRate })
	case query.SortByPriceDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].HourlyRate > out[j].HourlyRate })
	case query.SortByRating:
		sort.SliceStable(out, func(i, j int) bool {
			if out[i].Rating != out[j].Rating {
				return out[i].Rating > out[j].Rating
			}
			return out[i].ReviewCount > out[j].ReviewCount
		})
	case query.SortByDistance:
		sort.SliceStable(out, func(i, j int) bool {
			di, dj := out[i].Location.DistanceKm, out[j].Location.DistanceKm
			switch {
			case di == nil:
				return false // unknown distances sort last
			case dj == nil:
				return true
			default:
				return *di < *dj
			}
		})
	case query.SortByRecent:
		sort.SliceStable(out, func(i, j int) bool { return out[i].MemberSince.After(out[j].MemberSince) })
	default: // query.SortByRelevance
		sort.SliceStable(out, func(i, j int) bool { return out[i].RelevanceScore > out[j].RelevanceScore })
	}

	return out
}
