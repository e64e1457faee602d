package query

import (
	"encoding/base64"
	"encoding/json"
	"sort"
	"strings"
)

// Normalize returns the canonical form of q: free text lowercased and
// trimmed, skill filters sorted by lowercased name, languages lowercased
// and sorted, price currency uppercased. The input is not mutated.
// Normalize is idempotent: Normalize(Normalize(q)) == Normalize(q).
func Normalize(q SearchQuery) SearchQuery {
	out := q
	out.Query = strings.ToLower(strings.TrimSpace(q.Query))

	if len(q.Filters.Skills) > 0 {
		skills := make([]SkillFilter, len(q.Filters.Skills))
		copy(skills, q.Filters.Skills)
		for i := range skills {
			skills[i].Name = strings.ToLower(strings.TrimSpace(skills[i].Name))
		}
		sort.Slice(skills, func(i, j int) bool { return skills[i].Name < skills[j].Name })
		out.Filters.Skills = skills
	}

	if len(q.Filters.Languages) > 0 {
		langs := make([]string, len(q.Filters.Languages))
		for i, l := range q.Filters.Languages {
			langs[i] = strings.ToLower(strings.TrimSpace(l))
		}
		sort.Strings(langs)
		out.Filters.Languages = langs
	}

	if q.Filters.PriceRange != nil {
		pr := *q.Filters.PriceRange
		pr.Currency = strings.ToUpper(strings.TrimSpace(pr.Currency))
		out.Filters.PriceRange = &pr
	}

	// Pointer sub-filters are copied so canonical queries never alias
	// caller-owned state.
	if q.Filters.Location != nil {
		loc := *q.Filters.Location
		out.Filters.Location = &loc
	}
	if q.Filters.Rating != nil {
		r := *q.Filters.Rating
		out.Filters.Rating = &r
	}
	if q.Filters.ResponseTime != nil {
		rt := *q.Filters.ResponseTime
		out.Filters.ResponseTime = &rt
	}

	return out
}

// CacheKey derives a deterministic, URL- and tag-safe identifier for q.
// The normalized query is JSON-serialized and base64-encoded with the
// URL-safe alphabet and no '=' padding. Queries that
// differ only in filter-array order or free-text casing share a key.
func CacheKey(q SearchQuery) string {
	data, err := json.Marshal(Normalize(q))
	if err != nil {
		// SearchQuery contains only marshalable fields; this path is
		// unreachable in practice but must not panic.
		return base64.RawURLEncoding.EncodeToString([]byte(q.Query))
	}
	return base64.RawURLEncoding.EncodeToString(data)
}
