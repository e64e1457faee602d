package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/talentmatch/searchkit/pkg/cache"
	"github.com/talentmatch/searchkit/pkg/query"
)

// TagSearchResults marks every entry written by the results cache.
const TagSearchResults = "search_results"

// TagPrewarmed marks entries populated by Prewarm rather than a live search.
const TagPrewarmed = "prewarmed"

// prewarmConcurrency bounds parallel backend calls during Prewarm.
const prewarmConcurrency = 4

// ResultsCache specializes the tagged TTL cache for query-to-results
// mapping, deriving invalidation tags from the query's filter facets.
type ResultsCache struct {
	cache  *cache.Cache[Results]
	logger *zap.Logger
}

// NewResultsCache wraps c. A nil logger falls back to a no-op logger.
func NewResultsCache(c *cache.Cache[Results], logger *zap.Logger) *ResultsCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResultsCache{cache: c, logger: logger}
}

// CacheResults stores results under the query's canonical key, tagged by
// its filter facets so facet-level invalidation can find it later.
func (rc *ResultsCache) CacheResults(q query.SearchQuery, results Results, extraTags ...string) {
	key := query.CacheKey(q)
	tags := append(deriveTags(q), extraTags...)
	rc.cache.Set(key, results, tags...)
}

// GetCachedResults returns the cached results for q, or ok=false on a
// miss. A miss has no side effects beyond the cache's own bookkeeping.
func (rc *ResultsCache) GetCachedResults(q query.SearchQuery) (Results, bool) {
	entry, ok := rc.cache.Get(query.CacheKey(q))
	if !ok {
		return Results{}, false
	}
	results := entry.Data
	results.FromCache = true
	return results, true
}

// InvalidateByFilter removes every cached result set tagged with the
// given facet, e.g. ("skill", "react") or ("city", "berlin"). An empty
// filterValue invalidates the whole facet dimension only when the tag
// was written without a value, so callers normally pass both.
func (rc *ResultsCache) InvalidateByFilter(filterType, filterValue string) int {
	tag := filterType
	if filterValue != "" {
		tag = fmt.Sprintf("%s_%s", filterType, strings.ToLower(filterValue))
	}
	removed := rc.cache.InvalidateByTag(tag)
	if removed > 0 {
		rc.logger.Debug("invalidated cached searches",
			zap.String("tag", tag),
			zap.Int("removed", removed))
	}
	return removed
}

// InvalidateAll drops every cached result set.
func (rc *ResultsCache) InvalidateAll() int {
	return rc.cache.InvalidateByTag(TagSearchResults)
}

// Prewarm populates the cache for popular queries that miss, calling
// searchFn for each. Per-query failures are logged and skipped so one
// bad query cannot abort the batch; the first ctx cancellation stops
// outstanding work. Returns the number of queries actually warmed.
func (rc *ResultsCache) Prewarm(ctx context.Context, popular []query.SearchQuery, searchFn SearchFunc) int {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(prewarmConcurrency)

	warmed := make(chan struct{}, len(popular))
	for _, q := range popular {
		q := q
		if _, ok := rc.cache.Get(query.CacheKey(q)); ok {
			continue
		}
		g.Go(func() error {
			items, err := searchFn(gctx, q)
			if err != nil {
				rc.logger.Warn("prewarm query failed",
					zap.String("query", q.Query),
					zap.Error(err))
				return nil // all-settle: never abort the batch
			}

			results := buildResults(q, items)
			results.Prewarmed = true
			rc.CacheResults(q, results, TagPrewarmed)
			warmed <- struct{}{}
			return nil
		})
	}

	_ = g.Wait()
	close(warmed)
	return len(warmed)
}

// Metrics augments raw cache statistics with a qualitative
// effectiveness label and a textual recommendation. Purely advisory.
type Metrics struct {
	Stats          cache.Stats `json:"stats"`
	Effectiveness  string      `json:"effectiveness"`
	Recommendation string      `json:"recommendation"`
}

// GetCacheMetrics reports current cache effectiveness.
func (rc *ResultsCache) GetCacheMetrics() Metrics {
	stats := rc.cache.Stats()

	m := Metrics{Stats: stats}
	switch {
	case stats.HitRate > 0.3:
		m.Effectiveness = "high"
		m.Recommendation = "cache is performing well"
	case stats.HitRate > 0.1:
		m.Effectiveness = "medium"
		m.Recommendation = "consider prewarming popular queries to raise the hit rate"
	default:
		m.Effectiveness = "low"
		m.Recommendation = "hit rate is low; review TTL settings and query canonicalization"
	}
	return m
}

// Cache exposes the underlying tagged cache for maintenance operations
// (Cleanup scheduling, metrics registration, export/import).
func (rc *ResultsCache) Cache() *cache.Cache[Results] {
	return rc.cache
}

// deriveTags maps a query's facets onto cache tags.
func deriveTags(q query.SearchQuery) []string {
	n := query.Normalize(q)

	tags := []string{
		TagSearchResults,
		fmt.Sprintf("page_%d", n.Page),
		fmt.Sprintf("limit_%d", n.Limit),
	}
	for _, s := range n.Filters.Skills {
		tags = append(tags, "skill_"+s.Name)
	}
	if loc := n.Filters.Location; loc != nil && loc.City != "" {
		tags = append(tags, "city_"+strings.ToLower(loc.City))
	}
	if pr := n.Filters.PriceRange; pr != nil && pr.Currency != "" {
		tags = append(tags, "currency_"+strings.ToLower(pr.Currency))
	}
	return tags
}

// buildResults scores, filters and sorts raw backend candidates into a
// Results value for q.
func buildResults(q query.SearchQuery, items []Freelancer) Results {
	if !q.IncludeInactive {
		items = keep(items, func(f Freelancer) bool { return f.Active })
	}
	scored := ScoreAll(items, q)
	filtered := ApplyFilters(scored, q.Filters)
	sorted := SortResults(filtered, q.SortBy)

	return Results{
		Query:      query.Normalize(q),
		Items:      sorted,
		Total:      len(sorted),
		Page:       q.Page,
		Limit:      q.Limit,
		ComputedAt: time.Now(),
	}
}
