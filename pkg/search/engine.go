package search

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/talentmatch/searchkit/pkg/query"
)

// HistoryRecorder receives one record per executed search, hit or miss.
// pkg/history.Store satisfies it.
type HistoryRecorder interface {
	AddToHistory(ctx context.Context, q query.SearchQuery, resultsCount int, executionTime time.Duration)
}

// Engine composes the canonicalizer, results cache, scorer, filter
// pipeline and history store around the injected backend SearchFunc.
// Instances are constructed explicitly by the composition root; there
// are no package-level singletons.
type Engine struct {
	searchFn SearchFunc
	cache    *ResultsCache
	history  HistoryRecorder
	logger   *zap.Logger

	// group coalesces concurrent misses on the same canonical key into
	// a single backend call.
	group singleflight.Group
}

// NewEngine wires an Engine. history may be nil when the caller does
// not track history; logger may be nil.
func NewEngine(searchFn SearchFunc, cache *ResultsCache, history HistoryRecorder, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		searchFn: searchFn,
		cache:    cache,
		history:  history,
		logger:   logger,
	}
}

// Search resolves q: cache hit, or backend call followed by scoring,
// filtering, sorting and caching. The search is recorded to history
// regardless of cache outcome. Validation is the caller's decision;
// Search does not reject queries with filter violations.
func (e *Engine) Search(ctx context.Context, q query.SearchQuery) (Results, error) {
	start := time.Now()
	key := query.CacheKey(q)

	if results, ok := e.cache.GetCachedResults(q); ok {
		e.record(ctx, q, results.Total, time.Since(start))
		return results, nil
	}

	v, err, _ := e.group.Do(key, func() (interface{}, error) {
		items, err := e.searchFn(ctx, q)
		if err != nil {
			return nil, err
		}
		results := buildResults(q, items)
		e.cache.CacheResults(q, results)
		return results, nil
	})
	if err != nil {
		e.logger.Warn("backend search failed",
			zap.String("query", q.Query),
			zap.Error(err))
		return Results{}, err
	}

	took := time.Since(start)
	results := v.(Results)
	results.TookMS = took.Milliseconds()

	e.record(ctx, q, results.Total, took)
	return results, nil
}

// Prewarm populates the cache for popular queries using the engine's
// backend. See ResultsCache.Prewarm for failure semantics.
func (e *Engine) Prewarm(ctx context.Context, popular []query.SearchQuery) int {
	return e.cache.Prewarm(ctx, popular, e.searchFn)
}

// Cache exposes the engine's results cache.
func (e *Engine) Cache() *ResultsCache {
	return e.cache
}

func (e *Engine) record(ctx context.Context, q query.SearchQuery, count int, took time.Duration) {
	if e.history == nil {
		return
	}
	e.history.AddToHistory(ctx, q, count, took)
}
