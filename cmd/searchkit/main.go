// Searchkit demo command - wires the cache, engine, history store and
// background tasks together against a fixture dataset and runs a few
// example searches.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/talentmatch/searchkit/pkg/cache"
	"github.com/talentmatch/searchkit/pkg/history"
	"github.com/talentmatch/searchkit/pkg/logging"
	"github.com/talentmatch/searchkit/pkg/query"
	"github.com/talentmatch/searchkit/pkg/search"
	"github.com/talentmatch/searchkit/pkg/tasks"
)

func main() {
	var (
		cacheSize  = flag.Int("cache-size", cache.DefaultMaxSize, "Maximum cached result sets")
		cacheTTL   = flag.Duration("cache-ttl", cache.DefaultTTL, "Cache entry time-to-live")
		logLevel   = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
		logFormat  = flag.String("log-format", "console", "Log format (console, json)")
		historyDir = flag.String("history-dir", "", "Directory for persisted search history (empty: in-memory)")
	)
	flag.Parse()

	logger, err := logging.New(logging.Config{Level: *logLevel, Format: *logFormat})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(logger, *cacheSize, *cacheTTL, *historyDir); err != nil {
		logger.Error("demo failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(logger *zap.Logger, cacheSize int, cacheTTL time.Duration, historyDir string) error {
	ctx := context.Background()

	var storage history.Storage = history.NewMemoryStorage()
	if historyDir != "" {
		fs, err := history.NewFileStorage(historyDir)
		if err != nil {
			return fmt.Errorf("failed to open history storage: %w", err)
		}
		storage = fs
	}

	suggest, err := history.NewSuggestIndex()
	if err != nil {
		return fmt.Errorf("failed to create suggest index: %w", err)
	}
	defer suggest.Close()

	store := history.NewStore(ctx, history.DefaultConfig(), storage, suggest, logger)

	resultsCache := search.NewResultsCache(
		cache.New[search.Results](
			cache.WithMaxSize(cacheSize),
			cache.WithDefaultTTL(cacheTTL),
		),
		logger,
	)
	engine := search.NewEngine(fixtureSearch, resultsCache, store, logger)

	// Periodic expired-entry sweep, stopped on shutdown.
	scheduler := &cache.TickerScheduler{}
	stopCleanup := scheduler.Schedule(time.Minute, func() {
		if removed := resultsCache.Cache().Cleanup(); removed > 0 {
			logger.Debug("cleanup removed expired entries", zap.Int("removed", removed))
		}
	})
	defer stopCleanup()

	manager := tasks.NewTaskManager(logger)
	defer manager.Dispose()

	debouncer := tasks.NewDebouncer[[]string]()
	defer debouncer.Dispose()

	// Prewarm a popular query in the background.
	if _, err := manager.Execute(ctx, "prewarm", func(tctx context.Context) error {
		warmed := engine.Prewarm(tctx, []query.SearchQuery{
			{Query: "react developer", Limit: 10},
		})
		logger.Info("prewarm finished", zap.Int("warmed", warmed))
		return nil
	}); err != nil {
		return err
	}

	queries := []query.SearchQuery{
		{Query: "react developer", Limit: 10},
		{Query: "  React   Developer ", Limit: 10}, // canonicalizes to the first
		{
			Query: "backend",
			Filters: query.AdvancedSearchFilters{
				Skills:          []query.SkillFilter{{Name: "go"}, {Name: "postgres"}},
				LogicalOperator: query.OperatorOr,
				PriceRange:      &query.PriceRange{Min: 30, Max: 120, Currency: "EUR"},
			},
			SortBy: query.SortByPriceAsc,
			Limit:  10,
		},
	}

	for _, q := range queries {
		if violations := query.ValidateFilters(q.Filters); len(violations) > 0 {
			logger.Warn("query has filter violations", zap.Strings("violations", violations))
			continue
		}

		results, err := engine.Search(ctx, q)
		if err != nil {
			logger.Warn("search failed", zap.String("query", q.Query), zap.Error(err))
			continue
		}
		fmt.Printf("query=%q total=%d cached=%v took=%dms\n",
			q.Query, results.Total, results.FromCache, results.TookMS)
		for _, f := range results.PageItems() {
			fmt.Printf("  %-14s %5.1f %s/h  score=%.0f\n",
				f.Name, f.HourlyRate, f.Currency, f.RelevanceScore)
		}
	}

	// Debounced suggestion lookup: only the last keystroke executes.
	for _, partial := range []string{"re", "rea", "reac"} {
		p := partial
		debouncer.Debounce(ctx, "suggest", 30*time.Millisecond, func(context.Context) ([]string, error) {
			suggestions := store.Suggestions(p)
			fmt.Printf("suggestions for %q: %v\n", p, suggestions)
			return suggestions, nil
		})
	}
	time.Sleep(100 * time.Millisecond)

	metrics := resultsCache.GetCacheMetrics()
	fmt.Printf("cache: size=%d hit_rate=%.2f effectiveness=%s\n",
		metrics.Stats.Size, metrics.Stats.HitRate, metrics.Effectiveness)

	stats := store.SearchStats()
	fmt.Printf("history: searches=%d avg_results=%.1f\n",
		stats.TotalSearches, stats.AverageResults)
	return nil
}

// fixtureSearch is the demo's stand-in for a real backend.
func fixtureSearch(_ context.Context, _ query.SearchQuery) ([]search.Freelancer, error) {
	return []search.Freelancer{
		{
			ID: "f1", Name: "Ada", Title: "Senior React Developer",
			Description: "Builds large single-page applications",
			Skills:      []string{"react", "typescript"},
			HourlyRate:  85, Currency: "EUR", Rating: 4.9, ReviewCount: 120,
			Location: search.Location{City: "Berlin", Country: "Germany", Latitude: 52.52, Longitude: 13.405},
			TopRated: true, Verified: true, Active: true,
			MemberSince: time.Date(2019, 3, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			ID: "f2", Name: "Grace", Title: "Go Backend Engineer",
			Description: "APIs, PostgreSQL, distributed systems",
			Skills:      []string{"go", "postgres", "redis"},
			HourlyRate:  95, Currency: "USD", Rating: 4.7, ReviewCount: 64,
			Location: search.Location{City: "Lisbon", Country: "Portugal", Latitude: 38.7223, Longitude: -9.1393},
			Verified: true, Active: true,
			MemberSince: time.Date(2021, 7, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			ID: "f3", Name: "Linus", Title: "Full-stack Developer",
			Description: "React front ends with Node services",
			Skills:      []string{"react", "node"},
			HourlyRate:  40, Currency: "USD", Rating: 4.2, ReviewCount: 18,
			Location: search.Location{City: "Warsaw", Country: "Poland", Latitude: 52.2297, Longitude: 21.0122},
			Active:   true,
			MemberSince: time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			ID: "f4", Name: "Edsger", Title: "Retired Consultant",
			Skills: []string{"algol"}, HourlyRate: 200, Currency: "USD",
			Active: false,
		},
	}, nil
}
