package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentmatch/searchkit/pkg/query"
)

func newTestStore(t *testing.T, cfg Config, storage Storage) *Store {
	t.Helper()
	return NewStore(context.Background(), cfg, storage, nil, nil)
}

func TestAddToHistoryDedup(t *testing.T) {
	s := newTestStore(t, DefaultConfig(), nil)
	ctx := context.Background()

	s.AddToHistory(ctx, query.SearchQuery{Query: "react developer"}, 10, 20*time.Millisecond)
	s.AddToHistory(ctx, query.SearchQuery{Query: "  React Developer "}, 7, 15*time.Millisecond)

	require.Equal(t, 1, s.Len(), "equivalent queries dedup to one entry")
	e := s.RecentSearches(1)[0]
	assert.Equal(t, 7, e.ResultsCount, "counters updated to latest")
	assert.Equal(t, 2, e.Frequency)
}

func TestAddToHistoryMoveToFront(t *testing.T) {
	s := newTestStore(t, DefaultConfig(), nil)
	ctx := context.Background()

	s.AddToHistory(ctx, query.SearchQuery{Query: "first"}, 1, 0)
	s.AddToHistory(ctx, query.SearchQuery{Query: "second"}, 1, 0)
	s.AddToHistory(ctx, query.SearchQuery{Query: "first"}, 1, 0)

	recent := s.RecentSearches(0)
	require.Len(t, recent, 2)
	assert.Equal(t, "first", recent[0].Query.Query)
	assert.Equal(t, "second", recent[1].Query.Query)
}

func TestAddToHistoryTrim(t *testing.T) {
	s := newTestStore(t, Config{MaxItems: 3}, nil)
	ctx := context.Background()

	for _, q := range []string{"a", "b", "c", "d"} {
		s.AddToHistory(ctx, query.SearchQuery{Query: q}, 0, 0)
	}

	assert.Equal(t, 3, s.Len())
	recent := s.RecentSearches(0)
	assert.Equal(t, "d", recent[0].Query.Query)
	assert.Equal(t, "b", recent[2].Query.Query, "oldest entry dropped")
}

func TestRemoveAndClear(t *testing.T) {
	s := newTestStore(t, DefaultConfig(), nil)
	ctx := context.Background()

	s.AddToHistory(ctx, query.SearchQuery{Query: "keep"}, 0, 0)
	s.AddToHistory(ctx, query.SearchQuery{Query: "drop"}, 0, 0)

	var dropID string
	for _, e := range s.RecentSearches(0) {
		if e.Query.Query == "drop" {
			dropID = e.ID
		}
	}
	require.NotEmpty(t, dropID)

	assert.True(t, s.RemoveFromHistory(ctx, dropID))
	assert.False(t, s.RemoveFromHistory(ctx, dropID), "second removal finds nothing")
	assert.Equal(t, 1, s.Len())

	s.ClearHistory(ctx)
	assert.Equal(t, 0, s.Len())
}

func TestFrequentSearches(t *testing.T) {
	s := newTestStore(t, DefaultConfig(), nil)
	ctx := context.Background()

	// "react" twice under differing filters, "golang" once.
	s.AddToHistory(ctx, query.SearchQuery{Query: "react"}, 0, 0)
	s.AddToHistory(ctx, query.SearchQuery{Query: "react", Page: 2}, 0, 0)
	s.AddToHistory(ctx, query.SearchQuery{Query: "golang"}, 0, 0)

	freq := s.FrequentSearches(1)
	require.Len(t, freq, 1)
	assert.Equal(t, "react", freq[0].Query)
	assert.Equal(t, 2, freq[0].Count)
}

func TestSearchHistory(t *testing.T) {
	s := newTestStore(t, DefaultConfig(), nil)
	ctx := context.Background()

	s.AddToHistory(ctx, query.SearchQuery{Query: "frontend work"}, 0, 0)
	s.AddToHistory(ctx, query.SearchQuery{
		Query:   "backend",
		Filters: query.AdvancedSearchFilters{Skills: []query.SkillFilter{{Name: "React"}}},
	}, 0, 0)
	s.AddToHistory(ctx, query.SearchQuery{
		Query:   "anything",
		Filters: query.AdvancedSearchFilters{Location: &query.LocationFilter{City: "Berlin"}},
	}, 0, 0)

	assert.Len(t, s.SearchHistory("react"), 1, "matches skill names")
	assert.Len(t, s.SearchHistory("BERLIN"), 1, "matches city, case-insensitive")
	assert.Len(t, s.SearchHistory("end"), 2, "substring over query text")
	assert.Empty(t, s.SearchHistory("cobol"))
}

func TestSuggestions(t *testing.T) {
	s := newTestStore(t, DefaultConfig(), nil)
	ctx := context.Background()

	s.AddToHistory(ctx, query.SearchQuery{Query: "react developer"}, 0, 0)
	s.AddToHistory(ctx, query.SearchQuery{Query: "react native"}, 0, 0)
	s.AddToHistory(ctx, query.SearchQuery{
		Filters: query.AdvancedSearchFilters{Skills: []query.SkillFilter{{Name: "preact"}}},
	}, 0, 0)

	assert.Nil(t, s.Suggestions("r"), "partials under 2 chars are ignored")

	got := s.Suggestions("re")
	require.NotEmpty(t, got)
	// Prefix matches first, shorter first; the substring match trails.
	assert.Equal(t, []string{"react native", "react developer", "preact"}, got)
}

func TestSuggestionsCapAndDisable(t *testing.T) {
	s := newTestStore(t, DefaultConfig(), nil)
	ctx := context.Background()
	queries := []string{
		"go basics", "go routines", "go generics", "go modules", "go testing",
		"go tooling", "go profiling", "go embedding", "go workspaces", "go fuzzing",
	}
	for _, q := range queries {
		s.AddToHistory(ctx, query.SearchQuery{Query: q}, 0, 0)
	}
	assert.Len(t, s.Suggestions("go"), 8)

	off := newTestStore(t, Config{DisableAutocomplete: true}, nil)
	off.AddToHistory(ctx, query.SearchQuery{Query: "golang"}, 0, 0)
	assert.Nil(t, off.Suggestions("go"))
}

func TestFavoriteFilters(t *testing.T) {
	s := newTestStore(t, DefaultConfig(), nil)
	ctx := context.Background()

	reactBerlin := query.AdvancedSearchFilters{
		Skills:   []query.SkillFilter{{Name: "react"}},
		Location: &query.LocationFilter{City: "Berlin"},
	}
	s.AddToHistory(ctx, query.SearchQuery{Query: "a", Filters: reactBerlin}, 0, 0)
	s.AddToHistory(ctx, query.SearchQuery{Query: "b", Filters: reactBerlin}, 0, 0)
	s.AddToHistory(ctx, query.SearchQuery{
		Query:   "c",
		Filters: query.AdvancedSearchFilters{ExperienceLevel: "senior"},
	}, 0, 0)
	s.AddToHistory(ctx, query.SearchQuery{Query: "unfiltered"}, 0, 0)

	favs := s.FavoriteFilters()
	require.Len(t, favs, 2, "entries without groupable filters are skipped")
	assert.Equal(t, []string{"react"}, favs[0].Skills)
	assert.Equal(t, "berlin", favs[0].City)
	assert.Equal(t, 2, favs[0].Count)
}

func TestExportImportRoundTrip(t *testing.T) {
	s := newTestStore(t, DefaultConfig(), nil)
	ctx := context.Background()

	s.AddToHistory(ctx, query.SearchQuery{Query: "react"}, 12, 30*time.Millisecond)
	s.AddToHistory(ctx, query.SearchQuery{Query: "golang"}, 3, 10*time.Millisecond)

	data, err := s.ExportHistory()
	require.NoError(t, err)

	restored := newTestStore(t, DefaultConfig(), nil)
	require.True(t, restored.ImportHistory(ctx, data))
	assert.Equal(t, 2, restored.Len())
	assert.Equal(t, "golang", restored.RecentSearches(1)[0].Query.Query)
}

func TestImportRejectsBadInput(t *testing.T) {
	s := newTestStore(t, DefaultConfig(), nil)
	ctx := context.Background()
	s.AddToHistory(ctx, query.SearchQuery{Query: "keep me"}, 0, 0)

	assert.False(t, s.ImportHistory(ctx, []byte("{not json")))
	assert.False(t, s.ImportHistory(ctx, []byte(`{"version":99,"entries":[]}`)))
	assert.Equal(t, 1, s.Len(), "rejected imports leave history untouched")
}

func TestSearchStats(t *testing.T) {
	s := newTestStore(t, DefaultConfig(), nil)
	ctx := context.Background()

	assert.Zero(t, s.SearchStats().TotalSearches, "empty history yields zero stats")

	s.AddToHistory(ctx, query.SearchQuery{Query: "react"}, 10, 20*time.Millisecond)
	s.AddToHistory(ctx, query.SearchQuery{Query: "react"}, 10, 20*time.Millisecond)
	s.AddToHistory(ctx, query.SearchQuery{Query: "golang"}, 20, 40*time.Millisecond)

	stats := s.SearchStats()
	assert.Equal(t, 3, stats.TotalSearches)
	assert.InDelta(t, 15, stats.AverageResults, 1e-9)
	assert.InDelta(t, 30, stats.AverageExecutionMS, 1e-9)
	require.NotEmpty(t, stats.TopTerms)
	assert.Equal(t, TermCount{Term: "react", Count: 2}, stats.TopTerms[0])
	assert.NotEmpty(t, stats.SearchesByDay)
}

func TestGroupedByDate(t *testing.T) {
	s := newTestStore(t, DefaultConfig(), nil)
	ctx := context.Background()

	day1 := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 8, 2, 10, 0, 0, 0, time.UTC)

	current := day1
	s.now = func() time.Time { return current }
	s.AddToHistory(ctx, query.SearchQuery{Query: "react"}, 0, 0)
	current = day2
	s.AddToHistory(ctx, query.SearchQuery{Query: "golang"}, 0, 0)
	s.AddToHistory(ctx, query.SearchQuery{Query: "rust"}, 0, 0)

	grouped := s.GroupedByDate()
	require.Len(t, grouped, 2)
	assert.Len(t, grouped["2026-08-01"], 1)
	assert.Len(t, grouped["2026-08-02"], 2)
}

func TestPersistenceRoundTrip(t *testing.T) {
	storage := NewMemoryStorage()
	ctx := context.Background()

	s := newTestStore(t, DefaultConfig(), storage)
	s.AddToHistory(ctx, query.SearchQuery{Query: "react"}, 5, 0)

	// A fresh store against the same storage sees the history.
	s2 := newTestStore(t, DefaultConfig(), storage)
	require.Equal(t, 1, s2.Len())
	assert.Equal(t, "react", s2.RecentSearches(1)[0].Query.Query)

	s2.ClearHistory(ctx)
	s3 := newTestStore(t, DefaultConfig(), storage)
	assert.Equal(t, 0, s3.Len())
}

// failingStorage simulates an unavailable persistence medium.
type failingStorage struct{}

func (failingStorage) GetItem(context.Context, string) ([]byte, error) {
	return nil, errors.New("storage unavailable")
}
func (failingStorage) SetItem(context.Context, string, []byte) error {
	return errors.New("storage unavailable")
}
func (failingStorage) DeleteItem(context.Context, string) error {
	return errors.New("storage unavailable")
}

func TestStorageFailureDegradesToMemory(t *testing.T) {
	s := newTestStore(t, DefaultConfig(), failingStorage{})
	ctx := context.Background()

	s.AddToHistory(ctx, query.SearchQuery{Query: "react"}, 5, 0)
	assert.Equal(t, 1, s.Len(), "history keeps working without persistence")
	assert.Len(t, s.RecentSearches(0), 1)
}

func TestStoreWithSuggestIndex(t *testing.T) {
	suggest, err := NewSuggestIndex()
	require.NoError(t, err)
	defer suggest.Close()

	s := NewStore(context.Background(), DefaultConfig(), nil, suggest, nil)
	ctx := context.Background()

	s.AddToHistory(ctx, query.SearchQuery{Query: "senior react developer"}, 0, 0)
	s.AddToHistory(ctx, query.SearchQuery{Query: "golang backend"}, 0, 0)

	// Word-level match through the index, not just substring.
	hits := s.SearchHistory("developer")
	require.Len(t, hits, 1)
	assert.Equal(t, "senior react developer", hits[0].Query.Query)
}
