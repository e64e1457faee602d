// Package history implements the search history store: a deduplicated,
// recency-ordered record of executed searches with analytics
// (frequent searches, favorite filters, aggregate stats), autocomplete
// suggestions and best-effort persistence through a pluggable Storage.
package history

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/talentmatch/searchkit/pkg/query"
)

const (
	// DefaultMaxItems bounds how many distinct searches are retained.
	DefaultMaxItems = 50

	// DefaultStorageKey is the key history snapshots are persisted under.
	DefaultStorageKey = "searchkit_history"

	// SnapshotVersion is the current export/persistence format version.
	SnapshotVersion = 1

	minSuggestionLength = 2
	maxSuggestions      = 8
	maxFavoriteFilters  = 5
	maxTopTerms         = 10
)

// Entry is one remembered search. Query is stored in canonical form.
type Entry struct {
	ID            string            `json:"id"`
	Query         query.SearchQuery `json:"query"`
	CanonicalKey  string            `json:"canonical_key"`
	Timestamp     time.Time         `json:"timestamp"`
	ResultsCount  int               `json:"results_count"`
	ExecutionTime time.Duration     `json:"execution_time"`
	Frequency     int               `json:"frequency"`
}

// Config controls store behavior.
type Config struct {
	// MaxItems caps retained entries; the oldest are dropped past it.
	MaxItems int

	// StorageKey names the persisted snapshot in the Storage.
	StorageKey string

	// DisableAutocomplete turns Suggestions into a no-op.
	DisableAutocomplete bool
}

// DefaultConfig returns the standard store configuration.
func DefaultConfig() Config {
	return Config{
		MaxItems:   DefaultMaxItems,
		StorageKey: DefaultStorageKey,
	}
}

// Store records executed searches. Safe for concurrent use. storage and
// suggest are both optional; without storage the store is memory-only,
// without suggest SearchHistory uses substring matching alone.
type Store struct {
	mu      sync.RWMutex
	entries []*Entry          // front = most recent
	byKey   map[string]*Entry // keyed by canonical cache key

	cfg     Config
	storage Storage
	suggest *SuggestIndex
	logger  *zap.Logger

	now func() time.Time
}

// NewStore builds a store and loads any persisted snapshot, degrading
// to empty history when the snapshot is missing or unreadable.
func NewStore(ctx context.Context, cfg Config, storage Storage, suggest *SuggestIndex, logger *zap.Logger) *Store {
	if cfg.MaxItems <= 0 {
		cfg.MaxItems = DefaultMaxItems
	}
	if cfg.StorageKey == "" {
		cfg.StorageKey = DefaultStorageKey
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Store{
		byKey:   make(map[string]*Entry),
		cfg:     cfg,
		storage: storage,
		suggest: suggest,
		logger:  logger,
		now:     time.Now,
	}
	s.load(ctx)
	return s
}

// AddToHistory records one executed search. A repeat of the same
// canonical query updates the existing entry in place and moves it to
// the front; a new query is prepended. The list is trimmed to MaxItems
// and persisted best-effort.
func (s *Store) AddToHistory(ctx context.Context, q query.SearchQuery, resultsCount int, executionTime time.Duration) {
	n := query.Normalize(q)
	key := query.CacheKey(n)

	s.mu.Lock()
	if e, ok := s.byKey[key]; ok {
		e.Timestamp = s.now()
		e.ResultsCount = resultsCount
		e.ExecutionTime = executionTime
		e.Frequency++
		s.moveToFrontLocked(e)
		s.mu.Unlock()
		s.persist(ctx)
		return
	}

	e := &Entry{
		ID:            uuid.NewString(),
		Query:         n,
		CanonicalKey:  key,
		Timestamp:     s.now(),
		ResultsCount:  resultsCount,
		ExecutionTime: executionTime,
		Frequency:     1,
	}
	s.entries = append([]*Entry{e}, s.entries...)
	s.byKey[key] = e

	var dropped []*Entry
	if len(s.entries) > s.cfg.MaxItems {
		dropped = s.entries[s.cfg.MaxItems:]
		s.entries = s.entries[:s.cfg.MaxItems]
		for _, d := range dropped {
			delete(s.byKey, d.CanonicalKey)
		}
	}
	s.mu.Unlock()

	s.indexEntry(*e)
	for _, d := range dropped {
		s.unindexEntry(d.ID)
	}
	s.persist(ctx)
}

// RemoveFromHistory deletes the entry with the given ID. Returns false
// when no such entry exists.
func (s *Store) RemoveFromHistory(ctx context.Context, id string) bool {
	s.mu.Lock()
	idx := -1
	for i, e := range s.entries {
		if e.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	e := s.entries[idx]
	s.entries = append(s.entries[:idx], s.entries[idx+1:]...)
	delete(s.byKey, e.CanonicalKey)
	s.mu.Unlock()

	s.unindexEntry(e.ID)
	s.persist(ctx)
	return true
}

// ClearHistory drops every entry and the persisted snapshot.
func (s *Store) ClearHistory(ctx context.Context) {
	s.mu.Lock()
	old := s.entries
	s.entries = nil
	s.byKey = make(map[string]*Entry)
	s.mu.Unlock()

	for _, e := range old {
		s.unindexEntry(e.ID)
	}
	if s.storage != nil {
		if err := s.storage.DeleteItem(ctx, s.cfg.StorageKey); err != nil {
			s.logger.Warn("failed to clear persisted history", zap.Error(err))
		}
	}
}

// Len returns the number of retained entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// RecentSearches returns up to limit entries, most recent first.
func (s *Store) RecentSearches(limit int) []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0, min(limit, len(s.entries)))
	for _, e := range s.entries {
		if limit > 0 && len(out) >= limit {
			break
		}
		out = append(out, *e)
	}
	return out
}

// FrequentSearch is one free-text query aggregated across entries.
type FrequentSearch struct {
	Query        string    `json:"query"`
	Count        int       `json:"count"`
	LastSearched time.Time `json:"last_searched"`
}

// FrequentSearches groups entries by free-text query and returns the
// limit most frequently executed, using the most recent entry of each
// group as its representative timestamp.
func (s *Store) FrequentSearches(limit int) []FrequentSearch {
	s.mu.RLock()
	groups := make(map[string]*FrequentSearch)
	for _, e := range s.entries {
		text := e.Query.Query
		if text == "" {
			continue
		}
		g, ok := groups[text]
		if !ok {
			g = &FrequentSearch{Query: text}
			groups[text] = g
		}
		g.Count += e.Frequency
		if e.Timestamp.After(g.LastSearched) {
			g.LastSearched = e.Timestamp
		}
	}
	s.mu.RUnlock()

	out := make([]FrequentSearch, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// SearchHistory finds entries whose query text, skill names or location
// match term, case-insensitive. With a suggest index attached the
// substring scan is widened by full-text hits.
func (s *Store) SearchHistory(term string) []Entry {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return nil
	}

	s.mu.RLock()
	matched := make(map[string]bool)
	var out []Entry
	for _, e := range s.entries {
		if entryMatches(e, term) {
			matched[e.ID] = true
			out = append(out, *e)
		}
	}
	s.mu.RUnlock()

	if s.suggest != nil {
		ids, err := s.suggest.Search(term, 0)
		if err != nil {
			s.logger.Warn("history index search failed", zap.Error(err))
			return out
		}
		s.mu.RLock()
		for _, id := range ids {
			if matched[id] {
				continue
			}
			for _, e := range s.entries {
				if e.ID == id {
					out = append(out, *e)
					break
				}
			}
		}
		s.mu.RUnlock()
	}
	return out
}

func entryMatches(e *Entry, term string) bool {
	if strings.Contains(e.Query.Query, term) {
		return true
	}
	for _, sf := range e.Query.Filters.Skills {
		if strings.Contains(sf.Name, term) {
			return true
		}
	}
	if loc := e.Query.Filters.Location; loc != nil {
		if strings.Contains(strings.ToLower(loc.City), term) ||
			strings.Contains(strings.ToLower(loc.Country), term) {
			return true
		}
	}
	return false
}

// Suggestions returns up to 8 autocomplete candidates for partial,
// drawn from historical query strings and skill names. Prefix matches
// sort before substring matches, then shorter before longer. Partials
// under 2 characters, or a store with autocomplete disabled, yield nil.
func (s *Store) Suggestions(partial string) []string {
	if s.cfg.DisableAutocomplete {
		return nil
	}
	partial = strings.ToLower(strings.TrimSpace(partial))
	if len(partial) < minSuggestionLength {
		return nil
	}

	s.mu.RLock()
	seen := make(map[string]bool)
	var candidates []string
	collect := func(text string) {
		text = strings.ToLower(strings.TrimSpace(text))
		if text == "" || seen[text] || !strings.Contains(text, partial) {
			return
		}
		seen[text] = true
		candidates = append(candidates, text)
	}
	for _, e := range s.entries {
		collect(e.Query.Query)
		for _, sf := range e.Query.Filters.Skills {
			collect(sf.Name)
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(candidates, func(i, j int) bool {
		pi := strings.HasPrefix(candidates[i], partial)
		pj := strings.HasPrefix(candidates[j], partial)
		if pi != pj {
			return pi
		}
		return len(candidates[i]) < len(candidates[j])
	})
	if len(candidates) > maxSuggestions {
		candidates = candidates[:maxSuggestions]
	}
	return candidates
}

// FavoriteFilter is one recurring filter combination.
type FavoriteFilter struct {
	Skills          []string          `json:"skills,omitempty"`
	City            string            `json:"city,omitempty"`
	PriceRange      *query.PriceRange `json:"price_range,omitempty"`
	MinimumRating   float64           `json:"minimum_rating,omitempty"`
	ExperienceLevel string            `json:"experience_level,omitempty"`
	Count           int               `json:"count"`
}

// FavoriteFilters returns the 5 most frequently used filter
// combinations, keyed by structural equality over skills, city, price
// range, minimum rating and experience level. Entries with none of
// those filters set are ignored.
func (s *Store) FavoriteFilters() []FavoriteFilter {
	s.mu.RLock()
	groups := make(map[string]*FavoriteFilter)
	for _, e := range s.entries {
		fav := favoriteOf(e.Query.Filters)
		if fav == nil {
			continue
		}
		key, err := json.Marshal(fav)
		if err != nil {
			continue
		}
		g, ok := groups[string(key)]
		if !ok {
			groups[string(key)] = fav
			g = fav
		}
		g.Count += e.Frequency
	}
	s.mu.RUnlock()

	out := make([]FavoriteFilter, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if len(out) > maxFavoriteFilters {
		out = out[:maxFavoriteFilters]
	}
	return out
}

// favoriteOf projects the groupable facets of a canonical filter set.
// Returns nil when no groupable facet is present.
func favoriteOf(f query.AdvancedSearchFilters) *FavoriteFilter {
	fav := &FavoriteFilter{ExperienceLevel: f.ExperienceLevel}
	for _, sf := range f.Skills {
		fav.Skills = append(fav.Skills, sf.Name)
	}
	sort.Strings(fav.Skills)
	if f.Location != nil {
		fav.City = strings.ToLower(f.Location.City)
	}
	if f.PriceRange != nil {
		pr := *f.PriceRange
		fav.PriceRange = &pr
	}
	if f.Rating != nil {
		fav.MinimumRating = f.Rating.MinimumRating
	}

	if len(fav.Skills) == 0 && fav.City == "" && fav.PriceRange == nil &&
		fav.MinimumRating == 0 && fav.ExperienceLevel == "" {
		return nil
	}
	return fav
}

// TermCount pairs a free-text query with its search frequency.
type TermCount struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}

// Stats aggregates the retained history. Zero values when empty.
type Stats struct {
	TotalSearches      int            `json:"total_searches"`
	AverageResults     float64        `json:"average_results"`
	AverageExecutionMS float64        `json:"average_execution_ms"`
	TopTerms           []TermCount    `json:"top_terms,omitempty"`
	SearchesByDay      map[string]int `json:"searches_by_day,omitempty"`
}

// SearchStats computes aggregate counters over the retained entries.
func (s *Store) SearchStats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{}
	if len(s.entries) == 0 {
		return stats
	}

	var totalResults, totalExecMS float64
	terms := make(map[string]int)
	byDay := make(map[string]int)
	for _, e := range s.entries {
		stats.TotalSearches += e.Frequency
		totalResults += float64(e.ResultsCount)
		totalExecMS += float64(e.ExecutionTime.Milliseconds())
		if e.Query.Query != "" {
			terms[e.Query.Query] += e.Frequency
		}
		byDay[e.Timestamp.Format("2006-01-02")]++
	}
	stats.AverageResults = totalResults / float64(len(s.entries))
	stats.AverageExecutionMS = totalExecMS / float64(len(s.entries))
	stats.SearchesByDay = byDay

	top := make([]TermCount, 0, len(terms))
	for term, count := range terms {
		top = append(top, TermCount{Term: term, Count: count})
	}
	sort.SliceStable(top, func(i, j int) bool { return top[i].Count > top[j].Count })
	if len(top) > maxTopTerms {
		top = top[:maxTopTerms]
	}
	stats.TopTerms = top
	return stats
}

// GroupedByDate returns entries bucketed by calendar day (UTC of the
// entry's own timestamp), most recent first within each bucket.
func (s *Store) GroupedByDate() map[string][]Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string][]Entry)
	for _, e := range s.entries {
		day := e.Timestamp.Format("2006-01-02")
		out[day] = append(out[day], *e)
	}
	return out
}

// snapshot is the versioned persistence and export format.
type snapshot struct {
	Version    int       `json:"version"`
	ExportedAt time.Time `json:"exported_at"`
	Entries    []Entry   `json:"entries"`
}

// ExportHistory serializes the retained history as versioned JSON.
func (s *Store) ExportHistory() ([]byte, error) {
	s.mu.RLock()
	snap := snapshot{
		Version:    SnapshotVersion,
		ExportedAt: s.now(),
		Entries:    make([]Entry, 0, len(s.entries)),
	}
	for _, e := range s.entries {
		snap.Entries = append(snap.Entries, *e)
	}
	s.mu.RUnlock()

	return json.Marshal(snap)
}

// ImportHistory replaces the retained history with a previously
// exported snapshot and re-persists it. Malformed or wrong-version
// input is rejected by returning false; the current history is left
// untouched in that case.
func (s *Store) ImportHistory(ctx context.Context, data []byte) bool {
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		s.logger.Warn("rejected malformed history import", zap.Error(err))
		return false
	}
	if snap.Version != SnapshotVersion {
		s.logger.Warn("rejected history import with unsupported version",
			zap.Int("version", snap.Version))
		return false
	}

	s.mu.Lock()
	old := s.entries
	s.entries = nil
	s.byKey = make(map[string]*Entry)
	for i := range snap.Entries {
		e := snap.Entries[i]
		if e.CanonicalKey == "" {
			e.CanonicalKey = query.CacheKey(e.Query)
		}
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		if _, dup := s.byKey[e.CanonicalKey]; dup {
			continue
		}
		if len(s.entries) >= s.cfg.MaxItems {
			break
		}
		s.entries = append(s.entries, &e)
		s.byKey[e.CanonicalKey] = &e
	}
	imported := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		imported = append(imported, *e)
	}
	s.mu.Unlock()

	for _, e := range old {
		s.unindexEntry(e.ID)
	}
	for _, e := range imported {
		s.indexEntry(e)
	}
	s.persist(ctx)
	return true
}

// moveToFrontLocked reorders entries so e is first. Caller holds mu.
func (s *Store) moveToFrontLocked(e *Entry) {
	for i, cur := range s.entries {
		if cur == e {
			copy(s.entries[1:i+1], s.entries[:i])
			s.entries[0] = e
			return
		}
	}
}

// persist writes the current snapshot to storage. Failures are logged
// and swallowed so persistence problems never surface to callers.
func (s *Store) persist(ctx context.Context) {
	if s.storage == nil {
		return
	}
	data, err := s.ExportHistory()
	if err != nil {
		s.logger.Warn("failed to serialize history", zap.Error(err))
		return
	}
	if err := s.storage.SetItem(ctx, s.cfg.StorageKey, data); err != nil {
		s.logger.Warn("failed to persist history, continuing in memory",
			zap.Error(err))
	}
}

// load restores a persisted snapshot, if any.
func (s *Store) load(ctx context.Context) {
	if s.storage == nil {
		return
	}
	data, err := s.storage.GetItem(ctx, s.cfg.StorageKey)
	if err != nil {
		if err != ErrNotFound {
			s.logger.Warn("failed to load persisted history", zap.Error(err))
		}
		return
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil || snap.Version != SnapshotVersion {
		s.logger.Warn("ignoring unreadable history snapshot", zap.Error(err))
		return
	}
	for i := range snap.Entries {
		if len(s.entries) >= s.cfg.MaxItems {
			break
		}
		e := snap.Entries[i]
		if _, dup := s.byKey[e.CanonicalKey]; dup || e.CanonicalKey == "" {
			continue
		}
		s.entries = append(s.entries, &e)
		s.byKey[e.CanonicalKey] = &e
		s.indexEntry(e)
	}
}

func (s *Store) indexEntry(e Entry) {
	if s.suggest == nil {
		return
	}
	if err := s.suggest.Add(e); err != nil {
		s.logger.Warn("failed to index history entry", zap.Error(err))
	}
}

func (s *Store) unindexEntry(id string) {
	if s.suggest == nil {
		return
	}
	if err := s.suggest.Delete(id); err != nil {
		s.logger.Warn("failed to unindex history entry", zap.Error(err))
	}
}
