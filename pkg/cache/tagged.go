package cache

import (
	"sync"
	"time"
)

// Cache is a capacity-bounded, tag-aware TTL cache. The zero value is
// not usable; construct with New.
type Cache[T any] struct {
	mu         sync.RWMutex
	entries    map[string]*entry[T]
	maxSize    int
	defaultTTL time.Duration
	enabled    bool
	nextSeq    uint64

	hits        int64
	misses      int64
	evictions   int64
	expirations int64

	// now is swappable for TTL tests.
	now func() time.Time
}

// New creates a cache with the given options (500 entries / 5 minute
// TTL by default). The cache starts enabled.
func New[T any](opts ...Option) *Cache[T] {
	o := options{maxSize: DefaultMaxSize, defaultTTL: DefaultTTL}
	for _, opt := range opts {
		opt(&o)
	}
	return &Cache[T]{
		entries:    make(map[string]*entry[T]),
		maxSize:    o.maxSize,
		defaultTTL: o.defaultTTL,
		enabled:    true,
		now:        time.Now,
	}
}

// Get returns a copy of the entry for key, or ok=false on a miss.
// A stale entry is deleted as a side effect and reported as a miss.
// Hits refresh the entry's access metadata.
func (c *Cache[T]) Get(key string) (Entry[T], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero Entry[T]
	if !c.enabled {
		return zero, false
	}

	e, ok := c.entries[key]
	if !ok {
		c.misses++
		return zero, false
	}

	now := c.now()
	if now.After(e.timestamp.Add(e.ttl)) {
		delete(c.entries, key)
		c.expirations++
		c.misses++
		return zero, false
	}

	c.hits++
	e.accessCount++
	e.lastAccessed = now

	return c.snapshotEntry(key, e), true
}

// Set stores data under key with the cache-wide default TTL.
func (c *Cache[T]) Set(key string, data T, tags ...string) {
	c.SetWithTTL(key, data, c.defaultTTL, tags...)
}

// SetWithTTL stores data under key with an explicit TTL. At capacity the
// least-frequently-accessed entry is evicted first (insertion-order
// tie-break). Overwriting an existing key fully replaces it: the access
// count resets and the version increments.
func (c *Cache[T]) SetWithTTL(key string, data T, ttl time.Duration, tags ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.enabled {
		return
	}
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	version := 1
	if prev, ok := c.entries[key]; ok {
		version = prev.version + 1
	} else if len(c.entries) >= c.maxSize {
		c.evictLFA()
	}

	now := c.now()
	tagsCopy := make([]string, len(tags))
	copy(tagsCopy, tags)

	c.nextSeq++
	c.entries[key] = &entry[T]{
		data:      data,
		timestamp: now,
		ttl:       ttl,
		tags:      tagsCopy,
		version:   version,
		createdAt: now,
		size:      estimateSize(data),
		insertSeq: c.nextSeq,
	}
}

// Delete removes key and reports whether it was present.
func (c *Cache[T]) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.entries[key]
	if ok {
		delete(c.entries, key)
	}
	return ok
}

// Clear removes every entry. Hit/miss counters are preserved.
func (c *Cache[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry[T])
}

// InvalidateByTag removes every entry whose tag set contains tag and
// returns the count removed.
func (c *Cache[T]) InvalidateByTag(tag string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Collect keys first, delete after the scan.
	var doomed []string
	for key, e := range c.entries {
		for _, t := range e.tags {
			if t == tag {
				doomed = append(doomed, key)
				break
			}
		}
	}
	for _, key := range doomed {
		delete(c.entries, key)
	}
	return len(doomed)
}

// Cleanup actively removes all expired entries and returns the count
// removed. Intended to run on a caller-owned Scheduler.
func (c *Cache[T]) Cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	var doomed []string
	for key, e := range c.entries {
		if now.After(e.timestamp.Add(e.ttl)) {
			doomed = append(doomed, key)
		}
	}
	for _, key := range doomed {
		delete(c.entries, key)
		c.expirations++
	}
	return len(doomed)
}

// Stats returns a snapshot of cache statistics. Rates are 0 when no
// accesses have been recorded.
func (c *Cache[T]) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Stats{
		Size:        len(c.entries),
		MaxSize:     c.maxSize,
		TotalHits:   c.hits,
		TotalMisses: c.misses,
		Evictions:   c.evictions,
		Expirations: c.expirations,
	}
	if total := c.hits + c.misses; total > 0 {
		s.HitRate = float64(c.hits) / float64(total)
		s.MissRate = float64(c.misses) / float64(total)
	}
	return s
}

// Size returns the current entry count.
func (c *Cache[T]) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Keys returns the current key set in unspecified order.
func (c *Cache[T]) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]string, 0, len(c.entries))
	for key := range c.entries {
		keys = append(keys, key)
	}
	return keys
}

// Enable turns the cache on. A disabled cache misses every Get and
// drops every Set without touching hit/miss counters.
func (c *Cache[T]) Enable() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enabled = true
}

// Disable turns the cache off without clearing it.
func (c *Cache[T]) Disable() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enabled = false
}

// Enabled reports whether the cache is accepting reads and writes.
func (c *Cache[T]) Enabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.enabled
}

// evictLFA removes the entry with the lowest access count, breaking ties
// by insertion order. Caller holds the write lock.
func (c *Cache[T]) evictLFA() {
	var victim string
	var victimEntry *entry[T]
	for key, e := range c.entries {
		if victimEntry == nil ||
			e.accessCount < victimEntry.accessCount ||
			(e.accessCount == victimEntry.accessCount && e.insertSeq < victimEntry.insertSeq) {
			victim = key
			victimEntry = e
		}
	}
	if victimEntry != nil {
		delete(c.entries, victim)
		c.evictions++
	}
}

// snapshotEntry builds the external copy of an internal record. Caller
// holds the lock.
func (c *Cache[T]) snapshotEntry(key string, e *entry[T]) Entry[T] {
	tags := make([]string, len(e.tags))
	copy(tags, e.tags)
	return Entry[T]{
		Key:       key,
		Data:      e.data,
		Timestamp: e.timestamp,
		TTL:       e.ttl,
		Tags:      tags,
		Version:   e.version,
		Metadata: EntryMetadata{
			CreatedAt:    e.createdAt,
			Size:         e.size,
			LastAccessed: e.lastAccessed,
			HitCount:     e.accessCount,
		},
	}
}
