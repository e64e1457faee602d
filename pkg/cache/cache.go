// Package cache implements a generic in-memory key/value cache with TTL
// expiry, tag-based bulk invalidation, capacity-bounded eviction and
// hit/miss accounting.
//
// Entries expire lazily on Get and actively via Cleanup, which is meant
// to run on a caller-owned Scheduler. Eviction removes the entry with
// the lowest access count, with ties broken by insertion order; the
// policy is least-frequently-accessed, not LRU, and is named accordingly.
//
// The cache is a best-effort, process-local store: all operations are
// individually atomic under an internal mutex, but check-then-set
// sequences by concurrent callers resolve last-write-wins.
package cache

import (
	"encoding/json"
	"time"
)

const (
	// DefaultMaxSize is the default entry capacity.
	DefaultMaxSize = 500

	// DefaultTTL is the default entry time-to-live.
	DefaultTTL = 5 * time.Minute
)

// EntryMetadata carries bookkeeping refreshed on reads.
type EntryMetadata struct {
	CreatedAt    time.Time `json:"created_at"`
	Size         int       `json:"size"`
	LastAccessed time.Time `json:"last_accessed,omitempty"`
	HitCount     int       `json:"hit_count,omitempty"`
}

// Entry is the externally visible form of a cached value. Get returns a
// copy; callers never observe the live internal record.
type Entry[T any] struct {
	Key       string        `json:"key"`
	Data      T             `json:"data"`
	Timestamp time.Time     `json:"timestamp"`
	TTL       time.Duration `json:"ttl"`
	Tags      []string      `json:"tags,omitempty"`
	Version   int           `json:"version"`
	Metadata  EntryMetadata `json:"metadata"`
}

// Expired reports whether the entry is stale at now.
func (e *Entry[T]) Expired(now time.Time) bool {
	return now.After(e.Timestamp.Add(e.TTL))
}

// entry is the internal mutable record.
type entry[T any] struct {
	data      T
	timestamp time.Time
	ttl       time.Duration
	tags      []string
	version   int
	createdAt time.Time
	size      int

	accessCount  int
	lastAccessed time.Time
	insertSeq    uint64
}

// Stats summarizes cache effectiveness since construction (or the last
// Clear, which does not reset counters).
type Stats struct {
	Size        int     `json:"size"`
	MaxSize     int     `json:"max_size"`
	HitRate     float64 `json:"hit_rate"`
	MissRate    float64 `json:"miss_rate"`
	TotalHits   int64   `json:"total_hits"`
	TotalMisses int64   `json:"total_misses"`
	Evictions   int64   `json:"evictions"`
	Expirations int64   `json:"expirations"`
}

// Option configures a Cache at construction.
type Option func(*options)

type options struct {
	maxSize    int
	defaultTTL time.Duration
}

// WithMaxSize sets the entry capacity. Values <= 0 fall back to the default.
func WithMaxSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxSize = n
		}
	}
}

// WithDefaultTTL sets the TTL applied by Set. Values <= 0 fall back to
// the default.
func WithDefaultTTL(ttl time.Duration) Option {
	return func(o *options) {
		if ttl > 0 {
			o.defaultTTL = ttl
		}
	}
}

// estimateSize approximates the serialized footprint of a value. Used
// for metadata only; failures degrade to zero rather than erroring.
func estimateSize(v any) int {
	data, err := json.Marshal(v)
	if err != nil {
		return 0
	}
	return len(data)
}
