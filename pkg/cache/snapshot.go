package cache

import (
	"encoding/json"
	"fmt"
	"time"
)

// SnapshotVersion identifies the snapshot wire format.
const SnapshotVersion = 1

// Snapshot is the explicit serialization contract for cache contents,
// decoupled from the cache's internal representation. Only live
// (unexpired) entries are exported; access counters do not survive a
// round trip.
type Snapshot[T any] struct {
	Version    int        `json:"version"`
	ExportedAt time.Time  `json:"exported_at"`
	Entries    []Entry[T] `json:"entries"`
}

// Export captures all unexpired entries as a typed snapshot.
func (c *Cache[T]) Export() Snapshot[T] {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := c.now()
	snap := Snapshot[T]{
		Version:    SnapshotVersion,
		ExportedAt: now,
		Entries:    make([]Entry[T], 0, len(c.entries)),
	}
	for key, e := range c.entries {
		if now.After(e.timestamp.Add(e.ttl)) {
			continue
		}
		snap.Entries = append(snap.Entries, c.snapshotEntry(key, e))
	}
	return snap
}

// ExportJSON serializes the snapshot.
func (c *Cache[T]) ExportJSON() ([]byte, error) {
	return json.Marshal(c.Export())
}

// Import replaces the cache contents with the snapshot's entries.
// Entries already expired at import time are skipped. Versions other
// than SnapshotVersion are rejected.
func (c *Cache[T]) Import(snap Snapshot[T]) error {
	if snap.Version != SnapshotVersion {
		return fmt.Errorf("unsupported snapshot version %d", snap.Version)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.entries = make(map[string]*entry[T])
	for _, ext := range snap.Entries {
		if ext.Key == "" || now.After(ext.Timestamp.Add(ext.TTL)) {
			continue
		}
		if len(c.entries) >= c.maxSize {
			break
		}
		tags := make([]string, len(ext.Tags))
		copy(tags, ext.Tags)
		c.nextSeq++
		c.entries[ext.Key] = &entry[T]{
			data:      ext.Data,
			timestamp: ext.Timestamp,
			ttl:       ext.TTL,
			tags:      tags,
			version:   ext.Version,
			createdAt: ext.Metadata.CreatedAt,
			size:      ext.Metadata.Size,
			insertSeq: c.nextSeq,
		}
	}
	return nil
}

// ImportJSON deserializes and imports a snapshot produced by ExportJSON.
func (c *Cache[T]) ImportJSON(data []byte) error {
	var snap Snapshot[T]
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}
	return c.Import(snap)
}
