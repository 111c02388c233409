package provider

import (
	"container/list"
	"context"
	"maps"
	"sync"
	"time"
)

// memoryEntry represents a stored correlation record
type memoryEntry struct {
	key         string
	value       map[string]string
	expiresAt   time.Time
	listElement *list.Element // For LRU tracking
}

// CacheStats represents store performance metrics
type CacheStats struct {
	Size        int     `json:"size"`
	MaxSize     int     `json:"max_size"`
	Hits        int64   `json:"hits"`
	Misses      int64   `json:"misses"`
	Evictions   int64   `json:"evictions"`
	Rejections  int64   `json:"rejections"`
	TTLExpiries int64   `json:"ttl_expiries"`
	HitRatio    float64 `json:"hit_ratio"`
}

// MemoryStore is an in-process CorrelationStore with per-entry TTL and an optional size bound.
// A full store first drops expired entries. After that it either rejects the write with
// ErrStoreFull or, when created with NewEvictingMemoryStore, evicts the least recently used entry.
type MemoryStore struct {
	entries     map[string]*memoryEntry
	accessOrder *list.List // most recent at front
	maxSize     int
	evict       bool
	now         func() time.Time
	mu          sync.Mutex

	// Stats tracking
	hits        int64
	misses      int64
	evictions   int64
	rejections  int64
	ttlExpiries int64
}

// NewMemoryStore creates a memory store holding at most maxSize live entries.
// A maxSize of zero or less means unbounded.
func NewMemoryStore(maxSize int) *MemoryStore {
	return &MemoryStore{
		entries:     make(map[string]*memoryEntry),
		accessOrder: list.New(),
		maxSize:     maxSize,
		now:         time.Now,
	}
}

// NewEvictingMemoryStore creates a bounded memory store that evicts the least
// recently used entry instead of rejecting writes. Use it only for data that may be lost.
func NewEvictingMemoryStore(maxSize int) *MemoryStore {
	s := NewMemoryStore(maxSize)
	s.evict = true
	return s
}

// SetClock replaces the time source, used by tests to simulate expiry
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Set stores a copy of value under key until ttl elapses
func (s *MemoryStore) Set(_ context.Context, key string, value map[string]string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiresAt := s.now().Add(ttl)

	if existing, ok := s.entries[key]; ok {
		existing.value = maps.Clone(value)
		existing.expiresAt = expiresAt
		s.accessOrder.MoveToFront(existing.listElement)
		return nil
	}

	if s.maxSize > 0 && len(s.entries) >= s.maxSize {
		s.purgeExpiredUnsafe()
	}
	if s.maxSize > 0 && len(s.entries) >= s.maxSize {
		if !s.evict {
			s.rejections++
			return ErrStoreFull
		}
		s.evictLRUUnsafe()
	}

	entry := &memoryEntry{
		key:       key,
		value:     maps.Clone(value),
		expiresAt: expiresAt,
	}
	entry.listElement = s.accessOrder.PushFront(entry)
	s.entries[key] = entry

	return nil
}

// Get returns a copy of the value stored under key
func (s *MemoryStore) Get(_ context.Context, key string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		s.misses++
		return nil, ErrNotFound
	}

	if !s.now().Before(entry.expiresAt) {
		s.deleteEntryUnsafe(entry)
		s.ttlExpiries++
		s.misses++
		return nil, ErrNotFound
	}

	s.accessOrder.MoveToFront(entry.listElement)
	s.hits++

	return maps.Clone(entry.value), nil
}

// Size returns the number of stored entries, expired ones included until cleanup
func (s *MemoryStore) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Stats returns store statistics
func (s *MemoryStore) Stats() CacheStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	hitRatio := 0.0
	if total := s.hits + s.misses; total > 0 {
		hitRatio = float64(s.hits) / float64(total)
	}

	return CacheStats{
		Size:        len(s.entries),
		MaxSize:     s.maxSize,
		Hits:        s.hits,
		Misses:      s.misses,
		Evictions:   s.evictions,
		Rejections:  s.rejections,
		TTLExpiries: s.ttlExpiries,
		HitRatio:    hitRatio,
	}
}

// Cleanup removes expired entries
func (s *MemoryStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purgeExpiredUnsafe()
}

// RunCleanup calls Cleanup every interval until ctx is done
func (s *MemoryStore) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Cleanup()
		}
	}
}

// purgeExpiredUnsafe removes expired entries (must be called with lock held)
func (s *MemoryStore) purgeExpiredUnsafe() {
	now := s.now()
	for _, entry := range s.entries {
		if !now.Before(entry.expiresAt) {
			s.deleteEntryUnsafe(entry)
			s.ttlExpiries++
		}
	}
}

// evictLRUUnsafe removes the least recently used entry (must be called with lock held)
func (s *MemoryStore) evictLRUUnsafe() {
	back := s.accessOrder.Back()
	if back == nil {
		return
	}
	s.deleteEntryUnsafe(back.Value.(*memoryEntry))
	s.evictions++
}

// deleteEntryUnsafe removes an entry from both map and list (must be called with lock held)
func (s *MemoryStore) deleteEntryUnsafe(entry *memoryEntry) {
	delete(s.entries, entry.key)
	if entry.listElement != nil {
		s.accessOrder.Remove(entry.listElement)
	}
}
