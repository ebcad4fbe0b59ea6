// Package memory provides process-local implementations of the storage
// ports. Nothing survives a restart.
package memory

import (
	"context"
	"sync"
	"time"

	"investor-edu/internal/model"
)

// Store is an in-memory StateStore and TradeJournal.
type Store struct {
	mu     sync.RWMutex
	blobs  map[string][]byte
	trades map[string][]model.Trade
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		blobs:  make(map[string][]byte),
		trades: make(map[string][]model.Trade),
	}
}

// Save stores a copy of data under key.
func (s *Store) Save(_ context.Context, key string, data []byte) error {
	cp := append([]byte(nil), data...)
	s.mu.Lock()
	s.blobs[key] = cp
	s.mu.Unlock()
	return nil
}

// Load returns a copy of the blob under key, or nil, nil if absent.
func (s *Store) Load(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.blobs[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), b...), nil
}

// RecordTrade appends trade to the profile's journal.
func (s *Store) RecordTrade(_ context.Context, profile string, trade model.Trade) error {
	s.mu.Lock()
	s.trades[profile] = append(s.trades[profile], trade)
	s.mu.Unlock()
	return nil
}

// RecentTrades returns up to limit trades, newest first. limit <= 0 means all.
func (s *Store) RecentTrades(_ context.Context, profile string, limit int) ([]model.Trade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := s.trades[profile]
	n := len(all)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]model.Trade, 0, n)
	for i := len(all) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, all[i])
	}
	return out, nil
}

// Close is a no-op.
func (s *Store) Close() error { return nil }

type entry struct {
	value   []byte
	expires time.Time
}

// Cache is an in-memory TTL cache. Expired entries are dropped lazily on read.
type Cache struct {
	mu    sync.Mutex
	items map[string]entry
	now   func() time.Time
}

// NewCache returns an empty cache using the wall clock.
func NewCache() *Cache {
	return NewCacheWithClock(time.Now)
}

// NewCacheWithClock returns an empty cache reading time from now.
func NewCacheWithClock(now func() time.Time) *Cache {
	return &Cache{items: make(map[string]entry), now: now}
}

// Get returns the value for key if it has not expired.
func (c *Cache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.items[key]
	if !ok {
		return nil, false, nil
	}
	if !c.now().Before(e.expires) {
		delete(c.items, key)
		return nil, false, nil
	}
	return e.value, true, nil
}

// Set stores value for ttl. A non-positive ttl removes the key.
func (c *Cache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ttl <= 0 {
		delete(c.items, key)
		return nil
	}
	c.items[key] = entry{value: append([]byte(nil), value...), expires: c.now().Add(ttl)}
	return nil
}

// Len reports the number of stored entries, including expired ones not yet
// evicted.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
