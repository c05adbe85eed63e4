// Package cache provides the process-wide TTL cache used for expensive board
// aggregates (page totals, category lists). It is a get-or-compute store:
// values are computed on first access, served from memory until they expire,
// and explicitly invalidated by writes that change the underlying data.
//
// Cached values here are aggregates, never authoritative state. Serving a
// value up to its TTL after an unrelated write is tolerated staleness, not a
// consistency violation; writes that do change a key's underlying data must
// call Invalidate for that key.
//
// Concurrency: lookups on independent keys proceed in parallel; concurrent
// callers for the same expired/missing key are coalesced through singleflight
// so the compute function runs once per flight. A compute failure is returned
// to every waiting caller and nothing is stored.
package cache

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/singleflight"
)

// Store is the cache contract injected into the query services. Implemented
// by TTLStore; tests substitute fakes.
type Store interface {
	// GetOrCompute returns the fresh cached value for key, or runs compute,
	// stores its result with the given TTL, and returns it.
	GetOrCompute(key string, ttl time.Duration, compute func() (any, error)) (any, error)
	// Invalidate drops the given keys immediately.
	Invalidate(keys ...string)
}

var (
	cacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "board_cache_hits_total",
		Help: "Cache hits served without running the compute function.",
	}, []string{"kind"})

	cacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "board_cache_misses_total",
		Help: "Cache misses (cold or expired) that ran the compute function.",
	}, []string{"kind"})
)

// entry is one cached value with its expiry deadline.
type entry struct {
	value     any
	expiresAt time.Time
}

// TTLStore is the in-memory Store implementation shared by all request
// handlers. Safe for concurrent use.
type TTLStore struct {
	mu      sync.Mutex
	entries map[string]entry
	flight  singleflight.Group

	// now is an injection point for tests; defaults to time.Now.
	now func() time.Time

	lookups uint64
}

// New returns an empty TTLStore.
func New() *TTLStore {
	return &TTLStore{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// GetOrCompute implements Store.
//
// A hit before expiry returns the stored value without invoking compute. On
// a miss, concurrent callers for the same key share one compute invocation;
// the winner's result is stored with expiresAt = now + ttl. If compute fails
// the entry is not written, so a transient error never poisons the cache.
func (s *TTLStore) GetOrCompute(key string, ttl time.Duration, compute func() (any, error)) (any, error) {
	now := s.now()

	s.mu.Lock()
	s.lookups++
	if s.lookups >= 2048 {
		s.evictExpiredLocked(now)
		s.lookups = 0
	}
	if e, ok := s.entries[key]; ok && now.Before(e.expiresAt) {
		s.mu.Unlock()
		cacheHits.WithLabelValues(keyKind(key)).Inc()
		return e.value, nil
	}
	s.mu.Unlock()

	cacheMisses.WithLabelValues(keyKind(key)).Inc()
	v, err, _ := s.flight.Do(key, func() (any, error) {
		// Re-check under the flight: a concurrent winner may have already
		// stored a fresh value between our miss and this callback.
		s.mu.Lock()
		if e, ok := s.entries[key]; ok && s.now().Before(e.expiresAt) {
			s.mu.Unlock()
			return e.value, nil
		}
		s.mu.Unlock()

		v, err := compute()
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.entries[key] = entry{value: v, expiresAt: s.now().Add(ttl)}
		s.mu.Unlock()
		return v, nil
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Invalidate implements Store.
func (s *TTLStore) Invalidate(keys ...string) {
	s.mu.Lock()
	for _, k := range keys {
		delete(s.entries, k)
	}
	s.mu.Unlock()
}

// Len returns the number of resident entries, expired or not.
func (s *TTLStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// evictExpiredLocked drops expired entries. Called opportunistically after a
// threshold of lookups to keep memory bounded without a background goroutine.
func (s *TTLStore) evictExpiredLocked(now time.Time) {
	for k, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, k)
		}
	}
}

// keyKind extracts the metric label from a composite cache key, e.g.
// "total:prayer:filter:Health" -> "total".
func keyKind(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return key
}
