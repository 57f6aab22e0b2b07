package store

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"kvstore/internal/metrics"
)

// ErrInvalidTTL is returned by Set for a negative TTL. Rejecting instead of
// clamping keeps caller bugs visible.
var ErrInvalidTTL = errors.New("ttl must not be negative")

// Store is a concurrency-safe in-memory key–value table with per-entry TTL.
//
// Design principles:
// - Safe for concurrent access using RWMutex
// - Liveness is a predicate evaluated at read time; no read ever returns an
//   entry whose expiry has passed, swept or not
// - Physical removal of expired entries is best-effort housekeeping, split
//   between lazy removal on Get and the background sweeper
//
// Note:
// TTL testing uses short sleeps instead of injecting a clock,
// keeping the store free of test-only concerns.
type Store struct {
	mu      sync.RWMutex
	data    map[string]Entry
	metrics *metrics.Metrics
}

// NewStore initializes and returns a new Store.
func NewStore(m *metrics.Metrics) *Store {
	return &Store{
		data:    make(map[string]Entry),
		metrics: m,
	}
}

// Set inserts or replaces the entry for key as a single atomic step.
//
// A ttl of zero means the entry never expires; a positive ttl sets the
// expiry to now+ttl. Value and expiry are written together, so concurrent
// readers never observe an old value paired with a new expiry or vice versa.
func (s *Store) Set(key string, value json.RawMessage, ttl time.Duration) error {
	if ttl < 0 {
		return ErrInvalidTTL
	}

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.metrics.Sets.Inc()
	if _, exists := s.data[key]; !exists {
		s.metrics.Keys.Inc()
	}

	s.data[key] = Entry{Value: value, ExpiresAt: expiresAt}
	return nil
}

// Get retrieves a value from the store.
//
// Behavior:
// - Returns (value, true) if the key exists and is live
// - An expired entry is treated as missing, whether or not the sweeper has
//   removed it yet; Get removes it in passing
func (s *Store) Get(key string) (json.RawMessage, bool) {
	s.metrics.Gets.Inc()

	s.mu.RLock()
	entry, exists := s.data[key]
	s.mu.RUnlock()

	if !exists {
		s.metrics.Misses.Inc()
		return nil, false
	}

	if entry.Expired(time.Now()) {
		s.removeIfExpired(key)
		s.metrics.Misses.Inc()
		return nil, false
	}

	return entry.Value, true
}

// removeIfExpired deletes key only if the entry currently in the table is
// still expired. A concurrent Set may have replaced the entry between the
// caller's read and this call; that fresh entry must survive.
func (s *Store) removeIfExpired(key string) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, exists := s.data[key]; exists && entry.Expired(now) {
		delete(s.data, key)
		s.metrics.Expired.Inc()
		s.metrics.Keys.Dec()
	}
}

// GetAll returns a snapshot of all live entries. Liveness of every entry is
// evaluated against the same instant, so the result is consistent even while
// entries are expiring mid-call.
func (s *Store) GetAll() map[string]Entry {
	now := time.Now()
	result := make(map[string]Entry)

	s.mu.RLock()
	defer s.mu.RUnlock()

	for k, v := range s.data {
		if !v.Expired(now) {
			result[k] = v
		}
	}
	return result
}

// GetTTL reports the remaining lifetime of a live entry.
//
// Results:
// - (remaining, true, true) for a live entry with an expiry; remaining > 0
// - (0, false, true) for a live entry that never expires
// - (0, false, false) when the key is absent or expired
//
// "Never expires" is reported through hasExpiry rather than a zero duration,
// which would be indistinguishable from an entry about to die.
func (s *Store) GetTTL(key string) (remaining time.Duration, hasExpiry bool, ok bool) {
	now := time.Now()

	s.mu.RLock()
	entry, exists := s.data[key]
	s.mu.RUnlock()

	if !exists || entry.Expired(now) {
		return 0, false, false
	}
	if entry.ExpiresAt.IsZero() {
		return 0, false, true
	}
	return entry.ExpiresAt.Sub(now), true, true
}

// Delete removes a key regardless of liveness and reports whether an entry
// was actually removed.
func (s *Store) Delete(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[key]; !ok {
		return false
	}

	delete(s.data, key)
	s.metrics.Keys.Dec()
	return true
}

// RemoveExpired removes all expired entries and returns how many went.
//
// Used by the background sweeper. The expiry check and the delete happen
// under the same critical section, so an entry re-set with a later expiry
// while a sweep is pending is never removed by that sweep.
func (s *Store) RemoveExpired() int {
	now := time.Now()
	removed := 0

	s.mu.Lock()
	defer s.mu.Unlock()

	for k, v := range s.data {
		if v.Expired(now) {
			delete(s.data, k)
			removed++
		}
	}

	if removed > 0 {
		s.metrics.Expired.Add(float64(removed))
		s.metrics.Keys.Sub(float64(removed))
	}

	return removed
}
