// Package cache provides explicit TTL memoization for the dashboard's
// expensive fetch steps.
//
// The page is recomputed in full on every request, so anything touching
// the database or the filesystem is memoized here, keyed by its
// parameters, with a declared time-to-live. Entries expire purely by
// time; there is no data-change detection.
package cache

import (
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// Memo memoizes the result of a computation per key for a fixed TTL.
// Errors are never cached: a failed computation is retried on the next
// call for the same key.
type Memo[K comparable, V any] struct {
	mu    sync.Mutex
	items *ttlcache.Cache[K, V]
}

// New returns a Memo whose entries expire ttl after being stored.
// Reads do not extend an entry's lifetime.
func New[K comparable, V any](ttl time.Duration) *Memo[K, V] {
	items := ttlcache.New(
		ttlcache.WithTTL[K, V](ttl),
		ttlcache.WithDisableTouchOnHit[K, V](),
	)
	return &Memo[K, V]{items: items}
}

// GetOrCompute returns the cached value for key, or runs fn and caches
// its result. Concurrent callers serialize; the dashboard re-renders
// sequentially so contention is not a concern here.
func (m *Memo[K, V]) GetOrCompute(key K, fn func() (V, error)) (V, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if item := m.items.Get(key); item != nil {
		return item.Value(), nil
	}

	v, err := fn()
	if err != nil {
		var zero V
		return zero, err
	}
	m.items.Set(key, v, ttlcache.DefaultTTL)
	return v, nil
}

// Len returns the number of live entries.
func (m *Memo[K, V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items.DeleteExpired()
	return m.items.Len()
}

// Purge drops all entries.
func (m *Memo[K, V]) Purge() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items.DeleteAll()
}
