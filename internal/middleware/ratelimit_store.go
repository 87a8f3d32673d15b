package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/charlesng35/teamcal/internal/cache"
)

// RateStore counts mutations per client and route within a fixed window.
type RateStore interface {
	Increment(ctx context.Context, key string, window time.Duration) (count int, ttl time.Duration, err error)
}

const memorySweepInterval = time.Minute

// MemoryRateStore keeps counters in process. Expired windows are swept lazily while
// counting, so the store owns no goroutines.
type MemoryRateStore struct {
	mu        sync.Mutex
	windows   map[string]rateWindow
	now       func() time.Time
	lastSweep time.Time
}

type rateWindow struct {
	hits    int
	resetAt time.Time
}

// NewMemoryRateStore constructs an empty MemoryRateStore.
func NewMemoryRateStore() *MemoryRateStore {
	return &MemoryRateStore{windows: make(map[string]rateWindow), now: time.Now}
}

// WithClock replaces the time source.
func (s *MemoryRateStore) WithClock(now func() time.Time) *MemoryRateStore {
	if now != nil {
		s.now = now
	}
	return s
}

// Increment records one hit for key and reports the running count and time to reset.
func (s *MemoryRateStore) Increment(_ context.Context, key string, window time.Duration) (int, time.Duration, error) {
	window = normaliseWindow(window)
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if now.Sub(s.lastSweep) >= memorySweepInterval {
		for k, w := range s.windows {
			if !now.Before(w.resetAt) {
				delete(s.windows, k)
			}
		}
		s.lastSweep = now
	}

	w, ok := s.windows[key]
	if !ok || !now.Before(w.resetAt) {
		w = rateWindow{resetAt: now.Add(window)}
	}
	w.hits++
	s.windows[key] = w

	return w.hits, w.resetAt.Sub(now), nil
}

// Len reports how many windows are tracked.
func (s *MemoryRateStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.windows)
}

// cacheRateStore shares counters through the cache store (Redis or the cache_entries
// table) so every instance enforces the same limit.
type cacheRateStore struct {
	store cache.Store
}

// NewStoreRateStore adapts a cache.Store. A nil store yields nil, which RateLimit
// replaces with a MemoryRateStore.
func NewStoreRateStore(store cache.Store) RateStore {
	if store == nil {
		return nil
	}
	return cacheRateStore{store: store}
}

func (s cacheRateStore) Increment(ctx context.Context, key string, window time.Duration) (int, time.Duration, error) {
	count, ttl, err := s.store.IncrementWithTTL(ctx, key, normaliseWindow(window))
	return int(count), ttl, err
}

func normaliseWindow(window time.Duration) time.Duration {
	if window <= 0 {
		return time.Minute
	}
	return window
}
