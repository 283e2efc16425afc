package external

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"fishcast/internal/types"
)

// DefaultCacheTTL is how long a reading is served without refetching.
const DefaultCacheTTL = 10 * time.Minute

// DefaultStaleTTL bounds how old a reading may be when it stands in for a
// failed fetch.
const DefaultStaleTTL = 3 * time.Hour

// DefaultCacheEntries bounds the number of cached keys.
const DefaultCacheEntries = 50

// DefaultFetchTimeout bounds one shared upstream fetch.
const DefaultFetchTimeout = 10 * time.Second

type cacheEntry[T any] struct {
	value    T
	storedAt time.Time
}

// TTLCache memoizes provider results per key. Concurrent misses for the
// same key share one upstream call.
type TTLCache[T any] struct {
	mu           sync.Mutex
	entries      map[string]cacheEntry[T]
	group        singleflight.Group
	ttl          time.Duration
	staleTTL     time.Duration
	maxEntries   int
	clock        types.Clock
	fetchTimeout time.Duration
}

// NewTTLCache creates a cache. Non-positive durations and sizes take the
// package defaults; a nil clock uses the real clock.
func NewTTLCache[T any](ttl, staleTTL time.Duration, maxEntries int, clock types.Clock) *TTLCache[T] {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if staleTTL < ttl {
		staleTTL = max(ttl, DefaultStaleTTL)
	}
	if maxEntries <= 0 {
		maxEntries = DefaultCacheEntries
	}
	if clock == nil {
		clock = types.RealClock{}
	}
	return &TTLCache[T]{
		entries:      make(map[string]cacheEntry[T]),
		ttl:          ttl,
		staleTTL:     staleTTL,
		maxEntries:   maxEntries,
		clock:        clock,
		fetchTimeout: DefaultFetchTimeout,
	}
}

// WithFetchTimeout sets the bound on a shared fetch; non-positive keeps the
// current value.
func (c *TTLCache[T]) WithFetchTimeout(d time.Duration) *TTLCache[T] {
	if d > 0 {
		c.fetchTimeout = d
	}
	return c
}

// Get returns the value for key.
//
// Decision logic:
//  1. An entry younger than the TTL is returned without a fetch.
//  2. Otherwise fetch runs (once per key across concurrent callers) and a
//     success replaces the entry. The shared fetch runs detached from any
//     caller's cancellation, bounded by the fetch timeout; each caller
//     stops waiting when its own ctx ends.
//  3. When fetch fails and an entry younger than the stale TTL exists, it
//     is returned with stale=true and a nil error.
func (c *TTLCache[T]) Get(ctx context.Context, key string, fetch func(context.Context) (T, error)) (value T, stale bool, err error) {
	now := c.clock.Now()
	if e, ok := c.lookup(key); ok && now.Sub(e.storedAt) < c.ttl {
		return e.value, false, nil
	}

	ch := c.group.DoChan(key, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.fetchTimeout)
		defer cancel()
		fresh, fetchErr := fetch(fctx)
		if fetchErr != nil {
			return nil, fetchErr
		}
		c.store(key, fresh)
		return fresh, nil
	})
	select {
	case res := <-ch:
		if res.Err == nil {
			return res.Val.(T), false, nil
		}
		err = res.Err
	case <-ctx.Done():
		err = ctx.Err()
	}

	if e, ok := c.lookup(key); ok && c.clock.Now().Sub(e.storedAt) < c.staleTTL {
		return e.value, true, nil
	}
	var zero T
	return zero, false, err
}

// Len reports the number of cached keys.
func (c *TTLCache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *TTLCache[T]) lookup(key string) (cacheEntry[T], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	return e, ok
}

func (c *TTLCache[T]) store(key string, v T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry[T]{value: v, storedAt: c.clock.Now()}
	for len(c.entries) > c.maxEntries {
		oldestKey := ""
		var oldest time.Time
		for k, e := range c.entries {
			if oldestKey == "" || e.storedAt.Before(oldest) || (e.storedAt.Equal(oldest) && k < oldestKey) {
				oldestKey, oldest = k, e.storedAt
			}
		}
		delete(c.entries, oldestKey)
	}
}

// coordKey keys readings to about 1 km.
func coordKey(at types.Coordinates) string {
	return fmt.Sprintf("%.2f_%.2f", at.Lat, at.Lon)
}

// CachedWeather serves weather through a TTLCache. A reading standing in
// for a failed fetch is marked cached.
type CachedWeather struct {
	next  WeatherProvider
	cache *TTLCache[types.WeatherReading]
}

// NewCachedWeather wraps next with cache.
func NewCachedWeather(next WeatherProvider, cache *TTLCache[types.WeatherReading]) *CachedWeather {
	return &CachedWeather{next: next, cache: cache}
}

// CurrentWeather implements WeatherProvider.
func (c *CachedWeather) CurrentWeather(ctx context.Context, at types.Coordinates) (types.WeatherReading, error) {
	w, stale, err := c.cache.Get(ctx, coordKey(at), func(ctx context.Context) (types.WeatherReading, error) {
		return c.next.CurrentWeather(ctx, at)
	})
	if err != nil {
		return types.WeatherReading{}, err
	}
	if stale {
		w.Status = w.Status.Worse(types.DataQualityCached)
	}
	return w, nil
}

// CachedMarine serves sea state through a TTLCache. A reading standing in
// for a failed fetch is marked cached.
type CachedMarine struct {
	next  MarineProvider
	cache *TTLCache[types.SeaReading]
}

// NewCachedMarine wraps next with cache.
func NewCachedMarine(next MarineProvider, cache *TTLCache[types.SeaReading]) *CachedMarine {
	return &CachedMarine{next: next, cache: cache}
}

// SeaState implements MarineProvider.
func (c *CachedMarine) SeaState(ctx context.Context, at types.Coordinates) (types.SeaReading, error) {
	s, stale, err := c.cache.Get(ctx, coordKey(at), func(ctx context.Context) (types.SeaReading, error) {
		return c.next.SeaState(ctx, at)
	})
	if err != nil {
		return types.SeaReading{}, err
	}
	if stale {
		s.Status = s.Status.Worse(types.DataQualityCached)
	}
	return s, nil
}
