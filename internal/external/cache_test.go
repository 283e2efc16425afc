package external

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fishcast/internal/types"
)

type stepClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *stepClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newStepClock() *stepClock {
	return &stepClock{t: time.Date(2026, 10, 15, 7, 0, 0, 0, time.UTC)}
}

// fakeWeather returns readings in sequence and fails while failing is set.
type fakeWeather struct {
	calls   atomic.Int32
	failing atomic.Bool
	speed   float64
}

func (f *fakeWeather) CurrentWeather(ctx context.Context, _ types.Coordinates) (types.WeatherReading, error) {
	n := f.calls.Add(1)
	if f.failing.Load() {
		return types.WeatherReading{}, errors.New("upstream down")
	}
	return types.WeatherReading{WindSpeedKmh: f.speed + float64(n), Status: types.DataQualityLive}, nil
}

func TestTTLCacheServesFreshEntries(t *testing.T) {
	clock := newStepClock()
	upstream := &fakeWeather{speed: 10}
	cached := NewCachedWeather(upstream, NewTTLCache[types.WeatherReading](10*time.Minute, time.Hour, 0, clock))

	first, err := cached.CurrentWeather(context.Background(), bosphorus)
	require.NoError(t, err)
	second, err := cached.CurrentWeather(context.Background(), bosphorus)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), upstream.calls.Load())

	clock.Advance(11 * time.Minute)
	third, err := cached.CurrentWeather(context.Background(), bosphorus)
	require.NoError(t, err)
	assert.Equal(t, 12.0, third.WindSpeedKmh, "expired entry is refetched")
	assert.Equal(t, types.DataQualityLive, third.Status)
}

func TestTTLCacheServesStaleOnFailure(t *testing.T) {
	clock := newStepClock()
	upstream := &fakeWeather{speed: 10}
	cached := NewCachedWeather(upstream, NewTTLCache[types.WeatherReading](10*time.Minute, time.Hour, 0, clock))

	_, err := cached.CurrentWeather(context.Background(), bosphorus)
	require.NoError(t, err)

	upstream.failing.Store(true)
	clock.Advance(30 * time.Minute)
	stale, err := cached.CurrentWeather(context.Background(), bosphorus)
	require.NoError(t, err)
	assert.Equal(t, 11.0, stale.WindSpeedKmh)
	assert.Equal(t, types.DataQualityCached, stale.Status)

	clock.Advance(time.Hour)
	_, err = cached.CurrentWeather(context.Background(), bosphorus)
	assert.EqualError(t, err, "upstream down", "entry older than the stale TTL is not served")
}

func TestTTLCacheDeduplicatesConcurrentMisses(t *testing.T) {
	cache := NewTTLCache[int](time.Minute, time.Hour, 0, newStepClock())
	release := make(chan struct{})
	var calls atomic.Int32

	var wg sync.WaitGroup
	results := make([]int, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, _, err := cache.Get(context.Background(), "k", func(context.Context) (int, error) {
				calls.Add(1)
				<-release
				return 7, nil
			})
			if err == nil {
				results[i] = v
			}
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.LessOrEqual(t, calls.Load(), int32(8))
	assert.GreaterOrEqual(t, calls.Load(), int32(1))
	for _, v := range results {
		assert.Equal(t, 7, v)
	}
	assert.Equal(t, 1, cache.Len())
}

func TestTTLCacheSharedFetchSurvivesCallerCancel(t *testing.T) {
	cache := NewTTLCache[int](time.Minute, time.Hour, 0, newStepClock())
	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	var fetchErr atomic.Value
	fetch := func(ctx context.Context) (int, error) {
		if calls.Add(1) == 1 {
			close(started)
		}
		<-release
		if err := ctx.Err(); err != nil {
			fetchErr.Store(err)
		}
		return 7, nil
	}

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, _, err := cache.Get(firstCtx, "k", fetch)
		firstErr <- err
	}()
	<-started

	second := make(chan int, 1)
	go func() {
		v, _, err := cache.Get(context.Background(), "k", fetch)
		if err == nil {
			second <- v
		}
		close(second)
	}()
	time.Sleep(20 * time.Millisecond)

	cancelFirst()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(release)
	assert.Equal(t, 7, <-second)
	assert.Equal(t, int32(1), calls.Load())
	assert.Nil(t, fetchErr.Load(), "shared fetch must not see the first caller's cancellation")
	assert.Equal(t, 1, cache.Len())
}

func TestTTLCacheEvictsOldest(t *testing.T) {
	clock := newStepClock()
	cache := NewTTLCache[string](time.Minute, time.Hour, 2, clock)
	fetch := func(v string) func(context.Context) (string, error) {
		return func(context.Context) (string, error) { return v, nil }
	}

	for _, k := range []string{"a", "b", "c"} {
		_, _, err := cache.Get(context.Background(), k, fetch(k))
		require.NoError(t, err)
		clock.Advance(time.Second)
	}
	assert.Equal(t, 2, cache.Len())

	v, _, err := cache.Get(context.Background(), "a", fetch("a2"))
	require.NoError(t, err)
	assert.Equal(t, "a2", v, "evicted key is refetched")
}

func TestCachedMarineMarksStale(t *testing.T) {
	clock := newStepClock()
	temp := 18.5
	var fail atomic.Bool
	upstream := marineFunc(func(context.Context, types.Coordinates) (types.SeaReading, error) {
		if fail.Load() {
			return types.SeaReading{}, errors.New("down")
		}
		return types.SeaReading{SeaTempC: &temp, Status: types.DataQualityLive}, nil
	})
	cached := NewCachedMarine(upstream, NewTTLCache[types.SeaReading](time.Minute, 3*time.Hour, 0, clock))

	_, err := cached.SeaState(context.Background(), bosphorus)
	require.NoError(t, err)
	fail.Store(true)
	clock.Advance(2 * time.Hour)

	s, err := cached.SeaState(context.Background(), bosphorus)
	require.NoError(t, err)
	assert.Equal(t, types.DataQualityCached, s.Status)
	assert.Equal(t, 18.5, *s.SeaTempC)
}

type marineFunc func(context.Context, types.Coordinates) (types.SeaReading, error)

func (f marineFunc) SeaState(ctx context.Context, at types.Coordinates) (types.SeaReading, error) {
	return f(ctx, at)
}
