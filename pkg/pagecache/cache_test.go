package pagecache_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/dirkit/pkg/pagecache"
	"github.com/dmitrymomot/dirkit/pkg/retry"
)

func noSleep[T any]() pagecache.Option[T] {
	return pagecache.WithRetryOptions[T](retry.WithSleeper(
		func(ctx context.Context, d time.Duration) error { return nil },
	))
}

// pagedFetcher serves deterministic records "p<page>r<i>" up to totalPages.
func pagedFetcher(pageSize, totalPages int, calls *atomic.Int32) pagecache.FetchFunc[string] {
	return func(ctx context.Context, page int) (pagecache.Page[string], error) {
		if calls != nil {
			calls.Add(1)
		}
		records := make([]string, 0, pageSize)
		for i := range pageSize {
			records = append(records, fmt.Sprintf("p%dr%d", page, i))
		}
		return pagecache.Page[string]{Records: records, HasMore: page < totalPages}, nil
	}
}

func testConfig() pagecache.Config {
	return pagecache.Config{
		PageSize:        2,
		MaxTotalItems:   6,
		FreshnessWindow: time.Minute,
		RetentionWindow: time.Minute,
	}
}

func waitEvent[T any](t *testing.T, obs *pagecache.Observer[T], want pagecache.EventType) pagecache.Event {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-obs.C():
			require.True(t, ok, "observer closed while waiting for %s", want)
			if ev.Type == want {
				return ev
			}
		case <-deadline:
			t.Fatalf("timed out waiting for event %s", want)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, pagecache.DefaultConfig().Validate())
	assert.Equal(t, 50, pagecache.DefaultConfig().PageSize)
	assert.Equal(t, 2000, pagecache.DefaultConfig().MaxTotalItems)
	assert.Equal(t, 5*time.Minute, pagecache.DefaultConfig().FreshnessWindow)
	assert.Equal(t, 10*time.Minute, pagecache.DefaultConfig().RetentionWindow)

	for name, mutate := range map[string]func(*pagecache.Config){
		"page size":        func(c *pagecache.Config) { c.PageSize = 0 },
		"max total items":  func(c *pagecache.Config) { c.MaxTotalItems = 0 },
		"freshness window": func(c *pagecache.Config) { c.FreshnessWindow = 0 },
		"retention window": func(c *pagecache.Config) { c.RetentionWindow = 0 },
	} {
		t.Run(name, func(t *testing.T) {
			cfg := pagecache.DefaultConfig()
			mutate(&cfg)
			require.Error(t, cfg.Validate())

			_, err := pagecache.New[string](cfg)
			require.Error(t, err)
		})
	}
}

func TestEntryFetchNextPage(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("appends pages in fetch order", func(t *testing.T) {
		t.Parallel()
		cache, err := pagecache.New[string](testConfig())
		require.NoError(t, err)
		defer cache.Close()

		entry := cache.Entry("users", pagedFetcher(2, 10, nil))

		require.NoError(t, entry.FetchNextPage(ctx))
		require.NoError(t, entry.FetchNextPage(ctx))

		assert.Equal(t, []string{"p1r0", "p1r1", "p2r0", "p2r1"}, entry.AllRecords())
		assert.Equal(t, 2, entry.Pages())
	})

	t.Run("record count is pages times page size", func(t *testing.T) {
		t.Parallel()
		cache, err := pagecache.New[string](testConfig())
		require.NoError(t, err)
		defer cache.Close()

		entry := cache.Entry("users", pagedFetcher(2, 10, nil))

		for n := 1; n <= 3; n++ {
			require.NoError(t, entry.FetchNextPage(ctx))
			assert.Len(t, entry.AllRecords(), n*2)
		}
	})

	t.Run("duplicate calls share one request", func(t *testing.T) {
		t.Parallel()
		cache, err := pagecache.New[string](testConfig())
		require.NoError(t, err)
		defer cache.Close()

		var calls atomic.Int32
		release := make(chan struct{})
		entry := cache.Entry("users", func(ctx context.Context, page int) (pagecache.Page[string], error) {
			calls.Add(1)
			<-release
			return pagecache.Page[string]{Records: []string{"a", "b"}, HasMore: true}, nil
		})

		var wg sync.WaitGroup
		for range 2 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = entry.FetchNextPage(ctx)
			}()
		}

		// Give both goroutines a chance to hit the gate, then release.
		time.Sleep(50 * time.Millisecond)
		close(release)
		wg.Wait()

		assert.Equal(t, int32(1), calls.Load())
		assert.Equal(t, 1, entry.Pages())
	})

	t.Run("ceiling ends the series regardless of upstream", func(t *testing.T) {
		t.Parallel()
		cache, err := pagecache.New[string](testConfig())
		require.NoError(t, err)
		defer cache.Close()

		var calls atomic.Int32
		// Upstream always has more; the 6-item ceiling must stop at 3 pages.
		entry := cache.Entry("users", pagedFetcher(2, 1000, &calls))

		for range 10 {
			require.NoError(t, entry.FetchNextPage(ctx))
		}

		assert.Equal(t, int32(3), calls.Load())
		assert.Len(t, entry.AllRecords(), 6)
		assert.False(t, entry.HasNextPage())
	})

	t.Run("upstream exhaustion ends the series", func(t *testing.T) {
		t.Parallel()
		cache, err := pagecache.New[string](testConfig())
		require.NoError(t, err)
		defer cache.Close()

		entry := cache.Entry("users", pagedFetcher(2, 2, nil))

		require.NoError(t, entry.FetchNextPage(ctx))
		assert.True(t, entry.HasNextPage())
		require.NoError(t, entry.FetchNextPage(ctx))
		assert.False(t, entry.HasNextPage())

		// Further calls are no-ops.
		require.NoError(t, entry.FetchNextPage(ctx))
		assert.Equal(t, 2, entry.Pages())
	})
}

func TestEntryFetchFailure(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("retries three times with 1s 2s 4s backoff", func(t *testing.T) {
		t.Parallel()

		var waits []time.Duration
		cache, err := pagecache.New[string](testConfig(),
			pagecache.WithRetryOptions[string](retry.WithSleeper(
				func(ctx context.Context, d time.Duration) error {
					waits = append(waits, d)
					return nil
				},
			)),
		)
		require.NoError(t, err)
		defer cache.Close()

		var calls atomic.Int32
		failure := errors.New("upstream down")
		entry := cache.Entry("users", func(ctx context.Context, page int) (pagecache.Page[string], error) {
			calls.Add(1)
			return pagecache.Page[string]{}, failure
		})

		err = entry.FetchNextPage(ctx)
		require.ErrorIs(t, err, failure)
		assert.Equal(t, int32(4), calls.Load())
		assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}, waits)
		assert.ErrorIs(t, entry.LastErr(), failure)
	})

	t.Run("page counter does not advance on failure", func(t *testing.T) {
		t.Parallel()
		cache, err := pagecache.New[string](testConfig(), noSleep[string]())
		require.NoError(t, err)
		defer cache.Close()

		var pagesRequested []int
		fail := true
		entry := cache.Entry("users", func(ctx context.Context, page int) (pagecache.Page[string], error) {
			pagesRequested = append(pagesRequested, page)
			if fail {
				return pagecache.Page[string]{}, errors.New("boom")
			}
			return pagecache.Page[string]{Records: []string{"a", "b"}, HasMore: true}, nil
		})

		require.Error(t, entry.FetchNextPage(ctx))
		assert.Equal(t, 0, entry.Pages())

		fail = false
		require.NoError(t, entry.FetchNextPage(ctx))
		assert.Equal(t, 1, entry.Pages())

		// Initial attempt + 3 retries all asked for page 1, then the
		// successful call asked for page 1 again.
		assert.Equal(t, []int{1, 1, 1, 1, 1}, pagesRequested)
		assert.NoError(t, entry.LastErr())
	})

	t.Run("failure keeps previously loaded pages", func(t *testing.T) {
		t.Parallel()
		cache, err := pagecache.New[string](testConfig(), noSleep[string]())
		require.NoError(t, err)
		defer cache.Close()

		calls := 0
		entry := cache.Entry("users", func(ctx context.Context, page int) (pagecache.Page[string], error) {
			calls++
			if page == 2 {
				return pagecache.Page[string]{}, errors.New("boom")
			}
			return pagecache.Page[string]{Records: []string{"a", "b"}, HasMore: true}, nil
		})

		require.NoError(t, entry.FetchNextPage(ctx))
		require.Error(t, entry.FetchNextPage(ctx))

		assert.Equal(t, []string{"a", "b"}, entry.AllRecords())
	})
}

func TestEntryEvents(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("observer sees fetch lifecycle", func(t *testing.T) {
		t.Parallel()
		cache, err := pagecache.New[string](testConfig())
		require.NoError(t, err)
		defer cache.Close()

		entry := cache.Entry("users", pagedFetcher(2, 10, nil))
		obs := entry.Subscribe()
		defer obs.Close()

		require.NoError(t, entry.FetchNextPage(ctx))

		started := waitEvent(t, obs, pagecache.EventFetchStarted)
		assert.Equal(t, 0, started.Pages)
		loaded := waitEvent(t, obs, pagecache.EventPageLoaded)
		assert.Equal(t, 1, loaded.Pages)
	})

	t.Run("failure event carries the error", func(t *testing.T) {
		t.Parallel()
		cache, err := pagecache.New[string](testConfig(), noSleep[string]())
		require.NoError(t, err)
		defer cache.Close()

		failure := errors.New("boom")
		entry := cache.Entry("users", func(ctx context.Context, page int) (pagecache.Page[string], error) {
			return pagecache.Page[string]{}, failure
		})
		obs := entry.Subscribe()
		defer obs.Close()

		require.Error(t, entry.FetchNextPage(ctx))

		failed := waitEvent(t, obs, pagecache.EventFetchFailed)
		assert.ErrorIs(t, failed.Err, failure)
	})

	t.Run("closed observer drops later events", func(t *testing.T) {
		t.Parallel()
		cache, err := pagecache.New[string](testConfig())
		require.NoError(t, err)
		defer cache.Close()

		entry := cache.Entry("users", pagedFetcher(2, 10, nil))
		obs := entry.Subscribe()
		obs.Close()

		// Results arriving for a torn-down observer are discarded, not errors.
		require.NoError(t, entry.FetchNextPage(ctx))
		_, ok := <-obs.C()
		assert.False(t, ok)
	})
}

func TestEntryStaleness(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("stale access revalidates first page only", func(t *testing.T) {
		t.Parallel()

		var now atomic.Pointer[time.Time]
		start := time.Now()
		now.Store(&start)

		cache, err := pagecache.New[string](testConfig(),
			pagecache.WithClock[string](func() time.Time { return *now.Load() }),
		)
		require.NoError(t, err)
		defer cache.Close()

		var mu sync.Mutex
		var pagesRequested []int
		entry := cache.Entry("users", func(ctx context.Context, page int) (pagecache.Page[string], error) {
			mu.Lock()
			pagesRequested = append(pagesRequested, page)
			mu.Unlock()
			return pagecache.Page[string]{
				Records: []string{fmt.Sprintf("p%d-fresh", page), "x"},
				HasMore: true,
			}, nil
		})

		require.NoError(t, entry.FetchNextPage(ctx))
		require.NoError(t, entry.FetchNextPage(ctx))

		obs := entry.Subscribe()
		defer obs.Close()

		// Jump past the freshness window; the next read triggers a background
		// refetch of page one.
		stale := start.Add(2 * time.Minute)
		now.Store(&stale)

		_ = entry.AllRecords()
		waitEvent(t, obs, pagecache.EventRevalidated)

		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, []int{1, 2, 1}, pagesRequested)
		assert.Equal(t, 2, entry.Pages())
	})

	t.Run("fresh access does not revalidate", func(t *testing.T) {
		t.Parallel()
		cache, err := pagecache.New[string](testConfig())
		require.NoError(t, err)
		defer cache.Close()

		var calls atomic.Int32
		entry := cache.Entry("users", pagedFetcher(2, 10, &calls))

		require.NoError(t, entry.FetchNextPage(ctx))
		_ = entry.AllRecords()
		_ = entry.AllRecords()

		assert.Equal(t, int32(1), calls.Load())
	})
}

func TestCacheEviction(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	shortRetention := pagecache.Config{
		PageSize:        2,
		MaxTotalItems:   6,
		FreshnessWindow: time.Minute,
		RetentionWindow: 20 * time.Millisecond,
	}

	t.Run("idle unobserved entry is evicted", func(t *testing.T) {
		t.Parallel()
		cache, err := pagecache.New[string](shortRetention)
		require.NoError(t, err)
		defer cache.Close()

		entry := cache.Entry("users", pagedFetcher(2, 10, nil))
		require.NoError(t, entry.FetchNextPage(ctx))
		require.Equal(t, 1, cache.Len())

		assert.Eventually(t, func() bool {
			return cache.Len() == 0
		}, time.Second, 5*time.Millisecond)

		// A fresh entry starts over from page one.
		var calls atomic.Int32
		recreated := cache.Entry("users", pagedFetcher(2, 10, &calls))
		assert.Equal(t, 0, recreated.Pages())
	})

	t.Run("active observer blocks eviction", func(t *testing.T) {
		t.Parallel()
		cache, err := pagecache.New[string](shortRetention)
		require.NoError(t, err)
		defer cache.Close()

		entry := cache.Entry("users", pagedFetcher(2, 10, nil))
		obs := entry.Subscribe()

		time.Sleep(100 * time.Millisecond)
		assert.Equal(t, 1, cache.Len())

		obs.Close()
		assert.Eventually(t, func() bool {
			return cache.Len() == 0
		}, time.Second, 5*time.Millisecond)
	})

	t.Run("same key reuses the live entry", func(t *testing.T) {
		t.Parallel()
		cache, err := pagecache.New[string](testConfig())
		require.NoError(t, err)
		defer cache.Close()

		first := cache.Entry("users", pagedFetcher(2, 10, nil))
		require.NoError(t, first.FetchNextPage(ctx))

		second := cache.Entry("users", nil)
		assert.Same(t, first, second)
		assert.Equal(t, 1, second.Pages())
	})
}

func TestEntryCloseDuringFetch(t *testing.T) {
	t.Parallel()

	cache, err := pagecache.New[string](testConfig())
	require.NoError(t, err)

	release := make(chan struct{})
	entry := cache.Entry("users", func(ctx context.Context, page int) (pagecache.Page[string], error) {
		<-release
		return pagecache.Page[string]{Records: []string{"a", "b"}, HasMore: true}, nil
	})

	done := make(chan error, 1)
	go func() { done <- entry.FetchNextPage(context.Background()) }()

	// Wait for the fetch to enter flight, then tear the cache down
	// while the result is still pending.
	assert.Eventually(t, entry.InFlight, time.Second, 5*time.Millisecond)
	cache.Close()
	close(release)

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("fetch never returned")
	}

	// The late result is dropped, not appended to the dead entry.
	assert.Equal(t, 0, entry.Pages())
}
