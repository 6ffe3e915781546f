package directory_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/dirkit/pkg/directory"
	"github.com/dmitrymomot/dirkit/pkg/httpx"
	"github.com/dmitrymomot/dirkit/pkg/mockapi"
	"github.com/dmitrymomot/dirkit/pkg/pagecache"
	"github.com/dmitrymomot/dirkit/pkg/retry"
)

func noSleep() retry.Option {
	return retry.WithSleeper(func(context.Context, time.Duration) error { return nil })
}

func TestFetchUsers(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(mockapi.New().Handler())
	defer srv.Close()

	client := directory.NewClient(
		httpx.New(srv.URL),
		directory.WithPath("/api/users"),
		directory.WithPageSize(10),
		directory.WithSeed("demo"),
		directory.WithRetryOptions(noSleep()),
	)

	resp, err := client.FetchUsers(context.Background(), directory.Params{})
	require.NoError(t, err)

	assert.Len(t, resp.Results, 10)
	assert.Equal(t, "demo", resp.Info.Seed)
	assert.Equal(t, 1, resp.Info.Page)
	assert.Equal(t, 10, resp.Info.Results)

	for _, u := range resp.Results {
		assert.NotEmpty(t, u.Name.First)
		assert.NotEmpty(t, u.Login.UUID)
		assert.NotEmpty(t, u.Email)
	}
}

func TestFetchUsersDeterministic(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(mockapi.New().Handler())
	defer srv.Close()

	client := directory.NewClient(httpx.New(srv.URL),
		directory.WithPath("/api/users"), directory.WithPageSize(5))

	first, err := client.FetchUsers(context.Background(), directory.Params{Page: 2})
	require.NoError(t, err)
	second, err := client.FetchUsers(context.Background(), directory.Params{Page: 2})
	require.NoError(t, err)
	assert.Equal(t, first.Results, second.Results)

	other, err := client.FetchUsers(context.Background(), directory.Params{Page: 3})
	require.NoError(t, err)
	assert.NotEqual(t, first.Results, other.Results)
}

func TestFetchUsersAttachesBearer(t *testing.T) {
	t.Parallel()

	var gotAuth atomic.Value
	backend := mockapi.New().Handler()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth.Store(r.Header.Get("Authorization"))
		backend.ServeHTTP(w, r)
	}))
	defer srv.Close()

	transport := httpx.New(srv.URL, httpx.WithTokenSource(httpx.TokenSourceFunc(func() (string, bool) {
		return "session-token", true
	})))
	client := directory.NewClient(transport, directory.WithPath("/api/users"))

	_, err := client.FetchUsers(context.Background(), directory.Params{Results: 1})
	require.NoError(t, err)
	assert.Equal(t, "Bearer session-token", gotAuth.Load())
}

func TestFetchUsersRetriesTransientFailures(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	backend := mockapi.New().Handler()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		backend.ServeHTTP(w, r)
	}))
	defer srv.Close()

	client := directory.NewClient(httpx.New(srv.URL),
		directory.WithPath("/api/users"),
		directory.WithPageSize(3),
		directory.WithRetryOptions(noSleep()),
	)

	resp, err := client.FetchUsers(context.Background(), directory.Params{})
	require.NoError(t, err)
	assert.Len(t, resp.Results, 3)
	assert.Equal(t, int32(3), calls.Load())
}

func TestPageFetcherSingleRetryLayer(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := directory.NewClient(httpx.New(srv.URL), directory.WithPath("/api/users"))

	cache, err := pagecache.New[directory.User](pagecache.DefaultConfig(),
		pagecache.WithRetryOptions[directory.User](noSleep()))
	require.NoError(t, err)
	defer cache.Close()

	entry := cache.Entry("users", client.PageFetcher())
	require.Error(t, entry.FetchNextPage(context.Background()))

	// Exactly the cache's retry cycle: initial attempt plus three retries.
	assert.Equal(t, int32(4), hits.Load())
}

func TestPageFetcher(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(mockapi.New().Handler())
	defer srv.Close()

	client := directory.NewClient(httpx.New(srv.URL),
		directory.WithPath("/api/users"), directory.WithPageSize(4))

	fetch := client.PageFetcher()

	page, err := fetch(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, page.Records, 4)
	assert.True(t, page.HasMore, "full page keeps pagination open")
}
