// Package pagecache accumulates pages of remote records for infinite
// scrolling. Each query identity owns one Entry: an ordered sequence of
// pages, an at-most-one-in-flight fetch gate, a freshness timestamp and an
// eviction deadline.
//
// FetchNextPage requests page N+1 where N is the number of pages already
// held. Failures are retried up to three times with exponential backoff
// (1s, 2s, 4s) before surfacing; the page counter does not advance, so the
// next call retries the same page. HasNextPage combines the client-side
// item ceiling with the upstream continuation indicator; reaching the
// ceiling is a normal terminal state, not an error.
//
// After the freshness window elapses, the next access silently revalidates
// the first page in the background; later pages are never refetched. An
// entry with no active observers is evicted after the retention window of
// inactivity and the next use starts over from page one.
//
//	cache, _ := pagecache.New[directory.User](pagecache.DefaultConfig())
//	entry := cache.Entry("users-infinite", fetchPage)
//	_ = entry.FetchNextPage(ctx)
//	records := entry.AllRecords()
package pagecache
