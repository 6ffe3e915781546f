package pagecache

import "context"

// Key identifies one logical paginated series, e.g. "users-infinite".
type Key string

// Page is one fetched page of records plus the upstream continuation
// indicator. Records are immutable once stored.
type Page[T any] struct {
	Records []T
	HasMore bool
}

// FetchFunc retrieves the given 1-based page from the upstream source.
type FetchFunc[T any] func(ctx context.Context, page int) (Page[T], error)

// EventType tags entry lifecycle events delivered to observers.
type EventType string

const (
	// EventFetchStarted fires when a next-page fetch begins.
	EventFetchStarted EventType = "fetch_started"
	// EventPageLoaded fires when a page was appended.
	EventPageLoaded EventType = "page_loaded"
	// EventFetchFailed fires when a fetch exhausted its retries.
	EventFetchFailed EventType = "fetch_failed"
	// EventRevalidated fires when background revalidation replaced page one.
	EventRevalidated EventType = "revalidated"
	// EventEvicted fires when the entry was discarded after the retention
	// window; held pages are released.
	EventEvicted EventType = "evicted"
)

// Event describes an entry state change. Pages is the page count after the
// change; Err is set for EventFetchFailed.
type Event struct {
	Type  EventType
	Pages int
	Err   error
}
