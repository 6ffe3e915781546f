package pagecache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/dirkit/pkg/broadcast"
	"github.com/dmitrymomot/dirkit/pkg/retry"
)

// Entry owns the accumulated pages and metadata for one query identity.
// All methods are safe for concurrent use; the in-flight gate guarantees
// at most one outstanding fetch per entry, so page N+1 is never requested
// before page N's outcome is observed.
type Entry[T any] struct {
	key    Key
	cfg    Config
	fetch  FetchFunc[T]
	runner *retry.Runner
	logger *slog.Logger
	clock  func() time.Time
	events *broadcast.Broadcaster[Event]

	mu           sync.Mutex
	pages        []Page[T]
	inFlight     bool
	revalidating bool
	fetchedAt    time.Time
	lastAccess   time.Time
	lastErr      error
	observers    int
	evictTimer   *time.Timer
	closed       bool
}

// Observer is a subscription to one entry's lifecycle events. Closing it
// releases the observer slot; events published afterwards are dropped.
type Observer[T any] struct {
	sub   *broadcast.Subscription[Event]
	entry *Entry[T]
	once  sync.Once
}

// C returns the event delivery channel.
func (o *Observer[T]) C() <-chan Event {
	return o.sub.C()
}

// Close detaches the observer. Idempotent.
func (o *Observer[T]) Close() {
	o.once.Do(func() {
		o.sub.Close()
		o.entry.release()
	})
}

// Key returns the query identity this entry serves.
func (e *Entry[T]) Key() Key {
	return e.key
}

// FetchNextPage requests the next page of records. It is a no-op when a
// fetch is already in flight or no further pages are available. Failures
// are retried internally per the backoff policy, then surfaced; the page
// counter does not advance on failure, so calling again retries the same
// page number.
func (e *Entry[T]) FetchNextPage(ctx context.Context) error {
	e.mu.Lock()
	e.touchLocked()
	if e.closed || e.inFlight || !e.hasNextLocked() {
		e.mu.Unlock()
		return nil
	}
	e.inFlight = true
	pageNo := len(e.pages) + 1
	e.mu.Unlock()

	e.events.Publish(Event{Type: EventFetchStarted, Pages: pageNo - 1})

	var page Page[T]
	err := e.runner.Do(ctx, func(ctx context.Context) error {
		fetched, ferr := e.fetch(ctx, pageNo)
		if ferr != nil {
			return ferr
		}
		page = fetched
		return nil
	})

	e.mu.Lock()
	e.inFlight = false
	if err != nil {
		e.lastErr = err
		held := len(e.pages)
		e.mu.Unlock()

		e.logger.ErrorContext(ctx, "page fetch failed",
			slog.String("key", string(e.key)),
			slog.Int("page", pageNo),
			slog.Any("error", err),
		)
		e.events.Publish(Event{Type: EventFetchFailed, Pages: held, Err: err})
		return err
	}

	if e.closed {
		// The entry was torn down while the fetch was in flight; the
		// late result is discarded.
		e.mu.Unlock()
		return nil
	}

	e.pages = append(e.pages, page)
	e.fetchedAt = e.clock()
	e.lastErr = nil
	held := len(e.pages)
	e.mu.Unlock()

	e.events.Publish(Event{Type: EventPageLoaded, Pages: held})
	return nil
}

// HasNextPage reports whether another page may be fetched: the accumulated
// records must stay under the configured ceiling and the most recent page
// must have indicated more data upstream.
func (e *Entry[T]) HasNextPage() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return !e.closed && e.hasNextLocked()
}

// InFlight reports whether a fetch is currently outstanding.
func (e *Entry[T]) InFlight() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.inFlight
}

// Pages reports the number of pages held.
func (e *Entry[T]) Pages() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.pages)
}

// LastErr returns the error surfaced by the most recent failed fetch, or
// nil after a success.
func (e *Entry[T]) LastErr() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

// AllRecords returns the concatenation of all held pages in fetch order,
// rebuilt from the current pages on every call. Accessing a stale entry
// schedules background revalidation of its first page.
func (e *Entry[T]) AllRecords() []T {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.touchLocked()
	e.maybeRevalidateLocked()

	total := 0
	for _, page := range e.pages {
		total += len(page.Records)
	}
	records := make([]T, 0, total)
	for _, page := range e.pages {
		records = append(records, page.Records...)
	}
	return records
}

// Subscribe registers an observer for this entry's events. Entries with at
// least one observer are exempt from eviction.
func (e *Entry[T]) Subscribe() *Observer[T] {
	e.mu.Lock()
	e.observers++
	e.touchLocked()
	e.mu.Unlock()

	return &Observer[T]{
		sub:   e.events.Subscribe(),
		entry: e,
	}
}

func (e *Entry[T]) release() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.observers > 0 {
		e.observers--
	}
	// Restart the inactivity countdown once the last observer detaches.
	if e.observers == 0 {
		e.touchLocked()
	}
}

func (e *Entry[T]) hasNextLocked() bool {
	if len(e.pages) == 0 {
		return true
	}
	if len(e.pages)*e.cfg.PageSize >= e.cfg.MaxTotalItems {
		return false
	}
	return e.pages[len(e.pages)-1].HasMore
}

func (e *Entry[T]) touchLocked() {
	e.lastAccess = e.clock()
}

func (e *Entry[T]) maybeRevalidateLocked() {
	if e.closed || e.revalidating || e.inFlight || len(e.pages) == 0 {
		return
	}
	if e.clock().Sub(e.fetchedAt) < e.cfg.FreshnessWindow {
		return
	}
	e.revalidating = true
	go e.revalidateFirstPage()
}

// revalidateFirstPage refreshes page one in the background. Later pages are
// never refetched. Failures keep the stale data and are not surfaced.
func (e *Entry[T]) revalidateFirstPage() {
	var page Page[T]
	err := e.runner.Do(context.Background(), func(ctx context.Context) error {
		fetched, ferr := e.fetch(ctx, 1)
		if ferr != nil {
			return ferr
		}
		page = fetched
		return nil
	})

	e.mu.Lock()
	e.revalidating = false
	if err != nil {
		e.mu.Unlock()
		e.logger.Warn("background revalidation failed",
			slog.String("key", string(e.key)),
			slog.Any("error", err),
		)
		return
	}
	if e.closed || len(e.pages) == 0 {
		e.mu.Unlock()
		return
	}
	e.pages[0] = page
	e.fetchedAt = e.clock()
	held := len(e.pages)
	e.mu.Unlock()

	e.events.Publish(Event{Type: EventRevalidated, Pages: held})
}
