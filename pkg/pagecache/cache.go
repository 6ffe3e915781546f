package pagecache

import (
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/dirkit/pkg/broadcast"
	"github.com/dmitrymomot/dirkit/pkg/retry"
)

// Failed fetches retry three times before the error is surfaced.
const fetchMaxRetries = 3

// Option configures a Cache.
type Option[T any] func(*Cache[T])

// WithLogger sets the cache logger.
func WithLogger[T any](log *slog.Logger) Option[T] {
	return func(c *Cache[T]) {
		if log != nil {
			c.logger = log
		}
	}
}

// WithClock replaces the time source, for freshness and retention tests.
func WithClock[T any](clock func() time.Time) Option[T] {
	return func(c *Cache[T]) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithBackoff replaces the retry backoff strategy for page fetches.
func WithBackoff[T any](strategy retry.BackoffStrategy) Option[T] {
	return func(c *Cache[T]) {
		if strategy != nil {
			c.backoff = strategy
		}
	}
}

// WithRetryOptions forwards options to the per-entry retry runner.
func WithRetryOptions[T any](opts ...retry.Option) Option[T] {
	return func(c *Cache[T]) { c.retryOpts = opts }
}

// Cache maps query identities to entries and manages their eviction
// deadlines with explicit timers, so lifetime is inspectable rather than
// hidden inside a framework.
type Cache[T any] struct {
	cfg       Config
	logger    *slog.Logger
	clock     func() time.Time
	backoff   retry.BackoffStrategy
	retryOpts []retry.Option

	mu      sync.Mutex
	entries map[Key]*Entry[T]
	closed  bool
}

// New creates a cache with the given configuration. All configuration
// fields are required.
func New[T any](cfg Config, opts ...Option[T]) (*Cache[T], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Cache[T]{
		cfg:     cfg,
		logger:  slog.Default(),
		clock:   time.Now,
		backoff: retry.DefaultBackoff(),
		entries: make(map[Key]*Entry[T]),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Entry returns the entry for key, creating it on first use. The fetch
// function is bound at creation; later calls for the same key reuse the
// existing entry and only refresh its access time. A nil fetch function
// panics on first use of a key.
func (c *Cache[T]) Entry(key Key, fetch FetchFunc[T]) *Entry[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries[key]; ok {
		entry.mu.Lock()
		entry.touchLocked()
		entry.mu.Unlock()
		return entry
	}

	if fetch == nil {
		panic(ErrNilFetchFunc)
	}

	entry := &Entry[T]{
		key:    key,
		cfg:    c.cfg,
		fetch:  fetch,
		runner: retry.New(fetchMaxRetries, c.backoff, c.retryOpts...),
		logger: c.logger,
		clock:  c.clock,
		events: broadcast.New[Event](16),
	}
	entry.lastAccess = c.clock()
	entry.evictTimer = time.AfterFunc(c.cfg.RetentionWindow, func() {
		c.tryEvict(key)
	})

	c.entries[key] = entry
	return entry
}

// Len reports the number of live entries.
func (c *Cache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Close evicts every entry and stops all timers. Close is terminal; the
// cache must not be used afterwards.
func (c *Cache[T]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true

	for key, entry := range c.entries {
		entry.mu.Lock()
		entry.closed = true
		entry.evictTimer.Stop()
		entry.pages = nil
		entry.mu.Unlock()
		entry.events.Close()
		delete(c.entries, key)
	}
}

// tryEvict discards the entry once its retention window elapsed with no
// active observers; otherwise the timer is re-armed for the remainder.
func (c *Cache[T]) tryEvict(key Key) {
	c.mu.Lock()
	entry, ok := c.entries[key]
	if !ok || c.closed {
		c.mu.Unlock()
		return
	}

	entry.mu.Lock()
	idle := c.clock().Sub(entry.lastAccess)
	if entry.observers > 0 || entry.inFlight || idle < c.cfg.RetentionWindow {
		wait := c.cfg.RetentionWindow - idle
		if wait <= 0 {
			wait = c.cfg.RetentionWindow
		}
		entry.evictTimer.Reset(wait)
		entry.mu.Unlock()
		c.mu.Unlock()
		return
	}

	entry.closed = true
	entry.pages = nil
	entry.mu.Unlock()
	delete(c.entries, key)
	c.mu.Unlock()

	c.logger.Debug("cache entry evicted", slog.String("key", string(key)))
	entry.events.Publish(Event{Type: EventEvicted})
	entry.events.Close()
}
