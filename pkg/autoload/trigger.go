package autoload

import (
	"context"
	"log/slog"
	"sync"
)

// Config controls when the sentinel counts as visible.
type Config struct {
	// Threshold is the visible fraction of the sentinel required to fire.
	Threshold float64 `env:"AUTOLOAD_THRESHOLD" envDefault:"0.5"`

	// RootMargin extends the viewport edge by this many pixels so loading
	// starts before the user reaches the true end of content.
	RootMargin float64 `env:"AUTOLOAD_ROOT_MARGIN" envDefault:"200"`
}

// DefaultConfig fires at 50% sentinel visibility with a 200px pre-fetch margin.
func DefaultConfig() Config {
	return Config{
		Threshold:  0.5,
		RootMargin: 200,
	}
}

// Visibility is one report from the rendering layer about the sentinel.
type Visibility struct {
	// Ratio is the visible fraction of the sentinel, 0 through 1.
	Ratio float64

	// Distance is how far the sentinel is from the viewport edge in
	// pixels; zero or negative means it is inside the viewport.
	Distance float64
}

// ShouldFetch is the load decision: fetch exactly when the sentinel is
// visible, more pages exist and nothing is in flight.
func ShouldFetch(visible, hasMore, inFlight bool) bool {
	return visible && hasMore && !inFlight
}

// Source is the paginated series the trigger drives; *pagecache.Entry
// satisfies it.
type Source interface {
	FetchNextPage(ctx context.Context) error
	HasNextPage() bool
	InFlight() bool
}

// Option configures a Trigger.
type Option func(*Trigger)

// WithLogger sets the trigger logger.
func WithLogger(log *slog.Logger) Option {
	return func(t *Trigger) {
		if log != nil {
			t.logger = log
		}
	}
}

// Trigger connects visibility reports to a Source.
type Trigger struct {
	cfg    Config
	src    Source
	logger *slog.Logger

	mu      sync.Mutex
	visible bool

	wake chan struct{}
}

// NewTrigger creates a trigger for the given source.
func NewTrigger(src Source, cfg Config, opts ...Option) *Trigger {
	t := &Trigger{
		cfg:    cfg,
		src:    src,
		logger: slog.Default(),
		wake:   make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// SetVisibility records a sentinel visibility report and re-evaluates.
func (t *Trigger) SetVisibility(v Visibility) {
	visible := v.Distance <= t.cfg.RootMargin && v.Ratio >= t.cfg.Threshold

	t.mu.Lock()
	changed := visible != t.visible
	t.visible = visible
	t.mu.Unlock()

	if changed {
		t.Notify()
	}
}

// Visible reports whether the sentinel currently counts as visible.
func (t *Trigger) Visible() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.visible
}

// Notify re-runs the decision. Call it when availability or in-flight
// state changed outside the trigger's own fetches, e.g. on cache events.
func (t *Trigger) Notify() {
	select {
	case t.wake <- struct{}{}:
	default:
	}
}

// NotifyOn forwards each event received on ch to t.Notify, so cache
// events (page loaded, fetch failed, eviction) re-run the decision
// without the caller writing the plumbing. It returns when ch closes or
// the context ends. Typically run as a goroutine alongside Run:
//
//	obs := entry.Subscribe()
//	go autoload.NotifyOn(ctx, trigger, obs.C())
func NotifyOn[E any](ctx context.Context, t *Trigger, ch <-chan E) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-ch:
			if !ok {
				return
			}
			t.Notify()
		}
	}
}

// Run drives the continuous-load loop until the context is cancelled.
// Each wake-up keeps fetching while the decision allows, so a visible
// sentinel drains the series one sequential page at a time.
func (t *Trigger) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.wake:
		}

		for t.evaluate(ctx) {
			if ctx.Err() != nil {
				return
			}
		}
	}
}

// evaluate performs one decision round. It returns true when a page was
// loaded and the loop should re-evaluate immediately; a fetch failure
// stops the loop until the next wake-up, leaving loaded pages intact.
func (t *Trigger) evaluate(ctx context.Context) bool {
	if !ShouldFetch(t.Visible(), t.src.HasNextPage(), t.src.InFlight()) {
		return false
	}

	if err := t.src.FetchNextPage(ctx); err != nil {
		t.logger.WarnContext(ctx, "auto-load fetch failed", slog.Any("error", err))
		return false
	}
	return true
}
