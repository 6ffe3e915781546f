package broadcast

import (
	"sync"

	"github.com/google/uuid"
)

// Subscription receives values published to its Broadcaster.
type Subscription[T any] struct {
	id     uuid.UUID
	ch     chan T
	hub    *Broadcaster[T]
	closed bool
	mu     sync.Mutex
}

// C returns the channel values are delivered on. The channel is closed
// when the subscription or its broadcaster is closed.
func (s *Subscription[T]) C() <-chan T {
	return s.ch
}

// Close detaches the subscription from its broadcaster and closes the
// delivery channel. Close is idempotent.
func (s *Subscription[T]) Close() {
	s.hub.remove(s.id)
	s.shutdown()
}

func (s *Subscription[T]) shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		close(s.ch)
		s.closed = true
	}
}

func (s *Subscription[T]) send(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	select {
	case s.ch <- v:
	default:
		// Slow consumer; drop rather than block the publisher.
	}
}

// Broadcaster fans values out to all current subscriptions.
// All methods are safe for concurrent use.
type Broadcaster[T any] struct {
	mu     sync.RWMutex
	subs   map[uuid.UUID]*Subscription[T]
	buffer int
	closed bool
}

// New creates a broadcaster whose subscriptions buffer up to buffer values.
// A minimum buffer of 1 is enforced to keep delivery non-blocking.
func New[T any](buffer int) *Broadcaster[T] {
	return &Broadcaster[T]{
		subs:   make(map[uuid.UUID]*Subscription[T]),
		buffer: max(buffer, 1),
	}
}

// Subscribe registers a new subscription. Subscribing to a closed
// broadcaster returns an already-closed subscription.
func (b *Broadcaster[T]) Subscribe() *Subscription[T] {
	sub := &Subscription[T]{
		id:  uuid.New(),
		ch:  make(chan T, b.buffer),
		hub: b,
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		sub.shutdown()
		return sub
	}

	b.subs[sub.id] = sub
	return sub
}

// Publish delivers v to every active subscription without blocking.
// Publishing to a closed broadcaster is a no-op.
func (b *Broadcaster[T]) Publish(v T) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}
	for _, sub := range b.subs {
		sub.send(v)
	}
}

// Len reports the number of active subscriptions.
func (b *Broadcaster[T]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close shuts down the broadcaster and all subscriptions. Idempotent.
func (b *Broadcaster[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true

	for id, sub := range b.subs {
		sub.shutdown()
		delete(b.subs, id)
	}
}

func (b *Broadcaster[T]) remove(id uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, id)
}
