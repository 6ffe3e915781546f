package authstore

import (
	"context"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/dirkit/pkg/broadcast"
	"github.com/dmitrymomot/dirkit/pkg/sessionstore"
)

// Option configures a Store.
type Option func(*Store)

// WithNavigator sets the redirect target invoked by Logout.
func WithNavigator(nav Navigator) Option {
	return func(s *Store) { s.nav = nav }
}

// WithLoginRoute overrides the public route logout redirects to.
func WithLoginRoute(route string) Option {
	return func(s *Store) {
		if route != "" {
			s.loginRoute = route
		}
	}
}

// WithLogger sets the store logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Store) {
		if log != nil {
			s.logger = log
		}
	}
}

// Store is the session authentication state container.
// All methods are safe for concurrent use; transitions are atomic from the
// caller's perspective.
type Store struct {
	mu      sync.Mutex
	state   State
	storage sessionstore.Store
	svc     AuthService
	nav     Navigator
	events  *broadcast.Broadcaster[State]
	logger  *slog.Logger

	loginRoute string
}

// New creates a store persisting its credential to storage and exchanging
// credentials through svc.
func New(storage sessionstore.Store, svc AuthService, opts ...Option) *Store {
	s := &Store{
		storage:    storage,
		svc:        svc,
		events:     broadcast.New[State](8),
		logger:     slog.Default(),
		loginRoute: DefaultLoginRoute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize restores a persisted credential, transitioning to
// Authenticated with a locally synthesized profile when one is present.
// It never fails: a missing or unreadable credential simply means no
// session. Safe to call repeatedly; an authenticated state is never
// regressed.
func (s *Store) Initialize() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Authenticated {
		return
	}

	token, err := s.storage.Get(context.Background(), TokenKey)
	if err != nil || token == "" {
		return
	}

	s.state = State{
		User: &User{
			ID:    "1",
			Email: "user@example.com",
			Name:  "Demo User",
		},
		Token:         token,
		Authenticated: true,
	}
	s.events.Publish(s.state)
}

// Login exchanges credentials through the auth service, persists the
// returned token and transitions to Authenticated. On failure the store is
// left Unauthenticated and the service error is returned unchanged so the
// form can render its message. Concurrent logins resolve last-writer-wins.
func (s *Store) Login(ctx context.Context, creds Credentials) error {
	result, err := s.svc.Login(ctx, creds)
	if err != nil {
		s.logger.ErrorContext(ctx, "login failed", slog.Any("error", err))
		s.setState(State{})
		return err
	}

	if err := s.storage.Set(ctx, TokenKey, result.Token); err != nil {
		s.logger.ErrorContext(ctx, "failed to persist credential", slog.Any("error", err))
		s.setState(State{})
		return err
	}

	user := result.User
	s.setState(State{
		User:          &user,
		Token:         result.Token,
		Authenticated: true,
	})
	return nil
}

// Logout wipes all persisted session data, returns the store to its zero
// state and redirects to the public login route. The paired auth service
// call runs in the background and its result is discarded; Logout itself
// is synchronous and cannot fail.
func (s *Store) Logout() {
	ctx := context.Background()
	_ = s.storage.Delete(ctx, TokenKey)
	_ = s.storage.Clear(ctx)

	s.setState(State{})

	if s.svc != nil {
		go func() {
			_ = s.svc.Logout(context.Background())
		}()
	}

	if s.nav != nil {
		s.nav.Redirect(s.loginRoute)
	}
}

// State returns a snapshot of the current session state. The user record
// is copied so callers cannot mutate store internals.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.state
	if state.User != nil {
		user := *state.User
		state.User = &user
	}
	return state
}

// Token implements httpx.TokenSource: the current bearer credential, read
// fresh on every transport call.
func (s *Store) Token() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Token, s.state.Authenticated
}

// Subscribe returns a subscription delivering every state transition.
// Close it when the observer goes away; late transitions are then dropped.
func (s *Store) Subscribe() *broadcast.Subscription[State] {
	return s.events.Subscribe()
}

func (s *Store) setState(next State) {
	s.mu.Lock()
	s.state = next
	s.mu.Unlock()
	s.events.Publish(next)
}
