package authstore

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrymomot/dirkit/pkg/httpx"
	"github.com/dmitrymomot/dirkit/pkg/retry"
)

const (
	defaultLoginPath   = "/api/auth/login"
	defaultLogoutDelay = 500 * time.Millisecond

	// Login is a mutation: one automatic retry, unlike the three applied
	// to directory queries.
	loginMaxRetries = 1
)

// ClientOption configures the HTTP auth service client.
type ClientOption func(*Client)

// WithLoginPath overrides the login endpoint path.
func WithLoginPath(path string) ClientOption {
	return func(c *Client) {
		if path != "" {
			c.loginPath = path
		}
	}
}

// WithLogoutDelay overrides the fixed logout delay. Tests use zero.
func WithLogoutDelay(d time.Duration) ClientOption {
	return func(c *Client) {
		if d >= 0 {
			c.logoutDelay = d
		}
	}
}

// WithRetryOptions forwards options to the login retry runner.
func WithRetryOptions(opts ...retry.Option) ClientOption {
	return func(c *Client) { c.retryOpts = opts }
}

// Client is the HTTP implementation of AuthService.
type Client struct {
	http        *httpx.Client
	loginPath   string
	logoutDelay time.Duration
	retryOpts   []retry.Option
}

// NewClient creates an auth service client on the given transport.
func NewClient(transport *httpx.Client, opts ...ClientOption) *Client {
	c := &Client{
		http:        transport,
		loginPath:   defaultLoginPath,
		logoutDelay: defaultLogoutDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Login posts the two credential fields and decodes the user/token pair.
// Transport failures are translated into an AuthError carrying the
// server-supplied message, or FallbackLoginMessage when the server gave
// none, so the form always has something human-readable to render.
func (c *Client) Login(ctx context.Context, creds Credentials) (LoginResult, error) {
	var result LoginResult
	err := c.http.PostJSON(ctx, c.loginPath, creds, &result,
		httpx.WithRetry(loginMaxRetries, retry.DefaultBackoff(), c.retryOpts...))
	if err != nil {
		var upstream *httpx.UpstreamError
		if errors.As(err, &upstream) && upstream.Message != "" {
			return LoginResult{}, &AuthError{Message: upstream.Message}
		}
		return LoginResult{}, &AuthError{Message: FallbackLoginMessage}
	}
	return result, nil
}

// Logout resolves after a fixed delay and always succeeds, mirroring the
// mock backend it talks to.
func (c *Client) Logout(ctx context.Context) error {
	if c.logoutDelay <= 0 {
		return nil
	}
	timer := time.NewTimer(c.logoutDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
