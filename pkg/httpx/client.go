package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrymomot/dirkit/pkg/retry"
)

// DefaultTimeout bounds each request when no custom http.Client is supplied.
const DefaultTimeout = 10 * time.Second

// TokenSource supplies the current bearer credential, if any.
// The transport consults it on every request rather than caching the value.
type TokenSource interface {
	Token() (string, bool)
}

// TokenSourceFunc adapts a function to the TokenSource interface.
type TokenSourceFunc func() (string, bool)

func (f TokenSourceFunc) Token() (string, bool) { return f() }

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client. Nil clients are ignored.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTokenSource sets the credential source consulted on each request.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithTimeout sets the per-request timeout on the underlying client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithLogger sets the logger used for failure classification.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.logger = log
		}
	}
}

// CallOption configures a single request.
type CallOption func(*callOptions)

type callOptions struct {
	runner *retry.Runner
	header http.Header
}

// WithRetry retries the request up to maxRetries times using the strategy,
// on any transport failure. The last error is surfaced unchanged.
func WithRetry(maxRetries int, strategy retry.BackoffStrategy, opts ...retry.Option) CallOption {
	return func(o *callOptions) {
		o.runner = retry.New(maxRetries, strategy, opts...)
	}
}

// WithHeader adds a header to the request.
func WithHeader(key, value string) CallOption {
	return func(o *callOptions) {
		if o.header == nil {
			o.header = make(http.Header)
		}
		o.header.Set(key, value)
	}
}

// Client issues JSON requests against a base URL.
type Client struct {
	http   *http.Client
	base   string
	tokens TokenSource
	logger *slog.Logger
}

// New creates a transport client rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		http:   &http.Client{Timeout: DefaultTimeout},
		base:   strings.TrimRight(baseURL, "/"),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetJSON issues a GET request and decodes the JSON response into out.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, out any, opts ...CallOption) error {
	return c.call(ctx, http.MethodGet, path, query, nil, out, opts...)
}

// PostJSON issues a POST request with a JSON body and decodes the JSON
// response into out.
func (c *Client) PostJSON(ctx context.Context, path string, body, out any, opts ...CallOption) error {
	return c.call(ctx, http.MethodPost, path, nil, body, out, opts...)
}

func (c *Client) call(ctx context.Context, method, path string, query url.Values, body, out any, opts ...CallOption) error {
	options := &callOptions{}
	for _, opt := range opts {
		opt(options)
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return err
		}
	}

	attempt := func(ctx context.Context) error {
		return c.do(ctx, method, path, query, payload, out, options.header)
	}

	if options.runner != nil {
		return options.runner.Do(ctx, attempt)
	}
	return attempt(ctx)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload []byte, out any, header http.Header) error {
	target := c.base + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	for key, values := range header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	// Credential is read at call time, never cached, so logout between two
	// requests is reflected immediately.
	if c.tokens != nil {
		if token, ok := c.tokens.Token(); ok && token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.logger.ErrorContext(ctx, "transient network failure",
			slog.String("method", method),
			slog.String("path", path),
			slog.Any("error", err),
		)
		return errors.Join(ErrTransientNetwork, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= 400 {
		upstream := &UpstreamError{
			StatusCode: resp.StatusCode,
			Message:    decodeErrorMessage(resp.Body),
		}
		c.logClassification(ctx, method, path, upstream)
		return upstream
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Join(ErrDecodeResponse, err)
	}
	return nil
}

func (c *Client) logClassification(ctx context.Context, method, path string, err *UpstreamError) {
	attrs := []any{
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", err.StatusCode),
	}

	switch {
	case err.StatusCode == http.StatusUnauthorized:
		c.logger.ErrorContext(ctx, "unauthorized request", attrs...)
	case err.StatusCode == http.StatusForbidden:
		c.logger.ErrorContext(ctx, "forbidden, insufficient permissions", attrs...)
	case err.StatusCode == http.StatusNotFound:
		c.logger.ErrorContext(ctx, "resource not found", attrs...)
	case err.IsServerError():
		c.logger.ErrorContext(ctx, "upstream server error", attrs...)
	default:
		c.logger.ErrorContext(ctx, "upstream client error", attrs...)
	}
}

// decodeErrorMessage pulls the machine-readable "error" field from a JSON
// error body. Bodies that are not JSON or carry no such field yield "".
func decodeErrorMessage(r io.Reader) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(r, 64<<10)).Decode(&body); err != nil {
		return ""
	}
	return body.Error
}
