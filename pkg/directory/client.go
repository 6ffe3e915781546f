package directory

import (
	"context"
	"net/url"
	"strconv"

	"github.com/dmitrymomot/dirkit/pkg/httpx"
	"github.com/dmitrymomot/dirkit/pkg/pagecache"
	"github.com/dmitrymomot/dirkit/pkg/retry"
)

const (
	// DefaultBaseURL is the public directory endpoint.
	DefaultBaseURL = "https://randomuser.me/api"

	// DefaultPageSize is the number of records requested per page.
	DefaultPageSize = 50

	// DefaultSeed pins the deterministic synthetic dataset.
	DefaultSeed = "myapp"

	// Directory queries retry three times before surfacing a failure.
	queryMaxRetries = 3
)

// Config describes the directory client. Parse it with pkg/config.
type Config struct {
	BaseURL  string `env:"DIRECTORY_API_BASE_URL" envDefault:"https://randomuser.me/api"`
	PageSize int    `env:"DIRECTORY_PAGE_SIZE" envDefault:"50"`
	Seed     string `env:"DIRECTORY_SEED" envDefault:"myapp"`
}

// Option configures a Client.
type Option func(*Client)

// WithPath overrides the request path, e.g. "/api/users" for the mock backend.
func WithPath(path string) Option {
	return func(c *Client) { c.path = path }
}

// WithPageSize overrides the default page size.
func WithPageSize(size int) Option {
	return func(c *Client) {
		if size > 0 {
			c.pageSize = size
		}
	}
}

// WithSeed overrides the dataset seed.
func WithSeed(seed string) Option {
	return func(c *Client) {
		if seed != "" {
			c.seed = seed
		}
	}
}

// WithRetryOptions forwards options to the query retry runner.
func WithRetryOptions(opts ...retry.Option) Option {
	return func(c *Client) { c.retryOpts = opts }
}

// Client queries the user directory over an httpx transport, which
// attaches the current bearer credential to every request.
type Client struct {
	http      *httpx.Client
	path      string
	pageSize  int
	seed      string
	retryOpts []retry.Option
}

// NewClient creates a directory client on the given transport.
func NewClient(transport *httpx.Client, opts ...Option) *Client {
	c := &Client{
		http:     transport,
		path:     "/",
		pageSize: DefaultPageSize,
		seed:     DefaultSeed,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchUsers retrieves one page of directory records. Zero-valued params
// fall back to page 1, the configured page size and seed. Transient
// failures are retried up to three times with exponential backoff.
func (c *Client) FetchUsers(ctx context.Context, params Params) (Response, error) {
	return c.fetch(ctx, params,
		httpx.WithRetry(queryMaxRetries, retry.DefaultBackoff(), c.retryOpts...))
}

func (c *Client) fetch(ctx context.Context, params Params, opts ...httpx.CallOption) (Response, error) {
	page := params.Page
	if page <= 0 {
		page = 1
	}
	results := params.Results
	if results <= 0 {
		results = c.pageSize
	}
	seed := params.Seed
	if seed == "" {
		seed = c.seed
	}

	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("results", strconv.Itoa(results))
	query.Set("seed", seed)

	var resp Response
	err := c.http.GetJSON(ctx, c.path, query, &resp, opts...)
	if err != nil {
		return Response{}, err
	}
	return resp, nil
}

// PageFetcher adapts the client to pagecache.FetchFunc. A short page is
// taken as the upstream continuation signal: the directory has more data
// exactly while it keeps returning full pages.
//
// Requests issued through the fetcher are not retried here; the cache
// owns the retry policy, and stacking a second layer would multiply the
// attempt count.
func (c *Client) PageFetcher() pagecache.FetchFunc[User] {
	return func(ctx context.Context, page int) (pagecache.Page[User], error) {
		resp, err := c.fetch(ctx, Params{Page: page})
		if err != nil {
			return pagecache.Page[User]{}, err
		}
		return pagecache.Page[User]{
			Records: resp.Results,
			HasMore: len(resp.Results) == c.pageSize,
		}, nil
	}
}
