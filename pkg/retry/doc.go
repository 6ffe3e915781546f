// Package retry provides backoff strategies and a small retry runner used by
// the transport and cache layers.
//
// A BackoffStrategy computes the delay before a given retry attempt. The
// default strategy is exponential: 1s, 2s, 4s, ... capped at 30s, which is
// the policy applied to failed page fetches before the error is surfaced.
//
// The Runner executes a function up to 1+MaxRetries times, waiting between
// attempts and respecting context cancellation:
//
//	r := retry.New(3, retry.DefaultBackoff())
//	err := r.Do(ctx, func(ctx context.Context) error {
//	    return client.FetchPage(ctx, page)
//	})
//
// Context cancellation is never retried; the context error is returned
// immediately.
package retry
