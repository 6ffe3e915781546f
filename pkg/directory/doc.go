// Package directory is the client for the remote user directory, a
// randomuser.me-shaped API. A fixed seed makes the synthetic dataset
// deterministic, so page N always holds the same records.
//
// FetchUsers issues one page query with the standard three-retry policy.
// PageFetcher adapts the client to pagecache.FetchFunc so a cache entry can
// drive the infinite scroll:
//
//	client := directory.NewClient(transport)
//	entry := cache.Entry("users-infinite", client.PageFetcher())
package directory
