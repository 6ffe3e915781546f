package pagecache

import "errors"

var (
	// ErrInvalidPageSize indicates a missing or non-positive PageSize.
	ErrInvalidPageSize = errors.New("pagecache: page size must be positive")

	// ErrInvalidMaxTotalItems indicates a missing or non-positive MaxTotalItems.
	ErrInvalidMaxTotalItems = errors.New("pagecache: max total items must be positive")

	// ErrInvalidFreshnessWindow indicates a missing or non-positive FreshnessWindow.
	ErrInvalidFreshnessWindow = errors.New("pagecache: freshness window must be positive")

	// ErrInvalidRetentionWindow indicates a missing or non-positive RetentionWindow.
	ErrInvalidRetentionWindow = errors.New("pagecache: retention window must be positive")

	// ErrNilFetchFunc indicates an entry was requested without a fetch function.
	ErrNilFetchFunc = errors.New("pagecache: fetch function is required")
)
