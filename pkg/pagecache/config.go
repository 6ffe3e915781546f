package pagecache

import "time"

// Config holds page cache configuration. All four fields are required;
// there are no hidden fallbacks beyond DefaultConfig.
type Config struct {
	// PageSize is the number of records requested per page.
	PageSize int `env:"PAGECACHE_PAGE_SIZE" envDefault:"50"`

	// MaxTotalItems caps accumulated records regardless of upstream
	// availability.
	MaxTotalItems int `env:"PAGECACHE_MAX_TOTAL_ITEMS" envDefault:"2000"`

	// FreshnessWindow is how long a successful fetch is considered fresh;
	// afterwards the next access triggers first-page revalidation.
	FreshnessWindow time.Duration `env:"PAGECACHE_FRESHNESS_WINDOW" envDefault:"5m"`

	// RetentionWindow is the duration of inactivity after which an
	// unobserved entry is evicted.
	RetentionWindow time.Duration `env:"PAGECACHE_RETENTION_WINDOW" envDefault:"10m"`
}

// DefaultConfig returns the directory browsing defaults: 50-record pages,
// a 2000-record ceiling, 5 minute freshness and 10 minute retention.
func DefaultConfig() Config {
	return Config{
		PageSize:        50,
		MaxTotalItems:   2000,
		FreshnessWindow: 5 * time.Minute,
		RetentionWindow: 10 * time.Minute,
	}
}

// Validate reports the first missing or non-positive field.
func (c Config) Validate() error {
	switch {
	case c.PageSize <= 0:
		return ErrInvalidPageSize
	case c.MaxTotalItems <= 0:
		return ErrInvalidMaxTotalItems
	case c.FreshnessWindow <= 0:
		return ErrInvalidFreshnessWindow
	case c.RetentionWindow <= 0:
		return ErrInvalidRetentionWindow
	}
	return nil
}
