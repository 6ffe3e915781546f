// Package config loads component configuration from environment variables.
//
// It wraps github.com/joho/godotenv and github.com/caarlos0/env/v11: the
// default .env file is loaded once per process (missing files are fine),
// then env tags on the target struct drive parsing. Each configuration type
// is parsed at most once and served from an in-process cache afterwards.
//
//	type DirectoryConfig struct {
//	    BaseURL  string `env:"DIRECTORY_API_BASE_URL" envDefault:"https://randomuser.me/api"`
//	    PageSize int    `env:"DIRECTORY_PAGE_SIZE" envDefault:"50"`
//	}
//
//	var cfg DirectoryConfig
//	if err := config.Load(&cfg); err != nil {
//	    log.Fatal(err)
//	}
//
// Sentinel errors (ErrNilPointer, ErrParsingConfig) can be matched with
// errors.Is. ResetCache clears the cache between tests.
package config
