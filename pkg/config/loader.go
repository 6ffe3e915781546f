package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	mu     sync.Mutex
	cache  = make(map[string]any)
	envDot sync.Once
)

// Load populates v from environment variables using its env tags.
// The first call for a given type parses the environment; subsequent calls
// return the cached copy so all components observe the same configuration.
func Load[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}

	envDot.Do(func() {
		// The .env file is optional; absence is not an error.
		_ = godotenv.Load()
	})

	key := fmt.Sprintf("%T", *v)

	mu.Lock()
	defer mu.Unlock()

	if cached, ok := cache[key]; ok {
		*v = cached.(T)
		return nil
	}

	if err := env.Parse(v); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}

	// Store a copy so later mutations of v do not leak into the cache.
	cache[key] = *v
	return nil
}

// MustLoad is Load that panics on failure, for configuration the process
// cannot start without.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("config: failed to load required configuration: %v", err))
	}
}

// ResetCache drops all cached configuration. Intended for tests that
// mutate the process environment between cases.
func ResetCache() {
	mu.Lock()
	defer mu.Unlock()
	cache = make(map[string]any)
}
