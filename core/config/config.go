package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// ErrNilConfig is returned when Load receives a nil pointer.
var ErrNilConfig = errors.New("config: nil config pointer")

var (
	dotenvOnce sync.Once
	cache      sync.Map // reflect.Type -> loaded config value
)

// Load parses environment variables into cfg. Each configuration type is
// loaded once per process; subsequent calls for the same type receive the
// cached value. A .env file in the working directory is loaded automatically
// before the first parse, without overriding variables already set.
func Load[T any](cfg *T) error {
	if cfg == nil {
		return ErrNilConfig
	}

	dotenvOnce.Do(func() {
		// Missing .env is the normal case outside local development.
		_ = godotenv.Load()
	})

	typ := reflect.TypeOf(*cfg)
	if cached, ok := cache.Load(typ); ok {
		*cfg = cached.(T)
		return nil
	}

	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("config: failed to parse %s from environment: %w", typ, err)
	}

	// First writer wins so concurrent loaders observe one consistent value.
	cached, _ := cache.LoadOrStore(typ, *cfg)
	*cfg = cached.(T)
	return nil
}

// MustLoad is like Load but panics on failure. Intended for application
// startup where a missing required variable should abort the process.
func MustLoad[T any](cfg *T) {
	if err := Load(cfg); err != nil {
		panic(err)
	}
}
