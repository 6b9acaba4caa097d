// Package config provides type-safe environment variable loading with
// per-type caching using Go generics.
//
// The package loads a .env file automatically on first use and parses
// environment variables into struct fields via caarlos0/env tags:
//
//	type RedisConfig struct {
//		URL string `env:"REDIS_URL,required"`
//	}
//
//	var cfg RedisConfig
//	if err := config.Load(&cfg); err != nil {
//		log.Fatal(err)
//	}
//
//	// Or panic on failure during startup:
//	config.MustLoad(&cfg)
//
// Each configuration type is loaded only once per application lifetime;
// repeated Load calls for the same type return the cached value, so separate
// components can load their own view of shared configuration without
// re-reading the environment.
package config
