package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coomb/chatkit/core/config"
)

type testConfig struct {
	Name    string `env:"CONFIG_TEST_NAME" envDefault:"fallback"`
	Retries int    `env:"CONFIG_TEST_RETRIES" envDefault:"3"`
}

type requiredConfig struct {
	Secret string `env:"CONFIG_TEST_REQUIRED_SECRET,required"`
}

func TestLoad(t *testing.T) {
	t.Run("applies defaults when variables are unset", func(t *testing.T) {
		var cfg testConfig
		require.NoError(t, config.Load(&cfg))

		assert.Equal(t, "fallback", cfg.Name)
		assert.Equal(t, 3, cfg.Retries)
	})

	t.Run("returns cached value on repeated load", func(t *testing.T) {
		var first testConfig
		require.NoError(t, config.Load(&first))

		// Changing the environment now must not affect the cached type.
		t.Setenv("CONFIG_TEST_NAME", "changed")

		var second testConfig
		require.NoError(t, config.Load(&second))
		assert.Equal(t, first, second)
	})

	t.Run("fails on missing required variable", func(t *testing.T) {
		var cfg requiredConfig
		err := config.Load(&cfg)
		require.Error(t, err)
	})

	t.Run("rejects nil pointer", func(t *testing.T) {
		var cfg *testConfig
		err := config.Load(cfg)
		require.ErrorIs(t, err, config.ErrNilConfig)
	})
}

func TestMustLoad(t *testing.T) {
	t.Run("panics on missing required variable", func(t *testing.T) {
		assert.Panics(t, func() {
			var cfg requiredConfig
			config.MustLoad(&cfg)
		})
	})
}
