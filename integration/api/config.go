package api

import "time"

// Config contains the settings for the coomb API client, loadable via
// core/config from the environment.
type Config struct {
	// BaseURL is the API origin, for example https://api.coomb.app.
	BaseURL string `env:"COOMB_API_BASE_URL,required"`

	// Timeout bounds each request when no custom HTTP client is supplied.
	Timeout time.Duration `env:"COOMB_API_TIMEOUT" envDefault:"15s"`
}
