package config

import "time"

// APIConfig configures the backend API client.
type APIConfig struct {
	// BaseURL of the assistant backend, e.g. https://api.finlit.example.com/v1
	BaseURL string `yaml:"base_url"`

	// APIKey authenticates non-interactive deployments. Interactive use
	// obtains a bearer token via login instead.
	APIKey string `yaml:"api_key"`

	// Timeout applies to non-streaming requests only. Streaming chat
	// requests run without a fixed deadline.
	Timeout string `yaml:"timeout"`
}

// DefaultRequestTimeout is used when api.timeout is unset.
const DefaultRequestTimeout = 30 * time.Second

// RequestTimeout returns the parsed fixed-duration timeout for
// non-streaming requests.
func (a APIConfig) RequestTimeout() (time.Duration, error) {
	return parseDuration(a.Timeout, DefaultRequestTimeout)
}
