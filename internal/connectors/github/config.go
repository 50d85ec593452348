package github

import (
	"net/http"
	"time"

	"github.com/custodia-labs/repoqa/internal/core/domain"
)

// Config configures the content fetcher.
type Config struct {
	// BaseURL overrides the REST API root (GitHub Enterprise, tests).
	BaseURL string

	// RequestsPerSecond throttles API calls. 0 disables throttling.
	RequestsPerSecond float64

	// Concurrency bounds parallel fetches of sibling entries. Values <= 1
	// walk sequentially.
	Concurrency int

	// Timeout is the per-request HTTP timeout. Default: DefaultTimeout.
	Timeout time.Duration

	// HTTPClient is the transport used for API calls. Optional.
	HTTPClient *http.Client
}

// ConfigFromSettings builds a Config from application settings.
func ConfigFromSettings(s domain.GitHubSettings) Config {
	return Config{
		BaseURL:           s.BaseURL,
		RequestsPerSecond: s.RequestsPerSecond,
		Concurrency:       s.Concurrency,
	}
}

func (c Config) timeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return DefaultTimeout
}

func (c Config) concurrency() int {
	if c.Concurrency < 1 {
		return 1
	}
	return c.Concurrency
}
