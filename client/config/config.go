// Package config loads client settings from the environment.
package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the settings needed to build a client.
type Config struct {
	BaseURL           string        `envconfig:"BASE_URL" required:"true"`
	Timeout           time.Duration `envconfig:"TIMEOUT" default:"10s"`
	UserAgent         string        `envconfig:"USER_AGENT"`
	NoFollowRedirects bool          `envconfig:"NO_FOLLOW_REDIRECTS" default:"false"`
	Throttle          ThrottleConfig
}

// ThrottleConfig holds rate limiting configuration. Zero RPS disables it.
type ThrottleConfig struct {
	RPS   int `envconfig:"RPS" default:"0"`
	Burst int `envconfig:"BURST" default:"0"`
}

// Enabled reports whether a rate limit was configured.
func (t ThrottleConfig) Enabled() bool {
	return t.RPS > 0
}

// BurstOrRPS returns Burst, falling back to RPS when no burst was set.
func (t ThrottleConfig) BurstOrRPS() int {
	if t.Burst > 0 {
		return t.Burst
	}
	return t.RPS
}

// Load reads the configuration from environment variables under prefix,
// e.g. MYAPP_BASE_URL and MYAPP_THROTTLE_RPS for prefix "MYAPP".
func Load(prefix string) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that the values can be used to build a client.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("parsing base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("base url %q must be absolute", c.BaseURL)
	}

	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative: %s", c.Timeout)
	}

	if c.Throttle.RPS < 0 || c.Throttle.Burst < 0 {
		return fmt.Errorf("throttle rps[%d] and burst[%d] must not be negative", c.Throttle.RPS, c.Throttle.Burst)
	}

	return nil
}
