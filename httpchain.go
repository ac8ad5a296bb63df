// Package httpchain exposes the client builder.
package httpchain

import (
	"fmt"

	"github.com/adamwoolhether/httpchain/client"
	"github.com/adamwoolhether/httpchain/client/config"
)

// New instantiates a new *Client for baseURL with the provided options.
// If not specified, the default http.Client and http.Transport are used.
func New(baseURL string, opts ...client.Option) (*client.Client, error) {
	return client.Build(baseURL, opts...)
}

// FromEnv instantiates a new *Client from environment variables under
// prefix; see [config.Load]. opts take precedence over the environment.
func FromEnv(prefix string, opts ...client.Option) (*client.Client, error) {
	cfg, err := config.Load(prefix)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	return client.FromConfig(cfg, opts...)
}
