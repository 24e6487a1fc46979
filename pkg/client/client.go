package client

import "context"

// Transport performs a single request and returns the buffered response.
// A nil cfg means the implementation's own configuration is used.
type Transport interface {
	Execute(ctx context.Context, cfg *Config, req *Request) (*Response, error)
}

// Client is the capability application code depends on.
type Client interface {
	Transport
	// Config returns the configuration used when Execute receives a nil cfg.
	Config() Config
}

// resolveConfig picks the per-call configuration over the client default.
func resolveConfig(cfg *Config, fallback Config) Config {
	if cfg != nil {
		return *cfg
	}
	return fallback
}
