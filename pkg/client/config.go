package client

import "time"

// DefaultRedirectLimit is the number of redirects followed by default.
const DefaultRedirectLimit = 10

// Config configures how a client performs live requests.
type Config struct {
	// Gzip enables transparent gzip decompression. Default is enabled.
	Gzip bool `yaml:"gzip" json:"gzip"`

	// RedirectLimit is the maximum number of redirects to follow.
	// Zero disables redirects entirely.
	RedirectLimit int `yaml:"redirectLimit" json:"redirectLimit"`

	// Referer enables setting the Referer header when following redirects.
	Referer bool `yaml:"referer" json:"referer"`

	// Timeout bounds the whole request, including reading the body.
	// Zero means no timeout.
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() Config {
	return Config{
		Gzip:          true,
		RedirectLimit: DefaultRedirectLimit,
		Referer:       true,
	}
}
