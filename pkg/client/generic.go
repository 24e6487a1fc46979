package client

import (
	"context"
	"fmt"
)

// Kind identifies the variant held by a Generic client.
type Kind string

const (
	KindDirect Kind = "direct"
	KindReplay Kind = "replay"
	KindStub   Kind = "stub"
)

// IsValid checks if the kind is one of the known variants.
func (k Kind) IsValid() bool {
	switch k {
	case KindDirect, KindReplay, KindStub:
		return true
	default:
		return false
	}
}

// configurable is implemented by variants whose default config can be replaced.
type configurable interface {
	SetConfig(Config)
}

// Generic holds exactly one client variant so that code does not have to be
// generic over Client or pass interfaces around.
type Generic struct {
	kind  Kind
	inner Client
}

// NewGeneric wraps a Direct client.
func NewGeneric(d *Direct) *Generic {
	return &Generic{kind: KindDirect, inner: d}
}

// Wrap tags c as the given variant. It is used by the replay and stub packages
// to plug their clients into Generic.
func Wrap(kind Kind, c Client) (*Generic, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("unknown client kind %q", kind)
	}
	if c == nil {
		return nil, fmt.Errorf("nil %s client", kind)
	}
	return &Generic{kind: kind, inner: c}, nil
}

// Kind returns the wrapped variant.
func (g *Generic) Kind() Kind {
	return g.kind
}

// Unwrap returns the wrapped client.
func (g *Generic) Unwrap() Client {
	return g.inner
}

// Execute delegates to the wrapped variant.
func (g *Generic) Execute(ctx context.Context, cfg *Config, req *Request) (*Response, error) {
	return g.inner.Execute(ctx, cfg, req)
}

// Config returns the wrapped variant's configuration.
func (g *Generic) Config() Config {
	return g.inner.Config()
}

// SetConfig replaces the wrapped variant's configuration, if it supports it.
func (g *Generic) SetConfig(cfg Config) {
	if c, ok := g.inner.(configurable); ok {
		c.SetConfig(cfg)
	}
}
