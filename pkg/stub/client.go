package stub

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/getmockd/httpreplay/pkg/client"
	"github.com/getmockd/httpreplay/pkg/logging"
	"github.com/getmockd/httpreplay/pkg/metrics"
)

// Client answers requests from registered stubs. Registration and lookups
// may run concurrently.
type Client struct {
	settings  Settings
	config    client.Config
	transport client.Transport
	logger    *slog.Logger
	metrics   *metrics.Collector

	mu    sync.RWMutex
	stubs map[key]*client.Response
}

var _ client.Client = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithTransport sets the live transport used by DefaultPerformRequest.
// Defaults to a client.Direct.
func WithTransport(t client.Transport) Option {
	return func(c *Client) {
		if t != nil {
			c.transport = t
		}
	}
}

// WithConfig replaces the default client configuration.
func WithConfig(cfg client.Config) Option {
	return func(c *Client) {
		c.config = cfg
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Collector) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// New creates a stub client. Zero fields in settings take their values from
// DefaultSettings.
func New(settings Settings, opts ...Option) (*Client, error) {
	defaults := DefaultSettings()
	if settings.Default == "" {
		settings.Default = defaults.Default
	}
	if settings.Strictness == "" {
		settings.Strictness = defaults.Strictness
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		settings: settings,
		config:   client.DefaultConfig(),
		logger:   logging.Nop(),
		stubs:    make(map[key]*client.Response),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.Component(c.logger, "stub")
	if c.transport == nil {
		c.transport = client.NewDirect(client.WithDirectLogger(c.logger), client.WithDirectMetrics(c.metrics))
	}
	return c, nil
}

// Settings returns the client settings.
func (c *Client) Settings() Settings {
	return c.settings
}

// Config returns the client's default configuration.
func (c *Client) Config() client.Config {
	return c.config
}

// SetConfig replaces the client's default configuration.
func (c *Client) SetConfig(cfg client.Config) {
	c.config = cfg
}

// Len returns the number of registered stubs.
func (c *Client) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.stubs)
}

// Reset removes every registered stub.
func (c *Client) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stubs = make(map[key]*client.Response)
}

// Register validates p against the client strictness and stores resp for it.
// Registering the same pattern again replaces the earlier response.
//
// A zero StatusCode is stored as 200, and an empty response URL as the
// pattern URL.
func (c *Client) Register(p Pattern, resp *client.Response) error {
	strictness := c.settings.Strictness

	var regErr error
	requirementTable[strictness].each(func(f Field, r requirement) {
		if regErr != nil {
			return
		}
		switch {
		case r == required && !p.has(f):
			regErr = &RegistrationError{Kind: KindMissingField, Field: f, Strictness: strictness}
		case r == forbidden && p.has(f):
			regErr = &RegistrationError{Kind: KindUnnecessaryField, Field: f, Strictness: strictness}
		}
	})
	if regErr != nil {
		return regErr
	}

	if p.URL == "" {
		return &RegistrationError{Kind: KindInvalidField, Field: FieldURL, Strictness: strictness, Err: errors.New("url is empty")}
	}
	u, err := client.NormalizeURL(p.URL)
	if err != nil {
		return &RegistrationError{Kind: KindInvalidField, Field: FieldURL, Strictness: strictness, Err: err}
	}

	stored := resp.Clone()
	if stored == nil {
		stored = &client.Response{}
	}
	if stored.URL == "" {
		stored.URL = u
	}
	if stored.StatusCode == 0 {
		stored.StatusCode = http.StatusOK
	}
	if stored.Header == nil {
		stored.Header = make(http.Header)
	}
	if stored.Body == nil {
		stored.Body = []byte{}
	}

	k := makeKey(strictness, u, p.Method, p.Body, p.Header)

	c.mu.Lock()
	_, replaced := c.stubs[k]
	c.stubs[k] = stored
	c.mu.Unlock()

	c.logger.Debug("registered stub", "url", u, "method", p.Method, "replaced", replaced)
	return nil
}

// Execute returns the stored response of the matching stub. Requests that
// match nothing are handled according to the client's Default.
func (c *Client) Execute(ctx context.Context, cfg *client.Config, req *client.Request) (*client.Response, error) {
	if req == nil {
		return nil, errors.New("nil request")
	}
	n, err := req.Normalize()
	if err != nil {
		return nil, err
	}
	k := makeKey(c.settings.Strictness, n.URL, n.Method, n.Body, n.Header)

	c.mu.RLock()
	resp, ok := c.stubs[k]
	c.mu.RUnlock()

	if ok {
		c.logger.Debug("stub matched", "method", n.Method, "url", n.URL)
		c.metrics.RecordStubHit(string(c.settings.Strictness))
		return resp.Clone(), nil
	}

	c.metrics.RecordStubMiss(string(c.settings.Default))
	unmatched := &UnmatchedError{Method: n.Method, URL: n.URL}

	switch c.settings.Default {
	case DefaultPerformRequest:
		c.logger.Debug("no stub matched, performing request", "method", n.Method, "url", n.URL)
		conf := c.config
		if cfg != nil {
			conf = *cfg
		}
		return c.transport.Execute(ctx, &conf, req)
	case DefaultPanic:
		c.logger.Error("no stub matched", "method", n.Method, "url", n.URL)
		panic(unmatched)
	default:
		c.logger.Debug("no stub matched", "method", n.Method, "url", n.URL)
		return nil, unmatched
	}
}

// Generic wraps c as a client.Generic.
func (c *Client) Generic() *client.Generic {
	g, _ := client.Wrap(client.KindStub, c)
	return g
}

// Generic creates a client.Generic holding a new stub client.
func Generic(settings Settings, opts ...Option) (*client.Generic, error) {
	c, err := New(settings, opts...)
	if err != nil {
		return nil, err
	}
	return c.Generic(), nil
}
