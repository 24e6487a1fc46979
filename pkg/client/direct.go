package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/getmockd/httpreplay/pkg/logging"
	"github.com/getmockd/httpreplay/pkg/metrics"
)

// hopByHopHeaders are stripped before a request goes on the wire.
var hopByHopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailers",
	"Transfer-Encoding",
	"Upgrade",
}

// Direct performs requests over the network. It does no mocking at all and is
// the live transport used by the replay and stub clients on a miss.
type Direct struct {
	config  Config
	logger  *slog.Logger
	metrics *metrics.Collector

	// One transport per compression setting, shared by every call so idle
	// connections are pooled instead of leaked.
	plain *http.Transport
	gzip  *http.Transport
}

// DirectOption configures a Direct client.
type DirectOption func(*Direct)

// WithDirectLogger sets the logger used by the Direct client.
func WithDirectLogger(logger *slog.Logger) DirectOption {
	return func(d *Direct) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithDirectConfig replaces the default configuration.
func WithDirectConfig(cfg Config) DirectOption {
	return func(d *Direct) {
		d.config = cfg
	}
}

// WithDirectMetrics records every live request on m.
func WithDirectMetrics(m *metrics.Collector) DirectOption {
	return func(d *Direct) {
		d.metrics = m
	}
}

// NewDirect creates a live client.
func NewDirect(opts ...DirectOption) *Direct {
	d := &Direct{
		config: DefaultConfig(),
		logger: logging.Nop(),
	}
	base, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		base = &http.Transport{}
	}
	d.plain = base.Clone()
	d.plain.DisableCompression = true
	d.gzip = base.Clone()
	d.gzip.DisableCompression = false
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// CloseIdleConnections closes pooled connections that are not in use.
func (d *Direct) CloseIdleConnections() {
	d.plain.CloseIdleConnections()
	d.gzip.CloseIdleConnections()
}

// Config returns the client's default configuration.
func (d *Direct) Config() Config {
	return d.config
}

// SetConfig replaces the client's default configuration.
func (d *Direct) SetConfig(cfg Config) {
	d.config = cfg
}

// Execute sends the request over the network.
func (d *Direct) Execute(ctx context.Context, cfg *Config, req *Request) (*Response, error) {
	if req == nil {
		return nil, fmt.Errorf("nil request")
	}
	c := resolveConfig(cfg, d.config)

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	outReq, err := http.NewRequestWithContext(ctx, NormalizeMethod(req.Method), req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	copyHeaders(outReq.Header, req.Header)
	removeHopByHopHeaders(outReq.Header)

	d.logger.Debug("performing live request", "method", outReq.Method, "url", req.URL)

	start := time.Now()
	resp, err := d.httpClient(c).Do(outReq)
	if err != nil {
		d.metrics.RecordLiveRequest(outReq.Method, 0, time.Since(start))
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	d.metrics.RecordLiveRequest(outReq.Method, resp.StatusCode, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	finalURL := req.URL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	d.logger.Debug("live request complete", "url", finalURL, "status", resp.StatusCode, "bytes", len(respBody))

	return &Response{
		URL:        finalURL,
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Clone(),
		Body:       respBody,
	}, nil
}

// httpClient builds a net/http client honoring cfg.
func (d *Direct) httpClient(cfg Config) *http.Client {
	transport := d.plain
	if cfg.Gzip {
		transport = d.gzip
	}

	limit := cfg.RedirectLimit
	referer := cfg.Referer
	return &http.Client{
		Transport: transport,
		Timeout:   cfg.Timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) > limit {
				return http.ErrUseLastResponse
			}
			if !referer {
				req.Header.Del("Referer")
			}
			return nil
		},
	}
}

// copyHeaders copies headers from src to dst.
func copyHeaders(dst, src http.Header) {
	for _, key := range rawHeaderNames(src) {
		for _, value := range src[key] {
			dst.Add(key, value)
		}
	}
}

// removeHopByHopHeaders removes headers that should not be forwarded.
func removeHopByHopHeaders(h http.Header) {
	for _, name := range hopByHopHeaders {
		h.Del(name)
	}
}
