package replay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/getmockd/httpreplay/internal/fingerprint"
	"github.com/getmockd/httpreplay/pkg/client"
	"github.com/getmockd/httpreplay/pkg/logging"
	"github.com/getmockd/httpreplay/pkg/metrics"
)

// Miss reasons reported to metrics.
const (
	missAbsent  = "absent"
	missChanged = "changed"
	missForced  = "forced"
)

// Options configures a replay Client.
type Options struct {
	// Target is where entries are read from and written to. Required.
	Target Target

	// Mode defaults to NewEpisodes.
	Mode RecordMode

	// Transport performs live requests on a miss. Defaults to a client.Direct.
	Transport client.Transport

	// Config is used when Execute receives a nil config. Defaults to
	// client.DefaultConfig().
	Config *client.Config

	// Logger defaults to a no-op logger.
	Logger *slog.Logger

	// Metrics is optional.
	Metrics *metrics.Collector
}

// Client records responses to requests and replays them while the request is
// unchanged. It is safe for concurrent use, but concurrent misses on the same
// fingerprint each perform a live call and the last write wins.
type Client struct {
	target    Target
	mode      RecordMode
	transport client.Transport
	config    client.Config
	logger    *slog.Logger
	metrics   *metrics.Collector

	forceRecord atomic.Bool
}

var _ client.Client = (*Client)(nil)

// New creates a replay client.
func New(opts Options) (*Client, error) {
	if opts.Target.IsZero() {
		return nil, errors.New("replay target is required")
	}
	if opts.Mode == "" {
		opts.Mode = NewEpisodes
	}
	if !opts.Mode.IsValid() {
		return nil, fmt.Errorf("invalid record mode %q", opts.Mode)
	}

	c := &Client{
		target:  opts.Target,
		mode:    opts.Mode,
		config:  client.DefaultConfig(),
		logger:  opts.Logger,
		metrics: opts.Metrics,
	}
	if c.logger == nil {
		c.logger = logging.Nop()
	}
	c.logger = logging.Component(c.logger, "replay")
	if opts.Config != nil {
		c.config = *opts.Config
	}
	c.transport = opts.Transport
	if c.transport == nil {
		c.transport = client.NewDirect(client.WithDirectLogger(c.logger), client.WithDirectMetrics(c.metrics))
	}
	return c, nil
}

// NewFile creates a NewEpisodes client recording to a single file.
func NewFile(path string) (*Client, error) {
	return New(Options{Target: File(path)})
}

// NewDir creates a NewEpisodes client recording into a directory.
func NewDir(dir string) (*Client, error) {
	return New(Options{Target: Dir(dir)})
}

// Target returns the recording target.
func (c *Client) Target() Target {
	return c.target
}

// Mode returns the record mode.
func (c *Client) Mode() RecordMode {
	return c.mode
}

// Config returns the client's default configuration.
func (c *Client) Config() client.Config {
	return c.config
}

// SetConfig replaces the client's default configuration.
func (c *Client) SetConfig(cfg client.Config) {
	c.config = cfg
}

// ForceRecordNext makes the next Execute call perform a live request and
// overwrite any stored entry, even if the request is unchanged. The flag is
// consumed by that call whatever its outcome. In OnlyReplay mode the flag is
// left unset and a *PolicyViolationError is returned.
func (c *Client) ForceRecordNext() error {
	if !c.mode.AllowsRecording() {
		c.metrics.RecordPolicyViolation(string(ReasonForceRecord))
		return &PolicyViolationError{Reason: ReasonForceRecord}
	}
	c.forceRecord.Store(true)
	return nil
}

// MustForceRecordNext is like ForceRecordNext but panics in OnlyReplay mode.
func (c *Client) MustForceRecordNext() {
	if err := c.ForceRecordNext(); err != nil {
		panic(err)
	}
}

// Execute answers req from disk when possible and otherwise, if the mode
// allows it, performs the request live and records the result.
func (c *Client) Execute(ctx context.Context, cfg *client.Config, req *client.Request) (*client.Response, error) {
	if req == nil {
		return nil, errors.New("nil request")
	}
	fp, normalized, err := fingerprint.Compute(req)
	if err != nil {
		return nil, err
	}
	path := c.target.Path(fp)
	force := c.forceRecord.Swap(false)

	c.logger.Debug("executing request",
		"method", normalized.Method,
		"url", normalized.URL,
		"fingerprint", fp.Hex(),
		"path", path,
		"force", force,
	)

	reason := missForced
	if !force {
		entry, err := Load(path)
		if err != nil {
			return nil, err
		}
		switch {
		case entry == nil:
			c.logger.Debug("no replayable entry", "path", path)
			reason = missAbsent
		case entry.Request.Equal(normalized):
			c.logger.Debug("replaying stored response", "path", path)
			c.metrics.RecordReplayHit()
			return entry.Response.Clone(), nil
		default:
			c.logger.Warn("request has changed, recording again",
				"path", path,
				"url", normalized.URL,
				"storedUrl", entry.Request.URL,
			)
			reason = missChanged
		}
	}
	c.metrics.RecordReplayMiss(reason)

	if !c.mode.AllowsRecording() {
		c.metrics.RecordPolicyViolation(string(ReasonMiss))
		return nil, &PolicyViolationError{Reason: ReasonMiss, URL: normalized.URL, Path: path}
	}

	conf := c.config
	if cfg != nil {
		conf = *cfg
	}

	resp, err := c.transport.Execute(ctx, &conf, req)
	if err != nil {
		return nil, err
	}

	if err := Save(path, &Entry{Request: normalized, Response: resp}); err != nil {
		return nil, err
	}
	c.metrics.RecordRecording()
	c.logger.Debug("recorded response", "path", path, "status", resp.StatusCode)

	return resp, nil
}

// Generic wraps c as a client.Generic.
func (c *Client) Generic() *client.Generic {
	g, _ := client.Wrap(client.KindReplay, c)
	return g
}

// GenericFile creates a client.Generic replaying from a single file.
func GenericFile(path string) (*client.Generic, error) {
	c, err := NewFile(path)
	if err != nil {
		return nil, err
	}
	return c.Generic(), nil
}

// GenericDir creates a client.Generic replaying from a directory.
func GenericDir(dir string) (*client.Generic, error) {
	c, err := NewDir(dir)
	if err != nil {
		return nil, err
	}
	return c.Generic(), nil
}
