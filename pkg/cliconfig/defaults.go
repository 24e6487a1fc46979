package cliconfig

import (
	"time"

	"github.com/getmockd/httpreplay/pkg/client"
	"github.com/getmockd/httpreplay/pkg/replay"
	"github.com/getmockd/httpreplay/pkg/stub"
)

// DefaultCassetteDir is where cassettes are recorded unless configured otherwise.
const DefaultCassetteDir = "testdata/cassettes"

// DefaultTimeout bounds each live request.
const DefaultTimeout = 30 * time.Second

// DefaultLogLevel keeps re-recording warnings visible.
const DefaultLogLevel = "warn"

// DefaultLogFormat is the default log output format.
const DefaultLogFormat = "text"

// NewDefault creates a new CLIConfig with default values.
func NewDefault() *CLIConfig {
	cfg := &CLIConfig{
		CassetteDir:   DefaultCassetteDir,
		Mode:          string(replay.NewEpisodes),
		Strictness:    string(stub.Full),
		Default:       string(stub.DefaultError),
		Timeout:       DefaultTimeout,
		RedirectLimit: client.DefaultRedirectLimit,
		Gzip:          true,
		LogLevel:      DefaultLogLevel,
		LogFormat:     DefaultLogFormat,
		Sources:       make(map[string]string),
	}

	// Mark all as default source
	for _, key := range []string{
		"cassetteDir", "mode", "strictness", "default", "timeout",
		"redirectLimit", "gzip", "logLevel", "logFormat", "json",
	} {
		cfg.Sources[key] = SourceDefault
	}

	return cfg
}
