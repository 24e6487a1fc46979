package cliconfig

import (
	"errors"
	"fmt"

	"github.com/getmockd/httpreplay/pkg/client"
	"github.com/getmockd/httpreplay/pkg/logging"
	"github.com/getmockd/httpreplay/pkg/replay"
	"github.com/getmockd/httpreplay/pkg/stub"
)

// Validate checks that every value can be used to build the engines.
func (c *CLIConfig) Validate() error {
	if c.CassetteDir == "" && c.CassetteFile == "" {
		return errors.New("one of cassetteDir or cassetteFile must be set")
	}
	if _, err := replay.ParseRecordMode(c.Mode); err != nil {
		return err
	}
	if _, err := stub.ParseStrictness(c.Strictness); err != nil {
		return err
	}
	if _, err := stub.ParseDefault(c.Default); err != nil {
		return err
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if _, err := logging.ParseFormat(c.LogFormat); err != nil {
		return err
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout %s must not be negative", c.Timeout)
	}
	if c.RedirectLimit < 0 || c.RedirectLimit > 100 {
		return fmt.Errorf("redirectLimit %d is out of range (0-100)", c.RedirectLimit)
	}
	return nil
}

// Target returns the replay target. A cassette file takes precedence over
// the cassette directory.
func (c *CLIConfig) Target() replay.Target {
	if c.CassetteFile != "" {
		return replay.File(c.CassetteFile)
	}
	return replay.Dir(c.CassetteDir)
}

// RecordMode returns the parsed record mode.
func (c *CLIConfig) RecordMode() (replay.RecordMode, error) {
	return replay.ParseRecordMode(c.Mode)
}

// StubSettings returns the parsed stub settings.
func (c *CLIConfig) StubSettings() (stub.Settings, error) {
	strictness, err := stub.ParseStrictness(c.Strictness)
	if err != nil {
		return stub.Settings{}, err
	}
	def, err := stub.ParseDefault(c.Default)
	if err != nil {
		return stub.Settings{}, err
	}
	return stub.Settings{Strictness: strictness, Default: def}, nil
}

// ClientConfig returns the live transport configuration.
func (c *CLIConfig) ClientConfig() client.Config {
	cfg := client.DefaultConfig()
	cfg.Timeout = c.Timeout
	cfg.RedirectLimit = c.RedirectLimit
	cfg.Gzip = c.Gzip
	return cfg
}

// LoggingConfig returns the logging configuration. Invalid values fall back
// to the defaults; call Validate to report them.
func (c *CLIConfig) LoggingConfig() logging.Config {
	cfg := logging.DefaultConfig()
	if level, err := logging.ParseLevel(c.LogLevel); err == nil {
		cfg.Level = level
	}
	if format, err := logging.ParseFormat(c.LogFormat); err == nil {
		cfg.Format = format
	}
	return cfg
}
