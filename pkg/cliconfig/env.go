package cliconfig

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment variable names
const (
	EnvCassetteDir   = "HTTPREPLAY_CASSETTE_DIR"
	EnvCassetteFile  = "HTTPREPLAY_CASSETTE_FILE"
	EnvMode          = "HTTPREPLAY_MODE"
	EnvStrictness    = "HTTPREPLAY_STRICTNESS"
	EnvDefault       = "HTTPREPLAY_DEFAULT"
	EnvStubFiles     = "HTTPREPLAY_STUB_FILES"
	EnvTimeout       = "HTTPREPLAY_TIMEOUT"
	EnvRedirectLimit = "HTTPREPLAY_REDIRECT_LIMIT"
	EnvGzip          = "HTTPREPLAY_GZIP"
	EnvLogLevel      = "HTTPREPLAY_LOG_LEVEL"
	EnvLogFormat     = "HTTPREPLAY_LOG_FORMAT"
	EnvJSON          = "HTTPREPLAY_JSON"
)

// LoadEnvConfig loads configuration from environment variables.
// It only sets values that are present in the environment. Values that
// cannot be parsed are reported instead of being silently ignored.
func LoadEnvConfig(cfg *CLIConfig) error {
	if cfg.Sources == nil {
		cfg.Sources = make(map[string]string)
	}

	setString := func(env, key string, dst *string) {
		if v := os.Getenv(env); v != "" {
			*dst = v
			cfg.Sources[key] = SourceEnv
		}
	}

	setString(EnvCassetteDir, "cassetteDir", &cfg.CassetteDir)
	setString(EnvCassetteFile, "cassetteFile", &cfg.CassetteFile)
	setString(EnvMode, "mode", &cfg.Mode)
	setString(EnvStrictness, "strictness", &cfg.Strictness)
	setString(EnvDefault, "default", &cfg.Default)
	setString(EnvLogLevel, "logLevel", &cfg.LogLevel)
	setString(EnvLogFormat, "logFormat", &cfg.LogFormat)

	// HTTPREPLAY_STUB_FILES is a comma separated list of globs
	if v := os.Getenv(EnvStubFiles); v != "" {
		cfg.StubFiles = nil
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				cfg.StubFiles = append(cfg.StubFiles, part)
			}
		}
		cfg.Sources["stubFiles"] = SourceEnv
	}

	// HTTPREPLAY_TIMEOUT accepts a duration ("30s") or whole seconds ("30")
	if v := os.Getenv(EnvTimeout); v != "" {
		d, err := parseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTimeout, err)
		}
		cfg.Timeout = d
		cfg.Sources["timeout"] = SourceEnv
	}

	if v := os.Getenv(EnvRedirectLimit); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: invalid integer %q", EnvRedirectLimit, v)
		}
		cfg.RedirectLimit = n
		cfg.Sources["redirectLimit"] = SourceEnv
	}

	if v := os.Getenv(EnvGzip); v != "" {
		cfg.Gzip = parseBool(v)
		cfg.Sources["gzip"] = SourceEnv
	}

	if v := os.Getenv(EnvJSON); v != "" {
		cfg.JSON = parseBool(v)
		cfg.Sources["json"] = SourceEnv
	}

	return nil
}

func parseBool(v string) bool {
	switch strings.ToLower(v) {
	case "true", "1", "yes", "on":
		return true
	default:
		return false
	}
}

func parseDuration(v string) (time.Duration, error) {
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", v)
	}
	return d, nil
}
