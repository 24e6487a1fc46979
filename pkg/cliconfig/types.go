// Package cliconfig provides configuration types and loading for the httpreplay CLI.
package cliconfig

import "time"

// CLIConfig represents the complete configuration for the httpreplay CLI.
// Configuration values can come from multiple sources with the following precedence:
// 1. Command-line flags (highest priority)
// 2. Environment variables (a .env file in the working directory is loaded first)
// 3. Local config file (.httpreplay.yaml in current directory)
// 4. Global config file (~/.config/httpreplay/config.yaml)
// 5. Default values (lowest priority)
type CLIConfig struct {
	// Replay settings
	CassetteDir  string `yaml:"cassetteDir" json:"cassetteDir"`
	CassetteFile string `yaml:"cassetteFile,omitempty" json:"cassetteFile,omitempty"`
	Mode         string `yaml:"mode" json:"mode"`

	// Stub settings
	Strictness string   `yaml:"strictness" json:"strictness"`
	Default    string   `yaml:"default" json:"default"`
	StubFiles  []string `yaml:"stubFiles,omitempty" json:"stubFiles,omitempty"`

	// Live transport settings
	Timeout       time.Duration `yaml:"timeout" json:"timeout"`
	RedirectLimit int           `yaml:"redirectLimit" json:"redirectLimit"`
	Gzip          bool          `yaml:"gzip" json:"gzip"`

	// Logging settings
	LogLevel  string `yaml:"logLevel" json:"logLevel"`
	LogFormat string `yaml:"logFormat" json:"logFormat"`

	// Output settings
	JSON bool `yaml:"json" json:"json"`

	// Sources tracks where each value came from (for debugging)
	Sources map[string]string `yaml:"-" json:"-"`

	// SetFields records the YAML keys present in a loaded file, so that
	// explicit zero values (false, 0) can be told apart from absent ones.
	SetFields map[string]bool `yaml:"-" json:"-"`
}

// ConfigSource identifies where a config value originated.
const (
	SourceDefault = "default"
	SourceEnv     = "env"
	SourceGlobal  = "global"
	SourceLocal   = "local"
	SourceFlag    = "flag"
)
