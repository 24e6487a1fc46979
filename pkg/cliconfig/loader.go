package cliconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// GlobalConfigDir is the directory for global config
	GlobalConfigDir = "httpreplay"

	// DotEnvFileName is loaded from the working directory before env vars are read.
	DotEnvFileName = ".env"
)

// LocalConfigFileNames are the names to search for local config (in order).
var LocalConfigFileNames = []string{".httpreplay.yaml", ".httpreplay.yml"}

// GlobalConfigFileNames are the names to search for global config (in order).
var GlobalConfigFileNames = []string{"config.yaml", "config.yml"}

// Paths locates the files LoadFrom reads.
type Paths struct {
	// WorkDir is searched for local config files and the .env file.
	WorkDir string
	// ConfigDir is the user config directory; global config lives in
	// ConfigDir/httpreplay. Empty disables global config.
	ConfigDir string
}

// DefaultPaths returns the current directory and os.UserConfigDir, which
// honors XDG_CONFIG_HOME.
func DefaultPaths() Paths {
	p := Paths{}
	if cwd, err := os.Getwd(); err == nil {
		p.WorkDir = cwd
	}
	if dir, err := os.UserConfigDir(); err == nil {
		p.ConfigDir = dir
	}
	return p
}

// FindLocalConfig searches dir for .httpreplay.yaml or .httpreplay.yml.
// Returns empty string if not found.
func FindLocalConfig(dir string) string {
	return findFirst(dir, LocalConfigFileNames)
}

// FindGlobalConfig returns the path to the global config file inside
// configDir. Returns empty string if not found.
func FindGlobalConfig(configDir string) string {
	if configDir == "" {
		return ""
	}
	return findFirst(filepath.Join(configDir, GlobalConfigDir), GlobalConfigFileNames)
}

// GlobalConfigSearchPaths returns the paths that will be searched for global config.
func GlobalConfigSearchPaths(configDir string) []string {
	paths := make([]string, len(GlobalConfigFileNames))
	for i, name := range GlobalConfigFileNames {
		paths[i] = filepath.Join(configDir, GlobalConfigDir, name)
	}
	return paths
}

func findFirst(dir string, names []string) string {
	if dir == "" {
		return ""
	}
	for _, name := range names {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// LoadConfigFile loads a CLIConfig from a YAML file. Keys present in the file
// are recorded in SetFields.
func LoadConfigFile(path string) (*CLIConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, newConfigError(path, err)
	}

	var cfg CLIConfig
	// an empty file decodes to a zero node
	if node.Kind != 0 {
		if err := node.Decode(&cfg); err != nil {
			return nil, newConfigError(path, err)
		}
	}

	cfg.Sources = make(map[string]string)
	cfg.SetFields = make(map[string]bool)
	if len(node.Content) > 0 && node.Content[0].Kind == yaml.MappingNode {
		mapping := node.Content[0]
		for i := 0; i+1 < len(mapping.Content); i += 2 {
			cfg.SetFields[mapping.Content[i].Value] = true
		}
	}
	return &cfg, nil
}

// ConfigError represents a configuration file error with location info.
type ConfigError struct {
	Path    string
	Line    int
	Message string
}

func (e *ConfigError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s (line %d): %s", e.Path, e.Line, e.Message)
	}
	return e.Path + ": " + e.Message
}

func newConfigError(path string, err error) *ConfigError {
	ce := &ConfigError{Path: path, Message: err.Error()}
	var typeErr *yaml.TypeError
	if errors.As(err, &typeErr) && len(typeErr.Errors) > 0 {
		ce.Message = typeErr.Errors[0]
	}
	var n int
	if _, scanErr := fmt.Sscanf(ce.Message, "yaml: line %d:", &n); scanErr == nil {
		ce.Line = n
	} else if _, scanErr := fmt.Sscanf(ce.Message, "line %d:", &n); scanErr == nil {
		ce.Line = n
	}
	return ce
}

// LoadAll loads configuration from all sources found via DefaultPaths.
func LoadAll() (*CLIConfig, error) {
	return LoadFrom(DefaultPaths())
}

// LoadFrom loads configuration from all sources and merges them.
// Precedence: env > local config > global config > defaults. Flags are
// applied by the caller.
func LoadFrom(p Paths) (*CLIConfig, error) {
	cfg := NewDefault()

	if globalPath := FindGlobalConfig(p.ConfigDir); globalPath != "" {
		globalCfg, err := LoadConfigFile(globalPath)
		if err != nil {
			return nil, err
		}
		MergeConfig(cfg, globalCfg, SourceGlobal)
	}

	if localPath := FindLocalConfig(p.WorkDir); localPath != "" {
		localCfg, err := LoadConfigFile(localPath)
		if err != nil {
			return nil, err
		}
		MergeConfig(cfg, localCfg, SourceLocal)
	}

	if err := LoadDotEnv(p.WorkDir); err != nil {
		return nil, err
	}
	if err := LoadEnvConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadDotEnv loads dir/.env into the process environment. Variables that are
// already set are left untouched. A missing file is not an error.
func LoadDotEnv(dir string) error {
	if dir == "" {
		return nil
	}
	path := filepath.Join(dir, DotEnvFileName)
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}
