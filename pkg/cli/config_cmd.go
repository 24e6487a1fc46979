package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/getmockd/httpreplay/pkg/cli/internal/output"
	"github.com/getmockd/httpreplay/pkg/cliconfig"
)

var configYAML bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration and where each value came from",
	Long: `Show the effective configuration after merging defaults, the global and local
config files, environment variables (including .env) and flags.`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.Flags().BoolVar(&configYAML, "yaml", false, "Print the merged configuration as YAML")
}

type configResult struct {
	Config  *cliconfig.CLIConfig `json:"config"`
	Sources map[string]string    `json:"sources"`
	Files   []configFile         `json:"files"`
}

// configFile is one config file location that was searched.
type configFile struct {
	Scope string `json:"scope"`
	Path  string `json:"path"`
	Found bool   `json:"found"`
}

// configFiles lists the global and local config paths in search order.
func configFiles(p cliconfig.Paths) []configFile {
	var files []configFile
	add := func(scope, path string) {
		_, err := os.Stat(path)
		files = append(files, configFile{Scope: scope, Path: path, Found: err == nil})
	}
	if p.ConfigDir != "" {
		for _, path := range cliconfig.GlobalConfigSearchPaths(p.ConfigDir) {
			add(cliconfig.SourceGlobal, path)
		}
	}
	for _, name := range cliconfig.LocalConfigFileNames {
		add(cliconfig.SourceLocal, filepath.Join(p.WorkDir, name))
	}
	return files
}

// configRow is one line of the text listing.
type configRow struct {
	key   string
	value string
}

func configRows(c *cliconfig.CLIConfig) []configRow {
	return []configRow{
		{"cassetteDir", c.CassetteDir},
		{"cassetteFile", c.CassetteFile},
		{"mode", c.Mode},
		{"strictness", c.Strictness},
		{"default", c.Default},
		{"stubFiles", strings.Join(c.StubFiles, ",")},
		{"timeout", c.Timeout.String()},
		{"redirectLimit", fmt.Sprint(c.RedirectLimit)},
		{"gzip", fmt.Sprint(c.Gzip)},
		{"logLevel", c.LogLevel},
		{"logFormat", c.LogFormat},
		{"json", fmt.Sprint(c.JSON)},
	}
}

func runConfig(cmd *cobra.Command, _ []string) error {
	if configYAML && !jsonOutput {
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("marshaling config: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "# Resolved httpreplay configuration")
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}

	result := configResult{Config: cfg, Sources: cfg.Sources, Files: configFiles(cliconfig.DefaultPaths())}
	return printResult(cmd, result, func(w io.Writer) {
		tw := output.Table(w)
		fmt.Fprintln(tw, "KEY\tVALUE\tSOURCE")
		for _, row := range configRows(cfg) {
			value, source := row.value, cfg.Sources[row.key]
			if value == "" {
				value = "-"
			}
			if source == "" {
				source = "-"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\n", row.key, value, source)
		}
		_ = tw.Flush()

		fmt.Fprintln(w)
		fmt.Fprintln(w, "Config files searched:")
		for _, f := range result.Files {
			mark := " "
			if f.Found {
				mark = "*"
			}
			fmt.Fprintf(w, "  %s %-6s %s\n", mark, f.Scope, f.Path)
		}
	})
}
