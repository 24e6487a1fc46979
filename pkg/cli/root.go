package cli

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/getmockd/httpreplay/pkg/cliconfig"
	"github.com/getmockd/httpreplay/pkg/logging"
	"github.com/getmockd/httpreplay/pkg/metrics"
)

var (
	// Persistent flags available to all subcommands
	jsonOutput    bool
	showMetrics   bool
	flagDir       string
	flagFile      string
	flagLogLevel  string
	flagLogFormat string
	flagTimeout   time.Duration

	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// Resolved by loadConfig before any command runs.
var (
	cfg    *cliconfig.CLIConfig
	logger = logging.Nop()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "httpreplay",
	Short: "httpreplay records, replays and stubs HTTP requests",
	Long: `httpreplay records HTTP responses to disk and replays them while the request
is unchanged, so tests can run without the network.

Configuration can be provided via flags, environment variables (HTTPREPLAY_*),
a .env file, a local .httpreplay.yaml or a global config file in
$XDG_CONFIG_HOME/httpreplay/config.yaml.`,
	// No Run function here means 'httpreplay' with no args will print help text by default.
	SilenceUsage:      true,
	SilenceErrors:     true, // We handle errors in Run()
	PersistentPreRunE: loadConfig,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	os.Exit(Run())
}

// Run executes the root command and returns the process exit code.
func Run() int {
	err := rootCmd.Execute()
	if c := metrics.Default(); showMetrics && c != nil {
		if werr := c.WriteText(os.Stderr); werr != nil {
			fmt.Fprintln(os.Stderr, werr)
		}
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

func init() {
	// Define persistent flags that apply globally to all httpreplay commands
	pf := rootCmd.PersistentFlags()
	pf.BoolVar(&jsonOutput, "json", false, "Output command results in JSON format")
	pf.BoolVar(&showMetrics, "metrics", false, "Write engine metrics to stderr when the command finishes")
	pf.StringVar(&flagDir, "dir", "", "Cassette directory (default "+cliconfig.DefaultCassetteDir+")")
	pf.StringVar(&flagFile, "file", "", "Single cassette file; takes precedence over --dir")
	pf.StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.StringVar(&flagLogFormat, "log-format", "", "Log format: text or json")
	pf.DurationVar(&flagTimeout, "timeout", 0, "Timeout for live requests")
}

// loadConfig resolves the layered configuration, applies changed flags on top
// and prepares the logger and metrics collector.
func loadConfig(cmd *cobra.Command, _ []string) error {
	c, err := cliconfig.LoadAll()
	if err != nil {
		return err
	}
	applyFlags(cmd, c)
	if err := c.Validate(); err != nil {
		return err
	}

	cfg = c
	logCfg := c.LoggingConfig()
	logCfg.Output = cmd.ErrOrStderr()
	logger = logging.New(logCfg)
	if showMetrics {
		metrics.Init()
	}
	return nil
}

// applyFlags copies explicitly set flags into c and marks them as flag-sourced.
func applyFlags(cmd *cobra.Command, c *cliconfig.CLIConfig) {
	set := func(name, key string, apply func()) {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			apply()
			c.Sources[key] = cliconfig.SourceFlag
		}
	}

	set("dir", "cassetteDir", func() {
		c.CassetteDir = flagDir
		if !cmd.Flags().Changed("file") {
			c.CassetteFile = ""
		}
	})
	set("file", "cassetteFile", func() { c.CassetteFile = flagFile })
	set("json", "json", func() { c.JSON = jsonOutput })
	set("log-level", "logLevel", func() { c.LogLevel = flagLogLevel })
	set("log-format", "logFormat", func() { c.LogFormat = flagLogFormat })
	set("timeout", "timeout", func() { c.Timeout = flagTimeout })
	set("mode", "mode", func() { c.Mode = flagMode })
	set("strictness", "strictness", func() { c.Strictness = flagStrictness })
	set("default", "default", func() { c.Default = flagDefault })
	set("stubs", "stubFiles", func() { c.StubFiles = append([]string(nil), flagStubs...) })
	set("redirect-limit", "redirectLimit", func() { c.RedirectLimit = flagRedirectLimit })

	// A config file or env var may enable JSON output as well
	jsonOutput = c.JSON
}

// commandLogger tags the CLI logger with the command name.
func commandLogger(cmd *cobra.Command) *slog.Logger {
	return logging.Component(logger, "cli").With("command", cmd.Name())
}
