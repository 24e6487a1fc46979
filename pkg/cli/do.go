package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/getmockd/httpreplay/internal/fingerprint"
	"github.com/getmockd/httpreplay/pkg/cli/internal/flags"
	"github.com/getmockd/httpreplay/pkg/client"
	"github.com/getmockd/httpreplay/pkg/metrics"
	"github.com/getmockd/httpreplay/pkg/replay"
	"github.com/getmockd/httpreplay/pkg/stub"
)

var (
	doHeaders     flags.Header
	doBody        string
	doForceRecord bool
	doInclude     bool

	flagMode          string
	flagStubs         []string
	flagStrictness    string
	flagDefault       string
	flagRedirectLimit int
)

var doCmd = &cobra.Command{
	Use:   "do <METHOD> <URL>",
	Short: "Run one request through the replay engine",
	Long: `Run one request through the replay engine.

A recorded response is replayed while the request is unchanged. Otherwise the
request is performed live and recorded, unless the mode is only-replay.

When stub files are configured (--stubs or stubFiles), live requests are
answered by matching stubs first.`,
	Example: `  # Record once, replay afterwards
  httpreplay do GET https://api.example.com/users

  # Fail instead of touching the network
  httpreplay do --mode only-replay POST https://api.example.com/users --body '{"name":"ada"}'`,
	Args: cobra.ExactArgs(2),
	RunE: runDo,
}

func init() {
	rootCmd.AddCommand(doCmd)

	f := doCmd.Flags()
	f.VarP(&doHeaders, "header", "H", "Request header as 'Name: value' (repeatable)")
	f.StringVarP(&doBody, "body", "d", "", "Request body")
	f.StringVar(&flagMode, "mode", "", "Record mode: new-episodes or only-replay")
	f.BoolVar(&doForceRecord, "force-record", false, "Perform and record the request even if a recording exists")
	f.BoolVarP(&doInclude, "include", "i", false, "Print response headers")
	f.StringSliceVar(&flagStubs, "stubs", nil, "Stub fixture globs answering live requests")
	f.StringVar(&flagStrictness, "strictness", "", "Stub strictness (with --stubs)")
	f.StringVar(&flagDefault, "default", "", "Behavior for unmatched stubs: perform-request, panic, error")
	f.IntVar(&flagRedirectLimit, "redirect-limit", 0, "Maximum redirects to follow for live requests")
}

// doResult is the JSON form of a completed request.
type doResult struct {
	Status      int               `json:"status"`
	URL         string            `json:"url"`
	Headers     map[string]string `json:"headers"`
	Body        string            `json:"body"`
	Fingerprint string            `json:"fingerprint"`
	Cassette    string            `json:"cassette"`
}

func runDo(cmd *cobra.Command, args []string) error {
	log := commandLogger(cmd)

	mode, err := cfg.RecordMode()
	if err != nil {
		return err
	}
	clientCfg := cfg.ClientConfig()

	transport, err := liveTransport(clientCfg)
	if err != nil {
		return err
	}

	rc, err := replay.New(replay.Options{
		Target:    cfg.Target(),
		Mode:      mode,
		Transport: transport,
		Config:    &clientCfg,
		Logger:    logger,
		Metrics:   metrics.Default(),
	})
	if err != nil {
		return err
	}
	if doForceRecord {
		if err := rc.ForceRecordNext(); err != nil {
			return err
		}
	}

	b := client.NewRequestBuilder(rc, args[0], args[1]).Headers(doHeaders.Header())
	if cmd.Flags().Changed("body") {
		b.BodyString(doBody)
	}

	sum, _, err := fingerprint.Compute(b.Request())
	if err != nil {
		return err
	}
	cassette := rc.Target().Path(sum)
	log.Debug("executing request", "method", args[0], "url", args[1], "cassette", cassette)

	resp, err := b.Send(cmd.Context())
	if err != nil {
		return err
	}

	result := doResult{
		Status:      resp.StatusCode,
		URL:         resp.URL,
		Headers:     client.CanonicalHeaders(resp.Header),
		Body:        string(resp.Body),
		Fingerprint: sum.Hex(),
		Cassette:    cassette,
	}
	return printResult(cmd, result, func(w io.Writer) {
		fmt.Fprintln(w, resp.Status())
		if doInclude {
			for _, name := range client.SortedHeaderNames(result.Headers) {
				fmt.Fprintf(w, "%s: %s\n", name, result.Headers[name])
			}
			fmt.Fprintln(w)
		}
		if len(resp.Body) > 0 {
			fmt.Fprintln(w, result.Body)
		}
	})
}

// liveTransport returns the transport used on a replay miss: the network,
// fronted by a stub client when stub files are configured.
func liveTransport(clientCfg client.Config) (client.Transport, error) {
	direct := client.NewDirect(
		client.WithDirectConfig(clientCfg),
		client.WithDirectLogger(logger),
		client.WithDirectMetrics(metrics.Default()),
	)
	if len(cfg.StubFiles) == 0 {
		return direct, nil
	}

	settings, err := cfg.StubSettings()
	if err != nil {
		return nil, err
	}
	sc, err := stub.New(settings,
		stub.WithTransport(direct),
		stub.WithConfig(clientCfg),
		stub.WithLogger(logger),
		stub.WithMetrics(metrics.Default()),
	)
	if err != nil {
		return nil, err
	}
	if _, err := sc.LoadGlob(cfg.StubFiles...); err != nil {
		return nil, err
	}
	return sc, nil
}
