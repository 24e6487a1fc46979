package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/getmockd/httpreplay/internal/fingerprint"
	"github.com/getmockd/httpreplay/pkg/cli/internal/flags"
	"github.com/getmockd/httpreplay/pkg/client"
)

var (
	fpHeaders flags.Header
	fpBody    string
)

var fingerprintCmd = &cobra.Command{
	Use:   "fingerprint <METHOD> <URL>",
	Short: "Print a request's fingerprint and cassette path",
	Long: `Print the fingerprint of a request and the cassette file it is recorded in.

Requests differing only in header order, header name case, method case or
scheme/host case share a fingerprint.`,
	Args: cobra.ExactArgs(2),
	RunE: runFingerprint,
}

func init() {
	rootCmd.AddCommand(fingerprintCmd)

	fingerprintCmd.Flags().VarP(&fpHeaders, "header", "H", "Request header as 'Name: value' (repeatable)")
	fingerprintCmd.Flags().StringVarP(&fpBody, "body", "d", "", "Request body")
}

type fingerprintResult struct {
	Fingerprint string `json:"fingerprint"`
	Cassette    string `json:"cassette"`
	Method      string `json:"method"`
	URL         string `json:"url"`
}

func runFingerprint(cmd *cobra.Command, args []string) error {
	req := client.NewRequest(args[0], args[1], nil)
	req.Header = fpHeaders.Header()
	if cmd.Flags().Changed("body") {
		req.Body = []byte(fpBody)
	}

	sum, normalized, err := fingerprint.Compute(req)
	if err != nil {
		return err
	}

	result := fingerprintResult{
		Fingerprint: sum.Hex(),
		Cassette:    cfg.Target().Path(sum),
		Method:      normalized.Method,
		URL:         normalized.URL,
	}
	return printResult(cmd, result, func(w io.Writer) {
		fmt.Fprintf(w, "fingerprint: %s\n", result.Fingerprint)
		fmt.Fprintf(w, "cassette:    %s\n", result.Cassette)
	})
}
