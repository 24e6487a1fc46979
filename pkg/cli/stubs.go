package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/getmockd/httpreplay/pkg/stub"
)

var stubsCmd = &cobra.Command{
	Use:   "stubs",
	Short: "Work with stub fixture files",
}

var stubsValidateCmd = &cobra.Command{
	Use:   "validate [glob...]",
	Short: "Load stub fixtures and report registration errors",
	Long: `Load stub fixtures and report every stub that cannot be registered under the
configured strictness. Without arguments the configured stubFiles are used.`,
	Example: `  httpreplay stubs validate 'testdata/stubs/**/*.yaml' --strictness method-url`,
	RunE: runStubsValidate,
}

func init() {
	rootCmd.AddCommand(stubsCmd)
	stubsCmd.AddCommand(stubsValidateCmd)

	stubsValidateCmd.Flags().StringVar(&flagStrictness, "strictness", "", "Stub strictness: full, body-method-url, headers-method-url, method-url, url")
}

type stubsValidateResult struct {
	Strictness string   `json:"strictness"`
	Registered int      `json:"registered"`
	Errors     []string `json:"errors"`
	Valid      bool     `json:"valid"`
}

func runStubsValidate(cmd *cobra.Command, args []string) error {
	patterns := args
	if len(patterns) == 0 {
		patterns = cfg.StubFiles
	}
	if len(patterns) == 0 {
		return ErrNoStubFiles
	}

	settings, err := cfg.StubSettings()
	if err != nil {
		return err
	}
	sc, err := stub.New(settings, stub.WithLogger(logger))
	if err != nil {
		return err
	}

	n, loadErr := sc.LoadGlob(patterns...)
	result := stubsValidateResult{
		Strictness: string(settings.Strictness),
		Registered: n,
		Errors:     []string{},
	}
	for _, e := range multierr.Errors(loadErr) {
		result.Errors = append(result.Errors, e.Error())
	}
	result.Valid = len(result.Errors) == 0

	if err := printResult(cmd, result, func(w io.Writer) {
		for _, e := range result.Errors {
			fmt.Fprintf(w, "FAIL %s\n", e)
		}
		fmt.Fprintf(w, "%d stub(s) registered, %d error(s) (strictness %s)\n",
			result.Registered, len(result.Errors), result.Strictness)
	}); err != nil {
		return err
	}

	if !result.Valid {
		return ErrStubsInvalid
	}
	return nil
}
