package cli

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"

	"github.com/getmockd/httpreplay/pkg/cli/internal/output"
	"github.com/getmockd/httpreplay/pkg/client"
	"github.com/getmockd/httpreplay/pkg/replay"
)

var (
	showQuery  string
	pruneForce bool
)

var cassettesCmd = &cobra.Command{
	Use:     "cassettes",
	Aliases: []string{"cassette"},
	Short:   "Inspect and clean recorded cassettes",
}

var cassettesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the cassettes in the cassette directory",
	Args:  cobra.NoArgs,
	RunE:  runCassettesList,
}

var cassettesShowCmd = &cobra.Command{
	Use:   "show <file>",
	Short: "Show a recorded cassette",
	Long: `Show a recorded cassette. The file is looked up as given and then inside the
cassette directory.

--query evaluates a JSONPath expression against the stored document, e.g.
  httpreplay cassettes show 1f2e3d.json --query '$.response.status'`,
	Args: cobra.ExactArgs(1),
	RunE: runCassettesShow,
}

var cassettesPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete stale and corrupt cassettes",
	Long: `Delete cassettes written with another format version and documents that
cannot be decoded. Recording never deletes anything on its own.`,
	Args: cobra.NoArgs,
	RunE: runCassettesPrune,
}

func init() {
	rootCmd.AddCommand(cassettesCmd)
	cassettesCmd.AddCommand(cassettesListCmd, cassettesShowCmd, cassettesPruneCmd)

	cassettesShowCmd.Flags().StringVarP(&showQuery, "query", "q", "", "JSONPath expression evaluated against the document")
	cassettesPruneCmd.Flags().BoolVarP(&pruneForce, "force", "f", false, "Delete without asking for confirmation")
}

// cassetteInfo is one row of the cassette listing.
type cassetteInfo struct {
	File    string `json:"file"`
	Method  string `json:"method,omitempty"`
	URL     string `json:"url,omitempty"`
	Status  int    `json:"status,omitempty"`
	Version int    `json:"version"`
	State   string `json:"state"`
	Error   string `json:"error,omitempty"`
}

// stateUnreadable marks a path that could not be read at all. Such paths are
// listed but never pruned.
const stateUnreadable = "error"

// scanCassettes inspects every JSON document below dir. A missing directory
// yields no cassettes.
func scanCassettes(dir string) ([]cassetteInfo, error) {
	matches, err := doublestar.Glob(os.DirFS(dir), "**/*.json")
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}
	sort.Strings(matches)

	infos := make([]cassetteInfo, 0, len(matches))
	for _, rel := range matches {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		row := cassetteInfo{File: path, Version: -1}

		info, err := replay.Inspect(path)
		if err != nil {
			row.State = stateUnreadable
			row.Error = err.Error()
			infos = append(infos, row)
			continue
		}
		row.State = string(info.State)
		row.Version = info.Version
		if info.Err != nil {
			row.Error = info.Err.Error()
		}
		if info.Entry != nil {
			row.Method = info.Entry.Request.Method
			row.URL = info.Entry.Request.URL
			row.Status = info.Entry.Response.StatusCode
		}
		infos = append(infos, row)
	}
	return infos, nil
}

func runCassettesList(cmd *cobra.Command, _ []string) error {
	infos, err := scanCassettes(cfg.CassetteDir)
	if err != nil {
		return err
	}

	return printResult(cmd, infos, func(w io.Writer) {
		if len(infos) == 0 {
			fmt.Fprintf(w, "No cassettes in %s\n", cfg.CassetteDir)
			return
		}
		tw := output.Table(w)
		fmt.Fprintln(tw, "FILE\tMETHOD\tURL\tSTATUS\tVERSION\tSTATE")
		for _, c := range infos {
			method, url, status, version := "-", "-", "-", "-"
			if c.Method != "" {
				method, url, status = c.Method, c.URL, strconv.Itoa(c.Status)
			}
			if c.Version >= 0 {
				version = strconv.Itoa(c.Version)
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", c.File, method, url, status, version, c.State)
		}
		_ = tw.Flush()
	})
}

// resolveCassette finds name as given or inside the cassette directory.
func resolveCassette(name string) (string, error) {
	candidates := []string{name}
	if !filepath.IsAbs(name) {
		candidates = append(candidates, filepath.Join(cfg.CassetteDir, name))
	}
	for _, p := range candidates {
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrCassetteNotFound, name)
}

func runCassettesShow(cmd *cobra.Command, args []string) error {
	path, err := resolveCassette(args[0])
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if showQuery != "" {
		return queryDocument(cmd, data, showQuery)
	}

	info, err := replay.Inspect(path)
	if err != nil {
		return err
	}
	if jsonOutput {
		doc, err := oj.Parse(data)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		return output.JSON(cmd.OutOrStdout(), doc)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "File:     %s\n", path)
	fmt.Fprintf(w, "State:    %s\n", info.State)
	if info.Version >= 0 {
		fmt.Fprintf(w, "Version:  %d\n", info.Version)
	}
	if info.Err != nil {
		fmt.Fprintf(w, "Error:    %v\n", info.Err)
	}
	if info.Entry == nil {
		return nil
	}

	req, resp := info.Entry.Request, info.Entry.Response
	fmt.Fprintf(w, "Request:  %s %s\n", req.Method, req.URL)
	writeHeaders(w, req.Header)
	if req.Body != nil {
		fmt.Fprintf(w, "  (body, %d bytes)\n", len(req.Body))
	}
	fmt.Fprintf(w, "Response: %s from %s\n", resp.Status(), resp.URL)
	writeHeaders(w, resp.Header)
	if len(resp.Body) > 0 {
		fmt.Fprintln(w)
		if text, err := resp.Text(); err == nil {
			fmt.Fprintln(w, text)
		} else {
			fmt.Fprintln(w, base64.StdEncoding.EncodeToString(resp.Body))
		}
	}
	return nil
}

func writeHeaders(w io.Writer, h map[string][]string) {
	flat := client.CanonicalHeaders(h)
	for _, name := range client.SortedHeaderNames(flat) {
		fmt.Fprintf(w, "  %s: %s\n", name, flat[name])
	}
}

// queryDocument prints every value the JSONPath expression selects. Strings
// are printed raw in text mode.
func queryDocument(cmd *cobra.Command, data []byte, query string) error {
	expr, err := jp.ParseString(query)
	if err != nil {
		return fmt.Errorf("invalid JSONPath %q: %w", query, err)
	}
	doc, err := oj.Parse(data)
	if err != nil {
		return fmt.Errorf("cassette is not valid JSON: %w", err)
	}

	results := expr.Get(doc)
	if jsonOutput {
		return output.JSON(cmd.OutOrStdout(), results)
	}
	w := cmd.OutOrStdout()
	for _, r := range results {
		if s, ok := r.(string); ok {
			fmt.Fprintln(w, s)
			continue
		}
		fmt.Fprintln(w, oj.JSON(r))
	}
	return nil
}

type pruneResult struct {
	Deleted []string `json:"deleted"`
	Kept    int      `json:"kept"`
}

func runCassettesPrune(cmd *cobra.Command, _ []string) error {
	log := commandLogger(cmd)

	infos, err := scanCassettes(cfg.CassetteDir)
	if err != nil {
		return err
	}

	var doomed []string
	for _, c := range infos {
		switch c.State {
		case string(replay.StateStale), string(replay.StateCorrupt):
			doomed = append(doomed, c.File)
		}
	}
	result := pruneResult{Deleted: []string{}, Kept: len(infos) - len(doomed)}

	if len(doomed) > 0 && !pruneForce {
		confirmed, err := confirmPrune(len(doomed))
		if err != nil {
			return err
		}
		if !confirmed {
			return ErrPruneCancelled
		}
	}

	for _, path := range doomed {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to delete %s: %w", path, err)
		}
		log.Info("deleted cassette", "path", path)
		result.Deleted = append(result.Deleted, path)
	}

	return printResult(cmd, result, func(w io.Writer) {
		if len(result.Deleted) == 0 {
			fmt.Fprintln(w, "Nothing to prune")
			return
		}
		for _, p := range result.Deleted {
			fmt.Fprintf(w, "deleted %s\n", p)
		}
		fmt.Fprintf(w, "Pruned %d cassette(s), kept %d\n", len(result.Deleted), result.Kept)
	})
}

// confirmPrune asks before deleting. Without a terminal it refuses.
func confirmPrune(n int) (bool, error) {
	if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		return false, ErrPruneNeedsForce
	}

	var confirmed bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete %d stale or corrupt cassette(s)?", n)).
				Affirmative("Delete").
				Negative("Keep").
				Value(&confirmed),
		),
	)
	if err := form.Run(); err != nil {
		return false, err
	}
	return confirmed, nil
}
