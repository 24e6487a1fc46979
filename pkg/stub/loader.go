package stub

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/getmockd/httpreplay/pkg/client"
)

// FixtureFile is the content of a stub fixture file. A file holds either a
// mapping with a "stubs" list or a bare list of stubs.
type FixtureFile struct {
	Stubs []Fixture `yaml:"stubs"`
}

// UnmarshalYAML accepts both the mapping and the bare list form.
func (f *FixtureFile) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.SequenceNode {
		return node.Decode(&f.Stubs)
	}
	type plain FixtureFile
	return node.Decode((*plain)(f))
}

// Fixture is one stub as written in a fixture file.
type Fixture struct {
	Request  FixtureRequest  `yaml:"request"`
	Response FixtureResponse `yaml:"response"`
}

// FixtureRequest is the request side of a fixture. Omitted fields are unset;
// "body: ''" and "headers: {}" set an empty body and an empty header set.
type FixtureRequest struct {
	URL     string            `yaml:"url"`
	Method  string            `yaml:"method,omitempty"`
	Body    *string           `yaml:"body,omitempty"`
	Headers map[string]string `yaml:"headers,omitempty"`
}

// FixtureResponse is the response side of a fixture. JSON, when set, is
// encoded as the body and takes precedence over Body.
type FixtureResponse struct {
	Status  int               `yaml:"status,omitempty"`
	URL     string            `yaml:"url,omitempty"`
	Headers map[string]string `yaml:"headers,omitempty"`
	Body    string            `yaml:"body,omitempty"`
	JSON    interface{}       `yaml:"json,omitempty"`
}

// FixtureError reports a fixture that could not be registered.
type FixtureError struct {
	Path  string
	Index int
	Err   error
}

func (e *FixtureError) Error() string {
	return fmt.Sprintf("%s: stub #%d: %v", e.Path, e.Index+1, e.Err)
}

func (e *FixtureError) Unwrap() error {
	return e.Err
}

// Pattern converts the request side to a Pattern.
func (r FixtureRequest) Pattern() Pattern {
	p := Pattern{URL: r.URL, Method: r.Method}
	if r.Body != nil {
		p.Body = []byte(*r.Body)
	}
	if r.Headers != nil {
		p.Header = client.HeaderFromMap(r.Headers)
	}
	return p
}

// Response converts the response side to a client.Response.
func (r FixtureResponse) Response() (*client.Response, error) {
	resp := &client.Response{
		URL:        r.URL,
		StatusCode: r.Status,
		Header:     client.HeaderFromMap(r.Headers),
		Body:       []byte(r.Body),
	}
	if r.JSON != nil {
		data, err := json.Marshal(r.JSON)
		if err != nil {
			return nil, fmt.Errorf("failed to encode json body: %w", err)
		}
		resp.Body = data
		if resp.Header.Get("Content-Type") == "" {
			resp.Header.Set("Content-Type", "application/json")
		}
	}
	if resp.StatusCode == 0 {
		resp.StatusCode = http.StatusOK
	}
	return resp, nil
}

// ParseFixtures parses fixture file content.
func ParseFixtures(data []byte) ([]Fixture, error) {
	var f FixtureFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse stub fixtures: %w", err)
	}
	return f.Stubs, nil
}

// LoadFile registers every stub in the fixture file at path and returns how
// many were registered. Stubs that fail are skipped and reported together as
// *FixtureError values combined with multierr.
func (c *Client) LoadFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read stub file: %w", err)
	}
	fixtures, err := ParseFixtures(data)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}

	var (
		registered int
		errs       error
	)
	for i, fx := range fixtures {
		resp, err := fx.Response.Response()
		if err == nil {
			err = c.Register(fx.Request.Pattern(), resp)
		}
		if err != nil {
			errs = multierr.Append(errs, &FixtureError{Path: path, Index: i, Err: err})
			continue
		}
		registered++
	}

	c.logger.Debug("loaded stub file", "path", path, "registered", registered, "failed", len(multierr.Errors(errs)))
	return registered, errs
}

// LoadGlob registers the stubs of every file matching the patterns. Patterns
// may use ** for recursive matching. Files are loaded in sorted order and a
// pattern matching nothing is not an error.
func (c *Client) LoadGlob(patterns ...string) (int, error) {
	var files []string
	seen := make(map[string]bool)
	for _, pattern := range patterns {
		matches, err := expandGlob(pattern)
		if err != nil {
			return 0, fmt.Errorf("expanding glob pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}
	sort.Strings(files)

	var (
		total int
		errs  error
	)
	for _, file := range files {
		n, err := c.LoadFile(file)
		total += n
		errs = multierr.Append(errs, err)
	}
	return total, errs
}

// expandGlob expands a glob pattern to a list of matching file paths.
// Uses doublestar for ** support, falls back to filepath.Glob for simple patterns.
func expandGlob(pattern string) ([]string, error) {
	if strings.Contains(pattern, "**") {
		return doublestar.FilepathGlob(pattern)
	}
	return filepath.Glob(pattern)
}
