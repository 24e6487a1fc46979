package replay

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/getmockd/httpreplay/pkg/client"
)

// FormatVersion is the version of the storage format. Entries persisted with
// any other version are discarded and recorded again.
const FormatVersion = 2

//go:embed schema.json
var schemaSource string

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

// documentSchema compiles the embedded entry schema once.
func documentSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource("entry.schema.json", strings.NewReader(schemaSource)); err != nil {
			schemaErr = fmt.Errorf("failed to add schema resource: %w", err)
			return
		}
		compiledSchema, schemaErr = compiler.Compile("entry.schema.json")
	})
	return compiledSchema, schemaErr
}

// Entry is a recorded request together with the response it produced.
type Entry struct {
	Request  *client.Request
	Response *client.Response
}

// State classifies a document found on disk.
type State string

const (
	StateValid   State = "valid"
	StateStale   State = "stale"
	StateCorrupt State = "corrupt"
)

// Info describes a document on disk. Version is -1 when the document carries
// no numeric format_version.
type Info struct {
	Path    string
	State   State
	Version int
	Entry   *Entry
	// Err is set for corrupt documents.
	Err error
}

type document struct {
	FormatVersion int              `json:"format_version"`
	Request       requestDocument  `json:"request"`
	Response      responseDocument `json:"response"`
}

type requestDocument struct {
	URL     string            `json:"url"`
	Method  string            `json:"method"`
	Headers map[string]string `json:"headers"`
	Body    []byte            `json:"body"`
}

type responseDocument struct {
	URL     string            `json:"url"`
	Status  int               `json:"status"`
	Headers map[string]string `json:"headers"`
	Body    []byte            `json:"body"`
}

func newDocument(e *Entry) document {
	respBody := e.Response.Body
	if respBody == nil {
		respBody = []byte{}
	}
	return document{
		FormatVersion: FormatVersion,
		Request: requestDocument{
			URL:     e.Request.URL,
			Method:  e.Request.Method,
			Headers: e.Request.CanonicalHeaders(),
			Body:    e.Request.Body,
		},
		Response: responseDocument{
			URL:     e.Response.URL,
			Status:  e.Response.StatusCode,
			Headers: client.CanonicalHeaders(e.Response.Header),
			Body:    respBody,
		},
	}
}

func (d *document) entry() *Entry {
	return &Entry{
		Request: &client.Request{
			Method: d.Request.Method,
			URL:    d.Request.URL,
			Header: client.HeaderFromMap(d.Request.Headers),
			Body:   d.Request.Body,
		},
		Response: &client.Response{
			URL:        d.Response.URL,
			StatusCode: d.Response.Status,
			Header:     client.HeaderFromMap(d.Response.Headers),
			Body:       d.Response.Body,
		},
	}
}

// Load reads the entry at path. It returns (nil, nil) when the file does not
// exist or was written with a different FormatVersion.
func Load(path string) (*Entry, error) {
	info, err := Inspect(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	switch info.State {
	case StateValid:
		return info.Entry, nil
	case StateStale:
		return nil, nil
	default:
		return nil, info.Err
	}
}

// Inspect reads and classifies the document at path. Filesystem failures are
// returned as *IOError; a corrupt document is reported through Info.Err.
func Inspect(path string) (*Info, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &IOError{Op: "read", Path: path, Err: err}
	}
	return decode(path, data), nil
}

// decode parses a document in two phases: the version is checked on the
// generic value before anything else, so documents of other versions are
// never validated against the current schema.
func decode(path string, data []byte) *Info {
	info := &Info{Path: path, Version: -1}

	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		info.State = StateCorrupt
		info.Err = &SerializationError{Path: path, Err: err}
		return info
	}

	info.Version = formatVersion(raw)
	if info.Version != FormatVersion {
		info.State = StateStale
		return info
	}

	schema, err := documentSchema()
	if err != nil {
		info.State = StateCorrupt
		info.Err = &SerializationError{Path: path, Err: err}
		return info
	}
	if err := schema.Validate(raw); err != nil {
		info.State = StateCorrupt
		info.Err = &SerializationError{Path: path, Err: err}
		return info
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		info.State = StateCorrupt
		info.Err = &SerializationError{Path: path, Err: err}
		return info
	}

	info.State = StateValid
	info.Entry = doc.entry()
	return info
}

// formatVersion extracts format_version from a generic document, or -1.
func formatVersion(raw interface{}) int {
	obj, ok := raw.(map[string]interface{})
	if !ok {
		return -1
	}
	n, ok := obj["format_version"].(float64)
	if !ok || n < 0 || n != math.Trunc(n) || n > math.MaxUint8 {
		return -1
	}
	return int(n)
}

// Save writes e to path, creating parent directories as needed. The document
// is written to a temporary file in the same directory and renamed into place.
func Save(path string, e *Entry) error {
	if e == nil || e.Request == nil || e.Response == nil {
		return &SerializationError{Path: path, Err: errors.New("incomplete entry")}
	}

	data, err := json.MarshalIndent(newDocument(e), "", "  ")
	if err != nil {
		return &SerializationError{Path: path, Err: err}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &IOError{Op: "create directory for", Path: path, Err: err}
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return &IOError{Op: "write", Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return &IOError{Op: "write", Path: path, Err: err}
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		_ = os.Remove(tmpPath)
		return &IOError{Op: "write", Path: path, Err: err}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		// Clean up temp file on failure
		_ = os.Remove(tmpPath)
		return &IOError{Op: "rename", Path: path, Err: err}
	}
	return nil
}
