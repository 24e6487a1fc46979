package replay

import (
	"path/filepath"

	"github.com/getmockd/httpreplay/internal/fingerprint"
	"github.com/getmockd/httpreplay/pkg/client"
)

// entryExt is the file extension of entries inside a Dir target.
const entryExt = ".json"

type targetKind int

const (
	targetFile targetKind = iota + 1
	targetDir
)

// Target is where entries are stored: a single file or a directory.
type Target struct {
	kind targetKind
	path string
}

// File stores a single entry at path. A changed request replaces it.
func File(path string) Target {
	return Target{kind: targetFile, path: path}
}

// Dir stores one entry per request fingerprint inside dir.
func Dir(dir string) Target {
	return Target{kind: targetDir, path: dir}
}

// IsDir reports whether the target is a directory.
func (t Target) IsDir() bool {
	return t.kind == targetDir
}

// Root returns the file or directory path the target was created with.
func (t Target) Root() string {
	return t.path
}

// IsZero reports whether the target was never set.
func (t Target) IsZero() bool {
	return t.kind == 0 || t.path == ""
}

// Path returns the entry path for a request with the given fingerprint.
func (t Target) Path(fp fingerprint.Sum) string {
	if t.kind == targetDir {
		return filepath.Join(t.path, EntryFileName(fp))
	}
	return t.path
}

func (t Target) String() string {
	if t.kind == targetDir {
		return "dir:" + t.path
	}
	return "file:" + t.path
}

// EntryFileName returns the file name used for fp inside a Dir target.
func EntryFileName(fp fingerprint.Sum) string {
	return fp.Hex() + entryExt
}

// PathFor returns the entry path the request would be stored at.
func (t Target) PathFor(req *client.Request) (string, error) {
	fp, _, err := fingerprint.Compute(req)
	if err != nil {
		return "", err
	}
	return t.Path(fp), nil
}
