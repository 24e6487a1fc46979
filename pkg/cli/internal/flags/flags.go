// Package flags provides reusable flag types for CLI commands.
package flags

import (
	"fmt"
	"net/http"
	"strings"
)

// Header implements pflag.Value for repeatable "Name: value" header flags.
// Repeating a name adds another value.
type Header struct {
	raw    []string
	header http.Header
}

// String returns the string representation of the flag value.
func (h *Header) String() string {
	return strings.Join(h.raw, ",")
}

// Set parses and appends a header.
func (h *Header) Set(value string) error {
	key, val, ok := KeyValue(value, ':', '=')
	if !ok || strings.TrimSpace(key) == "" {
		return fmt.Errorf("invalid header %q (expected Name: value)", value)
	}
	if h.header == nil {
		h.header = make(http.Header)
	}
	h.header.Add(strings.TrimSpace(key), strings.TrimSpace(val))
	h.raw = append(h.raw, value)
	return nil
}

// Type specifies the type label for Cobra flags.
func (h *Header) Type() string {
	return "header"
}

// Header returns the parsed headers. It is never nil.
func (h *Header) Header() http.Header {
	if h.header == nil {
		return make(http.Header)
	}
	return h.header.Clone()
}

// Len returns how many headers were given.
func (h *Header) Len() int {
	return len(h.raw)
}

// KeyValue parses a "key:value" or "key=value" string.
// If delimiters are provided, uses the first one found; otherwise defaults to ':'.
// Returns the key, value, and a boolean indicating success.
func KeyValue(s string, delimiters ...rune) (key, value string, ok bool) {
	if len(delimiters) == 0 {
		delimiters = []rune{':'}
	}

	for i, c := range s {
		for _, d := range delimiters {
			if c == d {
				return s[:i], s[i+1:], true
			}
		}
	}
	return "", "", false
}
