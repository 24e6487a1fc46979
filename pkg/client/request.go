package client

import (
	"bytes"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
)

// Request is a fully buffered HTTP request.
type Request struct {
	Method string
	URL    string
	Header http.Header
	// Body is nil when the request has no body.
	Body []byte
}

// NewRequest creates a request with an empty header set.
func NewRequest(method, rawURL string, body []byte) *Request {
	return &Request{
		Method: method,
		URL:    rawURL,
		Header: make(http.Header),
		Body:   body,
	}
}

// Clone returns a deep copy of the request.
func (r *Request) Clone() *Request {
	if r == nil {
		return nil
	}
	c := &Request{
		Method: r.Method,
		URL:    r.URL,
		Header: r.Header.Clone(),
	}
	if c.Header == nil {
		c.Header = make(http.Header)
	}
	if r.Body != nil {
		c.Body = append([]byte{}, r.Body...)
	}
	return c
}

// Normalize returns the canonical form of the request.
// The receiver is not modified.
func (r *Request) Normalize() (*Request, error) {
	if r == nil {
		return nil, fmt.Errorf("nil request")
	}
	u, err := NormalizeURL(r.URL)
	if err != nil {
		return nil, err
	}

	n := r.Clone()
	n.Method = NormalizeMethod(r.Method)
	n.URL = u
	n.Header = make(http.Header, len(r.Header))
	for _, name := range rawHeaderNames(r.Header) {
		key := http.CanonicalHeaderKey(name)
		n.Header[key] = append(n.Header[key], r.Header[name]...)
	}
	return n, nil
}

// CanonicalHeaders returns the request headers as a name to value mapping.
// See CanonicalHeaders.
func (r *Request) CanonicalHeaders() map[string]string {
	return CanonicalHeaders(r.Header)
}

// Equal reports whether two requests are structurally equal after
// normalization. Header order never affects the result.
func (r *Request) Equal(other *Request) bool {
	if r == nil || other == nil {
		return r == other
	}
	a, errA := r.Normalize()
	b, errB := other.Normalize()
	if errA != nil || errB != nil {
		return false
	}
	if a.Method != b.Method || a.URL != b.URL {
		return false
	}
	if (a.Body == nil) != (b.Body == nil) || !bytes.Equal(a.Body, b.Body) {
		return false
	}
	return HeadersEqual(a.Header, b.Header)
}

// NormalizeMethod upper-cases an HTTP method, defaulting to GET.
func NormalizeMethod(method string) string {
	if method == "" {
		return http.MethodGet
	}
	return strings.ToUpper(method)
}

// NormalizeURL parses and re-serializes a URL so that equivalent spellings
// compare equal. Scheme and host are lowercased; an empty path on an absolute
// URL becomes "/".
func NormalizeURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", raw, err)
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	if u.Host != "" && u.Path == "" && u.RawPath == "" {
		u.Path = "/"
	}
	return u.String(), nil
}

// CanonicalHeaders flattens a header multimap into a sorted-key mapping.
// Names are canonicalized and multiple values are joined with ", " in the
// order they were added. Raw names differing only in case are merged in
// sorted raw-name order.
func CanonicalHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for _, name := range rawHeaderNames(h) {
		values := h[name]
		key := http.CanonicalHeaderKey(name)
		if prev, ok := out[key]; ok {
			out[key] = prev + ", " + strings.Join(values, ", ")
			continue
		}
		out[key] = strings.Join(values, ", ")
	}
	return out
}

// rawHeaderNames returns the map keys of h as stored, sorted. Spellings that
// canonicalize to the same name are merged in this order.
func rawHeaderNames(h http.Header) []string {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SortedHeaderNames returns the canonical header names of m in sorted order.
func SortedHeaderNames(m map[string]string) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HeaderFromMap builds an http.Header from a flattened mapping.
func HeaderFromMap(m map[string]string) http.Header {
	h := make(http.Header, len(m))
	for name, value := range m {
		h.Set(name, value)
	}
	return h
}

// HeadersEqual compares two header sets by their canonical flattened form.
func HeadersEqual(a, b http.Header) bool {
	ca, cb := CanonicalHeaders(a), CanonicalHeaders(b)
	if len(ca) != len(cb) {
		return false
	}
	for name, value := range ca {
		if other, ok := cb[name]; !ok || other != value {
			return false
		}
	}
	return true
}
