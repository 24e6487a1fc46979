// Package testserver provides a deterministic HTTP server for tests.
//
// Given a request with METHOD, URI, HEADERS and BODY, the server checks whether
// BODY is a plain decimal integer. If it is not, 400 Bad Request is returned
// echoing the body. Otherwise the number is incremented and the response body is:
//
//	[INCREMENTED NUMBER]\n
//	[METHOD] [URI]\n
//	[HEADERS]
//
// HEADERS lists the request headers sorted by name, so the output is stable.
package testserver

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"
)

var numberPattern = regexp.MustCompile(`^(\d+)$`)

// ignoredHeaders vary between Go versions and are left out of the echo.
var ignoredHeaders = map[string]bool{
	"Accept-Encoding": true,
	"User-Agent":      true,
	"Content-Length":  true,
}

// Server is a running test server that counts the requests it handled.
type Server struct {
	*httptest.Server
	hits atomic.Int64
}

// New starts a server. Call Close when done.
func New() *Server {
	s := &Server{}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// Hits returns the number of requests handled so far.
func (s *Server) Hits() int {
	return int(s.hits.Load())
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	s.hits.Add(1)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	m := numberPattern.FindStringSubmatch(string(body))
	if m == nil {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write(body)
		return
	}
	n, err := strconv.ParseUint(m[1], 10, 32)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write(body)
		return
	}

	_, _ = fmt.Fprintf(w, "%d\n%s %s\n%s", n+1, r.Method, r.URL.RequestURI(), formatHeaders(r.Header))
}

// Body returns the response body the server produces for the given inputs.
func Body(n uint64, method, uri string, header http.Header) string {
	return fmt.Sprintf("%d\n%s %s\n%s", n+1, method, uri, formatHeaders(header))
}

func formatHeaders(h http.Header) string {
	names := make([]string, 0, len(h))
	for name := range h {
		if !ignoredHeaders[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+strings.Join(h[name], ", "))
	}
	return "{" + strings.Join(parts, "; ") + "}"
}
