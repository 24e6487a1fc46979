package stub

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/getmockd/httpreplay/pkg/client"
)

// RequestStubber describes the request side of a stub using a fluent API.
// Call Response to continue with the response side.
type RequestStubber struct {
	client  *Client
	pattern Pattern
	err     error // First error encountered during building
}

// ResponseStubber describes the response side of a stub. Mock registers it.
type ResponseStubber struct {
	req  *RequestStubber
	resp client.Response
}

// Stub starts describing a stub for requests to rawURL.
func (c *Client) Stub(rawURL string) *RequestStubber {
	return &RequestStubber{
		client:  c,
		pattern: Pattern{URL: rawURL},
	}
}

// setError records the first error encountered during building.
// Subsequent errors are ignored (first error wins pattern).
func (b *RequestStubber) setError(err error) {
	if b.err == nil {
		b.err = err
	}
}

// Err returns any error encountered during building.
func (b *RequestStubber) Err() error {
	return b.err
}

// Method sets the request method to match.
func (b *RequestStubber) Method(method string) *RequestStubber {
	b.pattern.Method = method
	return b
}

// Body sets the request body to match. A nil body matches requests with an
// empty or missing body.
func (b *RequestStubber) Body(body []byte) *RequestStubber {
	if body == nil {
		body = []byte{}
	}
	b.pattern.Body = body
	return b
}

// BodyString sets the request body to match from a string.
func (b *RequestStubber) BodyString(body string) *RequestStubber {
	return b.Body([]byte(body))
}

// Header adds a request header to match. Matching compares the complete
// header set, so every header the request carries must be listed.
func (b *RequestStubber) Header(key, value string) *RequestStubber {
	if b.pattern.Header == nil {
		b.pattern.Header = make(http.Header)
	}
	b.pattern.Header.Add(key, value)
	return b
}

// Headers sets the full request header set to match. An empty, non-nil set
// matches requests without headers.
func (b *RequestStubber) Headers(h http.Header) *RequestStubber {
	if h == nil {
		h = make(http.Header)
	}
	b.pattern.Header = h.Clone()
	return b
}

// Pattern returns the pattern built so far.
func (b *RequestStubber) Pattern() Pattern {
	return b.pattern
}

// Response continues with the response side of the stub. The response
// defaults to 200 with an empty body.
func (b *RequestStubber) Response() *ResponseStubber {
	return &ResponseStubber{
		req: b,
		resp: client.Response{
			StatusCode: http.StatusOK,
			Header:     make(http.Header),
		},
	}
}

// Status sets the response status code.
func (r *ResponseStubber) Status(code int) *ResponseStubber {
	if code < 100 || code > 999 {
		r.req.setError(fmt.Errorf("Status: invalid status code %d", code))
		return r
	}
	r.resp.StatusCode = code
	return r
}

// Body sets the response body.
func (r *ResponseStubber) Body(body []byte) *ResponseStubber {
	r.resp.Body = append([]byte{}, body...)
	return r
}

// BodyString sets the response body from a string.
func (r *ResponseStubber) BodyString(body string) *ResponseStubber {
	return r.Body([]byte(body))
}

// JSON sets the response body to v encoded as JSON and sets Content-Type to
// application/json.
func (r *ResponseStubber) JSON(v interface{}) *ResponseStubber {
	data, err := json.Marshal(v)
	if err != nil {
		r.req.setError(fmt.Errorf("JSON: failed to marshal body: %w", err))
		return r
	}
	r.resp.Body = data
	r.resp.Header.Set("Content-Type", "application/json")
	return r
}

// Header adds a response header.
func (r *ResponseStubber) Header(key, value string) *ResponseStubber {
	r.resp.Header.Add(key, value)
	return r
}

// URL sets the final URL reported by the response. It defaults to the stub URL.
func (r *ResponseStubber) URL(rawURL string) *ResponseStubber {
	r.resp.URL = rawURL
	return r
}

// Mock registers the stub with the client.
func (r *ResponseStubber) Mock() error {
	if err := r.req.Err(); err != nil {
		return err
	}
	return r.req.client.Register(r.req.pattern, &r.resp)
}

// MustMock is like Mock but panics on error.
func (r *ResponseStubber) MustMock() {
	if err := r.Mock(); err != nil {
		panic(err)
	}
}
