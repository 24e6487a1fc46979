package client

import (
	"context"
	"net/http"
)

// RequestBuilder builds and sends a request using a fluent API.
type RequestBuilder struct {
	client Client
	req    *Request
	cfg    *Config
}

// NewRequestBuilder starts building a request for c.
func NewRequestBuilder(c Client, method, rawURL string) *RequestBuilder {
	return &RequestBuilder{
		client: c,
		req:    NewRequest(method, rawURL, nil),
	}
}

// Get starts a GET request.
func Get(c Client, rawURL string) *RequestBuilder {
	return NewRequestBuilder(c, http.MethodGet, rawURL)
}

// Post starts a POST request.
func Post(c Client, rawURL string) *RequestBuilder {
	return NewRequestBuilder(c, http.MethodPost, rawURL)
}

// Put starts a PUT request.
func Put(c Client, rawURL string) *RequestBuilder {
	return NewRequestBuilder(c, http.MethodPut, rawURL)
}

// Patch starts a PATCH request.
func Patch(c Client, rawURL string) *RequestBuilder {
	return NewRequestBuilder(c, http.MethodPatch, rawURL)
}

// Delete starts a DELETE request.
func Delete(c Client, rawURL string) *RequestBuilder {
	return NewRequestBuilder(c, http.MethodDelete, rawURL)
}

// Head starts a HEAD request.
func Head(c Client, rawURL string) *RequestBuilder {
	return NewRequestBuilder(c, http.MethodHead, rawURL)
}

// Header adds a request header.
func (b *RequestBuilder) Header(key, value string) *RequestBuilder {
	b.req.Header.Add(key, value)
	return b
}

// Headers adds multiple request headers.
func (b *RequestBuilder) Headers(h http.Header) *RequestBuilder {
	copyHeaders(b.req.Header, h)
	return b
}

// Body sets the request body.
func (b *RequestBuilder) Body(body []byte) *RequestBuilder {
	if body == nil {
		body = []byte{}
	}
	b.req.Body = body
	return b
}

// BodyString sets the request body from a string.
func (b *RequestBuilder) BodyString(body string) *RequestBuilder {
	return b.Body([]byte(body))
}

// WithConfig overrides the client configuration for this request only.
func (b *RequestBuilder) WithConfig(cfg Config) *RequestBuilder {
	b.cfg = &cfg
	return b
}

// Request returns the request built so far.
func (b *RequestBuilder) Request() *Request {
	return b.req.Clone()
}

// Send executes the request. An invalid URL is reported here.
func (b *RequestBuilder) Send(ctx context.Context) (*Response, error) {
	if _, err := NormalizeURL(b.req.URL); err != nil {
		return nil, err
	}
	return b.client.Execute(ctx, b.cfg, b.req.Clone())
}
