package client

import (
	"fmt"
	"net/http"
	"unicode/utf8"
)

// Response is a fully buffered HTTP response.
type Response struct {
	// URL is the final URL of the response, after redirects.
	URL        string
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Clone returns a deep copy of the response.
func (r *Response) Clone() *Response {
	if r == nil {
		return nil
	}
	c := &Response{
		URL:        r.URL,
		StatusCode: r.StatusCode,
		Header:     r.Header.Clone(),
	}
	if c.Header == nil {
		c.Header = make(http.Header)
	}
	if r.Body != nil {
		c.Body = append([]byte{}, r.Body...)
	}
	return c
}

// Text returns the body decoded as UTF-8.
func (r *Response) Text() (string, error) {
	if !utf8.Valid(r.Body) {
		return "", fmt.Errorf("response body from %s is not valid UTF-8", r.URL)
	}
	return string(r.Body), nil
}

// Status returns the status line text, e.g. "200 OK".
func (r *Response) Status() string {
	text := http.StatusText(r.StatusCode)
	if text == "" {
		return fmt.Sprintf("%d", r.StatusCode)
	}
	return fmt.Sprintf("%d %s", r.StatusCode, text)
}
