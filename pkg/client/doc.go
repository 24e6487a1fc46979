// Package client defines the HTTP client capability used across httpreplay.
//
// Code that performs HTTP requests should be written against the Client
// interface. In production the Direct client performs real network calls; in
// tests it can be swapped for a replaying client (package replay) or a stubbing
// client (package stub) without touching the calling code.
//
// # Requests and Responses
//
// Request and Response are plain in-memory values. Bodies are fully buffered;
// a nil Request.Body means the request carries no body at all, which is
// distinct from an empty body.
//
// # Normalization
//
// Normalize produces the canonical form of a request: the method is upper-cased,
// the URL is re-serialized with a lowercase scheme and host, and header names are
// canonicalized. Two requests that differ only in header insertion order
// normalize to equal values, and CanonicalHeaders returns the sorted name/value
// view used for hashing and persistence.
//
// # Variants
//
//   - Direct: performs the request over net/http (the live transport)
//   - Generic: holds exactly one of the variants behind a single concrete type
//
// Replay and stub variants live in their own packages and plug into Generic.
package client
