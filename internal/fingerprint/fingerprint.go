// Package fingerprint derives a stable digest from a normalized request.
//
// The digest covers the method, URL, headers (sorted by canonical name, values
// joined with ", ") and body. Each field is length-prefixed so that adjacent
// fields can never run into each other. The hash is unseeded xxhash64, so a
// digest computed in one process matches the digest computed in another.
package fingerprint

import (
	"encoding/binary"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/getmockd/httpreplay/pkg/client"
)

// Sum is a request fingerprint.
type Sum uint64

// Hex returns the lowercase hexadecimal form without padding.
func (s Sum) Hex() string {
	return strconv.FormatUint(uint64(s), 16)
}

// String implements fmt.Stringer.
func (s Sum) String() string {
	return s.Hex()
}

// Of computes the fingerprint of req. The request must already be normalized;
// see client.Request.Normalize.
func Of(req *client.Request) Sum {
	d := xxhash.New()
	writeField(d, []byte(req.Method))
	writeField(d, []byte(req.URL))

	headers := req.CanonicalHeaders()
	names := client.SortedHeaderNames(headers)
	writeLen(d, len(names))
	for _, name := range names {
		writeField(d, []byte(name))
		writeField(d, []byte(headers[name]))
	}

	if req.Body == nil {
		_, _ = d.Write([]byte{0})
	} else {
		_, _ = d.Write([]byte{1})
		writeField(d, req.Body)
	}
	return Sum(d.Sum64())
}

// Compute normalizes req and returns its fingerprint together with the
// normalized request.
func Compute(req *client.Request) (Sum, *client.Request, error) {
	n, err := req.Normalize()
	if err != nil {
		return 0, nil, err
	}
	return Of(n), n, nil
}

func writeField(d *xxhash.Digest, b []byte) {
	writeLen(d, len(b))
	_, _ = d.Write(b)
}

func writeLen(d *xxhash.Digest, n int) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(n))
	_, _ = d.Write(buf[:])
}
