package stub

import (
	"net/http"
	"strings"

	"github.com/getmockd/httpreplay/pkg/client"
)

// Pattern describes the requests a stub answers. Unset optional fields are
// the zero value: an empty Method, a nil Body and a nil Header. To require an
// empty body or no headers, set Body to []byte{} or Header to http.Header{}.
type Pattern struct {
	URL    string
	Method string
	Body   []byte
	Header http.Header
}

func (p Pattern) has(f Field) bool {
	switch f {
	case FieldMethod:
		return p.Method != ""
	case FieldBody:
		return p.Body != nil
	case FieldHeaders:
		return p.Header != nil
	default:
		return false
	}
}

// key is the comparable form of a pattern or request under a strictness.
// Fields the strictness ignores are left empty.
type key struct {
	url     string
	method  string
	body    string
	headers string
}

// makeKey derives the key of an already normalized URL. A missing body and an
// empty body produce the same key.
func makeKey(s Strictness, normalizedURL, method string, body []byte, h http.Header) key {
	reqs := requirementTable[s]
	k := key{url: normalizedURL}
	if reqs.method == required {
		k.method = client.NormalizeMethod(method)
	}
	if reqs.body == required {
		k.body = string(body)
	}
	if reqs.headers == required {
		k.headers = encodeHeaders(h)
	}
	return k
}

// encodeHeaders renders headers in canonical sorted form, one per line.
func encodeHeaders(h http.Header) string {
	flat := client.CanonicalHeaders(h)
	var sb strings.Builder
	for _, name := range client.SortedHeaderNames(flat) {
		sb.WriteString(name)
		sb.WriteString(": ")
		sb.WriteString(flat[name])
		sb.WriteByte('\n')
	}
	return sb.String()
}
