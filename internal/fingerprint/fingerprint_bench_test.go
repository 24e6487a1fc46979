package fingerprint

import (
	"bytes"
	"testing"

	"github.com/getmockd/httpreplay/pkg/client"
)

func BenchmarkOf(b *testing.B) {
	req := client.NewRequest("POST", "http://example.com/api/v1/users?page=2", bytes.Repeat([]byte("x"), 4096))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer token")
	req.Header.Add("Accept", "application/json")
	req.Header.Add("Accept", "text/plain")

	b.ReportAllocs()
	b.SetBytes(int64(len(req.Body)))
	for i := 0; i < b.N; i++ {
		_ = Of(req)
	}
}

func BenchmarkCompute(b *testing.B) {
	req := client.NewRequest("get", "HTTP://Example.COM/a", nil)
	req.Header.Set("x-b", "2")
	req.Header.Set("x-a", "1")

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, _, err := Compute(req); err != nil {
			b.Fatal(err)
		}
	}
}
