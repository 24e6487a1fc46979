package stub

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/getmockd/httpreplay/pkg/client"
)

func BenchmarkExecute_Parallel(b *testing.B) {
	c, err := New(Settings{Strictness: MethodURL, Default: DefaultError})
	require.NoError(b, err)

	const stubs = 100
	for i := 0; i < stubs; i++ {
		err := c.Stub(fmt.Sprintf("http://example.com/items/%d", i)).
			Method("GET").
			Response().
			BodyString("ok").
			Mock()
		require.NoError(b, err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			req := client.NewRequest("GET", fmt.Sprintf("http://example.com/items/%d", i%stubs), nil)
			if _, err := c.Execute(context.Background(), nil, req); err != nil {
				b.Error(err)
				return
			}
			i++
		}
	})
}
