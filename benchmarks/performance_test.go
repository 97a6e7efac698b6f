// Package benchmarks
// Author: momentics <momentics@gmail.com>
//
// Performance benchmarks for hioload-fetch components.

package benchmarks

import (
	"context"
	"fmt"
	"net/netip"
	"strings"
	"testing"

	"github.com/momentics/hioload-fetch/client"
	"github.com/momentics/hioload-fetch/fake"
	"github.com/momentics/hioload-fetch/pool"
	"github.com/momentics/hioload-fetch/protocol"
)

var response = func() []byte {
	body := `{"data":"` + strings.Repeat("x", 4096) + `"}`
	return []byte(fmt.Sprintf("HTTP/1.1 200 OK\r\nContent-Type: application/json\r\nContent-Length: %d\r\n\r\n%s", len(body), body))
}()

// BenchmarkResponseParser feeds a 4 KiB JSON response in 512-byte chunks.
func BenchmarkResponseParser(b *testing.B) {
	b.SetBytes(int64(len(response)))
	for i := 0; i < b.N; i++ {
		p := protocol.NewResponseParser()
		for off := 0; off < len(response); off += 512 {
			end := off + 512
			if end > len(response) {
				end = len(response)
			}
			if _, err := p.Feed(response[off:end]); err != nil {
				b.Fatal(err)
			}
		}
		if _, err := p.Finalize(protocol.DecodeRaw); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkBytePool measures chunk reuse under parallel load.
func BenchmarkBytePool(b *testing.B) {
	bp := pool.NewBytePool(512)
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			bp.PutBuffer(bp.GetBuffer())
		}
	})
}

// BenchmarkSchedulerFakeNetwork runs 64 tasks per iteration over the
// in-memory network to isolate scheduling overhead from the kernel.
func BenchmarkSchedulerFakeNetwork(b *testing.B) {
	const tasks = 64
	addr := netip.MustParseAddrPort("10.0.0.1:80")
	for i := 0; i < b.N; i++ {
		net := fake.NewNetwork()
		for j := 0; j < tasks; j++ {
			net.Expect(addr, fake.Peer{Chunks: [][]byte{response}})
		}
		s := client.NewScheduler(fake.NewReactor(net), net)
		for j := 0; j < tasks; j++ {
			s.Submit(context.Background(), "http://10.0.0.1/anything")
		}
		outs, err := s.Run()
		if err != nil || len(outs) != tasks {
			b.Fatalf("run: %v (%d outcomes)", err, len(outs))
		}
	}
}
