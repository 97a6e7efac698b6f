//go:build linux

package client_test

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-fetch/api"
	"github.com/momentics/hioload-fetch/client"
	"github.com/momentics/hioload-fetch/control"
	"github.com/momentics/hioload-fetch/pool"
)

// serveJSON answers every GET with {"path": <request path>} and keeps the
// connection open until the client closes it.
func serveJSON(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			go func(c net.Conn) {
				defer c.Close()
				br := bufio.NewReader(c)
				line, err := br.ReadString('\n')
				if err != nil {
					return
				}
				for {
					h, err := br.ReadString('\n')
					if err != nil || h == "\r\n" {
						break
					}
				}
				parts := strings.Fields(line)
				body := fmt.Sprintf(`{"path":%q,"proto":%q}`, parts[1], parts[2])
				fmt.Fprintf(c, "HTTP/1.1 200 OK\r\nContent-Type: application/json\r\nContent-Length: %d\r\n\r\n%s", len(body), body)
				_, _ = io.Copy(io.Discard, c)
			}(c)
		}
	}()
	return ln.Addr().String()
}

func TestFetchOverLoopback(t *testing.T) {
	addr := serveJSON(t)
	cfg := control.DefaultConfig()
	cfg.ChunkSize = 7

	metrics := control.NewMetricsRegistry()
	bufs := pool.NewBytePool(cfg.ChunkSize)
	outs, err := client.Fetch(context.Background(), []string{
		"http://" + addr + "/anything",
		"http://" + addr + "/anything",
		"http://" + addr + "/other?x=1",
	}, client.WithConfig(cfg), client.WithMetrics(metrics), client.WithBytePool(bufs))
	require.NoError(t, err)
	require.Len(t, outs, 3)

	paths := make([]string, 0, len(outs))
	for _, o := range outs {
		require.False(t, o.Failed(), "%v", o.Err)
		assert.False(t, o.Response.Partial)
		body, ok := o.Response.Body.(map[string]any)
		require.True(t, ok, "%T", o.Response.Body)
		assert.Equal(t, "HTTP/1.1", body["proto"])
		paths = append(paths, body["path"].(string))
	}
	assert.ElementsMatch(t, []string{"/anything", "/anything", "/other?x=1"}, paths)
	assert.Equal(t, int64(3), metrics.Get(control.MetricTasksCompleted))
	assert.Positive(t, metrics.Get(control.MetricBytesReceived))
	assert.Equal(t, 7, bufs.Size())
}

func TestFetchRefusedConnection(t *testing.T) {
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	require.NoError(t, err)
	closed := ln.Addr().String()
	require.NoError(t, ln.Close())
	live := serveJSON(t)

	outs, err := client.Fetch(context.Background(), []string{
		"http://" + closed + "/",
		"http://" + live + "/ok",
	})
	require.NoError(t, err)
	require.Len(t, outs, 2)

	got := byID(outs)
	assert.Equal(t, api.KindConnect, api.KindOf(got["task-0"].Err))
	require.False(t, got["task-1"].Failed(), "%v", got["task-1"].Err)
}
