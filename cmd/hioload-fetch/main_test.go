package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/momentics/hioload-fetch/api"
)

func TestCommandRejectsMissingURLs(t *testing.T) {
	var out bytes.Buffer
	err := newCommand(&out).Run(context.Background(), []string{"hioload-fetch"})
	require.Error(t, err)
	var exit cli.ExitCoder
	require.True(t, errors.As(err, &exit))
	assert.Equal(t, 2, exit.ExitCode())
}

func TestCommandRejectsBadConfig(t *testing.T) {
	var out bytes.Buffer
	err := newCommand(&out).Run(context.Background(),
		[]string{"hioload-fetch", "--decode", "xml", "http://127.0.0.1/"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xml")
	assert.Empty(t, out.String())
}

func TestPrintOutcome(t *testing.T) {
	var out bytes.Buffer
	printOutcome(&out, api.Outcome{
		ID:  "task-0",
		URL: "http://x/",
		Response: &api.Response{
			Body:    map[string]any{"a": 1.0},
			Headers: "HTTP/1.1 200 OK\r\nContent-Length: 7",
		},
	}, true)
	printOutcome(&out, api.Outcome{
		ID:  "task-1",
		URL: "http://y/",
		Err: api.NewError(api.KindConnect, errors.New("refused")).WithTask("task-1"),
	}, true)
	printOutcome(&out, api.Outcome{
		ID:       "task-2",
		URL:      "http://z/",
		Response: &api.Response{Body: []byte("raw"), Headers: "HTTP/1.0 200 OK", Partial: true},
	}, true)

	assert.Equal(t, "task-0\thttp://x/\tHTTP/1.1 200 OK\n{\n  \"a\": 1\n}\n"+
		"task-1\thttp://y/\terror: [task-1] connect failure: refused\n"+
		"task-2\thttp://z/\tHTTP/1.0 200 OK (partial)\nraw\n", out.String())
}
