// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Command hioload-fetch GETs several URLs concurrently on one goroutine using
// the epoll reactor and prints one line per finished request.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/momentics/hioload-fetch/api"
	"github.com/momentics/hioload-fetch/client"
	"github.com/momentics/hioload-fetch/control"
)

func main() {
	err := newCommand(os.Stdout).Run(context.Background(), os.Args)
	if err == nil {
		return
	}
	code := 1
	var exit cli.ExitCoder
	if errors.As(err, &exit) {
		code = exit.ExitCode()
	}
	logrus.WithError(err).Error("hioload-fetch failed")
	os.Exit(code)
}

func newCommand(out io.Writer) *cli.Command {
	defaults := control.DefaultConfig()
	return &cli.Command{
		Name:           "hioload-fetch",
		Usage:          "fetch URLs concurrently over plain HTTP/1.1",
		ArgsUsage:      "URL [URL...]",
		ExitErrHandler: func(context.Context, *cli.Command, error) {}, // main owns exit codes
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Usage:   "port used when a URL has none",
				Value:   defaults.Port,
				Sources: cli.EnvVars("HIOLOAD_FETCH_PORT"),
			},
			&cli.IntFlag{
				Name:    "chunk-size",
				Usage:   "bytes read per readiness notification",
				Value:   defaults.ChunkSize,
				Sources: cli.EnvVars("HIOLOAD_FETCH_CHUNK_SIZE"),
			},
			&cli.IntFlag{
				Name:    "max-events",
				Usage:   "events returned per reactor wait",
				Value:   defaults.MaxEvents,
				Sources: cli.EnvVars("HIOLOAD_FETCH_MAX_EVENTS"),
			},
			&cli.StringFlag{
				Name:    "decode",
				Usage:   "body decoding: json or raw",
				Value:   defaults.Decode.String(),
				Sources: cli.EnvVars("HIOLOAD_FETCH_DECODE"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   defaults.LogLevel,
				Sources: cli.EnvVars("HIOLOAD_FETCH_LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "log-format",
				Usage:   "text or json",
				Value:   defaults.LogFormat,
				Sources: cli.EnvVars("HIOLOAD_FETCH_LOG_FORMAT"),
			},
			&cli.BoolFlag{
				Name:  "show-body",
				Usage: "print response bodies",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return run(ctx, cmd, out)
		},
	}
}

func run(ctx context.Context, cmd *cli.Command, out io.Writer) error {
	urls := cmd.Args().Slice()
	if len(urls) == 0 {
		return cli.Exit("no URLs given", 2)
	}

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	store := control.NewConfigStore()
	store.OnReload(func(c control.Config) { configureLogger(logger, c) })
	err := store.Apply(map[string]any{
		control.KeyPort:      cmd.Int("port"),
		control.KeyChunkSize: cmd.Int("chunk-size"),
		control.KeyMaxEvents: cmd.Int("max-events"),
		control.KeyDecode:    cmd.String("decode"),
		control.KeyLogLevel:  cmd.String("log-level"),
		control.KeyLogFormat: cmd.String("log-format"),
	})
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	showBody := cmd.Bool("show-body")
	metrics := control.NewMetricsRegistry()
	outs, runErr := client.Fetch(ctx, urls,
		client.WithConfig(store.Snapshot()),
		client.WithLogger(logger),
		client.WithMetrics(metrics),
		client.WithObserver(func(o api.Outcome) { printOutcome(out, o, showBody) }),
	)

	fields := logrus.Fields{}
	for k, v := range metrics.GetSnapshot() {
		fields[k] = v
	}
	logger.WithFields(fields).Debug("run finished")

	if runErr != nil {
		return runErr
	}
	failed := 0
	for _, o := range outs {
		if o.Failed() {
			failed++
		}
	}
	if failed > 0 {
		return cli.Exit(fmt.Sprintf("%d of %d requests failed", failed, len(outs)), 1)
	}
	return nil
}

func configureLogger(l *logrus.Logger, c control.Config) {
	if lvl, err := logrus.ParseLevel(c.LogLevel); err == nil {
		l.SetLevel(lvl)
	}
	if c.LogFormat == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

func printOutcome(w io.Writer, o api.Outcome, showBody bool) {
	if o.Failed() {
		fmt.Fprintf(w, "%s\t%s\terror: %v\n", o.ID, o.URL, o.Err)
		return
	}
	status := o.Response.StatusLine()
	if o.Response.Partial {
		status += " (partial)"
	}
	fmt.Fprintf(w, "%s\t%s\t%s\n", o.ID, o.URL, status)
	if !showBody {
		return
	}
	switch b := o.Response.Body.(type) {
	case []byte:
		fmt.Fprintf(w, "%s\n", b)
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		_ = enc.Encode(b)
	}
}
