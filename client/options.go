// File: client/options.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package client

import (
	"io"
	"net"

	"github.com/sirupsen/logrus"

	"github.com/momentics/hioload-fetch/api"
	"github.com/momentics/hioload-fetch/control"
	"github.com/momentics/hioload-fetch/pool"
)

// Observer is called once per task as soon as its outcome is recorded. It
// runs on the scheduler goroutine and must not block.
type Observer func(api.Outcome)

// Option customizes a Scheduler.
type Option func(*options)

type options struct {
	cfg      control.Config
	log      logrus.FieldLogger
	resolver Resolver
	metrics  *control.MetricsRegistry
	bufs     *pool.BytePool
	observer Observer
}

func newOptions(opts []Option) options {
	o := options{cfg: control.DefaultConfig()}
	for _, fn := range opts {
		fn(&o)
	}
	if o.log == nil {
		o.log = discardLogger()
	}
	if o.resolver == nil {
		o.resolver = net.DefaultResolver
	}
	if o.metrics == nil {
		o.metrics = control.NewMetricsRegistry()
	}
	if o.bufs == nil {
		o.bufs = pool.NewBytePool(o.cfg.ChunkSize)
	}
	return o
}

// WithConfig sets port, chunk size, reactor batch size and decode mode.
func WithConfig(cfg control.Config) Option {
	return func(o *options) {
		o.cfg = cfg
	}
}

// WithLogger routes trace output to l.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *options) {
		o.log = l
	}
}

// WithResolver overrides net.DefaultResolver.
func WithResolver(r Resolver) Option {
	return func(o *options) {
		o.resolver = r
	}
}

// WithMetrics records counters into mr.
func WithMetrics(mr *control.MetricsRegistry) Option {
	return func(o *options) {
		o.metrics = mr
	}
}

// WithBytePool shares a receive chunk pool.
func WithBytePool(bp *pool.BytePool) Option {
	return func(o *options) {
		o.bufs = bp
	}
}

// WithObserver streams outcomes as tasks finish.
func WithObserver(fn Observer) Option {
	return func(o *options) {
		o.observer = fn
	}
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
