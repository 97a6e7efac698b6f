// File: client/facade.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package client

import (
	"context"
	"fmt"

	"github.com/momentics/hioload-fetch/api"
	"github.com/momentics/hioload-fetch/control"
	"github.com/momentics/hioload-fetch/internal/transport"
	"github.com/momentics/hioload-fetch/reactor"
)

var newReactor = reactor.New

// Fetch GETs every URL concurrently on the calling goroutine using the
// platform reactor and returns one outcome per URL in completion order.
// If no reactor can be created every URL is reported aborted.
func Fetch(ctx context.Context, urls []string, opts ...Option) ([]api.Outcome, error) {
	o := newOptions(opts)
	r, err := newReactor(o.cfg.MaxEvents)
	if err != nil {
		err = fmt.Errorf("reactor: %w", err)
		return abortAll(urls, o, err), err
	}
	s := NewScheduler(r, transport.NewSockets(), opts...)
	for _, u := range urls {
		s.Submit(ctx, u)
	}
	return s.Run()
}

func abortAll(urls []string, o options, cause error) []api.Outcome {
	outs := make([]api.Outcome, 0, len(urls))
	for i, u := range urls {
		id := fmt.Sprintf("task-%d", i)
		out := api.Outcome{ID: id, URL: u, Err: api.NewError(api.KindAborted, cause).WithTask(id)}
		o.metrics.Add(control.MetricTasksSubmitted, 1)
		o.metrics.Add(control.MetricTasksFailed, 1)
		if o.observer != nil {
			o.observer(out)
		}
		outs = append(outs, out)
	}
	return outs
}
