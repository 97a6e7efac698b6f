// File: client/scheduler.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Single-goroutine cooperative scheduler: waits on the reactor and resumes
// the task owning each ready socket.

package client

import (
	"context"
	"fmt"
	"sort"

	"github.com/eapache/queue"
	"github.com/sirupsen/logrus"

	"github.com/momentics/hioload-fetch/api"
	"github.com/momentics/hioload-fetch/control"
)

// Scheduler owns a reactor, the live tasks and the collected outcomes. A task
// id is always in exactly one of the two registries. Scheduler is not safe
// for concurrent use; Submit and Run must be called from one goroutine.
type Scheduler struct {
	reactor api.Reactor
	sockets api.Sockets
	opts    options
	log     logrus.FieldLogger

	seq     int
	alive   map[string]*Task
	results map[string]api.Outcome
	order   []string
	ready   *queue.Queue
	closed  bool
}

// NewScheduler builds a scheduler driving tasks over sockets and r.
func NewScheduler(r api.Reactor, sockets api.Sockets, opts ...Option) *Scheduler {
	o := newOptions(opts)
	return &Scheduler{
		reactor: r,
		sockets: sockets,
		opts:    o,
		log:     o.log.WithField("component", "scheduler"),
		alive:   make(map[string]*Task),
		results: make(map[string]api.Outcome),
		ready:   queue.New(),
	}
}

// Submit creates a task for rawURL and runs it to its first suspension
// point. The returned id identifies the task's outcome. URL and name
// resolution failures are recorded as connect failures.
func (s *Scheduler) Submit(ctx context.Context, rawURL string) string {
	id := fmt.Sprintf("task-%d", s.seq)
	s.seq++
	s.opts.metrics.Add(control.MetricTasksSubmitted, 1)

	if s.closed {
		s.record(id, rawURL, 0, nil, api.NewError(api.KindAborted, api.ErrReactorClosed).WithTask(id))
		return id
	}
	tgt, err := parseTarget(rawURL, s.opts.cfg.Port)
	if err != nil {
		s.record(id, rawURL, 0, nil, api.NewError(api.KindConnect, err).WithTask(id))
		return id
	}
	addr, err := resolve(ctx, s.opts.resolver, tgt)
	if err != nil {
		s.record(id, rawURL, 0, nil, api.NewError(api.KindConnect, err).WithTask(id))
		return id
	}

	t := NewTask(id, rawURL, tgt.host, tgt.requestURI, addr, s.sockets, TaskConfig{
		Pool:   s.opts.bufs,
		Decode: s.opts.cfg.Decode,
		Logger: s.opts.log,
	})
	s.apply(t, t.Start(s.reactor))
	return id
}

// Run drives all submitted tasks until none is alive, then shuts the reactor
// down. Outcomes are returned in completion order. If the loop fails, the
// remaining tasks are aborted and the error is returned with the outcomes
// collected so far.
//
// A task whose peer never closes and sends no Content-Length keeps Run
// blocked; use WithObserver to consume finished outcomes meanwhile.
func (s *Scheduler) Run() (outcomes []api.Outcome, err error) {
	defer func() {
		if err != nil {
			s.abortAlive(err)
		}
		if serr := s.shutdown(); serr != nil && err == nil {
			err = serr
		}
		outcomes = s.Results()
	}()

	seen := make(map[string]struct{})
	for len(s.alive) > 0 {
		s.log.WithField("alive", len(s.alive)).Debug("waiting for events")
		events, err := s.reactor.Select()
		s.opts.metrics.Add(control.MetricSelectCalls, 1)
		if err != nil {
			return nil, fmt.Errorf("select: %w", err)
		}
		for _, ev := range events {
			s.ready.Add(ev)
		}
		clear(seen)
		for s.ready.Length() > 0 {
			s.dispatch(s.ready.Remove().(api.Event), seen)
		}
	}
	s.log.Debug("all tasks finished")
	return nil, nil
}

func (s *Scheduler) dispatch(ev api.Event, seen map[string]struct{}) {
	entry := s.log.WithFields(logrus.Fields{"task": ev.Tag, "event": ev.Interest})
	// At most one resumption per task per wait cycle.
	if _, dup := seen[ev.Tag]; dup {
		entry.Debug("duplicate event dropped")
		return
	}
	seen[ev.Tag] = struct{}{}
	t, ok := s.alive[ev.Tag]
	if !ok {
		entry.Debug("event for unknown task dropped")
		return
	}
	delete(s.alive, ev.Tag)
	s.opts.metrics.Add(control.MetricEventsDispatched, 1)
	entry.Debug("resuming task")
	s.apply(t, t.Resume(s.reactor, ev))
}

func (s *Scheduler) apply(t *Task, st Step) {
	switch st.Kind {
	case StepSuspended:
		s.alive[t.ID()] = t
	case StepCompleted:
		s.record(t.ID(), t.URL(), t.Received(), st.Response, nil)
	case StepFailed:
		s.record(t.ID(), t.URL(), t.Received(), nil, st.Err)
	}
}

func (s *Scheduler) record(id, url string, received int, resp *api.Response, e *api.Error) {
	out := api.Outcome{ID: id, URL: url, Response: resp}
	if e != nil {
		out.Err = e
		s.opts.metrics.Add(control.MetricTasksFailed, 1)
	} else {
		s.opts.metrics.Add(control.MetricTasksCompleted, 1)
	}
	s.opts.metrics.Add(control.MetricBytesReceived, int64(received))
	s.results[id] = out
	s.order = append(s.order, id)
	s.log.WithFields(logrus.Fields{"task": id, "failed": out.Failed()}).Info("task finished")
	if s.opts.observer != nil {
		s.opts.observer(out)
	}
}

func (s *Scheduler) abortAlive(cause error) {
	ids := make([]string, 0, len(s.alive))
	for id := range s.alive {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		t := s.alive[id]
		delete(s.alive, id)
		s.apply(t, t.Abort(s.reactor, cause))
	}
}

func (s *Scheduler) shutdown() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.reactor.Shutdown()
}

// Results returns the outcomes recorded so far in completion order.
func (s *Scheduler) Results() []api.Outcome {
	out := make([]api.Outcome, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.results[id])
	}
	return out
}

// Alive returns the number of tasks still in flight.
func (s *Scheduler) Alive() int { return len(s.alive) }

// Metrics returns the scheduler's counter registry.
func (s *Scheduler) Metrics() *control.MetricsRegistry { return s.opts.metrics }
