// File: client/task.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Suspendable request/response task. Each call to Start or Resume runs the
// task up to its next suspension point and reports the outcome as a Step.

package client

import (
	"errors"
	"fmt"
	"net/netip"

	"github.com/sirupsen/logrus"

	"github.com/momentics/hioload-fetch/api"
	"github.com/momentics/hioload-fetch/pool"
	"github.com/momentics/hioload-fetch/protocol"
)

// Phase is the position of a Task in its pipeline. Phases only move forward.
type Phase int

const (
	PhaseConnecting Phase = iota
	PhaseWriting
	PhaseReadingHeaders
	PhaseReadingBody
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseConnecting:
		return "connecting"
	case PhaseWriting:
		return "writing"
	case PhaseReadingHeaders:
		return "reading-headers"
	case PhaseReadingBody:
		return "reading-body"
	case PhaseDone:
		return "done"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// StepKind tags the variant held by a Step.
type StepKind int

const (
	StepSuspended StepKind = iota
	StepCompleted
	StepFailed
)

// Step is the result of advancing a Task: suspended on Interest, completed
// with Response, or failed with Err.
type Step struct {
	Kind     StepKind
	Interest api.Interest
	Response *api.Response
	Err      *api.Error
}

func suspended(i api.Interest) Step  { return Step{Kind: StepSuspended, Interest: i} }
func completed(r *api.Response) Step { return Step{Kind: StepCompleted, Response: r} }
func failed(err *api.Error) Step     { return Step{Kind: StepFailed, Err: err} }

// Terminal reports whether the step ended the task.
func (s Step) Terminal() bool { return s.Kind != StepSuspended }

var errTaskDone = errors.New("task already finished")

// TaskConfig carries the collaborators shared by all tasks of a scheduler.
type TaskConfig struct {
	Pool   *pool.BytePool
	Decode protocol.DecodeMode
	Logger logrus.FieldLogger
}

// Task performs one GET exchange over a socket it exclusively owns until it
// hands the socket back to the reactor for closing.
type Task struct {
	id       string
	url      string
	addr     netip.AddrPort
	request  []byte
	sockets  api.Sockets
	bufs     *pool.BytePool
	decode   protocol.DecodeMode
	log      logrus.FieldLogger
	parser   *protocol.ResponseParser
	phase    Phase
	fd       int
	started  bool
	owned    bool // socket registered with the reactor
	received int
}

// NewTask prepares a task fetching requestURI from host at addr.
func NewTask(id, rawURL, host, requestURI string, addr netip.AddrPort, sockets api.Sockets, cfg TaskConfig) *Task {
	if cfg.Pool == nil {
		cfg.Pool = pool.NewBytePool(pool.DefaultChunkSize)
	}
	if cfg.Logger == nil {
		cfg.Logger = discardLogger()
	}
	return &Task{
		id:      id,
		url:     rawURL,
		addr:    addr,
		request: protocol.EncodeRequest(host, requestURI),
		sockets: sockets,
		bufs:    cfg.Pool,
		decode:  cfg.Decode,
		log:     cfg.Logger.WithFields(logrus.Fields{"task": id, "addr": addr.String()}),
		parser:  protocol.NewResponseParser(),
		fd:      -1,
	}
}

func (t *Task) ID() string    { return t.id }
func (t *Task) URL() string   { return t.url }
func (t *Task) Phase() Phase  { return t.phase }
func (t *Task) Fd() int       { return t.fd }
func (t *Task) Received() int { return t.received }

// Start opens the socket, registers WRITE interest and initiates the
// connection. It suspends until the socket becomes writable.
func (t *Task) Start(r api.Reactor) Step {
	if t.started {
		return failed(api.NewError(api.KindUnknown, fmt.Errorf("task started twice")).WithTask(t.id))
	}
	t.started = true
	t.log.WithField("phase", t.phase).Info("connecting to server")

	fd, err := t.sockets.Open(t.addr)
	if err != nil {
		return t.fail(r, api.KindConnect, err)
	}
	t.fd = fd
	if err := r.Register(fd, api.InterestWrite, t.id); err != nil {
		_ = t.sockets.Close(fd)
		return t.fail(r, api.KindConnect, err)
	}
	t.owned = true
	if err := t.sockets.Connect(fd, t.addr); err != nil && !errors.Is(err, api.ErrInProgress) {
		return t.fail(r, api.KindConnect, err)
	}
	return suspended(api.InterestWrite)
}

// Resume advances the task after ev reported its socket ready.
func (t *Task) Resume(r api.Reactor, ev api.Event) Step {
	if t.phase == PhaseDone {
		return failed(api.NewError(api.KindUnknown, errTaskDone).WithTask(t.id))
	}
	if !t.started || ev.Fd != t.fd {
		return t.fail(r, api.KindUnknown, fmt.Errorf("resumed with fd %d, task owns fd %d", ev.Fd, t.fd))
	}
	switch t.phase {
	case PhaseConnecting, PhaseWriting:
		return t.write(r)
	default:
		return t.read(r)
	}
}

// Abort terminates a live task, releasing its socket.
func (t *Task) Abort(r api.Reactor, cause error) Step {
	if t.phase == PhaseDone {
		return failed(api.NewError(api.KindUnknown, errTaskDone).WithTask(t.id))
	}
	return t.fail(r, api.KindAborted, cause)
}

func (t *Task) write(r api.Reactor) Step {
	if t.phase == PhaseConnecting {
		if err := t.sockets.PendingError(t.fd); err != nil {
			return t.fail(r, api.KindConnect, err)
		}
		t.advance(PhaseWriting)
		t.log.WithField("phase", t.phase).Info("writing to server")
	}
	n, err := t.sockets.Send(t.fd, t.request)
	switch {
	case errors.Is(err, api.ErrWouldBlock):
		return suspended(api.InterestWrite)
	case err != nil:
		return t.fail(r, api.KindWrite, err)
	case n < len(t.request):
		return t.fail(r, api.KindWrite, fmt.Errorf("%w: sent %d of %d bytes", api.ErrPartialWrite, n, len(t.request)))
	}
	if err := r.Modify(t.fd, api.InterestRead, t.id); err != nil {
		return t.fail(r, api.KindWrite, err)
	}
	t.advance(PhaseReadingHeaders)
	t.log.WithField("phase", t.phase).Info("reading from server")
	return suspended(api.InterestRead)
}

func (t *Task) read(r api.Reactor) Step {
	buf := t.bufs.GetBuffer()
	defer t.bufs.PutBuffer(buf)

	n, err := t.sockets.Recv(t.fd, buf)
	switch {
	case errors.Is(err, api.ErrWouldBlock):
		return suspended(api.InterestRead)
	case err != nil:
		return t.fail(r, api.KindRead, err)
	case n == 0:
		t.log.WithField("phase", t.phase).Debug("peer closed connection")
		return t.finish(r)
	}
	t.received += n

	done, err := t.parser.Feed(buf[:n])
	if err != nil {
		return t.fail(r, api.KindFraming, err)
	}
	if t.phase == PhaseReadingHeaders && t.parser.State() == protocol.StateBody {
		t.advance(PhaseReadingBody)
	}
	if done {
		return t.finish(r)
	}
	return suspended(api.InterestRead)
}

// finish hands the socket back and builds the response from the parser.
func (t *Task) finish(r api.Reactor) Step {
	t.release(r)
	resp, err := t.parser.Finalize(t.decode)
	if err != nil {
		return t.fail(r, api.KindFraming, err)
	}
	t.advance(PhaseDone)
	entry := t.log.WithFields(logrus.Fields{"phase": t.phase, "bytes": t.received})
	if resp.Partial {
		entry.Warn("completed with partial response")
	} else {
		entry.Info("completed")
	}
	return completed(resp)
}

// fail releases the socket and terminates the task. Errors that already
// carry a kind keep it.
func (t *Task) fail(r api.Reactor, kind api.ErrorKind, err error) Step {
	from := t.phase
	t.release(r)
	t.phase = PhaseDone

	var e *api.Error
	if !errors.As(err, &e) {
		e = api.NewError(kind, err)
	}
	e.WithTask(t.id).WithContext("phase", from.String())
	t.log.WithFields(logrus.Fields{"phase": from, "kind": e.Kind}).WithError(e.Err).Warn("failed")
	return failed(e)
}

func (t *Task) release(r api.Reactor) {
	if !t.owned {
		return
	}
	t.owned = false
	if err := r.UnregisterAndClose(t.fd); err != nil {
		t.log.WithError(err).Debug("unregister")
	}
}

func (t *Task) advance(p Phase) {
	if p > t.phase {
		t.phase = p
	}
}
