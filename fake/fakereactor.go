// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT

package fake

import (
	"errors"
	"fmt"
	"sort"

	"github.com/momentics/hioload-fetch/api"
)

// ErrStalled is returned by Reactor.Select when no registered socket can
// ever become ready. A real reactor would block forever instead.
var ErrStalled = errors.New("fake: no registered socket can become ready")

type registration struct {
	interest api.Interest
	tag      string
}

// Reactor is a deterministic api.Reactor over a Network. Readiness is derived
// from the scripted peers instead of the OS.
type Reactor struct {
	// Reverse delivers ready events in descending descriptor order.
	Reverse bool
	// Duplicate repeats every event within the same Select batch.
	Duplicate bool
	// SelectErr, when set, is returned by the next Select.
	SelectErr error

	Net           *Network
	SelectCalls   int
	ShutdownCalls int

	regs   map[int]registration
	closed bool
}

// NewReactor returns a reactor bound to net.
func NewReactor(net *Network) *Reactor {
	return &Reactor{
		Net:  net,
		regs: make(map[int]registration),
	}
}

func (r *Reactor) Register(fd int, interest api.Interest, tag string) error {
	if r.closed {
		return api.ErrReactorClosed
	}
	if _, ok := r.regs[fd]; ok {
		return fmt.Errorf("register fd=%d: %w", fd, api.ErrAlreadyRegistered)
	}
	r.regs[fd] = registration{interest: interest, tag: tag}
	return nil
}

func (r *Reactor) Modify(fd int, interest api.Interest, tag string) error {
	if r.closed {
		return api.ErrReactorClosed
	}
	if _, ok := r.regs[fd]; !ok {
		return fmt.Errorf("modify fd=%d: %w", fd, api.ErrNotRegistered)
	}
	r.regs[fd] = registration{interest: interest, tag: tag}
	return nil
}

func (r *Reactor) UnregisterAndClose(fd int) error {
	if _, ok := r.regs[fd]; !ok {
		return fmt.Errorf("unregister fd=%d: %w", fd, api.ErrNotRegistered)
	}
	delete(r.regs, fd)
	return r.Net.Close(fd)
}

func (r *Reactor) Select() ([]api.Event, error) {
	r.SelectCalls++
	if r.closed {
		return nil, api.ErrReactorClosed
	}
	if err := r.SelectErr; err != nil {
		r.SelectErr = nil
		return nil, err
	}
	if len(r.regs) == 0 {
		return nil, api.ErrNoRegistrations
	}
	fds := make([]int, 0, len(r.regs))
	for fd := range r.regs {
		fds = append(fds, fd)
	}
	if r.Reverse {
		sort.Sort(sort.Reverse(sort.IntSlice(fds)))
	} else {
		sort.Ints(fds)
	}

	var out []api.Event
	for _, fd := range fds {
		reg := r.regs[fd]
		var fired api.Interest
		if reg.interest.Has(api.InterestWrite) && r.Net.Writable(fd) {
			fired |= api.InterestWrite
		}
		if reg.interest.Has(api.InterestRead) && r.Net.Readable(fd) {
			fired |= api.InterestRead
		}
		if fired == 0 {
			continue
		}
		ev := api.Event{Fd: fd, Tag: reg.tag, Interest: fired}
		out = append(out, ev)
		if r.Duplicate {
			out = append(out, ev)
		}
	}
	if len(out) == 0 {
		return nil, ErrStalled
	}
	return out, nil
}

func (r *Reactor) Len() int { return len(r.regs) }

// Registered returns the interest currently registered for fd.
func (r *Reactor) Registered(fd int) (api.Interest, bool) {
	reg, ok := r.regs[fd]
	return reg.interest, ok
}

func (r *Reactor) Shutdown() error {
	r.ShutdownCalls++
	r.closed = true
	return nil
}
