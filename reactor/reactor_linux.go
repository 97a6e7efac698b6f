//go:build linux
// +build linux

// File: reactor/reactor_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux epoll(7)-based reactor implementation and factory.

package reactor

import (
	"fmt"

	"github.com/momentics/hioload-fetch/api"
	"golang.org/x/sys/unix"
)

type registration struct {
	interest api.Interest
	tag      string
}

// epollReactor is a level-triggered epoll reactor. It is owned by a single
// scheduler goroutine, so the registration table needs no locking.
type epollReactor struct {
	epfd   int
	regs   map[int]registration
	events []unix.EpollEvent
	closed bool
}

// New constructs a new epoll reactor returning at most maxEvents per Select.
func New(maxEvents int) (api.Reactor, error) {
	if maxEvents <= 0 {
		maxEvents = DefaultMaxEvents
	}
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("epoll create: %w", err)
	}
	return &epollReactor{
		epfd:   epfd,
		regs:   make(map[int]registration),
		events: make([]unix.EpollEvent, maxEvents),
	}, nil
}

func epollMask(i api.Interest) uint32 {
	var m uint32
	if i&api.InterestRead != 0 {
		m |= unix.EPOLLIN
	}
	if i&api.InterestWrite != 0 {
		m |= unix.EPOLLOUT
	}
	return m
}

// Register adds fd to the epoll interest list.
func (r *epollReactor) Register(fd int, interest api.Interest, tag string) error {
	if r.closed {
		return api.ErrReactorClosed
	}
	if _, ok := r.regs[fd]; ok {
		return fmt.Errorf("register fd=%d: %w", fd, api.ErrAlreadyRegistered)
	}
	ev := unix.EpollEvent{Events: epollMask(interest), Fd: int32(fd)}
	if err := unix.EpollCtl(r.epfd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
		return fmt.Errorf("epoll ctl add: %w", err)
	}
	r.regs[fd] = registration{interest: interest, tag: tag}
	return nil
}

// Modify replaces the interest mask of fd.
func (r *epollReactor) Modify(fd int, interest api.Interest, tag string) error {
	if r.closed {
		return api.ErrReactorClosed
	}
	if _, ok := r.regs[fd]; !ok {
		return fmt.Errorf("modify fd=%d: %w", fd, api.ErrNotRegistered)
	}
	ev := unix.EpollEvent{Events: epollMask(interest), Fd: int32(fd)}
	if err := unix.EpollCtl(r.epfd, unix.EPOLL_CTL_MOD, fd, &ev); err != nil {
		return fmt.Errorf("epoll ctl mod: %w", err)
	}
	r.regs[fd] = registration{interest: interest, tag: tag}
	return nil
}

// UnregisterAndClose removes fd from epoll and closes it. The socket is
// closed even when the epoll removal fails.
func (r *epollReactor) UnregisterAndClose(fd int) error {
	if _, ok := r.regs[fd]; !ok {
		return fmt.Errorf("unregister fd=%d: %w", fd, api.ErrNotRegistered)
	}
	delete(r.regs, fd)
	var delErr error
	if !r.closed {
		if err := unix.EpollCtl(r.epfd, unix.EPOLL_CTL_DEL, fd, nil); err != nil {
			delErr = fmt.Errorf("epoll ctl del: %w", err)
		}
	}
	if err := unix.Close(fd); err != nil {
		return fmt.Errorf("close fd=%d: %w", fd, err)
	}
	return delErr
}

// Select blocks until at least one registered socket is ready.
func (r *epollReactor) Select() ([]api.Event, error) {
	if r.closed {
		return nil, api.ErrReactorClosed
	}
	if len(r.regs) == 0 {
		return nil, api.ErrNoRegistrations
	}
	var n int
	for {
		var err error
		n, err = unix.EpollWait(r.epfd, r.events, -1)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("epoll wait: %w", err)
		}
		break
	}

	out := make([]api.Event, 0, n)
	for _, ev := range r.events[:n] {
		fd := int(ev.Fd)
		reg, ok := r.regs[fd]
		if !ok {
			continue
		}
		var fired api.Interest
		if ev.Events&unix.EPOLLIN != 0 {
			fired |= api.InterestRead
		}
		if ev.Events&unix.EPOLLOUT != 0 {
			fired |= api.InterestWrite
		}
		// Errors surface on the owner's next I/O call.
		if ev.Events&(unix.EPOLLERR|unix.EPOLLHUP) != 0 {
			fired = reg.interest
		}
		fired &= reg.interest
		if fired == 0 {
			continue
		}
		out = append(out, api.Event{Fd: fd, Tag: reg.tag, Interest: fired})
	}
	return out, nil
}

func (r *epollReactor) Len() int { return len(r.regs) }

// Shutdown closes the epoll instance. Sockets still registered are left to
// their owners.
func (r *epollReactor) Shutdown() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return unix.Close(r.epfd)
}
