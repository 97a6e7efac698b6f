// internal/transport/sockets_linux.go
//go:build linux
// +build linux

//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Linux non-blocking TCP sockets over golang.org/x/sys/unix.

package transport

import (
	"fmt"
	"net/netip"

	"github.com/momentics/hioload-fetch/api"
	"golang.org/x/sys/unix"
)

type linuxSockets struct{}

// NewSockets returns the OS socket implementation.
func NewSockets() api.Sockets {
	return linuxSockets{}
}

func sockaddr(addr netip.AddrPort) (unix.Sockaddr, int) {
	ip := addr.Addr().Unmap()
	if ip.Is4() {
		return &unix.SockaddrInet4{Port: int(addr.Port()), Addr: ip.As4()}, unix.AF_INET
	}
	return &unix.SockaddrInet6{Port: int(addr.Port()), Addr: ip.As16()}, unix.AF_INET6
}

// Open creates a non-blocking TCP socket of the address family of addr.
func (linuxSockets) Open(addr netip.AddrPort) (int, error) {
	_, family := sockaddr(addr)
	fd, err := unix.Socket(family, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, unix.IPPROTO_TCP)
	if err != nil {
		return -1, fmt.Errorf("socket create: %w", err)
	}
	_ = unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_NODELAY, 1)
	return fd, nil
}

// Connect starts a connection; api.ErrInProgress is the normal result.
func (linuxSockets) Connect(fd int, addr netip.AddrPort) error {
	sa, _ := sockaddr(addr)
	err := unix.Connect(fd, sa)
	switch err {
	case nil:
		return nil
	case unix.EINPROGRESS, unix.EINTR:
		return api.ErrInProgress
	}
	return fmt.Errorf("connect %s: %w", addr, err)
}

func (linuxSockets) PendingError(fd int) error {
	v, err := unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_ERROR)
	if err != nil {
		return fmt.Errorf("getsockopt SO_ERROR: %w", err)
	}
	if v != 0 {
		return unix.Errno(v)
	}
	return nil
}

func (linuxSockets) Send(fd int, p []byte) (int, error) {
	for {
		n, err := unix.SendmsgN(fd, p, nil, nil, unix.MSG_NOSIGNAL)
		switch err {
		case nil:
			return n, nil
		case unix.EINTR:
			continue
		case unix.EAGAIN:
			return 0, api.ErrWouldBlock
		}
		return 0, fmt.Errorf("send: %w", err)
	}
}

func (linuxSockets) Recv(fd int, p []byte) (int, error) {
	for {
		n, _, err := unix.Recvfrom(fd, p, 0)
		switch err {
		case nil:
			return n, nil
		case unix.EINTR:
			continue
		case unix.EAGAIN:
			return 0, api.ErrWouldBlock
		}
		return 0, fmt.Errorf("recv: %w", err)
	}
}

func (linuxSockets) Close(fd int) error {
	return unix.Close(fd)
}
