// File: api/transport.go
// Author: momentics <momentics@gmail.com>
//
// Non-blocking socket primitives consumed by the client tasks.

package api

import "net/netip"

// Sockets abstracts raw non-blocking TCP socket operations so that tasks can
// run against the OS or against an in-memory network.
//
// Send and Recv return ErrWouldBlock when the call would block; Connect
// returns ErrInProgress when the connection is being established.
type Sockets interface {
	Open(addr netip.AddrPort) (fd int, err error)
	Connect(fd int, addr netip.AddrPort) error
	// PendingError returns the asynchronous connect result (SO_ERROR).
	PendingError(fd int) error
	Send(fd int, p []byte) (int, error)
	Recv(fd int, p []byte) (int, error)
	Close(fd int) error
}
