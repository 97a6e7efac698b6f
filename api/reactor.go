// File: api/reactor.go
// Author: momentics <momentics@gmail.com>
//
// Defines the abstract interface for the readiness reactor used to multiplex
// many non-blocking sockets into a single blocking wait.

package api

// Reactor tracks registered sockets and reports which of them are ready.
// Implementations are driven from a single goroutine and are not safe for
// concurrent use.
type Reactor interface {
	// Register begins tracking fd for interest on behalf of tag.
	// Fails with ErrAlreadyRegistered if fd is already tracked.
	Register(fd int, interest Interest, tag string) error

	// Modify replaces the interest mask of an already registered fd.
	Modify(fd int, interest Interest, tag string) error

	// UnregisterAndClose stops tracking fd and closes it.
	UnregisterAndClose(fd int) error

	// Select blocks until at least one registered fd is ready.
	Select() ([]Event, error)

	// Len returns the number of live registrations.
	Len() int

	// Shutdown releases the underlying multiplexer.
	Shutdown() error
}
