// File: api/types.go
// Author: momentics <momentics@gmail.com>
//
// Shared API-level type declarations and constants.

package api

import "strings"

// Interest is the set of readiness events a registration waits for.
type Interest uint8

const (
	InterestRead Interest = 1 << iota
	InterestWrite
)

// Has reports whether all bits of o are set in i.
func (i Interest) Has(o Interest) bool {
	return o != 0 && i&o == o
}

func (i Interest) String() string {
	if i == 0 {
		return "NONE"
	}
	var parts []string
	if i&InterestRead != 0 {
		parts = append(parts, "READ")
	}
	if i&InterestWrite != 0 {
		parts = append(parts, "WRITE")
	}
	return strings.Join(parts, "|")
}

// Event is a single readiness notification produced by Reactor.Select.
type Event struct {
	Fd       int      // ready socket
	Tag      string   // owner of the registration, usually a task id
	Interest Interest // the part of the registered mask that fired
}
