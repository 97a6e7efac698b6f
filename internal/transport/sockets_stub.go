// internal/transport/sockets_stub.go
//go:build !linux
// +build !linux

//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package transport

import (
	"net/netip"

	"github.com/momentics/hioload-fetch/api"
)

type stubSockets struct{}

// NewSockets returns an implementation that fails every call.
func NewSockets() api.Sockets {
	return stubSockets{}
}

func (stubSockets) Open(netip.AddrPort) (int, error)  { return -1, api.ErrNotSupported }
func (stubSockets) Connect(int, netip.AddrPort) error { return api.ErrNotSupported }
func (stubSockets) PendingError(int) error            { return api.ErrNotSupported }
func (stubSockets) Send(int, []byte) (int, error)     { return 0, api.ErrNotSupported }
func (stubSockets) Recv(int, []byte) (int, error)     { return 0, api.ErrNotSupported }
func (stubSockets) Close(int) error                   { return api.ErrNotSupported }
