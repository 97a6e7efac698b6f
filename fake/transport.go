// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT

package fake

import (
	"errors"
	"fmt"
	"net/netip"

	"github.com/eapache/queue"

	"github.com/momentics/hioload-fetch/api"
)

// ErrRefused is returned by Connect when no Peer was scripted for an address.
var ErrRefused = errors.New("fake: connection refused")

// Peer scripts the remote side of one connection.
type Peer struct {
	ConnectErr error    // returned by Connect instead of api.ErrInProgress
	PendingErr error    // reported through PendingError once writable
	SendErr    error    // returned by Send
	ShortWrite bool     // Send accepts one byte less than offered
	Chunks     [][]byte // delivered one Recv at a time, split if p is short
	Spurious   int      // Recv calls answering api.ErrWouldBlock first
	RecvErr    error    // returned once Chunks are drained
	Close      bool     // orderly close once Chunks are drained
}

type conn struct {
	addr      netip.AddrPort
	peer      Peer
	connected bool
	sent      []byte
	closes    int
}

// Network is an in-memory api.Sockets. Each Open yields a new descriptor and
// each Connect consumes the next Peer scripted for the target address.
type Network struct {
	// OpenErr, when set, fails every Open.
	OpenErr error

	scripts map[netip.AddrPort]*queue.Queue
	conns   map[int]*conn
	nextFD  int
}

// NewNetwork returns an empty network.
func NewNetwork() *Network {
	return &Network{
		scripts: make(map[netip.AddrPort]*queue.Queue),
		conns:   make(map[int]*conn),
		nextFD:  100,
	}
}

// Expect scripts the next connection to addr.
func (n *Network) Expect(addr netip.AddrPort, p Peer) {
	q, ok := n.scripts[addr]
	if !ok {
		q = queue.New()
		n.scripts[addr] = q
	}
	q.Add(p)
}

func (n *Network) conn(fd int) (*conn, error) {
	c, ok := n.conns[fd]
	if !ok {
		return nil, fmt.Errorf("fake: bad descriptor %d", fd)
	}
	return c, nil
}

func (n *Network) Open(addr netip.AddrPort) (int, error) {
	if n.OpenErr != nil {
		return -1, n.OpenErr
	}
	fd := n.nextFD
	n.nextFD++
	n.conns[fd] = &conn{addr: addr}
	return fd, nil
}

func (n *Network) Connect(fd int, addr netip.AddrPort) error {
	c, err := n.conn(fd)
	if err != nil {
		return err
	}
	q, ok := n.scripts[addr]
	if !ok || q.Length() == 0 {
		return fmt.Errorf("connect %s: %w", addr, ErrRefused)
	}
	c.peer = q.Remove().(Peer)
	c.peer.Chunks = append([][]byte(nil), c.peer.Chunks...)
	if c.peer.ConnectErr != nil {
		return c.peer.ConnectErr
	}
	c.connected = true
	return api.ErrInProgress
}

func (n *Network) PendingError(fd int) error {
	c, err := n.conn(fd)
	if err != nil {
		return err
	}
	return c.peer.PendingErr
}

func (n *Network) Send(fd int, p []byte) (int, error) {
	c, err := n.conn(fd)
	if err != nil {
		return 0, err
	}
	if c.peer.SendErr != nil {
		return 0, c.peer.SendErr
	}
	k := len(p)
	if c.peer.ShortWrite && k > 0 {
		k--
	}
	c.sent = append(c.sent, p[:k]...)
	return k, nil
}

func (n *Network) Recv(fd int, p []byte) (int, error) {
	c, err := n.conn(fd)
	if err != nil {
		return 0, err
	}
	switch {
	case c.peer.Spurious > 0:
		c.peer.Spurious--
		return 0, api.ErrWouldBlock
	case len(c.peer.Chunks) > 0:
		chunk := c.peer.Chunks[0]
		k := copy(p, chunk)
		if k < len(chunk) {
			c.peer.Chunks[0] = chunk[k:]
		} else {
			c.peer.Chunks = c.peer.Chunks[1:]
		}
		return k, nil
	case c.peer.RecvErr != nil:
		return 0, c.peer.RecvErr
	case c.peer.Close:
		return 0, nil
	}
	return 0, api.ErrWouldBlock
}

// Close records the close. Closing twice is reported as an error but still
// counted so tests can detect it.
func (n *Network) Close(fd int) error {
	c, err := n.conn(fd)
	if err != nil {
		return err
	}
	c.closes++
	if c.closes > 1 {
		return fmt.Errorf("fake: descriptor %d closed %d times", fd, c.closes)
	}
	return nil
}

// Writable reports whether fd has finished connecting.
func (n *Network) Writable(fd int) bool {
	c, ok := n.conns[fd]
	return ok && c.connected && c.closes == 0
}

// Readable reports whether a Recv on fd would make progress or observe a
// spurious wake-up.
func (n *Network) Readable(fd int) bool {
	c, ok := n.conns[fd]
	if !ok || !c.connected || c.closes > 0 {
		return false
	}
	p := c.peer
	return p.Spurious > 0 || len(p.Chunks) > 0 || p.RecvErr != nil || p.Close
}

// Sent returns everything written on fd.
func (n *Network) Sent(fd int) []byte {
	if c, ok := n.conns[fd]; ok {
		return c.sent
	}
	return nil
}

// CloseCount returns how many times fd was closed.
func (n *Network) CloseCount(fd int) int {
	if c, ok := n.conns[fd]; ok {
		return c.closes
	}
	return 0
}

// Descriptors returns every descriptor handed out by Open.
func (n *Network) Descriptors() []int {
	fds := make([]int, 0, len(n.conns))
	for fd := n.nextFD - len(n.conns); fd < n.nextFD; fd++ {
		fds = append(fds, fd)
	}
	return fds
}
