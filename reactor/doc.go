// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package reactor provides the readiness reactor used by the fetch scheduler:
// an epoll(7)-backed implementation of api.Reactor on Linux and a stub that
// reports api.ErrNotSupported elsewhere.
//
// A reactor keeps at most one registration per socket. Interest changes
// replace the mask instead of merging it, and the tag given at registration
// is reported back with every readiness event for that socket.
package reactor
