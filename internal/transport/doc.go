// File: internal/transport/doc.go
// Package transport
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Raw non-blocking TCP socket primitives for the fetch tasks, strictly
// separated by build tags. Linux maps EAGAIN and EINPROGRESS onto
// api.ErrWouldBlock and api.ErrInProgress; other platforms report
// api.ErrNotSupported.

package transport
