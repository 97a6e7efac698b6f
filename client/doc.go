// Package client implements concurrent HTTP GET requests on a single
// goroutine: a cooperative Scheduler drives one suspendable Task per URL over
// raw non-blocking sockets and a readiness reactor.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Core design:
//   - Task is an explicit state machine (Connecting, Writing, ReadingHeaders,
//     ReadingBody, Done) advanced by Start and Resume; every call returns a Step
//     that either suspends on an interest or terminates the task
//   - Scheduler owns the reactor and the alive/result registries and routes
//     each readiness event to the task that registered the socket
//   - Results arrive in readiness order, not submission order
//   - No TLS, keep-alive, chunked bodies, timeouts or cancellation
package client
