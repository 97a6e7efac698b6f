// File: reactor/reactor.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral pieces shared by the reactor implementations.

package reactor

// DefaultMaxEvents bounds the number of events returned by one Select call.
const DefaultMaxEvents = 128
