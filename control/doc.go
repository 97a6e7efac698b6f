// Package control
// Author: momentics <momentics@gmail.com>
//
// Configuration and runtime metrics for hioload-fetch.
//
// Provides concurrent-safe state handling primitives including:
//   - Typed configuration snapshots with validated key/value updates
//   - Reload observers notified after every successful update
//   - Counter metrics exported by the scheduler loop
package control
