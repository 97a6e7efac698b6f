// control/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Runtime counters exported by the scheduler loop.

package control

import (
	"sync"
	"time"
)

// Counter names maintained by the scheduler.
const (
	MetricTasksSubmitted   = "tasks_submitted"
	MetricTasksCompleted   = "tasks_completed"
	MetricTasksFailed      = "tasks_failed"
	MetricEventsDispatched = "events_dispatched"
	MetricSelectCalls      = "select_calls"
	MetricBytesReceived    = "bytes_received"
)

// MetricsRegistry holds named counters.
type MetricsRegistry struct {
	mu       sync.RWMutex
	counters map[string]int64
	updated  time.Time
}

// NewMetricsRegistry creates an empty registry.
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		counters: make(map[string]int64),
	}
}

// Add increments counter key by delta.
func (mr *MetricsRegistry) Add(key string, delta int64) {
	mr.mu.Lock()
	mr.counters[key] += delta
	mr.updated = time.Now()
	mr.mu.Unlock()
}

// Get returns the current value of key.
func (mr *MetricsRegistry) Get(key string) int64 {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	return mr.counters[key]
}

// GetSnapshot returns a copy of all counters.
func (mr *MetricsRegistry) GetSnapshot() map[string]int64 {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	out := make(map[string]int64, len(mr.counters))
	for k, v := range mr.counters {
		out[k] = v
	}
	return out
}

// Updated returns the time of the last Add.
func (mr *MetricsRegistry) Updated() time.Time {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	return mr.updated
}
