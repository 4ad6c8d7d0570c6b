// Package status holds the upstream probe state shared by the scheduler, the
// health checker and the HTTP handlers. All access is lock-free through atomics.
package status

import (
	"sync/atomic"
	"time"

	"github.com/giygas/druglabel-checker/interfaces"
	"github.com/giygas/druglabel-checker/logging"
)

// Compile-time check to ensure Container implements UpstreamStatus
var _ interfaces.UpstreamStatus = (*Container)(nil)

// Container holds the latest probe state with atomic values.
type Container struct {
	lastProbe       atomic.Pointer[interfaces.ProbeResult]
	lastSuccess     atomic.Value // time.Time
	failures        atomic.Int64
	probing         atomic.Bool
	serverStartTime atomic.Value // time.Time
}

// NewContainer creates a container with no recorded probe.
func NewContainer() *Container {
	c := &Container{}
	c.lastSuccess.Store(time.Time{})
	c.serverStartTime.Store(time.Time{})
	return c
}

// RecordProbe stores result as the latest probe. A successful probe resets the
// failure streak.
func (c *Container) RecordProbe(result interfaces.ProbeResult) {
	if result.At.IsZero() {
		result.At = time.Now()
	}
	c.lastProbe.Store(&result)

	if result.Err != nil {
		c.failures.Add(1)
		return
	}
	c.failures.Store(0)
	c.lastSuccess.Store(result.At)
}

// LastProbe returns the latest probe and whether one was recorded.
func (c *Container) LastProbe() (interfaces.ProbeResult, bool) {
	if p := c.lastProbe.Load(); p != nil {
		return *p, true
	}
	return interfaces.ProbeResult{}, false
}

// LastSuccess returns the time of the latest successful probe, or the zero time.
func (c *Container) LastSuccess() time.Time {
	if v := c.lastSuccess.Load(); v != nil {
		if at, ok := v.(time.Time); ok {
			return at
		}
	}

	logging.Warn("Could not get the last successful probe time")
	return time.Time{}
}

// ConsecutiveFailures returns the number of failed probes since the last success.
func (c *Container) ConsecutiveFailures() int {
	return int(c.failures.Load())
}

// BeginProbe marks the start of a probe.
// Returns true if the probe can proceed, false if another one is running.
func (c *Container) BeginProbe() bool {
	return c.probing.CompareAndSwap(false, true)
}

// EndProbe marks the end of a probe
func (c *Container) EndProbe() {
	c.probing.Store(false)
}

// IsProbing returns true while a probe is in flight
func (c *Container) IsProbing() bool {
	return c.probing.Load()
}

// SetServerStartTime sets the server start time
func (c *Container) SetServerStartTime(startTime time.Time) {
	c.serverStartTime.Store(startTime)
}

// GetServerStartTime returns the server start time
func (c *Container) GetServerStartTime() time.Time {
	if v := c.serverStartTime.Load(); v != nil {
		if startTime, ok := v.(time.Time); ok {
			return startTime
		}
	}

	logging.Warn("Could not get the server start time value")
	return time.Time{}
}
