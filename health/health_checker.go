// Package health evaluates service health from the upstream probe state.
package health

import (
	"math"
	"net/http"
	"time"

	"github.com/giygas/druglabel-checker/interfaces"
)

const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
	// StatusUnknown is reported before the first probe, or when probing is disabled.
	StatusUnknown = "unknown"
)

// unhealthyAfterFailures is the failure streak at which the upstream is
// considered down rather than flaky.
const unhealthyAfterFailures = 3

// ProbeSchedule reports when the next probe runs.
type ProbeSchedule interface {
	NextProbe() time.Time
}

// HealthCheckerImpl implements the interfaces.HealthChecker interface
type HealthCheckerImpl struct {
	status   interfaces.UpstreamStatus
	schedule ProbeSchedule
}

// NewHealthChecker creates a new health checker with injected dependencies.
// schedule may be nil.
func NewHealthChecker(status interfaces.UpstreamStatus, schedule ProbeSchedule) interfaces.HealthChecker {
	return &HealthCheckerImpl{
		status:   status,
		schedule: schedule,
	}
}

// HealthCheck returns HTTP-specific health data. The service itself has no
// state to lose, so health is the reachability of openFDA as last probed.
func (h *HealthCheckerImpl) HealthCheck() (status string, data map[string]any, httpStatus int) {
	last, probed := h.status.LastProbe()
	failures := h.status.ConsecutiveFailures()

	switch {
	case !probed:
		status = StatusUnknown
		httpStatus = http.StatusOK

	case last.Err == nil:
		status = StatusHealthy
		httpStatus = http.StatusOK

	case failures >= unhealthyAfterFailures:
		status = StatusUnhealthy
		httpStatus = http.StatusServiceUnavailable

	default:
		status = StatusDegraded
		httpStatus = http.StatusServiceUnavailable
	}

	upstream := map[string]any{
		"consecutive_failures": failures,
		"is_probing":           h.status.IsProbing(),
	}
	if probed {
		upstream["last_probe"] = last.At.Format(time.RFC3339)
		upstream["last_probe_ms"] = last.Duration.Milliseconds()
		upstream["reachable"] = last.Err == nil
		if last.Err != nil {
			upstream["last_error"] = last.Err.Error()
		}
	}
	if success := h.status.LastSuccess(); !success.IsZero() {
		upstream["last_success"] = success.Format(time.RFC3339)
	}
	if h.schedule != nil {
		if next := h.schedule.NextProbe(); !next.IsZero() {
			upstream["next_probe"] = next.Format(time.RFC3339)
		}
	}

	data = map[string]any{"upstream": upstream}
	if start := h.status.GetServerStartTime(); !start.IsZero() {
		data["uptime_hours"] = math.Round(time.Since(start).Hours()*10) / 10
	}

	return status, data, httpStatus
}
