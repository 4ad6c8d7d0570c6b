// Package scheduler runs the background reachability probe against openFDA.
// A probe is a real label lookup for a well-known drug; its outcome is stored
// in the status container and mirrored into the upstream metrics gauge.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/giygas/druglabel-checker/interactions"
	"github.com/giygas/druglabel-checker/interfaces"
	"github.com/giygas/druglabel-checker/logging"
	"github.com/giygas/druglabel-checker/metrics"
	"github.com/go-co-op/gocron"
)

// Compile-time check to ensure Scheduler implements Scheduler interface
var _ interfaces.Scheduler = (*Scheduler)(nil)

// failureWarnThreshold is the failure streak after which every failed probe is
// logged as an error instead of a warning.
const failureWarnThreshold = 3

// Options configures the probe job.
type Options struct {
	// Interval between probes. Zero disables the probe.
	Interval time.Duration
	// Drug is the name looked up by each probe.
	Drug string
	// Timeout bounds a single probe.
	Timeout time.Duration
}

// Scheduler probes openFDA on an interval using injected dependencies
type Scheduler struct {
	status    interfaces.UpstreamStatus
	source    interactions.LabelSource
	opts      Options
	scheduler *gocron.Scheduler
	job       *gocron.Job
}

// NewScheduler creates a new scheduler instance with injected dependencies
func NewScheduler(status interfaces.UpstreamStatus, source interactions.LabelSource, opts Options) *Scheduler {
	s := gocron.NewScheduler(time.Local)
	s.SingletonModeAll()
	return &Scheduler{
		status:    status,
		source:    source,
		opts:      opts,
		scheduler: s,
	}
}

// Start schedules the probe. The first probe runs immediately in the
// background; an unreachable upstream does not fail Start.
func (s *Scheduler) Start() error {
	if s.opts.Interval <= 0 {
		logging.Info("Upstream probe disabled")
		return nil
	}

	job, err := s.scheduler.Every(s.opts.Interval).Do(s.probe)
	if err != nil {
		logging.Error("Failed to schedule upstream probe", "error", err)
		return fmt.Errorf("failed to schedule upstream probe: %w", err)
	}
	s.job = job

	s.scheduler.StartAsync()
	logging.Info("Upstream probe scheduled", "interval", s.opts.Interval.String(), "drug", s.opts.Drug)

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// NextProbe returns the next scheduled probe time, or the zero time when the
// probe is disabled or not started.
func (s *Scheduler) NextProbe() time.Time {
	if s.job == nil {
		return time.Time{}
	}
	return s.job.NextRun()
}

// probe performs one lookup and records the outcome.
func (s *Scheduler) probe() {
	// Prevent overlapping probes
	if !s.status.BeginProbe() {
		logging.Debug("Probe already in progress, skipping")
		return
	}
	defer s.status.EndProbe()

	ctx := context.Background()
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	start := time.Now()
	record, err := s.source.FetchLabel(ctx, s.opts.Drug)
	result := interfaces.ProbeResult{
		At:       start,
		Duration: time.Since(start),
		Found:    record != nil,
		Err:      err,
	}
	s.status.RecordProbe(result)
	metrics.SetUpstreamUp(err == nil)

	if err != nil {
		failures := s.status.ConsecutiveFailures()
		if failures >= failureWarnThreshold {
			logging.Error("openFDA unreachable", "failures", failures, "error", err)
		} else {
			logging.Warn("Upstream probe failed", "failures", failures, "error", err)
		}
		return
	}

	if record == nil {
		logging.Warn("Upstream probe found no label", "drug", s.opts.Drug)
	}
	logging.Debug("Upstream probe completed", "duration", result.Duration.String(), "found", result.Found)
}
