package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/giygas/druglabel-checker/openfda"
	"github.com/giygas/druglabel-checker/status"
)

// mockProbeSource answers probes with a fixed record or error
type mockProbeSource struct {
	record *openfda.LabelRecord
	err    error
	delay  time.Duration
	calls  atomic.Int64

	mu    sync.Mutex
	names []string
}

func (m *mockProbeSource) FetchLabel(ctx context.Context, name string) (*openfda.LabelRecord, error) {
	m.calls.Add(1)
	m.mu.Lock()
	m.names = append(m.names, name)
	m.mu.Unlock()

	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return m.record, m.err
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestNewScheduler(t *testing.T) {
	s := NewScheduler(status.NewContainer(), &mockProbeSource{}, Options{Interval: time.Minute, Drug: "aspirin"})

	if s == nil {
		t.Fatal("NewScheduler returned nil")
	}
	if s.scheduler == nil {
		t.Error("Expected gocron scheduler to be initialized")
	}
	if !s.NextProbe().IsZero() {
		t.Error("NextProbe should be zero before Start")
	}
}

func TestProbeSuccess(t *testing.T) {
	store := status.NewContainer()
	source := &mockProbeSource{record: openfda.NewLabelRecord(nil)}
	s := NewScheduler(store, source, Options{Interval: time.Minute, Drug: "aspirin", Timeout: time.Second})

	s.probe()

	last, ok := store.LastProbe()
	if !ok {
		t.Fatal("Expected a recorded probe")
	}
	if last.Err != nil || !last.Found {
		t.Errorf("Expected successful probe with a label, got %+v", last)
	}
	if store.LastSuccess().IsZero() {
		t.Error("Expected last success to be set")
	}
	if store.IsProbing() {
		t.Error("Probe flag should be cleared after probe")
	}
	if source.names[0] != "aspirin" {
		t.Errorf("Expected probe drug aspirin, got %q", source.names[0])
	}
}

func TestProbeNoLabelIsStillReachable(t *testing.T) {
	store := status.NewContainer()
	s := NewScheduler(store, &mockProbeSource{}, Options{Interval: time.Minute, Drug: "aspirin"})

	s.probe()

	last, _ := store.LastProbe()
	if last.Err != nil {
		t.Errorf("Expected no error, got %v", last.Err)
	}
	if last.Found {
		t.Error("Expected Found to be false")
	}
	if store.LastSuccess().IsZero() {
		t.Error("A reachable upstream without a label still counts as success")
	}
}

func TestProbeFailureStreak(t *testing.T) {
	store := status.NewContainer()
	source := &mockProbeSource{err: errors.New("connection refused")}
	s := NewScheduler(store, source, Options{Interval: time.Minute, Drug: "aspirin"})

	for i := 0; i < failureWarnThreshold+1; i++ {
		s.probe()
	}

	if got := store.ConsecutiveFailures(); got != failureWarnThreshold+1 {
		t.Errorf("Expected %d failures, got %d", failureWarnThreshold+1, got)
	}
	if !store.LastSuccess().IsZero() {
		t.Error("Last success should remain zero")
	}
}

func TestProbeTimeout(t *testing.T) {
	store := status.NewContainer()
	source := &mockProbeSource{delay: time.Second}
	s := NewScheduler(store, source, Options{Interval: time.Minute, Drug: "aspirin", Timeout: 20 * time.Millisecond})

	start := time.Now()
	s.probe()

	if time.Since(start) > 500*time.Millisecond {
		t.Error("Probe should respect its timeout")
	}
	last, _ := store.LastProbe()
	if !errors.Is(last.Err, context.DeadlineExceeded) {
		t.Errorf("Expected deadline exceeded, got %v", last.Err)
	}
}

func TestProbeSkipsWhenAlreadyProbing(t *testing.T) {
	store := status.NewContainer()
	source := &mockProbeSource{}
	s := NewScheduler(store, source, Options{Interval: time.Minute, Drug: "aspirin"})

	if !store.BeginProbe() {
		t.Fatal("BeginProbe should succeed")
	}
	s.probe()
	store.EndProbe()

	if source.calls.Load() != 0 {
		t.Errorf("Expected no fetch while another probe runs, got %d", source.calls.Load())
	}
	if _, ok := store.LastProbe(); ok {
		t.Error("Skipped probe should not be recorded")
	}
}

func TestStartDisabled(t *testing.T) {
	source := &mockProbeSource{}
	s := NewScheduler(status.NewContainer(), source, Options{Interval: 0, Drug: "aspirin"})

	if err := s.Start(); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	defer s.Stop()

	time.Sleep(50 * time.Millisecond)
	if source.calls.Load() != 0 {
		t.Error("Disabled probe should never fetch")
	}
	if !s.NextProbe().IsZero() {
		t.Error("NextProbe should be zero when disabled")
	}
}

func TestStartRunsFirstProbeImmediately(t *testing.T) {
	store := status.NewContainer()
	source := &mockProbeSource{record: openfda.NewLabelRecord(nil)}
	s := NewScheduler(store, source, Options{Interval: time.Hour, Drug: "aspirin", Timeout: time.Second})

	if err := s.Start(); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	defer s.Stop()

	waitFor(t, func() bool {
		_, ok := store.LastProbe()
		return ok
	})

	if source.calls.Load() != 1 {
		t.Errorf("Expected exactly one probe, got %d", source.calls.Load())
	}
	waitFor(t, func() bool { return s.NextProbe().After(time.Now()) })
}

func TestStartWithFailingUpstreamDoesNotFail(t *testing.T) {
	store := status.NewContainer()
	source := &mockProbeSource{err: errors.New("dns failure")}
	s := NewScheduler(store, source, Options{Interval: time.Hour, Drug: "aspirin"})

	if err := s.Start(); err != nil {
		t.Fatalf("Start should not fail when upstream is down: %v", err)
	}
	defer s.Stop()

	waitFor(t, func() bool { return store.ConsecutiveFailures() == 1 })
}
