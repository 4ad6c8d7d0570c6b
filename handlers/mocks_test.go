package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/giygas/druglabel-checker/interactions"
	"github.com/giygas/druglabel-checker/openfda"
	"github.com/giygas/druglabel-checker/status"
	"github.com/giygas/druglabel-checker/validation"
)

// mockLabelSource serves labels whose drug_interactions section is the given text
type mockLabelSource struct {
	mu     sync.Mutex
	labels map[string]string
	errs   map[string]error
	calls  int
}

func newMockLabelSource() *mockLabelSource {
	return &mockLabelSource{labels: map[string]string{}, errs: map[string]error{}}
}

func (m *mockLabelSource) with(name, interactionsText string) *mockLabelSource {
	m.labels[name] = interactionsText
	return m
}

func (m *mockLabelSource) failing(name string, err error) *mockLabelSource {
	m.errs[name] = err
	return m
}

func (m *mockLabelSource) FetchLabel(_ context.Context, name string) (*openfda.LabelRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if err, ok := m.errs[name]; ok {
		return nil, err
	}
	text, ok := m.labels[name]
	if !ok {
		return nil, nil
	}
	return openfda.NewLabelRecord(map[string]openfda.SectionValue{
		"drug_interactions": openfda.TextBlock(text),
	}), nil
}

// mockHealthChecker returns a fixed status
type mockHealthChecker struct {
	status string
	code   int
}

func (m *mockHealthChecker) HealthCheck() (string, map[string]any, int) {
	return m.status, map[string]any{"upstream": map[string]any{"reachable": m.code == http.StatusOK}}, m.code
}

func newTestHandler(source *mockLabelSource) *HTTPHandlerImpl {
	store := status.NewContainer()
	store.SetServerStartTime(time.Now().Add(-90 * time.Minute))
	return NewHTTPHandler(
		interactions.NewService(source),
		validation.NewNameValidator(),
		&mockHealthChecker{status: "healthy", code: http.StatusOK},
		store,
	)
}
