package interactions

import (
	"context"
	"sync"

	"github.com/giygas/druglabel-checker/openfda"
)

// fakeSource serves canned labels and errors by exact name and counts fetches.
type fakeSource struct {
	mu     sync.Mutex
	labels map[string]*openfda.LabelRecord
	errs   map[string]error
	calls  map[string]int
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		labels: map[string]*openfda.LabelRecord{},
		errs:   map[string]error{},
		calls:  map[string]int{},
	}
}

func (f *fakeSource) withInteractions(name string, value openfda.SectionValue) *fakeSource {
	f.labels[name] = openfda.NewLabelRecord(map[string]openfda.SectionValue{
		string(SectionDrugInteractions): value,
	})
	return f
}

func (f *fakeSource) FetchLabel(_ context.Context, name string) (*openfda.LabelRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
	if err, ok := f.errs[name]; ok {
		return nil, err
	}
	return f.labels[name], nil
}

func (f *fakeSource) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeSource) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}
