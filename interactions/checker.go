// Package interactions turns openFDA labels into interaction-relevant section
// maps and runs the cross-mention heuristic between two drugs.
//
// A cross-mention is a literal, case-insensitive occurrence of one drug's name in
// the other drug's "drug interactions" text. It is a textual co-occurrence signal
// only: no mention does not mean no interaction.
package interactions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/giygas/druglabel-checker/logging"
	"github.com/giygas/druglabel-checker/openfda"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const noteFormat = "Label for %s mentions %s in 'Drug Interactions'."

// LabelSource resolves a drug name to one label. A nil record with a nil error
// means no label exists for the name.
type LabelSource interface {
	FetchLabel(ctx context.Context, name string) (*openfda.LabelRecord, error)
}

// fieldReporter is implemented by sources that can tell which search field matched.
type fieldReporter interface {
	FetchLabelWithField(ctx context.Context, name string) (*openfda.LabelRecord, openfda.SearchField, error)
}

// Service is stateless apart from its label source; every call fetches afresh.
type Service struct {
	source LabelSource
}

// NewService creates a service over source.
func NewService(source LabelSource) *Service {
	return &Service{source: source}
}

// InteractionText fetches the label for name and extracts its section map.
func (s *Service) InteractionText(ctx context.Context, name string) (SectionMap, error) {
	label, err := s.Lookup(ctx, name)
	if err != nil {
		return SectionMap{}, err
	}
	return label.Sections, nil
}

// CrossCheckOption supplies data the caller already holds.
type CrossCheckOption func(*crossCheckOptions)

type crossCheckOptions struct {
	sections [2]*SectionMap
}

// WithSectionsA reuses an already fetched section map for the first drug.
func WithSectionsA(m SectionMap) CrossCheckOption {
	return func(o *crossCheckOptions) { o.sections[0] = &m }
}

// WithSectionsB reuses an already fetched section map for the second drug.
func WithSectionsB(m SectionMap) CrossCheckOption {
	return func(o *crossCheckOptions) { o.sections[1] = &m }
}

// CrossCheck reports whether each drug's name appears in the other's drug
// interactions text. Without options both labels are fetched, concurrently.
// The result holds zero, one or two notes, the note about drugA first.
func (s *Service) CrossCheck(ctx context.Context, drugA, drugB string, opts ...CrossCheckOption) ([]string, error) {
	var o crossCheckOptions
	for _, opt := range opts {
		opt(&o)
	}

	names := [2]string{drugA, drugB}
	sections := o.sections
	var errs [2]error

	var wg sync.WaitGroup
	for i := range names {
		if sections[i] != nil {
			continue
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m, err := s.InteractionText(ctx, names[i])
			if err != nil {
				errs[i] = fmt.Errorf("interaction text for %q: %w", names[i], err)
				return
			}
			sections[i] = &m
		}(i)
	}
	wg.Wait()

	if err := errors.Join(errs[0], errs[1]); err != nil {
		return nil, err
	}

	return CrossMentions(
		drugA, sections[0].Get(SectionDrugInteractions),
		drugB, sections[1].Get(SectionDrugInteractions),
	), nil
}

// CrossMentions is the pure heuristic behind CrossCheck. Names are trimmed; an
// empty name never matches. The returned slice is never nil.
func CrossMentions(drugA, textA, drugB, textB string) []string {
	drugA = strings.TrimSpace(drugA)
	drugB = strings.TrimSpace(drugB)

	notes := []string{}
	if mentions(textA, drugB) {
		notes = append(notes, fmt.Sprintf(noteFormat, drugA, drugB))
	}
	if mentions(textB, drugA) {
		notes = append(notes, fmt.Sprintf(noteFormat, drugB, drugA))
	}
	return notes
}

// mentions lower-cases both sides with a fresh caser; casers are not goroutine-safe.
func mentions(text, name string) bool {
	if text == "" || name == "" {
		return false
	}
	lower := cases.Lower(language.Und)
	needle := lower.String(name)
	if needle == "" {
		return false
	}
	return strings.Contains(lower.String(text), needle)
}

func (s *Service) fetch(ctx context.Context, name string) (*openfda.LabelRecord, openfda.SearchField, error) {
	if fr, ok := s.source.(fieldReporter); ok {
		return fr.FetchLabelWithField(ctx, name)
	}
	record, err := s.source.FetchLabel(ctx, name)
	return record, "", err
}

func logLookupFailure(name string, err error) {
	switch {
	case errors.Is(err, openfda.ErrMalformedResponse):
		logging.Error("openFDA returned malformed label data", "drug", name, "error", err)
	case openfda.IsTimeout(err):
		logging.Warn("openFDA label lookup timed out", "drug", name, "error", err)
	default:
		logging.Warn("openFDA label lookup failed", "drug", name, "error", err)
	}
}
