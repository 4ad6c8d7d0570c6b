package interactions

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/giygas/druglabel-checker/logging"
	"github.com/google/uuid"
)

// LabelSummary identifies the label a lookup selected.
type LabelSummary struct {
	ID            string   `json:"id,omitempty"`
	SetID         string   `json:"set_id,omitempty"`
	EffectiveTime string   `json:"effective_time,omitempty"`
	BrandNames    []string `json:"brand_names,omitempty"`
	GenericNames  []string `json:"generic_names,omitempty"`
	Manufacturers []string `json:"manufacturers,omitempty"`
	MatchedField  string   `json:"matched_field,omitempty"`
}

// DrugLabel is the per-drug result of a lookup. Found is false when no label
// matched; Sections is then empty.
type DrugLabel struct {
	Name     string        `json:"name"`
	Found    bool          `json:"found"`
	Label    *LabelSummary `json:"label,omitempty"`
	Sections SectionMap    `json:"sections"`
}

// Report is the result of checking a pair of drugs.
type Report struct {
	CheckID   string    `json:"check_id"`
	CheckedAt time.Time `json:"checked_at"`
	DrugA     DrugLabel `json:"drug_a"`
	DrugB     DrugLabel `json:"drug_b"`
	Notes     []string  `json:"notes"`
}

// Lookup fetches the label for name and summarizes it.
func (s *Service) Lookup(ctx context.Context, name string) (DrugLabel, error) {
	record, field, err := s.fetch(ctx, name)
	if err != nil {
		logLookupFailure(name, err)
		return DrugLabel{}, err
	}

	result := DrugLabel{Name: name}
	if record == nil {
		return result, nil
	}

	result.Found = true
	result.Sections = ExtractSections(record)
	result.Label = &LabelSummary{
		ID:            record.ID,
		SetID:         record.SetID,
		EffectiveTime: record.EffectiveTime,
		BrandNames:    record.Names.BrandName,
		GenericNames:  record.Names.GenericName,
		Manufacturers: record.Names.ManufacturerName,
		MatchedField:  string(field),
	}
	return result, nil
}

// Check looks both drugs up concurrently, then cross-checks the fetched section
// maps without fetching again.
func (s *Service) Check(ctx context.Context, drugA, drugB string) (Report, error) {
	report := Report{
		CheckID:   uuid.NewString(),
		CheckedAt: time.Now().UTC(),
	}

	var (
		wg         sync.WaitGroup
		errA, errB error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		if report.DrugA, errA = s.Lookup(ctx, drugA); errA != nil {
			errA = fmt.Errorf("label lookup for %q: %w", drugA, errA)
		}
	}()
	go func() {
		defer wg.Done()
		if report.DrugB, errB = s.Lookup(ctx, drugB); errB != nil {
			errB = fmt.Errorf("label lookup for %q: %w", drugB, errB)
		}
	}()
	wg.Wait()

	if err := errors.Join(errA, errB); err != nil {
		logging.Warn("Interaction check failed", "check_id", report.CheckID, "error", err)
		return Report{}, err
	}

	notes, err := s.CrossCheck(ctx, drugA, drugB,
		WithSectionsA(report.DrugA.Sections),
		WithSectionsB(report.DrugB.Sections))
	if err != nil {
		return Report{}, err
	}
	report.Notes = notes

	logging.Info("Interaction check completed",
		"check_id", report.CheckID,
		"drug_a", drugA,
		"drug_b", drugB,
		"found_a", report.DrugA.Found,
		"found_b", report.DrugB.Found,
		"notes", len(notes))

	return report, nil
}
