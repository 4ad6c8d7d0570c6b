package interactions

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/giygas/druglabel-checker/openfda"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckFetchesEachLabelOnce(t *testing.T) {
	source := newFakeSource().
		withInteractions("warfarin", openfda.TextBlock("Aspirin increases bleeding risk.")).
		withInteractions("aspirin", openfda.TextBlock("No interactions."))
	svc := NewService(source)

	report, err := svc.Check(context.Background(), "warfarin", "aspirin")
	require.NoError(t, err)

	assert.Equal(t, 1, source.callCount("warfarin"))
	assert.Equal(t, 1, source.callCount("aspirin"))

	_, err = uuid.Parse(report.CheckID)
	assert.NoError(t, err)
	assert.False(t, report.CheckedAt.IsZero())

	assert.True(t, report.DrugA.Found)
	assert.Equal(t, "warfarin", report.DrugA.Name)
	assert.Equal(t, "Aspirin increases bleeding risk.", report.DrugA.Sections.Get(SectionDrugInteractions))
	assert.Equal(t, []string{"Label for warfarin mentions aspirin in 'Drug Interactions'."}, report.Notes)
}

func TestCheckMissingLabel(t *testing.T) {
	source := newFakeSource().withInteractions("warfarin", openfda.TextBlock("nothing relevant"))
	svc := NewService(source)

	report, err := svc.Check(context.Background(), "warfarin", "unknownium")
	require.NoError(t, err)
	assert.False(t, report.DrugB.Found)
	assert.Nil(t, report.DrugB.Label)
	assert.True(t, report.DrugB.Sections.IsEmpty())
	assert.Empty(t, report.Notes)

	out, err := json.Marshal(report)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	drugB := decoded["drug_b"].(map[string]any)
	assert.Equal(t, false, drugB["found"])
	assert.Equal(t, map[string]any{}, drugB["sections"])
	assert.Equal(t, []any{}, decoded["notes"])
}

func TestCheckFailsWithoutPartialReport(t *testing.T) {
	source := newFakeSource().withInteractions("warfarin", openfda.TextBlock("x"))
	source.errs["aspirin"] = openfda.ErrMalformedResponse
	svc := NewService(source)

	report, err := svc.Check(context.Background(), "warfarin", "aspirin")
	require.Error(t, err)
	assert.ErrorIs(t, err, openfda.ErrMalformedResponse)
	assert.Empty(t, report.CheckID)
	assert.False(t, report.DrugA.Found)
}

func TestLookupSummarizesLabel(t *testing.T) {
	var record openfda.LabelRecord
	require.NoError(t, json.Unmarshal([]byte(`{
		"id": "id-1", "set_id": "set-1", "effective_time": "20240101",
		"openfda": {"brand_name": ["ADVIL"], "generic_name": ["IBUPROFEN"], "manufacturer_name": ["Acme"]},
		"warnings": "Stomach bleeding."
	}`), &record))

	source := newFakeSource()
	source.labels["ibuprofen"] = &record
	svc := NewService(source)

	label, err := svc.Lookup(context.Background(), "ibuprofen")
	require.NoError(t, err)
	require.NotNil(t, label.Label)
	assert.Equal(t, "set-1", label.Label.SetID)
	assert.Equal(t, []string{"ADVIL"}, label.Label.BrandNames)
	assert.Empty(t, label.Label.MatchedField, "plain sources do not report the matched field")
	assert.Equal(t, "Stomach bleeding.", label.Sections.Get(SectionWarnings))
}
