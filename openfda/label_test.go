package openfda

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSectionValueUnmarshal(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		kind   ValueKind
		text   string
		blocks []string
	}{
		{"string", `"Use caution."`, KindText, "Use caution.", nil},
		{"empty string", `""`, KindText, "", nil},
		{"list of strings", `["a", "b", "c"]`, KindSequence, "", []string{"a", "b", "c"}},
		{"empty list", `[]`, KindSequence, "", []string{}},
		{"mixed list", `["a", 1]`, KindOther, "", nil},
		{"null", `null`, KindOther, "", nil},
		{"number", `42`, KindOther, "", nil},
		{"object", `{"a": "b"}`, KindOther, "", nil},
		{"bool", `true`, KindOther, "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v SectionValue
			require.NoError(t, json.Unmarshal([]byte(tt.input), &v))
			assert.Equal(t, tt.kind, v.Kind())

			text, isText := v.Text()
			assert.Equal(t, tt.kind == KindText, isText)
			assert.Equal(t, tt.text, text)

			blocks, isSeq := v.Blocks()
			assert.Equal(t, tt.kind == KindSequence, isSeq)
			if isSeq {
				assert.Equal(t, tt.blocks, blocks)
			}
		})
	}
}

func TestSectionValueBlocksAreCopies(t *testing.T) {
	v := TextSequence("one", "two")
	blocks, _ := v.Blocks()
	blocks[0] = "changed"

	again, _ := v.Blocks()
	assert.Equal(t, "one", again[0])
}

func TestLabelRecordUnmarshal(t *testing.T) {
	var rec LabelRecord
	err := json.Unmarshal([]byte(`{
		"id": "id-1",
		"set_id": "set-1",
		"effective_time": "20230405",
		"openfda": {"generic_name": ["IBUPROFEN"], "brand_name": ["ADVIL", "MOTRIN"], "manufacturer_name": ["Acme"]},
		"warnings": "Stomach bleeding warning.",
		"precautions": ["General", "Pregnancy"],
		"version": 3
	}`), &rec)
	require.NoError(t, err)

	assert.Equal(t, "id-1", rec.ID)
	assert.Equal(t, "20230405", rec.EffectiveTime)
	assert.Equal(t, Names{
		GenericName:      []string{"IBUPROFEN"},
		BrandName:        []string{"ADVIL", "MOTRIN"},
		ManufacturerName: []string{"Acme"},
	}, rec.Names)
	assert.Equal(t, []string{"precautions", "version", "warnings"}, rec.SectionNames())
	assert.Equal(t, KindOther, rec.Section("version").Kind())
}

func TestLabelRecordRejectsNonObjects(t *testing.T) {
	for _, input := range []string{`"text"`, `[1,2]`, `null`, `12`} {
		var rec LabelRecord
		assert.Error(t, json.Unmarshal([]byte(input), &rec), input)
	}
}

func TestLabelRecordTolerantMetadata(t *testing.T) {
	var rec LabelRecord
	require.NoError(t, json.Unmarshal([]byte(`{"id": 5, "openfda": "weird", "warnings": "w"}`), &rec))
	assert.Empty(t, rec.ID)
	assert.Equal(t, KindText, rec.Section("warnings").Kind())
}

func TestNilLabelRecord(t *testing.T) {
	var rec *LabelRecord
	assert.Equal(t, KindAbsent, rec.Section("warnings").Kind())
	assert.Nil(t, rec.SectionNames())
}

func TestSectionValueMarshalRoundTripShape(t *testing.T) {
	out, err := json.Marshal(map[string]SectionValue{
		"a": TextBlock("x"),
		"b": TextSequence("y", "z"),
		"c": {},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":"x","b":["y","z"],"c":null}`, string(out))
}
