package openfda

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
)

// ValueKind tags the shape of a label section value.
type ValueKind int

const (
	// KindAbsent means the label has no such section.
	KindAbsent ValueKind = iota
	// KindText is a single text block.
	KindText
	// KindSequence is an ordered list of text blocks.
	KindSequence
	// KindOther is any other JSON value (null, number, object, mixed list).
	KindOther
)

func (k ValueKind) String() string {
	switch k {
	case KindAbsent:
		return "absent"
	case KindText:
		return "text"
	case KindSequence:
		return "sequence"
	default:
		return "other"
	}
}

// SectionValue is the content of one label section: a text block, a sequence of
// text blocks, or something the checker does not interpret.
type SectionValue struct {
	kind   ValueKind
	text   string
	blocks []string
}

// TextBlock builds a single-block section value.
func TextBlock(text string) SectionValue {
	return SectionValue{kind: KindText, text: text}
}

// TextSequence builds a multi-block section value.
func TextSequence(blocks ...string) SectionValue {
	return SectionValue{kind: KindSequence, blocks: slices.Clone(blocks)}
}

func (v SectionValue) Kind() ValueKind { return v.kind }

// Text returns the block of a KindText value.
func (v SectionValue) Text() (string, bool) {
	return v.text, v.kind == KindText
}

// Blocks returns a copy of the blocks of a KindSequence value.
func (v SectionValue) Blocks() ([]string, bool) {
	if v.kind != KindSequence {
		return nil, false
	}
	return slices.Clone(v.blocks), true
}

// UnmarshalJSON never fails on well-formed JSON: values that are neither a
// string nor a list of strings decode as KindOther.
func (v *SectionValue) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		*v = SectionValue{kind: KindOther}
		return nil
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*v = TextBlock(s)
	case '[':
		var blocks []string
		if err := json.Unmarshal(trimmed, &blocks); err != nil {
			*v = SectionValue{kind: KindOther}
			return nil
		}
		*v = SectionValue{kind: KindSequence, blocks: blocks}
	default:
		*v = SectionValue{kind: KindOther}
	}
	return nil
}

// MarshalJSON writes the value back in its original shape.
func (v SectionValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindText:
		return json.Marshal(v.text)
	case KindSequence:
		return json.Marshal(v.blocks)
	default:
		return []byte("null"), nil
	}
}

// Names holds the harmonized openfda identifiers of a label.
type Names struct {
	BrandName        []string `json:"brand_name,omitempty"`
	GenericName      []string `json:"generic_name,omitempty"`
	ManufacturerName []string `json:"manufacturer_name,omitempty"`
}

// LabelRecord is one drug label as returned by the openFDA drug label endpoint.
// Every top-level field other than the identifiers is kept as a SectionValue.
type LabelRecord struct {
	ID            string
	SetID         string
	EffectiveTime string
	Names         Names

	sections map[string]SectionValue
}

var metadataFields = map[string]bool{
	"id":             true,
	"set_id":         true,
	"effective_time": true,
	"openfda":        true,
}

// NewLabelRecord builds a record from section values, mostly for tests and fakes.
func NewLabelRecord(sections map[string]SectionValue) *LabelRecord {
	r := &LabelRecord{sections: make(map[string]SectionValue, len(sections))}
	for k, v := range sections {
		r.sections[k] = v
	}
	return r
}

// Section returns the named section, or a KindAbsent value.
func (r *LabelRecord) Section(name string) SectionValue {
	if r == nil {
		return SectionValue{}
	}
	if v, ok := r.sections[name]; ok {
		return v
	}
	return SectionValue{}
}

// SectionNames lists the sections present on the label, sorted.
func (r *LabelRecord) SectionNames() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.sections))
	for k := range r.sections {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

// UnmarshalJSON requires a JSON object; anything else is a malformed label.
func (r *LabelRecord) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("label record is not an object: %w", err)
	}
	if raw == nil {
		return fmt.Errorf("label record is null")
	}

	rec := LabelRecord{sections: make(map[string]SectionValue, len(raw))}
	for key, value := range raw {
		if metadataFields[key] {
			continue
		}
		var sv SectionValue
		if err := json.Unmarshal(value, &sv); err != nil {
			return fmt.Errorf("section %s: %w", key, err)
		}
		rec.sections[key] = sv
	}

	// identifiers are informational; a label with odd metadata is still usable
	decodeOptional(raw["id"], &rec.ID)
	decodeOptional(raw["set_id"], &rec.SetID)
	decodeOptional(raw["effective_time"], &rec.EffectiveTime)
	decodeOptional(raw["openfda"], &rec.Names)

	*r = rec
	return nil
}

func decodeOptional(raw json.RawMessage, dst any) {
	if len(raw) == 0 {
		return
	}
	_ = json.Unmarshal(raw, dst)
}
