package interactions

import (
	"bytes"
	"encoding/json"
	"iter"
	"strings"

	"github.com/giygas/druglabel-checker/openfda"
)

// SectionKey names one of the interaction-relevant label sections.
type SectionKey string

const (
	SectionDrugInteractions    SectionKey = "drug_interactions"
	SectionWarningsAndCautions SectionKey = "warnings_and_cautions"
	SectionWarnings            SectionKey = "warnings"
	SectionPrecautions         SectionKey = "precautions"
)

// sectionKeys is the declaration order every SectionMap follows.
var sectionKeys = []SectionKey{
	SectionDrugInteractions,
	SectionWarningsAndCautions,
	SectionWarnings,
	SectionPrecautions,
}

const (
	maxBlocks      = 2
	blockSeparator = "\n\n"
)

// SectionKeys returns the recognized keys in declaration order.
func SectionKeys() []SectionKey {
	return append([]SectionKey(nil), sectionKeys...)
}

type sectionEntry struct {
	key  SectionKey
	text string
}

// SectionMap maps recognized section keys to flattened text. It only holds keys
// with non-empty text, iterates in declaration order and is immutable.
type SectionMap struct {
	entries []sectionEntry
}

// NewSectionMap builds a SectionMap from loose values. Unknown keys and empty
// text are dropped.
func NewSectionMap(values map[SectionKey]string) SectionMap {
	var m SectionMap
	for _, key := range sectionKeys {
		if text := values[key]; text != "" {
			m.entries = append(m.entries, sectionEntry{key: key, text: text})
		}
	}
	return m
}

// ExtractSections derives the section map of a label. A nil record yields an
// empty map. Sequences contribute their first two blocks joined by a blank line.
func ExtractSections(record *openfda.LabelRecord) SectionMap {
	var m SectionMap
	for _, key := range sectionKeys {
		value := record.Section(string(key))

		var text string
		switch value.Kind() {
		case openfda.KindText:
			text, _ = value.Text()
		case openfda.KindSequence:
			blocks, _ := value.Blocks()
			if len(blocks) > maxBlocks {
				blocks = blocks[:maxBlocks]
			}
			text = strings.Join(blocks, blockSeparator)
		default:
			continue
		}

		if text != "" {
			m.entries = append(m.entries, sectionEntry{key: key, text: text})
		}
	}
	return m
}

// Get returns the text for key, or "" when absent.
func (m SectionMap) Get(key SectionKey) string {
	text, _ := m.Lookup(key)
	return text
}

func (m SectionMap) Lookup(key SectionKey) (string, bool) {
	for _, e := range m.entries {
		if e.key == key {
			return e.text, true
		}
	}
	return "", false
}

func (m SectionMap) Len() int { return len(m.entries) }

func (m SectionMap) IsEmpty() bool { return len(m.entries) == 0 }

// Keys returns the present keys in declaration order.
func (m SectionMap) Keys() []SectionKey {
	keys := make([]SectionKey, len(m.entries))
	for i, e := range m.entries {
		keys[i] = e.key
	}
	return keys
}

// All iterates key/text pairs in declaration order.
func (m SectionMap) All() iter.Seq2[SectionKey, string] {
	return func(yield func(SectionKey, string) bool) {
		for _, e := range m.entries {
			if !yield(e.key, e.text) {
				return
			}
		}
	}
}

// MarshalJSON encodes the map as a JSON object whose keys keep declaration order.
func (m SectionMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range m.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(string(e.key))
		if err != nil {
			return nil, err
		}
		text, err := json.Marshal(e.text)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(text)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
