// Package render holds the user-facing text shared by the command line, the
// web page and the terminal UI: section titles, excerpt limits and messages.
package render

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/giygas/druglabel-checker/interactions"
)

const (
	Banner          = "Drug Interaction Checker (openFDA labels)"
	NoLabel         = "No FDA label found."
	NoLabelWeb      = "No FDA label data found for this drug."
	NoCrossMentions = "No explicit cross-mentions found in 'Drug Interactions' sections."

	TruncationNotice = "These excerpts are truncated. Refer to the full FDA label or an interaction database for complete information."
	SignalsFound     = "Potential interaction signals detected."
	SignalsFoundHint = "One medication appears to be referenced in the other's interaction-related sections. Review in context using full-label or dedicated interaction resources."
	NoSignals        = "No explicit cross-mentions identified in the sampled interaction text."
	NoSignalsHint    = "Absence of cross-mention does not rule out clinically significant interactions."
	NextStep         = "Suggested next step: confirm any potential interactions using your organization's primary interaction resource (e.g., Lexicomp, Micromedex) before making clinical decisions."
	Disclaimer       = "Educational prototype only, not a clinical decision support system. Always consult authoritative interaction resources (e.g., Lexicomp, Micromedex) and a pharmacist."
	LookupFailed     = "Could not retrieve label data from openFDA."
)

// WebPreviewLimit is the excerpt length used by the web page and the TUI.
const WebPreviewLimit = 1600

var cliLimits = map[interactions.SectionKey]int{
	interactions.SectionDrugInteractions:    1200,
	interactions.SectionWarningsAndCautions: 800,
	interactions.SectionWarnings:            600,
	interactions.SectionPrecautions:         600,
}

var titles = map[interactions.SectionKey]string{
	interactions.SectionDrugInteractions:    "Drug Interactions",
	interactions.SectionWarningsAndCautions: "Warnings and Cautions",
	interactions.SectionWarnings:            "Warnings",
	interactions.SectionPrecautions:         "Precautions",
}

// SectionTitle returns the display title of key.
func SectionTitle(key interactions.SectionKey) string {
	if title, ok := titles[key]; ok {
		return title
	}
	return string(key)
}

// CLILimit returns the excerpt length the command line uses for key.
func CLILimit(key interactions.SectionKey) int {
	if limit, ok := cliLimits[key]; ok {
		return limit
	}
	return WebPreviewLimit
}

// Truncate cuts text to limit characters and appends "..." when it cut anything.
func Truncate(text string, limit int) string {
	if limit < 0 {
		limit = 0
	}
	n := 0
	for i := range text {
		if n == limit {
			return text[:i] + "..."
		}
		n++
	}
	return text
}

// Excerpt is one titled, truncated section ready for display.
type Excerpt struct {
	Key   interactions.SectionKey
	Title string
	Text  string
}

// Excerpts returns the sections of m in order, truncated with limit.
func Excerpts(m interactions.SectionMap, limit func(interactions.SectionKey) int) []Excerpt {
	out := make([]Excerpt, 0, m.Len())
	for key, text := range m.All() {
		out = append(out, Excerpt{
			Key:   key,
			Title: SectionTitle(key),
			Text:  Truncate(text, limit(key)),
		})
	}
	return out
}

// WebLimit applies WebPreviewLimit to every section.
func WebLimit(interactions.SectionKey) int { return WebPreviewLimit }

// errWriter keeps the first write error so callers check once.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

// WriteLabel prints the excerpts of one drug the way the command line shows them.
func WriteLabel(w io.Writer, name string, sections interactions.SectionMap) error {
	ew := &errWriter{w: w}
	ew.printf("\n=== %s: label excerpts ===\n", name)
	if sections.IsEmpty() {
		ew.printf("%s\n", NoLabel)
		return ew.err
	}
	for _, e := range Excerpts(sections, CLILimit) {
		ew.printf("\n[%s]\n%s\n", e.Title, e.Text)
	}
	return ew.err
}

// WriteCrossCheck prints the cross-mention notes.
func WriteCrossCheck(w io.Writer, notes []string) error {
	ew := &errWriter{w: w}
	ew.printf("\n=== Cross-mention check ===\n")
	if len(notes) == 0 {
		ew.printf("%s\n", NoCrossMentions)
		return ew.err
	}
	for _, n := range notes {
		ew.printf(" - %s\n", n)
	}
	return ew.err
}

// WriteReport prints both drugs' excerpts followed by the cross-mention check.
func WriteReport(w io.Writer, report interactions.Report) error {
	if err := WriteLabel(w, report.DrugA.Name, report.DrugA.Sections); err != nil {
		return err
	}
	if err := WriteLabel(w, report.DrugB.Name, report.DrugB.Sections); err != nil {
		return err
	}
	return WriteCrossCheck(w, report.Notes)
}

// WriteJSON prints report as indented JSON.
func WriteJSON(w io.Writer, report interactions.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
