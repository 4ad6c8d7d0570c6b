package handlers

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"strings"

	"github.com/giygas/druglabel-checker/interactions"
	"github.com/giygas/druglabel-checker/logging"
	"github.com/giygas/druglabel-checker/render"
)

//go:embed templates/index.html
var templatesFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templatesFS, "templates/index.html"))

const missingNamesWarning = "Please enter both drug names before checking interactions."

// Copy shown on the page, shared with the other front-ends.
type pageText struct {
	Banner           string
	TruncationNotice string
	NoLabel          string
	SignalsFound     string
	SignalsFoundHint string
	NoSignals        string
	NoSignalsHint    string
	NextStep         string
	Disclaimer       string
}

var text = pageText{
	Banner:           render.Banner,
	TruncationNotice: render.TruncationNotice,
	NoLabel:          render.NoLabelWeb,
	SignalsFound:     render.SignalsFound,
	SignalsFoundHint: render.SignalsFoundHint,
	NoSignals:        render.NoSignals,
	NoSignalsHint:    render.NoSignalsHint,
	NextStep:         render.NextStep,
	Disclaimer:       render.Disclaimer,
}

type drugView struct {
	Name     string
	Found    bool
	Excerpts []render.Excerpt
}

type reportView struct {
	CheckID string
	Drugs   []drugView
	Notes   []string
}

type pageData struct {
	Text    pageText
	DrugA   string
	DrugB   string
	Warning string
	Error   string
	Report  *reportView
}

func newDrugView(label interactions.DrugLabel) drugView {
	return drugView{
		Name:     label.Name,
		Found:    !label.Sections.IsEmpty(),
		Excerpts: render.Excerpts(label.Sections, render.WebLimit),
	}
}

// ServeIndex renders the web page. Without both drug names it shows the form;
// with both it shows the excerpts and the cross-mention result.
func (h *HTTPHandlerImpl) ServeIndex(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := pageData{
		Text:  text,
		DrugA: strings.TrimSpace(q.Get("drug_a")),
		DrugB: strings.TrimSpace(q.Get("drug_b")),
	}

	code := http.StatusOK
	switch {
	case !q.Has("drug_a") && !q.Has("drug_b"):
		// first visit

	case page.DrugA == "" || page.DrugB == "":
		page.Warning = missingNamesWarning

	default:
		code = h.fillReport(r, &page)
	}

	h.renderPage(w, code, page)
}

// fillReport runs the check for the page and returns the status to answer with.
func (h *HTTPHandlerImpl) fillReport(r *http.Request, page *pageData) int {
	a, b, err := h.drugPair(r)
	if err != nil {
		code, reason := classifyError(err)
		page.Warning = publicMessage(reason, err)
		return code
	}

	report, err := h.service.Check(r.Context(), a, b)
	if err != nil {
		code, reason := classifyError(err)
		logging.Warn("Web check failed", "reason", reason, "error", err)
		page.Error = render.LookupFailed + " " + publicMessage(reason, err) + "."
		return code
	}

	page.Report = &reportView{
		CheckID: report.CheckID,
		Drugs:   []drugView{newDrugView(report.DrugA), newDrugView(report.DrugB)},
		Notes:   report.Notes,
	}
	return http.StatusOK
}

func (h *HTTPHandlerImpl) renderPage(w http.ResponseWriter, code int, page pageData) {
	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, page); err != nil {
		logging.Error("Failed to render page", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	if _, err := buf.WriteTo(w); err != nil {
		logging.Debug("Failed to write page", "error", err)
	}
}
