// Package handlers provides the HTTP handlers of the label checker: a JSON API
// over the interaction service, the health endpoint and the web page.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"runtime"
	"strings"
	"time"

	"github.com/giygas/druglabel-checker/interfaces"
	"github.com/giygas/druglabel-checker/logging"
	"github.com/go-chi/chi/v5"
)

// Compile-time check to ensure HTTPHandlerImpl implements HTTPHandler
var _ interfaces.HTTPHandler = (*HTTPHandlerImpl)(nil)

// HTTPHandlerImpl implements the interfaces.HTTPHandler interface
type HTTPHandlerImpl struct {
	service   interfaces.InteractionService
	validator interfaces.NameValidator
	health    interfaces.HealthChecker
	status    interfaces.UpstreamStatus
}

// NewHTTPHandler creates a new HTTP handler with injected dependencies
func NewHTTPHandler(service interfaces.InteractionService, validator interfaces.NameValidator,
	health interfaces.HealthChecker, status interfaces.UpstreamStatus) *HTTPHandlerImpl {
	return &HTTPHandlerImpl{
		service:   service,
		validator: validator,
		health:    health,
		status:    status,
	}
}

// ErrorResponse is the body of every JSON error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// CrossCheckResponse is the body of the cross-check endpoint.
type CrossCheckResponse struct {
	DrugA string   `json:"drug_a"`
	DrugB string   `json:"drug_b"`
	Notes []string `json:"notes"`
}

// HealthResponse defines the structure for consistent JSON ordering
type HealthResponse struct {
	Status        string         `json:"status"`
	Uptime        string         `json:"uptime"`
	UptimeSeconds float64        `json:"uptime_seconds"`
	Data          map[string]any `json:"data"`
	System        map[string]any `json:"system"`
}

// RespondWithJSON writes a JSON response
func (h *HTTPHandlerImpl) RespondWithJSON(w http.ResponseWriter, code int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	if _, err := w.Write(data); err != nil {
		logging.Debug("Failed to write response", "error", err)
	}
}

// RespondWithError writes a JSON error response
func (h *HTTPHandlerImpl) RespondWithError(w http.ResponseWriter, code int, reason, message string) {
	h.RespondWithJSON(w, code, ErrorResponse{
		Error:   http.StatusText(code),
		Reason:  reason,
		Message: message,
		Code:    code,
	})
}

// respondWithServiceError logs err and answers with its mapped status.
func (h *HTTPHandlerImpl) respondWithServiceError(w http.ResponseWriter, r *http.Request, err error) {
	code, reason := classifyError(err)
	if code >= http.StatusInternalServerError {
		logging.Warn("Request failed upstream", "path", r.URL.Path, "reason", reason, "error", err)
	}
	h.RespondWithError(w, code, reason, publicMessage(reason, err))
}

// drugPair reads and validates the drug_a and drug_b query parameters.
func (h *HTTPHandlerImpl) drugPair(r *http.Request) (string, string, error) {
	q := r.URL.Query()
	a, err := h.validator.ValidateDrugName(q.Get("drug_a"))
	if err != nil {
		return "", "", fmt.Errorf("drug_a: %w", err)
	}
	b, err := h.validator.ValidateDrugName(q.Get("drug_b"))
	if err != nil {
		return "", "", fmt.Errorf("drug_b: %w", err)
	}
	return a, b, nil
}

// ServeLabel returns the label summary and section map of one drug. A drug
// without a label is a 200 with found set to false.
func (h *HTTPHandlerImpl) ServeLabel(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "name")
	if unescaped, err := url.PathUnescape(raw); err == nil {
		raw = unescaped
	}

	name, err := h.validator.ValidateDrugName(raw)
	if err != nil {
		logging.Warn("Unusual user input", "name", raw)
		h.respondWithServiceError(w, r, err)
		return
	}

	label, err := h.service.Lookup(r.Context(), name)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	h.RespondWithJSON(w, http.StatusOK, label)
}

// ServeInteractions returns the full report for a pair of drugs.
func (h *HTTPHandlerImpl) ServeInteractions(w http.ResponseWriter, r *http.Request) {
	a, b, err := h.drugPair(r)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	report, err := h.service.Check(r.Context(), a, b)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	h.RespondWithJSON(w, http.StatusOK, report)
}

// ServeCrossCheck returns only the cross-mention notes for a pair of drugs.
func (h *HTTPHandlerImpl) ServeCrossCheck(w http.ResponseWriter, r *http.Request) {
	a, b, err := h.drugPair(r)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	notes, err := h.service.CrossCheck(r.Context(), a, b)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	h.RespondWithJSON(w, http.StatusOK, CrossCheckResponse{DrugA: a, DrugB: b, Notes: notes})
}

// HealthCheck returns server and upstream health
func (h *HTTPHandlerImpl) HealthCheck(w http.ResponseWriter, r *http.Request) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	status, data, httpStatus := h.health.HealthCheck()

	var uptime time.Duration
	if start := h.status.GetServerStartTime(); !start.IsZero() {
		uptime = time.Since(start)
	}

	response := HealthResponse{
		Status:        status,
		Uptime:        formatUptimeHuman(uptime),
		UptimeSeconds: uptime.Seconds(),
		Data:          data,
		System: map[string]any{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb": int(m.Alloc / 1024 / 1024),
				"sys_mb":   int(m.Sys / 1024 / 1024),
				"num_gc":   m.NumGC,
			},
		},
	}

	h.RespondWithJSON(w, httpStatus, response)
}

// formatUptimeHuman formats duration into a human-readable string
func formatUptimeHuman(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	var parts []string

	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 || days > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 || hours > 0 || days > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	parts = append(parts, fmt.Sprintf("%ds", seconds))

	return strings.Join(parts, " ")
}
