// Package interfaces defines the contracts between the drug label checker's
// layers so handlers, the scheduler and the health checker can be tested
// against fakes.
package interfaces

import (
	"context"
	"net/http"
	"time"

	"github.com/giygas/druglabel-checker/interactions"
)

// InteractionService is the lookup and cross-mention surface the front-ends use.
type InteractionService interface {
	InteractionText(ctx context.Context, name string) (interactions.SectionMap, error)
	CrossCheck(ctx context.Context, drugA, drugB string, opts ...interactions.CrossCheckOption) ([]string, error)
	Lookup(ctx context.Context, name string) (interactions.DrugLabel, error)
	Check(ctx context.Context, drugA, drugB string) (interactions.Report, error)
}

// ProbeResult is the outcome of one upstream reachability probe.
type ProbeResult struct {
	At       time.Time
	Duration time.Duration
	Found    bool
	Err      error
}

// UpstreamStatus stores the latest probe results.
// Implementations must be safe for concurrent use.
type UpstreamStatus interface {
	RecordProbe(result ProbeResult)
	LastProbe() (ProbeResult, bool)
	LastSuccess() time.Time
	ConsecutiveFailures() int

	BeginProbe() bool
	EndProbe()
	IsProbing() bool

	GetServerStartTime() time.Time
}

// Scheduler manages background jobs.
type Scheduler interface {
	Start() error
	Stop()
}

// HTTPHandler defines the contract for HTTP request handlers.
type HTTPHandler interface {
	ServeIndex(w http.ResponseWriter, r *http.Request)
	ServeLabel(w http.ResponseWriter, r *http.Request)
	ServeInteractions(w http.ResponseWriter, r *http.Request)
	ServeCrossCheck(w http.ResponseWriter, r *http.Request)
	HealthCheck(w http.ResponseWriter, r *http.Request)
}

// HealthChecker reports service health.
type HealthChecker interface {
	// HealthCheck returns the status name, details for the response body and
	// the HTTP status to answer with.
	HealthCheck() (status string, details map[string]any, httpStatus int)
}

// NameValidator checks user supplied drug names.
type NameValidator interface {
	ValidateDrugName(name string) (string, error)
}
