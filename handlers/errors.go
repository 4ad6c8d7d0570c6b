package handlers

import (
	"errors"
	"net/http"

	"github.com/giygas/druglabel-checker/openfda"
	"github.com/giygas/druglabel-checker/validation"
)

// Reasons carried in error responses
const (
	ReasonInvalidInput        = "invalid_input"
	ReasonUpstreamMalformed   = "upstream_malformed"
	ReasonUpstreamTimeout     = "upstream_timeout"
	ReasonUpstreamUnavailable = "upstream_unavailable"
	ReasonInternal            = "internal_error"
)

// classifyError maps a service error to an HTTP status and reason.
func classifyError(err error) (int, string) {
	switch {
	case errors.Is(err, validation.ErrInvalidDrugName):
		return http.StatusBadRequest, ReasonInvalidInput
	case errors.Is(err, openfda.ErrMalformedResponse):
		return http.StatusBadGateway, ReasonUpstreamMalformed
	case openfda.IsTimeout(err):
		return http.StatusGatewayTimeout, ReasonUpstreamTimeout
	case errors.Is(err, openfda.ErrTransport):
		return http.StatusBadGateway, ReasonUpstreamUnavailable
	default:
		return http.StatusInternalServerError, ReasonInternal
	}
}

// publicMessage is the client-facing text for reason. Upstream details stay in
// the logs.
func publicMessage(reason string, err error) string {
	switch reason {
	case ReasonInvalidInput:
		return err.Error()
	case ReasonUpstreamMalformed:
		return "openFDA returned data that could not be read"
	case ReasonUpstreamTimeout:
		return "openFDA did not answer in time"
	case ReasonUpstreamUnavailable:
		return "openFDA is unavailable"
	default:
		return "internal server error"
	}
}
