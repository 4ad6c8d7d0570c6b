package openfda

import (
	"context"
	"errors"
	"fmt"
	"net"
)

var (
	// ErrTransport covers network failures, timeouts and unexpected status codes.
	ErrTransport = errors.New("openfda: transport error")
	// ErrMalformedResponse means the body was not a label search result.
	ErrMalformedResponse = errors.New("openfda: malformed response")
)

// StatusError is returned for any non-2xx status other than 404.
type StatusError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("openfda: unexpected status %d %s", e.StatusCode, e.Status)
	}
	return fmt.Sprintf("openfda: unexpected status %d %s: %s", e.StatusCode, e.Status, e.Body)
}

func (e *StatusError) Unwrap() error { return ErrTransport }

// IsTimeout reports whether err was caused by a deadline or client timeout.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
