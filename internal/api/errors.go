package api

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when the upstream has no data for the request
// (404 or an empty payload). It is a "no data" result, not a failure.
var ErrNotFound = errors.New("hdev: not found")

// TransientError is returned once retries for a rate-limited, failing or
// timed-out request are exhausted. The same request may succeed later.
type TransientError struct {
	Endpoint   string
	StatusCode int
	Attempts   int
	Err        error
}

func (e *TransientError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("hdev %s: transient failure after %d attempts: status %d", e.Endpoint, e.Attempts, e.StatusCode)
	}
	return fmt.Sprintf("hdev %s: transient failure after %d attempts: %v", e.Endpoint, e.Attempts, e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// PermanentError is a failure that retrying will not fix: a rejected
// request, a malformed payload or an exhausted region/schema fallback.
type PermanentError struct {
	Endpoint   string
	StatusCode int
	Message    string
	Err        error

	// Causes lists the individual failures of an exhausted fallback chain.
	// They are informational and not unwrapped.
	Causes []error
}

func (e *PermanentError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "hdev %s: %s", e.Endpoint, e.Message)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (status %d)", e.StatusCode)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if len(e.Causes) > 0 {
		fmt.Fprintf(&b, " [%d attempts failed]", len(e.Causes))
	}
	return b.String()
}

func (e *PermanentError) Unwrap() error {
	return e.Err
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

func IsPermanent(err error) bool {
	var pe *PermanentError
	return errors.As(err, &pe)
}

// statusError records a retryable HTTP status between attempts.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("API error: %d", e.code)
}
