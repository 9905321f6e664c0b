package model

import (
	"errors"
	"fmt"
)

var (
	// ErrQuotaExhausted means the search provider refused the request for
	// billing reasons. Never retried.
	ErrQuotaExhausted = errors.New("search quota exhausted")

	// ErrSourceUnavailable covers every other failed search request.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrAssistedStepFailed marks a failed call to the text service.
	ErrAssistedStepFailed = errors.New("assisted step failed")

	// ErrMalformedAssistedResponse marks a text-service reply that did not
	// match the expected JSON shape.
	ErrMalformedAssistedResponse = errors.New("malformed assisted response")
)

// HTTPError wraps an HTTP status code so retry and quota logic can inspect it.
type HTTPError struct {
	StatusCode int
	Body       string // truncated response body for diagnostics
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}
