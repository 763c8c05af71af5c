package apperr

import (
	"errors"
	"fmt"
)

type ValidationError struct {
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func NewValidation(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

func NewValidationWrap(msg string, err error) *ValidationError {
	return &ValidationError{Message: msg, Err: err}
}

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// FetchKind classifies why a feed could not be fetched.
type FetchKind string

const (
	// FetchNetwork covers dial errors, timeouts and broken connections.
	FetchNetwork FetchKind = "network"
	// FetchStatus is a non-2xx HTTP response.
	FetchStatus FetchKind = "status"
	// FetchParse is a body that is not a valid RSS/Atom/JSON feed.
	FetchParse FetchKind = "parse"
)

// FetchError is a per-source failure of the ingestion pipeline.
type FetchError struct {
	Source     string
	URL        string
	Kind       FetchKind
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Kind == FetchStatus {
		return fmt.Sprintf("fetch %s (%s): unexpected status %d", e.Source, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s (%s): %s: %v", e.Source, e.URL, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Temporary reports whether retrying the fetch later could succeed.
// Network failures and 5xx/429 responses are temporary, malformed feeds are not.
func (e *FetchError) Temporary() bool {
	switch e.Kind {
	case FetchNetwork:
		return true
	case FetchStatus:
		return e.StatusCode >= 500 || e.StatusCode == 429
	default:
		return false
	}
}

// IsTemporary reports whether err carries a temporary FetchError.
func IsTemporary(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Temporary()
}
