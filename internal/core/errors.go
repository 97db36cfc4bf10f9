package core

import (
	"errors"
	"fmt"
)

var (
	// ErrQuotaExceeded is returned when a rate-limit gate denies the call.
	// Terminal for the call; the caller retries after the window.
	ErrQuotaExceeded = errors.New("quota exceeded")

	// ErrProviderUnavailable covers transport failures and non-2xx replies
	// from the generation provider.
	ErrProviderUnavailable = errors.New("generation provider unavailable")

	// ErrMalformedResponse covers provider replies that cannot be mapped to
	// the expected result type.
	ErrMalformedResponse = errors.New("malformed provider response")

	ErrNotFound = errors.New("not found")

	// ErrSurveyNotEditable guards lifecycle transitions (only drafts are
	// edited or deleted, only active surveys accept responses or close).
	ErrSurveyNotEditable = errors.New("survey not in an editable state")
)

// ValidationError carries the structured violation list from input
// validation. It is surfaced verbatim; content is never auto-remediated.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("content policy violations: %d question(s) flagged", len(e.Violations))
}

func NewValidationError(violations []Violation) *ValidationError {
	return &ValidationError{Violations: violations}
}
