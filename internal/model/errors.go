package model

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is the error taxonomy surfaced by handlers. StatusCode feeds the
// error middleware, which renders {status:"error", message}.
type APIError struct {
	Kind    string
	Message string
	Code    int
	Err     error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *APIError) Unwrap() error { return e.Err }

func (e *APIError) StatusCode() int { return e.Code }

func NewValidationError(msg string) *APIError {
	return &APIError{Kind: "validation", Message: msg, Code: http.StatusBadRequest}
}

// NewNotLinkedError reports a caller missing a required hospital or doctor
// linkage.
func NewNotLinkedError(msg string) *APIError {
	return &APIError{Kind: "not_linked", Message: msg, Code: http.StatusBadRequest}
}

// NewNameMismatchError reports a CNIC already registered under a different
// name. The submission is rejected without mutation.
func NewNameMismatchError(cnic string) *APIError {
	return &APIError{
		Kind:    "name_mismatch",
		Message: fmt.Sprintf("cnic %s is registered under a different name", cnic),
		Code:    http.StatusBadRequest,
	}
}

func NewNotFoundError(entity string) *APIError {
	return &APIError{Kind: "not_found", Message: entity + " not found", Code: http.StatusNotFound}
}

// NewPartialFailureError reports that the first of two coupled writes took
// effect and the second failed. The message names the applied half so a retry
// can be reasoned about; re-applying the same status is a no-op.
func NewPartialFailureError(applied string, err error) *APIError {
	return &APIError{
		Kind:    "partial_failure",
		Message: fmt.Sprintf("partially applied: %s succeeded, follow-up write failed", applied),
		Code:    http.StatusInternalServerError,
		Err:     err,
	}
}

func NewUpstreamError(op string, err error) *APIError {
	return &APIError{
		Kind:    "upstream",
		Message: "failed to " + op,
		Code:    http.StatusInternalServerError,
		Err:     err,
	}
}

// IsKind reports whether err is an APIError of the given kind.
func IsKind(err error, kind string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}
