// Package httpx provides the error taxonomy and HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"
)

// Sentinel error kinds for the domain layer. Every terminal pipeline or
// service failure wraps exactly one of these.
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrBadRequest      = errors.New("bad request")
	ErrNotFound        = errors.New("resource not found")
	ErrForbidden       = errors.New("forbidden")
	ErrAlreadyExists   = errors.New("already exists")
	ErrUnavailable     = errors.New("unavailable")
)

// ReasonError attaches a machine-readable reason code to a sentinel kind.
// The reason is the only detail a denial ever exposes on the wire.
type ReasonError struct {
	Kind   error
	Code   string
	Detail string
}

func (e *ReasonError) Error() string {
	if e.Detail != "" {
		return e.Kind.Error() + ": " + e.Code + ": " + e.Detail
	}
	return e.Kind.Error() + ": " + e.Code
}

func (e *ReasonError) Unwrap() error { return e.Kind }

// Fail wraps kind with a reason code.
func Fail(kind error, reason string) error {
	return &ReasonError{Kind: kind, Code: reason}
}

// Failf wraps kind with a reason code and an operator-facing detail. The
// detail is logged, never written to the response for 401/403 kinds.
func Failf(kind error, reason, detail string) error {
	return &ReasonError{Kind: kind, Code: reason, Detail: detail}
}

// Reason extracts the reason code from err, or "" if it carries none.
func Reason(err error) string {
	var re *ReasonError
	if errors.As(err, &re) {
		return re.Code
	}
	return ""
}

// RespondError maps domain errors to HTTP responses using RFC7807.
func RespondError(w http.ResponseWriter, err error) {
	reason := Reason(err)
	switch {
	case errors.Is(err, ErrUnauthenticated):
		ProblemWithReason(w, http.StatusUnauthorized, "Unauthorized", reason)
	case errors.Is(err, ErrBadRequest):
		ProblemWithReason(w, http.StatusBadRequest, "Bad Request", reason)
	case errors.Is(err, ErrNotFound):
		ProblemWithReason(w, http.StatusNotFound, "Not Found", reason)
	case errors.Is(err, ErrForbidden):
		// Denials carry the coarse reason code only; no detail leaks.
		ProblemWithReason(w, http.StatusForbidden, "Forbidden", reason)
	case errors.Is(err, ErrAlreadyExists):
		ProblemWithReason(w, http.StatusConflict, "Conflict", reason)
	case errors.Is(err, ErrUnavailable):
		ProblemWithReason(w, http.StatusServiceUnavailable, "Unavailable", reason)
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
